package model

import (
	"strings"
	"time"
)

// 用血申请状态
const (
	RequestStatusPending   = "pending"
	RequestStatusScheduled = "scheduled"
	RequestStatusAccepted  = "accepted"
	RequestStatusFulfilled = "fulfilled"
	RequestStatusCancelled = "cancelled"
)

// 献血者对排班的响应
const (
	DonorResponseAccepted = "accepted"
	DonorResponseRejected = "rejected"
)

// 紧急程度
const (
	UrgencyHigh   = "High"
	UrgencyMedium = "Medium"
	UrgencyLow    = "Low"
)

// UnitsCustom 用血量选择“自定义”时的取值
const UnitsCustom = "custom"

// BloodRequest 用血申请表 — 对应 blood_requests
type BloodRequest struct {
	RequestID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	PatientName    string    `gorm:"type:varchar(100);not null"                     json:"patient_name"`
	Phone          string    `gorm:"type:varchar(30);not null"                      json:"phone"`
	Email          string    `gorm:"type:varchar(255);not null;default:''"          json:"email"`
	BloodType      string    `gorm:"type:varchar(5);not null"                       json:"blood_type"`
	Units          string    `gorm:"type:varchar(20);not null"                      json:"units"`
	BloodNeededML  int       `gorm:"not null"                                       json:"blood_needed_ml"`
	Hospital       string    `gorm:"type:varchar(200);not null"                     json:"hospital"`
	Urgency        string    `gorm:"type:varchar(10);not null"                      json:"urgency"` // High | Medium | Low
	RequiredDate   time.Time `gorm:"type:date;not null"                             json:"required_date"`
	AdditionalInfo string    `gorm:"type:text;not null;default:''"                  json:"additional_info"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | scheduled | accepted | fulfilled | cancelled
	RequestDate    time.Time `gorm:"type:date;not null"                             json:"request_date"`

	// 排班信息（由医院员工写入，献血者拒绝时清空）
	ScheduledDonor        string     `gorm:"type:varchar(100);not null;default:''" json:"scheduled_donor"`
	ScheduledDonorContact string     `gorm:"type:varchar(255);not null;default:''" json:"scheduled_donor_contact"`
	ScheduledDonorID      *string    `gorm:"type:uuid"                             json:"scheduled_donor_id,omitempty"`
	ScheduledDate         *time.Time `gorm:"type:date"                             json:"scheduled_date,omitempty"`
	ScheduledTime         string     `gorm:"type:varchar(10);not null;default:''"  json:"scheduled_time"`

	DonorResponse string     `gorm:"type:varchar(20);not null;default:''" json:"donor_response,omitempty"` // accepted | rejected
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	FulfilledAt   *time.Time `json:"fulfilled_at,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (BloodRequest) TableName() string { return "blood_requests" }

// HasScheduledDonor 是否已排定献血者
func (r *BloodRequest) HasScheduledDonor() bool {
	return r.ScheduledDonor != ""
}

// ClearSchedule 清空全部排班字段
func (r *BloodRequest) ClearSchedule() {
	r.ScheduledDonor = ""
	r.ScheduledDonorContact = ""
	r.ScheduledDonorID = nil
	r.ScheduledDate = nil
	r.ScheduledTime = ""
}

// ScheduledDonorEmail 排定联系方式为邮箱时返回，否则为空
func (r *BloodRequest) ScheduledDonorEmail() string {
	if strings.Contains(r.ScheduledDonorContact, "@") {
		return r.ScheduledDonorContact
	}
	return ""
}

// ScheduledDonorPhone 排定联系方式不是邮箱时视为手机号
func (r *BloodRequest) ScheduledDonorPhone() string {
	if r.ScheduledDonorContact != "" && !strings.Contains(r.ScheduledDonorContact, "@") {
		return r.ScheduledDonorContact
	}
	return ""
}
