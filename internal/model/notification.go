package model

import "time"

// 通知类型
const NotificationTypeDonationSchedule = "donation_schedule"

// 通知状态，与对应用血申请的献血者响应保持一致
const (
	NotificationStatusPending  = "pending"
	NotificationStatusAccepted = "accepted"
	NotificationStatusRejected = "rejected"
)

// ScheduleData 通知中携带的排班数据，RequestID 在创建时捕获
type ScheduleData struct {
	Date      time.Time `gorm:"type:date;not null"                    json:"date"`
	Time      string    `gorm:"type:varchar(10);not null"             json:"time"`
	Hospital  string    `gorm:"type:varchar(200);not null"            json:"hospital"`
	RequestID string    `gorm:"type:uuid;not null"                    json:"request_id"`
	Note      string    `gorm:"type:text;not null;default:''"         json:"note,omitempty"`
}

// Notification 献血排班通知表 — 对应 notifications
// DonorContact 为邮箱或手机号；若能匹配到已注册献血者则同时记录 DonorID
type Notification struct {
	NotificationID string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"notification_id"`
	DonorContact   string       `gorm:"type:varchar(255);not null"                      json:"donor_contact"`
	DonorID        *string      `gorm:"type:uuid"                                       json:"donor_id,omitempty"`
	Type           string       `gorm:"type:varchar(50);not null"                       json:"type"`
	Title          string       `gorm:"type:varchar(200);not null"                      json:"title"`
	Message        string       `gorm:"type:text;not null"                              json:"message"`
	ScheduleData   ScheduleData `gorm:"embedded;embeddedPrefix:schedule_"               json:"schedule_data"`
	Status         string       `gorm:"type:varchar(20);not null;default:'pending'"     json:"status"` // pending | accepted | rejected
	IsRead         bool         `gorm:"not null;default:false"                          json:"is_read"`
	RespondedAt    *time.Time   `json:"responded_at,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
