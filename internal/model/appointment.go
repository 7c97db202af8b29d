package model

import "time"

// 预约状态
const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusRejected  = "rejected"
	AppointmentStatusCompleted = "completed"
)

// Appointment 献血预约表 — 对应 appointments
// 献血者信息在创建时快照，献血者后续修改资料不影响历史预约
type Appointment struct {
	AppointmentID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"appointment_id"`
	DonorID        string    `gorm:"type:uuid;not null"                             json:"donor_id"`
	DonorName      string    `gorm:"type:varchar(200);not null"                     json:"donor_name"`
	DonorEmail     string    `gorm:"type:varchar(255);not null;default:''"          json:"donor_email"`
	DonorPhone     string    `gorm:"type:varchar(30);not null;default:''"           json:"donor_phone"`
	DonorBloodType string    `gorm:"type:varchar(5);not null;default:''"            json:"donor_blood_type"`
	Date           time.Time `gorm:"type:date;not null"                             json:"date"`
	Time           string    `gorm:"type:varchar(10);not null"                      json:"time"`
	AmountML       int       `gorm:"not null"                                       json:"amount_ml"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | confirmed | rejected | completed
	VersionedModel

	// 关联
	Donor *Donor `gorm:"foreignKey:DonorID;references:DonorID" json:"donor,omitempty"`
}

// TableName 指定表名
func (Appointment) TableName() string { return "appointments" }
