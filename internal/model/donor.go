package model

import (
	"strings"
	"time"
)

// 献血者账号状态
const (
	DonorStatusActive   = "active"
	DonorStatusInactive = "inactive"
)

// Donor 献血者表 — 对应 donors
type Donor struct {
	DonorID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"donor_id"`
	FirstName    string     `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName     string     `gorm:"type:varchar(100);not null;default:''"          json:"last_name"`
	Email        string     `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone        string     `gorm:"type:varchar(30);not null"                      json:"phone"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                     json:"-"`
	DateOfBirth  *time.Time `gorm:"type:date"                                      json:"date_of_birth,omitempty"`
	Address      string     `gorm:"type:varchar(500);not null;default:''"          json:"address"`
	BloodType    string     `gorm:"type:varchar(5);not null;default:''"            json:"blood_type"` // 注册时为空，资料编辑时填写
	Status       string     `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`     // active | inactive
	JoinedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"joined_at"`
	VersionedModel

	// 关联
	Appointments []Appointment `gorm:"foreignKey:DonorID;references:DonorID" json:"appointments,omitempty"`
}

// TableName 指定表名
func (Donor) TableName() string { return "donors" }

// FullName 姓名拼接
func (d *Donor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// Contacts 返回献血者可被通知寻址的联系方式（邮箱、手机号，忽略空值）
func (d *Donor) Contacts() []string {
	contacts := make([]string, 0, 2)
	if d.Email != "" {
		contacts = append(contacts, d.Email)
	}
	if d.Phone != "" {
		contacts = append(contacts, d.Phone)
	}
	return contacts
}
