package model

import "time"

// HospitalStaff 医院员工账号表 — 对应 hospital_staff
// 每个白名单医院代码最多对应一个账号
type HospitalStaff struct {
	StaffID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"staff_id"`
	HospitalCode string    `gorm:"type:varchar(20);not null"                      json:"hospital_code"`
	Email        string    `gorm:"type:varchar(255);not null;default:''"          json:"email"`
	Phone        string    `gorm:"type:varchar(30);not null;default:''"           json:"phone"`
	PasswordHash string    `gorm:"type:varchar(255);not null"                     json:"-"`
	JoinedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"joined_at"`
	VersionedModel
}

// TableName 指定表名
func (HospitalStaff) TableName() string { return "hospital_staff" }
