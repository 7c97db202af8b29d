package model

import "time"

// TopDonor 献血排行榜表 — 对应 top_donors
// 按 email 或 phone 聚合同一献血者的累计献血次数
type TopDonor struct {
	TopDonorID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"top_donor_id"`
	DonorID       *string    `gorm:"type:uuid"                                      json:"donor_id,omitempty"`
	Name          string     `gorm:"type:varchar(200);not null"                     json:"name"`
	Email         string     `gorm:"type:varchar(255);not null;default:''"          json:"email"`
	Phone         string     `gorm:"type:varchar(30);not null;default:''"           json:"phone"`
	BloodType     string     `gorm:"type:varchar(10);not null;default:''"           json:"blood_type"`
	DonationCount int        `gorm:"not null;default:0"                             json:"donation_count"`
	FirstDonation *time.Time `gorm:"type:date"                                      json:"first_donation,omitempty"`
	LastDonation  *time.Time `gorm:"type:date"                                      json:"last_donation,omitempty"`
	BaseModel
}

// TableName 指定表名
func (TopDonor) TableName() string { return "top_donors" }

// Matches 判断是否为同一献血者：非空邮箱相同或非空手机号相同
func (d *TopDonor) Matches(email, phone string) bool {
	if email != "" && d.Email == email {
		return true
	}
	return phone != "" && d.Phone == phone
}
