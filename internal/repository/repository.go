package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Donor        DonorRepository
	Staff        HospitalStaffRepository
	BloodRequest BloodRequestRepository
	Appointment  AppointmentRepository
	Notification NotificationRepository
	TopDonor     TopDonorRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Donor:        NewDonorRepo(db),
		Staff:        NewHospitalStaffRepo(db),
		BloodRequest: NewBloodRequestRepo(db),
		Appointment:  NewAppointmentRepo(db),
		Notification: NewNotificationRepo(db),
		TopDonor:     NewTopDonorRepo(db),
		db:           db,
	}
}

// Transaction 在同一数据库事务中执行 fn，fn 返回错误时整体回滚
// 未绑定数据库的聚合（单元测试中手动组装）直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
