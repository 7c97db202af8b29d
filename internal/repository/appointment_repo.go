package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"lifeblood/backend/internal/model"
	pkgerrors "lifeblood/backend/pkg/errors"
)

// AppointmentCounts 预约统计
type AppointmentCounts struct {
	Pending        int64
	ConfirmedToday int64
	ActiveDonors   int64 // 有预约记录的不同献血者数
}

// AppointmentRepository 献血预约数据访问接口
type AppointmentRepository interface {
	Create(ctx context.Context, apt *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	Update(ctx context.Context, apt *model.Appointment) error
	ListByDonor(ctx context.Context, donorID string) ([]model.Appointment, error)
	// List 按状态查询，status 为空表示全部；按预约日期倒序
	List(ctx context.Context, status string) ([]model.Appointment, error)
	Delete(ctx context.Context, id string) error
	// DeleteNonPending 清空献血历史：删除所有非 pending 的预约
	DeleteNonPending(ctx context.Context) (int64, error)
	Counts(ctx context.Context, today time.Time) (*AppointmentCounts, error)
}

// appointmentRepo AppointmentRepository 的 GORM 实现
type appointmentRepo struct {
	db *gorm.DB
}

// NewAppointmentRepo 创建 AppointmentRepository 实例
func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) Create(ctx context.Context, apt *model.Appointment) error {
	return r.db.WithContext(ctx).Create(apt).Error
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var apt model.Appointment
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", id).
		First(&apt).Error
	if err != nil {
		return nil, err
	}
	return &apt, nil
}

// Update 乐观锁更新预约状态
func (r *appointmentRepo) Update(ctx context.Context, apt *model.Appointment) error {
	oldVersion := apt.Version
	result := r.db.WithContext(ctx).
		Model(apt).
		Where("appointment_id = ? AND version = ?", apt.AppointmentID, oldVersion).
		Updates(map[string]interface{}{
			"status":  apt.Status,
			"version": oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	apt.Version = oldVersion + 1
	return nil
}

func (r *appointmentRepo) ListByDonor(ctx context.Context, donorID string) ([]model.Appointment, error) {
	var apts []model.Appointment
	err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("date DESC, created_at DESC").
		Find(&apts).Error
	return apts, err
}

func (r *appointmentRepo) List(ctx context.Context, status string) ([]model.Appointment, error) {
	var apts []model.Appointment
	db := r.db.WithContext(ctx)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("date DESC, created_at DESC").Find(&apts).Error
	return apts, err
}

func (r *appointmentRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("appointment_id = ?", id).
		Delete(&model.Appointment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *appointmentRepo) DeleteNonPending(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status <> ?", model.AppointmentStatusPending).
		Delete(&model.Appointment{})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepo) Counts(ctx context.Context, today time.Time) (*AppointmentCounts, error) {
	var counts AppointmentCounts
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Select(`COUNT(*) FILTER (WHERE status = ?) AS pending,
			COUNT(*) FILTER (WHERE status = ? AND date = ?) AS confirmed_today,
			COUNT(DISTINCT donor_id) AS active_donors`,
			model.AppointmentStatusPending,
			model.AppointmentStatusConfirmed, today.Format(model.DateLayout),
		).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return &counts, nil
}
