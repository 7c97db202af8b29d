package repository

import (
	"context"

	"gorm.io/gorm"

	"lifeblood/backend/internal/model"
	pkgerrors "lifeblood/backend/pkg/errors"
)

// RequestCounts 用血申请分状态统计
type RequestCounts struct {
	Total     int64
	Pending   int64
	Urgent    int64 // High 且 pending
	Scheduled int64
	Fulfilled int64
}

// BloodRequestRepository 用血申请数据访问接口
type BloodRequestRepository interface {
	Create(ctx context.Context, req *model.BloodRequest) error
	GetByID(ctx context.Context, id string) (*model.BloodRequest, error)
	Update(ctx context.Context, req *model.BloodRequest) error
	// List 按状态分页查询，status 为空表示全部；按申请时间倒序
	List(ctx context.Context, status string, offset, limit int) ([]model.BloodRequest, int64, error)
	ListAll(ctx context.Context) ([]model.BloodRequest, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	Counts(ctx context.Context) (*RequestCounts, error)
}

// bloodRequestRepo BloodRequestRepository 的 GORM 实现
type bloodRequestRepo struct {
	db *gorm.DB
}

// NewBloodRequestRepo 创建 BloodRequestRepository 实例
func NewBloodRequestRepo(db *gorm.DB) BloodRequestRepository {
	return &bloodRequestRepo{db: db}
}

func (r *bloodRequestRepo) Create(ctx context.Context, req *model.BloodRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *bloodRequestRepo) GetByID(ctx context.Context, id string) (*model.BloodRequest, error) {
	var req model.BloodRequest
	err := r.db.WithContext(ctx).
		Where("request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Update 乐观锁更新申请状态与排班字段
func (r *bloodRequestRepo) Update(ctx context.Context, req *model.BloodRequest) error {
	oldVersion := req.Version
	result := r.db.WithContext(ctx).
		Model(req).
		Where("request_id = ? AND version = ?", req.RequestID, oldVersion).
		Updates(map[string]interface{}{
			"hospital":                req.Hospital,
			"status":                  req.Status,
			"scheduled_donor":         req.ScheduledDonor,
			"scheduled_donor_contact": req.ScheduledDonorContact,
			"scheduled_donor_id":      req.ScheduledDonorID,
			"scheduled_date":          req.ScheduledDate,
			"scheduled_time":          req.ScheduledTime,
			"donor_response":          req.DonorResponse,
			"responded_at":            req.RespondedAt,
			"fulfilled_at":            req.FulfilledAt,
			"version":                 oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version = oldVersion + 1
	return nil
}

func (r *bloodRequestRepo) List(ctx context.Context, status string, offset, limit int) ([]model.BloodRequest, int64, error) {
	var reqs []model.BloodRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.BloodRequest{})
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}

func (r *bloodRequestRepo) ListAll(ctx context.Context) ([]model.BloodRequest, error) {
	var reqs []model.BloodRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *bloodRequestRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("request_id = ?", id).
		Delete(&model.BloodRequest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bloodRequestRepo) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&model.BloodRequest{})
	return result.RowsAffected, result.Error
}

func (r *bloodRequestRepo) Counts(ctx context.Context) (*RequestCounts, error) {
	var counts RequestCounts
	err := r.db.WithContext(ctx).
		Model(&model.BloodRequest{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = ?) AS pending,
			COUNT(*) FILTER (WHERE status = ? AND urgency = ?) AS urgent,
			COUNT(*) FILTER (WHERE status = ?) AS scheduled,
			COUNT(*) FILTER (WHERE status = ?) AS fulfilled`,
			model.RequestStatusPending,
			model.RequestStatusPending, model.UrgencyHigh,
			model.RequestStatusScheduled,
			model.RequestStatusFulfilled,
		).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return &counts, nil
}
