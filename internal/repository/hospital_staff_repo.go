package repository

import (
	"context"

	"gorm.io/gorm"

	"lifeblood/backend/internal/model"
)

// HospitalStaffRepository 医院员工数据访问接口
type HospitalStaffRepository interface {
	Create(ctx context.Context, staff *model.HospitalStaff) error
	GetByID(ctx context.Context, id string) (*model.HospitalStaff, error)
	GetByHospitalCode(ctx context.Context, code string) (*model.HospitalStaff, error)
	// GetByIdentifier 按邮箱、手机号或医院代码查找（用于登录）
	GetByIdentifier(ctx context.Context, identifier string) (*model.HospitalStaff, error)
	GetByEmail(ctx context.Context, email string) (*model.HospitalStaff, error)
	Count(ctx context.Context) (int64, error)
	// LockRegistration 在当前事务内串行化员工注册（名额检查 + 插入）
	LockRegistration(ctx context.Context) error
}

// hospitalStaffRepo HospitalStaffRepository 的 GORM 实现
type hospitalStaffRepo struct {
	db *gorm.DB
}

// NewHospitalStaffRepo 创建 HospitalStaffRepository 实例
func NewHospitalStaffRepo(db *gorm.DB) HospitalStaffRepository {
	return &hospitalStaffRepo{db: db}
}

func (r *hospitalStaffRepo) Create(ctx context.Context, staff *model.HospitalStaff) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

func (r *hospitalStaffRepo) GetByID(ctx context.Context, id string) (*model.HospitalStaff, error) {
	return r.first(ctx, "staff_id = ?", id)
}

func (r *hospitalStaffRepo) GetByHospitalCode(ctx context.Context, code string) (*model.HospitalStaff, error) {
	return r.first(ctx, "hospital_code = ?", code)
}

func (r *hospitalStaffRepo) GetByEmail(ctx context.Context, email string) (*model.HospitalStaff, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *hospitalStaffRepo) GetByIdentifier(ctx context.Context, identifier string) (*model.HospitalStaff, error) {
	return r.first(ctx, "email = ? OR phone = ? OR hospital_code = ?", identifier, identifier, identifier)
}

func (r *hospitalStaffRepo) first(ctx context.Context, query string, args ...interface{}) (*model.HospitalStaff, error) {
	var staff model.HospitalStaff
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("created_at ASC").
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *hospitalStaffRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.HospitalStaff{}).Count(&count).Error
	return count, err
}

func (r *hospitalStaffRepo) LockRegistration(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext('hospital_staff_registration'))").Error
}
