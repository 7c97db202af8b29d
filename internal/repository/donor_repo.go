package repository

import (
	"context"

	"gorm.io/gorm"

	"lifeblood/backend/internal/model"
	pkgerrors "lifeblood/backend/pkg/errors"
)

// DonorRepository 献血者数据访问接口
type DonorRepository interface {
	Create(ctx context.Context, donor *model.Donor) error
	GetByID(ctx context.Context, id string) (*model.Donor, error)
	GetByEmail(ctx context.Context, email string) (*model.Donor, error)
	GetByPhone(ctx context.Context, phone string) (*model.Donor, error)
	// GetByContact 按邮箱或手机号查找（联系方式含 @ 时视为邮箱）
	GetByContact(ctx context.Context, contact string) (*model.Donor, error)
	Update(ctx context.Context, donor *model.Donor) error
	Delete(ctx context.Context, id string) error
}

// donorRepo DonorRepository 的 GORM 实现
type donorRepo struct {
	db *gorm.DB
}

// NewDonorRepo 创建 DonorRepository 实例
func NewDonorRepo(db *gorm.DB) DonorRepository {
	return &donorRepo{db: db}
}

func (r *donorRepo) Create(ctx context.Context, donor *model.Donor) error {
	return r.db.WithContext(ctx).Create(donor).Error
}

func (r *donorRepo) GetByID(ctx context.Context, id string) (*model.Donor, error) {
	return r.first(ctx, "donor_id = ?", id)
}

func (r *donorRepo) GetByEmail(ctx context.Context, email string) (*model.Donor, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *donorRepo) GetByPhone(ctx context.Context, phone string) (*model.Donor, error) {
	return r.first(ctx, "phone = ?", phone)
}

func (r *donorRepo) GetByContact(ctx context.Context, contact string) (*model.Donor, error) {
	return r.first(ctx, "email = ? OR phone = ?", contact, contact)
}

func (r *donorRepo) first(ctx context.Context, query string, args ...interface{}) (*model.Donor, error) {
	var donor model.Donor
	err := r.db.WithContext(ctx).
		Where(query, args...).
		First(&donor).Error
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

// Update 乐观锁更新献血者资料
func (r *donorRepo) Update(ctx context.Context, donor *model.Donor) error {
	oldVersion := donor.Version
	result := r.db.WithContext(ctx).
		Model(donor).
		Where("donor_id = ? AND version = ?", donor.DonorID, oldVersion).
		Updates(map[string]interface{}{
			"first_name":    donor.FirstName,
			"last_name":     donor.LastName,
			"email":         donor.Email,
			"phone":         donor.Phone,
			"password_hash": donor.PasswordHash,
			"date_of_birth": donor.DateOfBirth,
			"address":       donor.Address,
			"blood_type":    donor.BloodType,
			"status":        donor.Status,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	donor.Version = oldVersion + 1
	return nil
}

func (r *donorRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("donor_id = ?", id).
		Delete(&model.Donor{}).Error
}
