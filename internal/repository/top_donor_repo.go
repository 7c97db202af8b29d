package repository

import (
	"context"

	"gorm.io/gorm"

	"lifeblood/backend/internal/model"
)

// rankOrder 排行榜排序：献血次数降序，同次数按入榜先后
const rankOrder = "donation_count DESC, created_at ASC, top_donor_id ASC"

// TopDonorRepository 献血排行榜数据访问接口
type TopDonorRepository interface {
	// FindByContact 查找非空邮箱或非空手机号相同的条目，未找到返回 gorm.ErrRecordNotFound
	FindByContact(ctx context.Context, email, phone string) (*model.TopDonor, error)
	Create(ctx context.Context, d *model.TopDonor) error
	Update(ctx context.Context, d *model.TopDonor) error
	ListRanked(ctx context.Context, limit int) ([]model.TopDonor, error)
	// TrimTo 只保留排名前 capacity 的条目，返回删除数
	TrimTo(ctx context.Context, capacity int) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// topDonorRepo TopDonorRepository 的 GORM 实现
type topDonorRepo struct {
	db *gorm.DB
}

// NewTopDonorRepo 创建 TopDonorRepository 实例
func NewTopDonorRepo(db *gorm.DB) TopDonorRepository {
	return &topDonorRepo{db: db}
}

func (r *topDonorRepo) FindByContact(ctx context.Context, email, phone string) (*model.TopDonor, error) {
	db := r.db.WithContext(ctx)
	switch {
	case email != "" && phone != "":
		db = db.Where("(email <> '' AND email = ?) OR (phone <> '' AND phone = ?)", email, phone)
	case email != "":
		db = db.Where("email <> '' AND email = ?", email)
	case phone != "":
		db = db.Where("phone <> '' AND phone = ?", phone)
	default:
		return nil, gorm.ErrRecordNotFound
	}

	var d model.TopDonor
	if err := db.Order(rankOrder).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *topDonorRepo) Create(ctx context.Context, d *model.TopDonor) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *topDonorRepo) Update(ctx context.Context, d *model.TopDonor) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *topDonorRepo) ListRanked(ctx context.Context, limit int) ([]model.TopDonor, error) {
	var list []model.TopDonor
	err := r.db.WithContext(ctx).
		Order(rankOrder).
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *topDonorRepo) TrimTo(ctx context.Context, capacity int) (int64, error) {
	keep := r.db.Model(&model.TopDonor{}).
		Select("top_donor_id").
		Order(rankOrder).
		Limit(capacity)
	result := r.db.WithContext(ctx).
		Where("top_donor_id NOT IN (?)", keep).
		Delete(&model.TopDonor{})
	return result.RowsAffected, result.Error
}

func (r *topDonorRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TopDonor{}).Count(&count).Error
	return count, err
}
