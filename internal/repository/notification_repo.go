package repository

import (
	"context"

	"gorm.io/gorm"

	"lifeblood/backend/internal/model"
	pkgerrors "lifeblood/backend/pkg/errors"
)

// NotificationRepository 排班通知数据访问接口
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	Update(ctx context.Context, n *model.Notification) error
	// ListForRecipient 查询发给某献血者的通知：donor_id 匹配或联系方式匹配任一，最新在前
	ListForRecipient(ctx context.Context, donorID string, contacts []string) ([]model.Notification, error)
}

// notificationRepo NotificationRepository 的 GORM 实现
type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", id).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Update 乐观锁更新通知状态与已读标记
func (r *notificationRepo) Update(ctx context.Context, n *model.Notification) error {
	oldVersion := n.Version
	result := r.db.WithContext(ctx).
		Model(n).
		Where("notification_id = ? AND version = ?", n.NotificationID, oldVersion).
		Updates(map[string]interface{}{
			"status":       n.Status,
			"is_read":      n.IsRead,
			"responded_at": n.RespondedAt,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	n.Version = oldVersion + 1
	return nil
}

func (r *notificationRepo) ListForRecipient(ctx context.Context, donorID string, contacts []string) ([]model.Notification, error) {
	var list []model.Notification
	db := r.db.WithContext(ctx)
	switch {
	case donorID != "" && len(contacts) > 0:
		db = db.Where("donor_id = ? OR donor_contact IN ?", donorID, contacts)
	case donorID != "":
		db = db.Where("donor_id = ?", donorID)
	case len(contacts) > 0:
		db = db.Where("donor_contact IN ?", contacts)
	default:
		return nil, nil
	}
	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}
