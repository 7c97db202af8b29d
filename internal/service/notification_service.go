package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/model"
	"lifeblood/backend/internal/repository"
)

// ── 通知模块业务错误 ──

var (
	ErrNotificationNotFound       = errors.New("通知不存在")
	ErrNotificationNotPending     = errors.New("该通知已响应")
	ErrInvalidResponseAction      = errors.New("响应操作无效")
	ErrRequestNotAwaitingResponse = errors.New("对应的用血申请当前不等待献血者响应")
)

// 献血者响应
const (
	ResponseAccept = "accept"
	ResponseReject = "reject"
)

// NotificationService 通知与献血者响应业务接口
type NotificationService interface {
	// ListMine 发给献血者（donor_id / 邮箱 / 手机号）的通知，最新在前
	ListMine(ctx context.Context, donorID string) (*dto.NotificationListResponse, error)
	// Respond 接受或拒绝排班：通知状态与对应申请在同一事务内更新
	Respond(ctx context.Context, donorID, notificationID, action string) (*dto.NotificationResponse, error)
	MarkRead(ctx context.Context, donorID, notificationID string) (*dto.NotificationResponse, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger, now: time.Now}
}

func (s *notificationService) ListMine(ctx context.Context, donorID string) (*dto.NotificationListResponse, error) {
	donor, err := s.getDonor(ctx, s.repo, donorID)
	if err != nil {
		return nil, err
	}

	list, err := s.repo.Notification.ListForRecipient(ctx, donor.DonorID, donor.Contacts())
	if err != nil {
		s.logger.Error("查询通知失败", zap.String("donor_id", donorID), zap.Error(err))
		return nil, err
	}

	resp := &dto.NotificationListResponse{
		Notifications: make([]dto.NotificationResponse, 0, len(list)),
	}
	for i := range list {
		if list[i].Status == model.NotificationStatusPending {
			resp.PendingCount++
		}
		resp.Notifications = append(resp.Notifications, toNotificationResponse(&list[i]))
	}
	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// Respond
// ═══════════════════════════════════════════════════════════
//
//   - 通知必须发给当前献血者且仍为 pending
//   - 对应申请已不存在：只更新通知
//   - 对应申请不是 scheduled（或已改排其他献血者）：拒绝响应
//   - accept → 申请 accepted；reject → 申请回到 pending 并清空排班字段

func (s *notificationService) Respond(ctx context.Context, donorID, notificationID, action string) (*dto.NotificationResponse, error) {
	if action != ResponseAccept && action != ResponseReject {
		return nil, ErrInvalidResponseAction
	}

	var notif *model.Notification
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		notif, err = s.getOwnNotification(ctx, tx, donorID, notificationID)
		if err != nil {
			return err
		}
		if notif.Status != model.NotificationStatusPending {
			return ErrNotificationNotPending
		}

		now := s.now()
		notif.IsRead = true
		notif.RespondedAt = &now
		if action == ResponseAccept {
			notif.Status = model.NotificationStatusAccepted
		} else {
			notif.Status = model.NotificationStatusRejected
		}

		br, err := tx.BloodRequest.GetByID(ctx, notif.ScheduleData.RequestID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Warn("通知对应的用血申请已不存在",
				zap.String("notification_id", notificationID),
				zap.String("request_id", notif.ScheduleData.RequestID),
			)
			return tx.Notification.Update(ctx, notif)
		case err != nil:
			return err
		}

		if br.Status != model.RequestStatusScheduled || br.ScheduledDonorContact != notif.DonorContact {
			return ErrRequestNotAwaitingResponse
		}

		br.RespondedAt = &now
		if action == ResponseAccept {
			br.Status = model.RequestStatusAccepted
			br.DonorResponse = model.DonorResponseAccepted
		} else {
			br.Status = model.RequestStatusPending
			br.DonorResponse = model.DonorResponseRejected
			br.ClearSchedule()
		}

		if err := tx.BloodRequest.Update(ctx, br); err != nil {
			return err
		}
		return tx.Notification.Update(ctx, notif)
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("响应排班通知失败", zap.String("notification_id", notificationID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("献血者已响应排班",
		zap.String("notification_id", notificationID),
		zap.String("donor_id", donorID),
		zap.String("status", notif.Status),
	)

	resp := toNotificationResponse(notif)
	return &resp, nil
}

func (s *notificationService) MarkRead(ctx context.Context, donorID, notificationID string) (*dto.NotificationResponse, error) {
	notif, err := s.getOwnNotification(ctx, s.repo, donorID, notificationID)
	if err != nil {
		return nil, err
	}

	if !notif.IsRead {
		notif.IsRead = true
		if err := s.repo.Notification.Update(ctx, notif); err != nil {
			if !isBusinessError(err) {
				s.logger.Error("标记通知已读失败", zap.String("notification_id", notificationID), zap.Error(err))
			}
			return nil, err
		}
	}

	resp := toNotificationResponse(notif)
	return &resp, nil
}

// ── 辅助函数 ──

func (s *notificationService) getDonor(ctx context.Context, repo *repository.Repository, donorID string) (*model.Donor, error) {
	donor, err := repo.Donor.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		s.logger.Error("查询献血者失败", zap.String("donor_id", donorID), zap.Error(err))
		return nil, err
	}
	return donor, nil
}

// getOwnNotification 通知不存在或不属于当前献血者时都返回 ErrNotificationNotFound
func (s *notificationService) getOwnNotification(ctx context.Context, repo *repository.Repository, donorID, notificationID string) (*model.Notification, error) {
	donor, err := s.getDonor(ctx, repo, donorID)
	if err != nil {
		return nil, err
	}

	notif, err := repo.Notification.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	if !addressedTo(notif, donor) {
		return nil, ErrNotificationNotFound
	}
	return notif, nil
}

// addressedTo 通知的 donor_id 或联系方式与献血者匹配
func addressedTo(n *model.Notification, d *model.Donor) bool {
	if n.DonorID != nil && *n.DonorID == d.DonorID {
		return true
	}
	for _, c := range d.Contacts() {
		if n.DonorContact == c {
			return true
		}
	}
	return false
}
