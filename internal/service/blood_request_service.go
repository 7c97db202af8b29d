package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lifeblood/backend/config"
	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/model"
	"lifeblood/backend/internal/repository"
	"lifeblood/backend/pkg/validate"
)

// ── 用血申请模块业务错误 ──

var (
	ErrRequestNotFound         = errors.New("用血申请不存在")
	ErrUrgencyRequired         = errors.New("请选择紧急程度")
	ErrInvalidUrgency          = errors.New("紧急程度无效")
	ErrInvalidAmount           = errors.New("用血量无效")
	ErrRequiredDateInPast      = errors.New("需要日期不能早于今天")
	ErrRequestNotPending       = errors.New("仅待处理的申请可以排班")
	ErrRequestAlreadyFulfilled = errors.New("该申请已完成")
	ErrRequestCancelled        = errors.New("该申请已取消")
	ErrRequestNotCancellable   = errors.New("当前状态的申请无法取消")
)

const scheduleNotificationTitle = "Blood Donation Scheduled"

// BloodRequestService 用血申请业务接口
type BloodRequestService interface {
	// Create 提交用血申请（公开）
	Create(ctx context.Context, req *dto.CreateBloodRequestRequest) (*dto.BloodRequestResponse, error)
	Get(ctx context.Context, id string) (*dto.BloodRequestResponse, error)
	List(ctx context.Context, req *dto.ListBloodRequestsRequest) ([]dto.BloodRequestResponse, int64, error)
	// ScheduleDonor 排定献血者并发送通知（同一事务）
	ScheduleDonor(ctx context.Context, id string, req *dto.ScheduleDonorRequest) (*dto.ScheduleDonorResponse, error)
	// MarkFulfilled 标记完成；献血者已接受时计入排行榜
	MarkFulfilled(ctx context.Context, id string) (*dto.BloodRequestResponse, error)
	Cancel(ctx context.Context, id string) (*dto.BloodRequestResponse, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int64, error)
}

type bloodRequestService struct {
	cfg         *config.Config
	repo        *repository.Repository
	leaderboard LeaderboardService
	logger      *zap.Logger
	now         func() time.Time
}

// NewBloodRequestService 创建 BloodRequestService 实例
func NewBloodRequestService(
	cfg *config.Config,
	repo *repository.Repository,
	leaderboard LeaderboardService,
	logger *zap.Logger,
) BloodRequestService {
	return &bloodRequestService{
		cfg:         cfg,
		repo:        repo,
		leaderboard: leaderboard,
		logger:      logger,
		now:         zonedClock(time.Now, cfg.Database.Timezone),
	}
}

func (s *bloodRequestService) Create(ctx context.Context, req *dto.CreateBloodRequestRequest) (*dto.BloodRequestResponse, error) {
	if req.Urgency == "" {
		return nil, ErrUrgencyRequired
	}
	if validate.Default().Var(req.Urgency, "urgency") != nil {
		return nil, ErrInvalidUrgency
	}

	amount, err := bloodNeededML(req.Units, req.CustomAmount)
	if err != nil {
		return nil, err
	}

	requiredDate, err := parseDate(req.RequiredDate)
	if err != nil {
		return nil, fmt.Errorf("%w: required_date", ErrInvalidField)
	}
	todayDate := today(s.now())
	if requiredDate.Before(todayDate) {
		return nil, ErrRequiredDateInPast
	}

	br := &model.BloodRequest{
		PatientName:    req.PatientName,
		Phone:          req.Phone,
		Email:          req.Email,
		BloodType:      req.BloodType,
		Units:          req.Units,
		BloodNeededML:  amount,
		Hospital:       req.Hospital,
		Urgency:        req.Urgency,
		RequiredDate:   requiredDate,
		AdditionalInfo: req.AdditionalInfo,
		Status:         model.RequestStatusPending,
		RequestDate:    todayDate,
	}
	if err := s.repo.BloodRequest.Create(ctx, br); err != nil {
		s.logger.Error("创建用血申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("收到用血申请",
		zap.String("request_id", br.RequestID),
		zap.String("blood_type", br.BloodType),
		zap.String("urgency", br.Urgency),
	)

	resp := toBloodRequestResponse(br)
	return &resp, nil
}

func (s *bloodRequestService) Get(ctx context.Context, id string) (*dto.BloodRequestResponse, error) {
	br, err := s.getRequest(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	resp := toBloodRequestResponse(br)
	return &resp, nil
}

func (s *bloodRequestService) List(ctx context.Context, req *dto.ListBloodRequestsRequest) ([]dto.BloodRequestResponse, int64, error) {
	status := req.Status
	if status == "all" {
		status = ""
	}

	list, total, err := s.repo.BloodRequest.List(ctx, status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用血申请列表失败", zap.Error(err))
		return nil, 0, err
	}
	return toBloodRequestResponses(list), total, nil
}

// ═══════════════════════════════════════════════════════════
// ScheduleDonor
// ═══════════════════════════════════════════════════════════
//
// 仅 pending 申请可排班。写入排班字段、医院改为默认医院、状态改为 scheduled，
// 同时创建发给献血者的通知；联系方式能匹配到注册献血者时记录其 ID。

func (s *bloodRequestService) ScheduleDonor(ctx context.Context, id string, req *dto.ScheduleDonorRequest) (*dto.ScheduleDonorResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date", ErrInvalidField)
	}
	hospital := s.cfg.Hospital.DefaultName

	var br *model.BloodRequest
	var notif *model.Notification

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		br, err = s.getRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		if br.Status != model.RequestStatusPending {
			return ErrRequestNotPending
		}

		var donorID *string
		if donor, err := tx.Donor.GetByContact(ctx, req.DonorContact); err == nil {
			donorID = &donor.DonorID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		br.Status = model.RequestStatusScheduled
		br.ScheduledDonor = req.DonorName
		br.ScheduledDonorContact = req.DonorContact
		br.ScheduledDonorID = donorID
		br.ScheduledDate = &date
		br.ScheduledTime = req.Time
		br.Hospital = hospital
		br.DonorResponse = ""
		br.RespondedAt = nil
		if err := tx.BloodRequest.Update(ctx, br); err != nil {
			return err
		}

		notif = &model.Notification{
			DonorContact: req.DonorContact,
			DonorID:      donorID,
			Type:         model.NotificationTypeDonationSchedule,
			Title:        scheduleNotificationTitle,
			Message: fmt.Sprintf("You have been scheduled for blood donation on %s at %s. Hospital: %s",
				req.Date, req.Time, hospital),
			ScheduleData: model.ScheduleData{
				Date:      date,
				Time:      req.Time,
				Hospital:  hospital,
				RequestID: br.RequestID,
				Note:      req.Message,
			},
			Status: model.NotificationStatusPending,
		}
		return tx.Notification.Create(ctx, notif)
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		s.logger.Error("排定献血者失败", zap.String("request_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("已排定献血者并发送通知",
		zap.String("request_id", id),
		zap.String("donor_contact", req.DonorContact),
		zap.String("notification_id", notif.NotificationID),
	)

	return &dto.ScheduleDonorResponse{
		Request:      toBloodRequestResponse(br),
		Notification: toNotificationResponse(notif),
	}, nil
}

// ═══════════════════════════════════════════════════════════
// MarkFulfilled
// ═══════════════════════════════════════════════════════════
//
// 终态。仅当存在排定献血者且其已接受时计入排行榜；
// 联系方式含 @ 视为邮箱，否则视为手机号。已完成的申请不可重复标记。

func (s *bloodRequestService) MarkFulfilled(ctx context.Context, id string) (*dto.BloodRequestResponse, error) {
	var br *model.BloodRequest

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		br, err = s.getRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		switch br.Status {
		case model.RequestStatusFulfilled:
			return ErrRequestAlreadyFulfilled
		case model.RequestStatusCancelled:
			return ErrRequestCancelled
		}

		now := s.now()
		br.Status = model.RequestStatusFulfilled
		br.FulfilledAt = &now
		if err := tx.BloodRequest.Update(ctx, br); err != nil {
			return err
		}

		if !br.HasScheduledDonor() || br.DonorResponse != model.DonorResponseAccepted {
			return nil
		}
		donationDate := now
		if br.ScheduledDate != nil {
			donationDate = *br.ScheduledDate
		}
		return s.leaderboard.TrackDonation(ctx, tx, DonationRecord{
			DonorID:   br.ScheduledDonorID,
			Name:      br.ScheduledDonor,
			Email:     br.ScheduledDonorEmail(),
			Phone:     br.ScheduledDonorPhone(),
			BloodType: br.BloodType,
			Date:      donationDate,
		})
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, err
		}
		s.logger.Error("标记申请完成失败", zap.String("request_id", id), zap.Error(err))
		return nil, err
	}

	resp := toBloodRequestResponse(br)
	return &resp, nil
}

// Cancel pending / scheduled → cancelled
func (s *bloodRequestService) Cancel(ctx context.Context, id string) (*dto.BloodRequestResponse, error) {
	br, err := s.getRequest(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if br.Status != model.RequestStatusPending && br.Status != model.RequestStatusScheduled {
		return nil, ErrRequestNotCancellable
	}

	br.Status = model.RequestStatusCancelled
	if err := s.repo.BloodRequest.Update(ctx, br); err != nil {
		s.logger.Error("取消用血申请失败", zap.String("request_id", id), zap.Error(err))
		return nil, err
	}

	resp := toBloodRequestResponse(br)
	return &resp, nil
}

func (s *bloodRequestService) Delete(ctx context.Context, id string) error {
	if err := s.repo.BloodRequest.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		s.logger.Error("删除用血申请失败", zap.String("request_id", id), zap.Error(err))
		return err
	}
	return nil
}

// Clear 清空全部用血申请
func (s *bloodRequestService) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.BloodRequest.DeleteAll(ctx)
	if err != nil {
		s.logger.Error("清空用血申请失败", zap.Error(err))
		return 0, err
	}
	s.logger.Info("已清空用血申请", zap.Int64("deleted", n))
	return n, nil
}

// ── 辅助函数 ──

func (s *bloodRequestService) getRequest(ctx context.Context, repo *repository.Repository, id string) (*model.BloodRequest, error) {
	br, err := repo.BloodRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询用血申请失败", zap.String("request_id", id), zap.Error(err))
		return nil, err
	}
	return br, nil
}

// bloodNeededML units 为 "custom" 时使用自定义血量，否则 units 即血量（ml）
func bloodNeededML(units string, customAmount int) (int, error) {
	if units == model.UnitsCustom {
		if customAmount <= 0 {
			return 0, ErrInvalidAmount
		}
		return customAmount, nil
	}
	n, err := strconv.Atoi(units)
	if err != nil || n <= 0 {
		return 0, ErrInvalidAmount
	}
	return n, nil
}
