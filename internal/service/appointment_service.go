package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lifeblood/backend/config"
	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/model"
	"lifeblood/backend/internal/repository"
)

// ── 预约模块业务错误 ──

var (
	ErrAppointmentNotFound     = errors.New("预约不存在")
	ErrAppointmentNotPending   = errors.New("仅待确认的预约可以确认或拒绝")
	ErrAppointmentNotConfirmed = errors.New("仅已确认的预约可以标记完成")
	ErrAppointmentDateInPast   = errors.New("预约日期不能早于今天")
)

// AppointmentService 献血预约业务接口
type AppointmentService interface {
	// Schedule 献血者预约，创建时快照献血者信息
	Schedule(ctx context.Context, donorID string, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	ListMine(ctx context.Context, donorID string) ([]dto.AppointmentResponse, error)
	List(ctx context.Context, req *dto.ListAppointmentsRequest) ([]dto.AppointmentResponse, error)
	// Confirm pending → confirmed，同一事务内计入排行榜
	Confirm(ctx context.Context, id string) (*dto.AppointmentResponse, error)
	Reject(ctx context.Context, id string) (*dto.AppointmentResponse, error)
	// Complete confirmed → completed，不再重复计入排行榜
	Complete(ctx context.Context, id string) (*dto.AppointmentResponse, error)
	Delete(ctx context.Context, id string) error
	// ClearHistory 删除全部非 pending 预约
	ClearHistory(ctx context.Context) (int64, error)
}

type appointmentService struct {
	repo        *repository.Repository
	leaderboard LeaderboardService
	logger      *zap.Logger
	now         func() time.Time
}

// NewAppointmentService 创建 AppointmentService 实例
func NewAppointmentService(cfg *config.Config, repo *repository.Repository, leaderboard LeaderboardService, logger *zap.Logger) AppointmentService {
	return &appointmentService{
		repo:        repo,
		leaderboard: leaderboard,
		logger:      logger,
		now:         zonedClock(time.Now, cfg.Database.Timezone),
	}
}

func (s *appointmentService) Schedule(ctx context.Context, donorID string, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date", ErrInvalidField)
	}
	if date.Before(today(s.now())) {
		return nil, ErrAppointmentDateInPast
	}

	donor, err := s.repo.Donor.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		s.logger.Error("查询献血者失败", zap.String("donor_id", donorID), zap.Error(err))
		return nil, err
	}

	apt := &model.Appointment{
		DonorID:        donor.DonorID,
		DonorName:      donor.FullName(),
		DonorEmail:     donor.Email,
		DonorPhone:     donor.Phone,
		DonorBloodType: donor.BloodType,
		Date:           date,
		Time:           req.Time,
		AmountML:       req.AmountML,
		Status:         model.AppointmentStatusPending,
	}
	if err := s.repo.Appointment.Create(ctx, apt); err != nil {
		s.logger.Error("创建预约失败", zap.String("donor_id", donorID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("献血者已预约",
		zap.String("appointment_id", apt.AppointmentID),
		zap.String("donor_id", donorID),
		zap.String("date", req.Date),
	)

	resp := toAppointmentResponse(apt)
	return &resp, nil
}

func (s *appointmentService) ListMine(ctx context.Context, donorID string) ([]dto.AppointmentResponse, error) {
	list, err := s.repo.Appointment.ListByDonor(ctx, donorID)
	if err != nil {
		s.logger.Error("查询我的预约失败", zap.String("donor_id", donorID), zap.Error(err))
		return nil, err
	}
	return toAppointmentResponses(list), nil
}

func (s *appointmentService) List(ctx context.Context, req *dto.ListAppointmentsRequest) ([]dto.AppointmentResponse, error) {
	status := req.Status
	if status == "all" {
		status = ""
	}
	list, err := s.repo.Appointment.List(ctx, status)
	if err != nil {
		s.logger.Error("查询预约列表失败", zap.Error(err))
		return nil, err
	}
	return toAppointmentResponses(list), nil
}

func (s *appointmentService) Confirm(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	var apt *model.Appointment
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		apt, err = s.transition(ctx, tx, id, model.AppointmentStatusPending, model.AppointmentStatusConfirmed, ErrAppointmentNotPending)
		if err != nil {
			return err
		}
		donorID := apt.DonorID
		return s.leaderboard.TrackDonation(ctx, tx, DonationRecord{
			DonorID:   &donorID,
			Name:      apt.DonorName,
			Email:     apt.DonorEmail,
			Phone:     apt.DonorPhone,
			BloodType: apt.DonorBloodType,
			Date:      apt.Date,
		})
	})
	return s.result(apt, id, "确认预约失败", err)
}

func (s *appointmentService) Reject(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	apt, err := s.transition(ctx, s.repo, id, model.AppointmentStatusPending, model.AppointmentStatusRejected, ErrAppointmentNotPending)
	return s.result(apt, id, "拒绝预约失败", err)
}

func (s *appointmentService) Complete(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	apt, err := s.transition(ctx, s.repo, id, model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted, ErrAppointmentNotConfirmed)
	return s.result(apt, id, "完成预约失败", err)
}

func (s *appointmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Appointment.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAppointmentNotFound
		}
		s.logger.Error("删除预约失败", zap.String("appointment_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *appointmentService) ClearHistory(ctx context.Context) (int64, error) {
	n, err := s.repo.Appointment.DeleteNonPending(ctx)
	if err != nil {
		s.logger.Error("清空献血历史失败", zap.Error(err))
		return 0, err
	}
	s.logger.Info("已清空献血历史", zap.Int64("deleted", n))
	return n, nil
}

// ── 辅助函数 ──

// transition 校验当前状态为 from 后更新为 to
func (s *appointmentService) transition(ctx context.Context, repo *repository.Repository, id, from, to string, wrongState error) (*model.Appointment, error) {
	apt, err := repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	if apt.Status != from {
		return nil, wrongState
	}

	apt.Status = to
	if err := repo.Appointment.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *appointmentService) result(apt *model.Appointment, id, msg string, err error) (*dto.AppointmentResponse, error) {
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error(msg, zap.String("appointment_id", id), zap.Error(err))
		}
		return nil, err
	}
	resp := toAppointmentResponse(apt)
	return &resp, nil
}
