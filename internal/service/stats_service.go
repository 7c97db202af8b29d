package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lifeblood/backend/config"
	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/repository"
)

// StatsService 员工端统计业务接口
type StatsService interface {
	// Dashboard 待确认预约、今日已确认、申请总数、活跃献血者
	Dashboard(ctx context.Context) (*dto.DashboardStatsResponse, error)
	// Requests 待处理、紧急（High 且待处理）、已排班、已完成
	Requests(ctx context.Context) (*dto.RequestStatsResponse, error)
}

type statsService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, logger: logger, now: zonedClock(time.Now, cfg.Database.Timezone)}
}

func (s *statsService) Dashboard(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	aptCounts, err := s.repo.Appointment.Counts(ctx, today(s.now()))
	if err != nil {
		s.logger.Error("统计预约失败", zap.Error(err))
		return nil, err
	}
	reqCounts, err := s.repo.BloodRequest.Counts(ctx)
	if err != nil {
		s.logger.Error("统计用血申请失败", zap.Error(err))
		return nil, err
	}

	return &dto.DashboardStatsResponse{
		PendingAppointments: aptCounts.Pending,
		ConfirmedToday:      aptCounts.ConfirmedToday,
		TotalRequests:       reqCounts.Total,
		ActiveDonors:        aptCounts.ActiveDonors,
	}, nil
}

func (s *statsService) Requests(ctx context.Context) (*dto.RequestStatsResponse, error) {
	counts, err := s.repo.BloodRequest.Counts(ctx)
	if err != nil {
		s.logger.Error("统计用血申请失败", zap.Error(err))
		return nil, err
	}

	return &dto.RequestStatsResponse{
		Pending:   counts.Pending,
		Urgent:    counts.Urgent,
		Scheduled: counts.Scheduled,
		Fulfilled: counts.Fulfilled,
	}, nil
}
