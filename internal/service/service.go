package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"lifeblood/backend/config"
	"lifeblood/backend/internal/repository"
	pkgerrors "lifeblood/backend/pkg/errors"
	"lifeblood/backend/pkg/jwt"
)

// TokenBlacklist Token 黑名单（由 Redis 实现，可为 nil）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Donor        DonorService
	BloodRequest BloodRequestService
	Appointment  AppointmentService
	Notification NotificationService
	Leaderboard  LeaderboardService
	Stats        StatsService
	Export       ExportService
	Legacy       LegacyImportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	leaderboard := NewLeaderboardService(&cfg.Leaderboard, repo, logger)
	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Donor:        NewDonorService(cfg, repo, blacklist, logger),
		BloodRequest: NewBloodRequestService(cfg, repo, leaderboard, logger),
		Appointment:  NewAppointmentService(cfg, repo, leaderboard, logger),
		Notification: NewNotificationService(repo, logger),
		Leaderboard:  leaderboard,
		Stats:        NewStatsService(cfg, repo, logger),
		Export:       NewExportService(cfg, repo, logger),
		Legacy:       NewLegacyImportService(cfg, repo, logger),
	}
}

// revokeToken 将 Token 加入黑名单直至其自然过期
func revokeToken(ctx context.Context, blacklist TokenBlacklist, claims *jwt.Claims, logger *zap.Logger) {
	if blacklist == nil || claims == nil || claims.ExpiresAt == nil {
		return
	}
	if err := blacklist.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		logger.Warn("Token 加入黑名单失败", zap.String("jti", claims.ID), zap.Error(err))
	}
}

// today 取 now 所在时区的日历日期，归一化为 UTC 零点，与 date 类型字段比较
func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// loadLocation 加载配置时区，名称无效时回退 UTC
func loadLocation(tz string) *time.Location {
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc
	}
	return time.UTC
}

// zonedClock 以配置时区表示 clock 的当前时间，today 因此取该时区的日历日期
func zonedClock(clock func() time.Time, tz string) func() time.Time {
	loc := loadLocation(tz)
	return func() time.Time { return clock().In(loc) }
}

// parseDate 解析 YYYY-MM-DD
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// businessErrors 可预期的业务错误：直接返回给调用方，不记录 Error 日志
var businessErrors = []error{
	ErrRequestNotFound, ErrRequestNotPending, ErrRequestAlreadyFulfilled,
	ErrRequestCancelled, ErrRequestNotCancellable, ErrRequestNotAwaitingResponse,
	ErrAppointmentNotFound, ErrAppointmentNotPending, ErrAppointmentNotConfirmed,
	ErrNotificationNotFound, ErrNotificationNotPending, ErrInvalidResponseAction,
	pkgerrors.ErrOptimisticLock,
}

func isBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
