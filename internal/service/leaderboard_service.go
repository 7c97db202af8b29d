package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lifeblood/backend/config"
	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/model"
	"lifeblood/backend/internal/repository"
)

// ── 排行榜模块业务错误 ──

var ErrLeaderboardEmpty = errors.New("暂无献血记录")

const (
	anonymousDonorName = "Anonymous Donor"
	unknownBloodType   = "Unknown"
)

// DonationRecord 一次完成的献血，用于累计排行榜
type DonationRecord struct {
	DonorID   *string
	Name      string
	Email     string
	Phone     string
	BloodType string
	Date      time.Time
}

// LeaderboardService 献血排行榜业务接口
type LeaderboardService interface {
	// TrackDonation 累计一次献血；tx 为调用方事务内的 Repository
	TrackDonation(ctx context.Context, tx *repository.Repository, rec DonationRecord) error
	TopDonors(ctx context.Context, limit int) ([]dto.TopDonorResponse, error)
	FeaturedDonor(ctx context.Context) (*dto.TopDonorResponse, error)
}

type leaderboardService struct {
	cfg    *config.LeaderboardConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLeaderboardService 创建 LeaderboardService 实例
func NewLeaderboardService(cfg *config.LeaderboardConfig, repo *repository.Repository, logger *zap.Logger) LeaderboardService {
	return &leaderboardService{cfg: cfg, repo: repo, logger: logger}
}

// TrackDonation 按非空邮箱或非空手机号匹配已有条目：命中则次数 +1，否则新增；
// 随后只保留排名前 capacity 的条目
func (s *leaderboardService) TrackDonation(ctx context.Context, tx *repository.Repository, rec DonationRecord) error {
	date := today(rec.Date)

	entry, err := tx.TopDonor.FindByContact(ctx, rec.Email, rec.Phone)
	switch {
	case err == nil:
		entry.DonationCount++
		if entry.LastDonation == nil || !date.Before(*entry.LastDonation) {
			entry.LastDonation = &date
		}
		if entry.DonorID == nil {
			entry.DonorID = rec.DonorID
		}
		if err := tx.TopDonor.Update(ctx, entry); err != nil {
			s.logger.Error("更新排行榜条目失败", zap.Error(err))
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = &model.TopDonor{
			DonorID:       rec.DonorID,
			Name:          valueOr(rec.Name, anonymousDonorName),
			Email:         rec.Email,
			Phone:         rec.Phone,
			BloodType:     valueOr(rec.BloodType, unknownBloodType),
			DonationCount: 1,
			FirstDonation: &date,
			LastDonation:  &date,
		}
		if err := tx.TopDonor.Create(ctx, entry); err != nil {
			s.logger.Error("新增排行榜条目失败", zap.Error(err))
			return err
		}
	default:
		s.logger.Error("查询排行榜条目失败", zap.Error(err))
		return err
	}

	if _, err := tx.TopDonor.TrimTo(ctx, s.cfg.Capacity); err != nil {
		s.logger.Error("裁剪排行榜失败", zap.Error(err))
		return err
	}

	s.logger.Info("献血已计入排行榜",
		zap.String("name", entry.Name),
		zap.Int("donation_count", entry.DonationCount),
	)
	return nil
}

// TopDonors limit <= 0 时使用默认条数，超过容量时按容量截断
func (s *leaderboardService) TopDonors(ctx context.Context, limit int) ([]dto.TopDonorResponse, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.Capacity {
		limit = s.cfg.Capacity
	}

	list, err := s.repo.TopDonor.ListRanked(ctx, limit)
	if err != nil {
		s.logger.Error("查询排行榜失败", zap.Error(err))
		return nil, err
	}
	return toTopDonorResponses(list), nil
}

// FeaturedDonor 排名第一的献血者
func (s *leaderboardService) FeaturedDonor(ctx context.Context) (*dto.TopDonorResponse, error) {
	list, err := s.TopDonors(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrLeaderboardEmpty
	}
	return &list[0], nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
