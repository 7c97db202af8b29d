package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lifeblood/backend/config"
	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/model"
	"lifeblood/backend/internal/repository"
	"lifeblood/backend/pkg/jwt"
)

// ── 献血者资料模块业务错误 ──

var (
	ErrDonorNotFound        = errors.New("献血者不存在")
	ErrCurrentPasswordWrong = errors.New("当前密码错误")
)

// DonorService 献血者资料业务接口
type DonorService interface {
	GetProfile(ctx context.Context, donorID string) (*dto.DonorProfileResponse, error)
	UpdateProfile(ctx context.Context, donorID string, req *dto.UpdateProfileRequest) (*dto.DonorProfileResponse, error)
	ChangePassword(ctx context.Context, donorID string, req *dto.ChangePasswordRequest) error
	// Deactivate 停用账号并注销当前 Token，再次登录即重新激活
	Deactivate(ctx context.Context, donorID string, claims *jwt.Claims) error
	DeleteAccount(ctx context.Context, donorID string, claims *jwt.Claims) error
}

type donorService struct {
	cfg       *config.Config
	repo      *repository.Repository
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewDonorService 创建 DonorService 实例
func NewDonorService(cfg *config.Config, repo *repository.Repository, blacklist TokenBlacklist, logger *zap.Logger) DonorService {
	return &donorService{cfg: cfg, repo: repo, blacklist: blacklist, logger: logger}
}

func (s *donorService) GetProfile(ctx context.Context, donorID string) (*dto.DonorProfileResponse, error) {
	donor, err := s.getDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	return toDonorProfile(donor), nil
}

func (s *donorService) UpdateProfile(ctx context.Context, donorID string, req *dto.UpdateProfileRequest) (*dto.DonorProfileResponse, error) {
	donor, err := s.getDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}

	// 邮箱、手机号变更时保持唯一
	if req.Email != donor.Email {
		if err := s.ensureUnused(ctx, s.repo.Donor.GetByEmail, req.Email, ErrEmailTaken); err != nil {
			return nil, err
		}
	}
	if req.Phone != donor.Phone {
		if err := s.ensureUnused(ctx, s.repo.Donor.GetByPhone, req.Phone, ErrPhoneTaken); err != nil {
			return nil, err
		}
	}

	donor.FirstName, donor.LastName = splitFullName(req.FullName)
	donor.Email = req.Email
	donor.Phone = req.Phone
	donor.Address = req.Address
	donor.BloodType = req.BloodType
	if req.DateOfBirth != "" {
		dob, _ := parseDate(req.DateOfBirth)
		donor.DateOfBirth = &dob
	}

	if err := s.repo.Donor.Update(ctx, donor); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateAccount
		}
		s.logger.Error("更新献血者资料失败", zap.String("donor_id", donorID), zap.Error(err))
		return nil, err
	}

	return toDonorProfile(donor), nil
}

func (s *donorService) ChangePassword(ctx context.Context, donorID string, req *dto.ChangePasswordRequest) error {
	if err := checkNewPassword(req.NewPassword, req.ConfirmPassword, s.cfg.Auth.PasswordMinLength); err != nil {
		return err
	}

	donor, err := s.getDonor(ctx, donorID)
	if err != nil {
		return err
	}
	if !checkPasswordHash(donor.PasswordHash, req.CurrentPassword) {
		return ErrCurrentPasswordWrong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return err
	}
	donor.PasswordHash = string(hash)

	if err := s.repo.Donor.Update(ctx, donor); err != nil {
		s.logger.Error("更新密码失败", zap.String("donor_id", donorID), zap.Error(err))
		return err
	}
	return nil
}

func (s *donorService) Deactivate(ctx context.Context, donorID string, claims *jwt.Claims) error {
	donor, err := s.getDonor(ctx, donorID)
	if err != nil {
		return err
	}

	donor.Status = model.DonorStatusInactive
	if err := s.repo.Donor.Update(ctx, donor); err != nil {
		s.logger.Error("停用献血者失败", zap.String("donor_id", donorID), zap.Error(err))
		return err
	}

	revokeToken(ctx, s.blacklist, claims, s.logger)
	s.logger.Info("献血者账号已停用", zap.String("donor_id", donorID))
	return nil
}

func (s *donorService) DeleteAccount(ctx context.Context, donorID string, claims *jwt.Claims) error {
	if _, err := s.getDonor(ctx, donorID); err != nil {
		return err
	}

	if err := s.repo.Donor.Delete(ctx, donorID); err != nil {
		s.logger.Error("删除献血者失败", zap.String("donor_id", donorID), zap.Error(err))
		return err
	}

	revokeToken(ctx, s.blacklist, claims, s.logger)
	s.logger.Info("献血者账号已删除", zap.String("donor_id", donorID))
	return nil
}

// ── 辅助函数 ──

func (s *donorService) getDonor(ctx context.Context, donorID string) (*model.Donor, error) {
	donor, err := s.repo.Donor.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		s.logger.Error("查询献血者失败", zap.String("donor_id", donorID), zap.Error(err))
		return nil, err
	}
	return donor, nil
}

func (s *donorService) ensureUnused(
	ctx context.Context,
	lookup func(context.Context, string) (*model.Donor, error),
	value string,
	taken error,
) error {
	if _, err := lookup(ctx, value); err == nil {
		return taken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("检查联系方式唯一性失败", zap.Error(err))
		return err
	}
	return nil
}

// splitFullName 第一个词为名，其余为姓
func splitFullName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
