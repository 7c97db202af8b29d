package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lifeblood/backend/config"
	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/model"
	"lifeblood/backend/internal/repository"
	"lifeblood/backend/pkg/jwt"
	"lifeblood/backend/pkg/validate"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials   = errors.New("账号或密码错误")
	ErrAccountNotFound      = errors.New("账号不存在")
	ErrEmailTaken           = errors.New("该邮箱已被注册")
	ErrPhoneTaken           = errors.New("该手机号已被注册")
	ErrDuplicateAccount     = errors.New("账号已存在")
	ErrMissingFields        = errors.New("请填写所有必填项")
	ErrInvalidField         = errors.New("字段格式不正确")
	ErrPasswordMismatch     = errors.New("两次输入的密码不一致")
	ErrPasswordTooShort     = errors.New("密码长度不足")
	ErrTermsNotAccepted     = errors.New("必须同意服务条款与隐私政策")
	ErrInvalidHospitalCode  = errors.New("医院代码无效，请联系管理员")
	ErrHospitalCodeTaken    = errors.New("该医院代码已注册")
	ErrStaffCapacityReached = errors.New("医院员工注册名额已满")
	ErrInvalidRefreshToken  = errors.New("refresh token 无效")
)

// AuthService 认证业务接口
type AuthService interface {
	// RegisterDonor 献血者注册，注册后需重新登录
	RegisterDonor(ctx context.Context, req *dto.RegisterDonorRequest) (*dto.RegisterResponse, error)
	// RegisterStaff 医院员工注册，成功后直接登录
	RegisterStaff(ctx context.Context, req *dto.RegisterStaffRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	GetSession(ctx context.Context, session model.Session) (*dto.AccountResponse, error)
	ForgotPassword(ctx context.Context, email string) (*dto.ForgotPasswordResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ═══════════════════════════════════════════════════════════
// RegisterDonor
// ═══════════════════════════════════════════════════════════
//
// 校验顺序：
//  1. 邮箱已注册 → 直接拒绝（不论其他字段是否合法）
//  2. 必填项 / 格式
//  3. 两次密码一致、密码长度、同意条款
//  4. 手机号已注册

func (s *authService) RegisterDonor(ctx context.Context, req *dto.RegisterDonorRequest) (*dto.RegisterResponse, error) {
	if req.Email != "" {
		if _, err := s.repo.Donor.GetByEmail(ctx, req.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询献血者邮箱失败", zap.Error(err))
			return nil, err
		}
	}

	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if err := s.checkPassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}
	if !req.AgreeTerms {
		return nil, ErrTermsNotAccepted
	}

	if _, err := s.repo.Donor.GetByPhone(ctx, req.Phone); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询献血者手机号失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}

	dob, _ := parseDate(req.DateOfBirth) // 格式已由 validate 保证
	donor := &model.Donor{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		DateOfBirth:  &dob,
		Status:       model.DonorStatusActive,
	}
	if err := s.repo.Donor.Create(ctx, donor); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateAccount
		}
		s.logger.Error("创建献血者失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("献血者注册成功", zap.String("donor_id", donor.DonorID))

	return &dto.RegisterResponse{
		ID:    donor.DonorID,
		Name:  donor.FullName(),
		Email: donor.Email,
	}, nil
}

// ═══════════════════════════════════════════════════════════
// RegisterStaff
// ═══════════════════════════════════════════════════════════
//
// 名额检查与插入在同一事务内完成，并通过 LockRegistration 串行化并发注册；
// hospital_code 唯一索引作为最后防线

func (s *authService) RegisterStaff(ctx context.Context, req *dto.RegisterStaffRequest) (*dto.TokenResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if !s.cfg.Hospital.IsValidCode(req.HospitalCode) {
		return nil, ErrInvalidHospitalCode
	}
	// 先于密码与条款校验报告代码占用与名额已满；事务内加锁后再复查
	if err := s.checkStaffSlot(ctx, s.repo, req.HospitalCode); err != nil {
		if !errors.Is(err, ErrHospitalCodeTaken) && !errors.Is(err, ErrStaffCapacityReached) {
			s.logger.Error("检查医院员工名额失败", zap.Error(err))
		}
		return nil, err
	}
	if err := s.checkPassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}
	if !req.AgreeTerms {
		return nil, ErrTermsNotAccepted
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}

	staff := &model.HospitalStaff{
		HospitalCode: req.HospitalCode,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Staff.LockRegistration(ctx); err != nil {
			return err
		}
		if err := s.checkStaffSlot(ctx, tx, req.HospitalCode); err != nil {
			return err
		}
		return tx.Staff.Create(ctx, staff)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrHospitalCodeTaken), errors.Is(err, ErrStaffCapacityReached):
			return nil, err
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrHospitalCodeTaken
		}
		s.logger.Error("创建医院员工失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("医院员工注册成功",
		zap.String("staff_id", staff.StaffID),
		zap.String("hospital_code", staff.HospitalCode),
	)

	return s.issueTokens(staff.StaffID, model.AccountTypeStaff, staff.HospitalCode, false, toStaffAccount(staff))
}

// checkStaffSlot 医院代码未被注册且员工账号未达上限
func (s *authService) checkStaffSlot(ctx context.Context, repo *repository.Repository, code string) error {
	if _, err := repo.Staff.GetByHospitalCode(ctx, code); err == nil {
		return ErrHospitalCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	count, err := repo.Staff.Count(ctx)
	if err != nil {
		return err
	}
	if count >= int64(s.cfg.Hospital.MaxStaffAccounts) {
		return ErrStaffCapacityReached
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// Login
// ═══════════════════════════════════════════════════════════
//
// 先按邮箱/手机号匹配献血者，再按邮箱/手机号/医院代码匹配员工；
// 任何失败都返回同一个 ErrInvalidCredentials。停用的献血者登录即重新激活。

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	donor, err := s.repo.Donor.GetByContact(ctx, req.Identifier)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询献血者失败", zap.Error(err))
		return nil, err
	}
	if donor != nil && checkPasswordHash(donor.PasswordHash, req.Password) {
		if donor.Status == model.DonorStatusInactive {
			donor.Status = model.DonorStatusActive
			if err := s.repo.Donor.Update(ctx, donor); err != nil {
				s.logger.Error("重新激活献血者失败", zap.Error(err))
				return nil, err
			}
			s.logger.Info("献血者账号已重新激活", zap.String("donor_id", donor.DonorID))
		}
		return s.issueTokens(donor.DonorID, model.AccountTypeDonor, "", req.RememberMe, toDonorAccount(donor))
	}

	staff, err := s.repo.Staff.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询医院员工失败", zap.Error(err))
		return nil, err
	}
	if !checkPasswordHash(staff.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(staff.StaffID, model.AccountTypeStaff, staff.HospitalCode, req.RememberMe, toStaffAccount(staff))
}

// RefreshToken 使用 refresh token 换发新的 Token 对，旧 refresh token 作废
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("检查 Token 黑名单失败", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidRefreshToken
		}
	}

	account, err := s.GetSession(ctx, model.Session{
		AccountID:    claims.AccountID,
		AccountType:  claims.AccountType,
		HospitalCode: claims.HospitalCode,
	})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	revokeToken(ctx, s.blacklist, claims, s.logger)
	return s.issueTokens(claims.AccountID, claims.AccountType, claims.HospitalCode, claims.RememberMe, *account)
}

// Logout 当前 access token 加入黑名单
func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	revokeToken(ctx, s.blacklist, claims, s.logger)
	return nil
}

// GetSession 返回当前会话对应的账号信息
func (s *authService) GetSession(ctx context.Context, session model.Session) (*dto.AccountResponse, error) {
	switch session.AccountType {
	case model.AccountTypeDonor:
		donor, err := s.repo.Donor.GetByID(ctx, session.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAccountNotFound
			}
			s.logger.Error("查询献血者失败", zap.Error(err))
			return nil, err
		}
		account := toDonorAccount(donor)
		return &account, nil
	case model.AccountTypeStaff:
		staff, err := s.repo.Staff.GetByID(ctx, session.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAccountNotFound
			}
			s.logger.Error("查询医院员工失败", zap.Error(err))
			return nil, err
		}
		account := toStaffAccount(staff)
		return &account, nil
	default:
		return nil, ErrAccountNotFound
	}
}

// ForgotPassword 仅检查邮箱对应的账号是否存在，不发送邮件
func (s *authService) ForgotPassword(ctx context.Context, email string) (*dto.ForgotPasswordResponse, error) {
	if _, err := s.repo.Donor.GetByEmail(ctx, email); err == nil {
		return &dto.ForgotPasswordResponse{Exists: true, AccountType: model.AccountTypeDonor}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询献血者邮箱失败", zap.Error(err))
		return nil, err
	}

	if _, err := s.repo.Staff.GetByEmail(ctx, email); err == nil {
		return &dto.ForgotPasswordResponse{Exists: true, AccountType: model.AccountTypeStaff}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询医院员工邮箱失败", zap.Error(err))
		return nil, err
	}

	return &dto.ForgotPasswordResponse{Exists: false}, nil
}

// ── 辅助函数 ──

func (s *authService) issueTokens(accountID, accountType, hospitalCode string, rememberMe bool, account dto.AccountResponse) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(accountID, accountType, hospitalCode)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(accountID, accountType, hospitalCode, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Account:      account,
	}, nil
}

func (s *authService) checkPassword(password, confirm string) error {
	return checkNewPassword(password, confirm, s.cfg.Auth.PasswordMinLength)
}

// checkNewPassword 两次密码一致且长度不小于 minLen
func checkNewPassword(password, confirm string, minLen int) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if utf8.RuneCountInString(password) < minLen {
		return ErrPasswordTooShort
	}
	return nil
}

func checkPasswordHash(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validationError 将校验失败转换为业务错误：缺失字段 → ErrMissingFields，其余 → ErrInvalidField
func validationError(err error) error {
	field, tag := validate.FirstFailure(err)
	if tag == "required" {
		return ErrMissingFields
	}
	if field == "" {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	return fmt.Errorf("%w: %s", ErrInvalidField, field)
}
