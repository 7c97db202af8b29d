package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/service"
	"lifeblood/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// RegisterDonor 献血者注册
// POST /api/v1/auth/register/donor
func (h *AuthHandler) RegisterDonor(c *gin.Context) {
	var req dto.RegisterDonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.RegisterDonor(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// RegisterStaff 医院员工注册（成功即登录）
// POST /api/v1/auth/register/staff
func (h *AuthHandler) RegisterStaff(c *gin.Context) {
	var req dto.RegisterStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.RegisterStaff(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// Login 登录：标识可以是邮箱、手机号或医院代码
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 登出：当前 Access Token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := MustGetSession(c); !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), GetClaims(c)); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Me 当前会话账号
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := MustGetSession(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GetSession(c.Request.Context(), session)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// ForgotPassword 按邮箱查询账号是否存在
// POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "账号或密码错误")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11002, "该邮箱已被注册")
	case errors.Is(err, service.ErrPhoneTaken):
		response.Conflict(c, 11003, "该手机号已被注册")
	case errors.Is(err, service.ErrDuplicateAccount):
		response.Conflict(c, 11004, "账号已存在")
	case errors.Is(err, service.ErrMissingFields):
		response.BadRequest(c, 11005, "请填写所有必填项")
	case errors.Is(err, service.ErrInvalidField):
		response.ErrorWithDetails(c, http.StatusBadRequest, 11006, "字段格式不正确", err.Error())
	case errors.Is(err, service.ErrPasswordMismatch):
		response.BadRequest(c, 11007, "两次输入的密码不一致")
	case errors.Is(err, service.ErrPasswordTooShort):
		response.BadRequest(c, 11008, "密码长度不足")
	case errors.Is(err, service.ErrTermsNotAccepted):
		response.BadRequest(c, 11009, "必须同意服务条款与隐私政策")
	case errors.Is(err, service.ErrInvalidHospitalCode):
		response.BadRequest(c, 11010, "医院代码无效，请联系管理员")
	case errors.Is(err, service.ErrHospitalCodeTaken):
		response.Conflict(c, 11011, "该医院代码已注册")
	case errors.Is(err, service.ErrStaffCapacityReached):
		response.Conflict(c, 11012, "医院员工注册名额已满")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Unauthorized(c, 11013, "refresh token 无效或已过期")
	case errors.Is(err, service.ErrAccountNotFound):
		response.NotFound(c, 11014, "账号不存在")
	default:
		response.InternalError(c)
	}
}
