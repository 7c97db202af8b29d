package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/service"
	pkgerrors "lifeblood/backend/pkg/errors"
	"lifeblood/backend/pkg/response"
)

// DonorHandler 献血者资料 HTTP 处理器
type DonorHandler struct {
	donorSvc service.DonorService
}

// NewDonorHandler 创建 DonorHandler
func NewDonorHandler(donorSvc service.DonorService) *DonorHandler {
	return &DonorHandler{donorSvc: donorSvc}
}

// GetProfile 获取个人资料
// GET /api/v1/donors/me
func (h *DonorHandler) GetProfile(c *gin.Context) {
	donorID, ok := MustGetDonorID(c)
	if !ok {
		return
	}

	result, err := h.donorSvc.GetProfile(c.Request.Context(), donorID)
	if err != nil {
		h.handleDonorError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateProfile 更新个人资料
// PUT /api/v1/donors/me
func (h *DonorHandler) UpdateProfile(c *gin.Context) {
	donorID, ok := MustGetDonorID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.donorSvc.UpdateProfile(c.Request.Context(), donorID, &req)
	if err != nil {
		h.handleDonorError(c, err)
		return
	}

	response.OK(c, result)
}

// ChangePassword 修改密码
// PUT /api/v1/donors/me/password
func (h *DonorHandler) ChangePassword(c *gin.Context) {
	donorID, ok := MustGetDonorID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.donorSvc.ChangePassword(c.Request.Context(), donorID, &req); err != nil {
		h.handleDonorError(c, err)
		return
	}

	response.OK(c, nil)
}

// Deactivate 停用账号
// POST /api/v1/donors/me/deactivate
func (h *DonorHandler) Deactivate(c *gin.Context) {
	donorID, ok := MustGetDonorID(c)
	if !ok {
		return
	}

	if err := h.donorSvc.Deactivate(c.Request.Context(), donorID, GetClaims(c)); err != nil {
		h.handleDonorError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteAccount 删除账号
// DELETE /api/v1/donors/me
func (h *DonorHandler) DeleteAccount(c *gin.Context) {
	donorID, ok := MustGetDonorID(c)
	if !ok {
		return
	}

	if err := h.donorSvc.DeleteAccount(c.Request.Context(), donorID, GetClaims(c)); err != nil {
		h.handleDonorError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *DonorHandler) handleDonorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDonorNotFound):
		response.NotFound(c, 12001, "献血者不存在")
	case errors.Is(err, service.ErrCurrentPasswordWrong):
		response.BadRequest(c, 12002, "当前密码错误")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11002, "该邮箱已被注册")
	case errors.Is(err, service.ErrPhoneTaken):
		response.Conflict(c, 11003, "该手机号已被注册")
	case errors.Is(err, service.ErrDuplicateAccount):
		response.Conflict(c, 11004, "账号已存在")
	case errors.Is(err, service.ErrPasswordMismatch):
		response.BadRequest(c, 11007, "两次输入的密码不一致")
	case errors.Is(err, service.ErrPasswordTooShort):
		response.BadRequest(c, 11008, "密码长度不足")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
