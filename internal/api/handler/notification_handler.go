package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/service"
	pkgerrors "lifeblood/backend/pkg/errors"
	"lifeblood/backend/pkg/response"
)

// NotificationHandler 排班通知 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// ListMine 我的通知
// GET /api/v1/notifications
func (h *NotificationHandler) ListMine(c *gin.Context) {
	donorID, ok := MustGetDonorID(c)
	if !ok {
		return
	}

	result, err := h.notificationSvc.ListMine(c.Request.Context(), donorID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, result)
}

// Respond 接受或拒绝排班
// POST /api/v1/notifications/:id/respond
func (h *NotificationHandler) Respond(c *gin.Context) {
	donorID, ok := MustGetDonorID(c)
	if !ok {
		return
	}

	var req dto.RespondNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15004, "响应操作无效")
		return
	}

	result, err := h.notificationSvc.Respond(c.Request.Context(), donorID, c.Param("id"), req.Action)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, result)
}

// MarkRead 标记已读
// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	donorID, ok := MustGetDonorID(c)
	if !ok {
		return
	}

	result, err := h.notificationSvc.MarkRead(c.Request.Context(), donorID, c.Param("id"))
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *NotificationHandler) handleNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotificationNotFound):
		response.NotFound(c, 15002, "通知不存在")
	case errors.Is(err, service.ErrNotificationNotPending):
		response.Conflict(c, 15003, "该通知已响应")
	case errors.Is(err, service.ErrInvalidResponseAction):
		response.BadRequest(c, 15004, "响应操作无效")
	case errors.Is(err, service.ErrRequestNotAwaitingResponse):
		response.Conflict(c, 15005, "对应的用血申请当前不等待献血者响应")
	case errors.Is(err, service.ErrDonorNotFound):
		response.NotFound(c, 12001, "献血者不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
