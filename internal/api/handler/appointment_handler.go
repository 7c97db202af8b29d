package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/service"
	pkgerrors "lifeblood/backend/pkg/errors"
	"lifeblood/backend/pkg/response"
)

// AppointmentHandler 献血预约 HTTP 处理器
type AppointmentHandler struct {
	appointmentSvc service.AppointmentService
}

// NewAppointmentHandler 创建 AppointmentHandler
func NewAppointmentHandler(appointmentSvc service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentSvc: appointmentSvc}
}

// ── 献血者 ──

// Schedule 预约献血
// POST /api/v1/appointments
func (h *AppointmentHandler) Schedule(c *gin.Context) {
	donorID, ok := MustGetDonorID(c)
	if !ok {
		return
	}

	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.appointmentSvc.Schedule(c.Request.Context(), donorID, &req)
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}

	response.Created(c, result)
}

// ListMine 我的预约
// GET /api/v1/appointments/mine
func (h *AppointmentHandler) ListMine(c *gin.Context) {
	donorID, ok := MustGetDonorID(c)
	if !ok {
		return
	}

	result, err := h.appointmentSvc.ListMine(c.Request.Context(), donorID)
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}

	response.OK(c, result)
}

// ── 医院员工 ──

// List 预约列表，支持状态筛选
// GET /api/v1/appointments?status=pending
func (h *AppointmentHandler) List(c *gin.Context) {
	var req dto.ListAppointmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.appointmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Confirm 确认预约
// POST /api/v1/appointments/:id/confirm
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	result, err := h.appointmentSvc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}

	response.OK(c, result)
}

// Reject 拒绝预约
// POST /api/v1/appointments/:id/reject
func (h *AppointmentHandler) Reject(c *gin.Context) {
	result, err := h.appointmentSvc.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}

	response.OK(c, result)
}

// Complete 标记献血完成
// POST /api/v1/appointments/:id/complete
func (h *AppointmentHandler) Complete(c *gin.Context) {
	result, err := h.appointmentSvc.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除预约
// DELETE /api/v1/appointments/:id
func (h *AppointmentHandler) Delete(c *gin.Context) {
	if err := h.appointmentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleAppointmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ClearHistory 清除已处理的预约
// DELETE /api/v1/appointments/history
func (h *AppointmentHandler) ClearHistory(c *gin.Context) {
	deleted, err := h.appointmentSvc.ClearHistory(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, dto.DeletedCountResponse{Deleted: deleted})
}

func (h *AppointmentHandler) handleAppointmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAppointmentNotFound):
		response.NotFound(c, 14002, "预约不存在")
	case errors.Is(err, service.ErrAppointmentNotPending):
		response.Conflict(c, 14003, "仅待确认的预约可以确认或拒绝")
	case errors.Is(err, service.ErrAppointmentNotConfirmed):
		response.Conflict(c, 14004, "仅已确认的预约可以标记完成")
	case errors.Is(err, service.ErrAppointmentDateInPast):
		response.BadRequest(c, 14005, "预约日期不能早于今天")
	case errors.Is(err, service.ErrDonorNotFound):
		response.NotFound(c, 12001, "献血者不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
