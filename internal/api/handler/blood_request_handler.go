package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/service"
	pkgerrors "lifeblood/backend/pkg/errors"
	"lifeblood/backend/pkg/response"
)

// BloodRequestHandler 用血申请 HTTP 处理器
type BloodRequestHandler struct {
	requestSvc service.BloodRequestService
}

// NewBloodRequestHandler 创建 BloodRequestHandler
func NewBloodRequestHandler(requestSvc service.BloodRequestService) *BloodRequestHandler {
	return &BloodRequestHandler{requestSvc: requestSvc}
}

// Create 提交用血申请（无需登录）
// POST /api/v1/blood-requests
func (h *BloodRequestHandler) Create(c *gin.Context) {
	var req dto.CreateBloodRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.Created(c, result)
}

// List 用血申请列表，支持状态筛选
// GET /api/v1/blood-requests?status=pending&page=1&page_size=20
func (h *BloodRequestHandler) List(c *gin.Context) {
	var req dto.ListBloodRequestsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.requestSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 用血申请详情
// GET /api/v1/blood-requests/:id
func (h *BloodRequestHandler) Get(c *gin.Context) {
	result, err := h.requestSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// ScheduleDonor 排定献血者
// POST /api/v1/blood-requests/:id/schedule
func (h *BloodRequestHandler) ScheduleDonor(c *gin.Context) {
	var req dto.ScheduleDonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.ScheduleDonor(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// MarkFulfilled 标记完成
// POST /api/v1/blood-requests/:id/fulfill
func (h *BloodRequestHandler) MarkFulfilled(c *gin.Context) {
	result, err := h.requestSvc.MarkFulfilled(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// Cancel 取消申请
// POST /api/v1/blood-requests/:id/cancel
func (h *BloodRequestHandler) Cancel(c *gin.Context) {
	result, err := h.requestSvc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除申请
// DELETE /api/v1/blood-requests/:id
func (h *BloodRequestHandler) Delete(c *gin.Context) {
	if err := h.requestSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, nil)
}

// Clear 清空全部申请
// DELETE /api/v1/blood-requests
func (h *BloodRequestHandler) Clear(c *gin.Context) {
	deleted, err := h.requestSvc.Clear(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, dto.DeletedCountResponse{Deleted: deleted})
}

func (h *BloodRequestHandler) handleRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 13002, "用血申请不存在")
	case errors.Is(err, service.ErrUrgencyRequired):
		response.BadRequest(c, 13003, "请选择紧急程度")
	case errors.Is(err, service.ErrInvalidUrgency):
		response.BadRequest(c, 13004, "紧急程度无效")
	case errors.Is(err, service.ErrInvalidAmount):
		response.BadRequest(c, 13005, "用血量无效")
	case errors.Is(err, service.ErrRequiredDateInPast):
		response.BadRequest(c, 13006, "需要日期不能早于今天")
	case errors.Is(err, service.ErrRequestNotPending):
		response.Conflict(c, 13007, "仅待处理的申请可以排班")
	case errors.Is(err, service.ErrRequestAlreadyFulfilled):
		response.Conflict(c, 13008, "该申请已完成")
	case errors.Is(err, service.ErrRequestCancelled):
		response.Conflict(c, 13009, "该申请已取消")
	case errors.Is(err, service.ErrRequestNotCancellable):
		response.Conflict(c, 13010, "当前状态的申请无法取消")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
