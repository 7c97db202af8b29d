package handler

import (
	"github.com/gin-gonic/gin"

	"lifeblood/backend/internal/service"
	"lifeblood/backend/pkg/response"
)

// StatsHandler 员工统计 HTTP 处理器
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Dashboard 员工首页统计
// GET /api/v1/stats/dashboard
func (h *StatsHandler) Dashboard(c *gin.Context) {
	result, err := h.statsSvc.Dashboard(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Requests 用血申请统计
// GET /api/v1/stats/requests
func (h *StatsHandler) Requests(c *gin.Context) {
	result, err := h.statsSvc.Requests(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
