package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/service"
	"lifeblood/backend/pkg/response"
)

// LeaderboardHandler 献血排行榜 HTTP 处理器（公开）
type LeaderboardHandler struct {
	leaderboardSvc service.LeaderboardService
}

// NewLeaderboardHandler 创建 LeaderboardHandler
func NewLeaderboardHandler(leaderboardSvc service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardSvc: leaderboardSvc}
}

// TopDonors 排行榜前 N 名
// GET /api/v1/leaderboard?limit=5
func (h *LeaderboardHandler) TopDonors(c *gin.Context) {
	var req dto.TopDonorsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.leaderboardSvc.TopDonors(c.Request.Context(), req.Limit)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Featured 本期之星（排名第一）
// GET /api/v1/leaderboard/featured
func (h *LeaderboardHandler) Featured(c *gin.Context) {
	result, err := h.leaderboardSvc.FeaturedDonor(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrLeaderboardEmpty) {
			response.NotFound(c, 17001, "暂无献血记录")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
