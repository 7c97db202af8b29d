package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lifeblood/backend/internal/service"
	"lifeblood/backend/pkg/response"
)

const (
	contentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCalendar = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRequests 导出用血申请（Excel）
// GET /api/v1/export/blood-requests
func (h *ExportHandler) ExportRequests(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportRequests(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	response.Attachment(c, filename, contentTypeXLSX, buf.Bytes())
}

// DonorCalendar 导出我的献血日程（iCalendar）
// GET /api/v1/export/calendar
func (h *ExportHandler) DonorCalendar(c *gin.Context) {
	donorID, ok := MustGetDonorID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.DonorCalendar(c.Request.Context(), donorID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, filename, contentTypeCalendar, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoRequests):
		response.NotFound(c, 16101, "暂无用血申请")
	case errors.Is(err, service.ErrDonorNotFound):
		response.NotFound(c, 12001, "献血者不存在")
	default:
		response.InternalError(c)
	}
}
