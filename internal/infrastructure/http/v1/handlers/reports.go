package handlers

import (
	"github.com/gin-gonic/gin"

	"osiedle/internal/domain/reports"
)

// ReportHandler serves the join views and the summary report.
type ReportHandler struct {
	BaseHandler
	service *reports.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service *reports.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

// View handles GET /views/:name.
func (h *ReportHandler) View(c *gin.Context) {
	records, err := h.service.View(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, records)
}

// Summary handles GET /reports/summary.
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.service.BuildSummary(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}
