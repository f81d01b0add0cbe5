package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sri5hat/aptdetection/internal/domain"
	"github.com/sri5hat/aptdetection/internal/report"
)

// ReportHandler generates incident reports for triaged alerts.
type ReportHandler struct {
	builder *report.Builder
}

// NewReportHandler creates the report handler.
func NewReportHandler(b *report.Builder) *ReportHandler {
	return &ReportHandler{builder: b}
}

type reportRequest struct {
	Alert domain.Alert `json:"alert" binding:"required"`
}

// Handle implements POST /api/reports.
func (h *ReportHandler) Handle(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Alert.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid report request."})
		return
	}

	out := h.builder.Build(c.Request.Context(), &req.Alert)
	c.JSON(http.StatusOK, out)
}
