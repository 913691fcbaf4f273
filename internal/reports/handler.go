package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/morpheus-mall/mall-backend/middleware"
)

type Handler struct {
	service ReportService
}

func NewHandler(service ReportService) *Handler {
	return &Handler{service: service}
}

func sendFile(c *gin.Context, data []byte, fname, mime string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fname))
	c.Data(http.StatusOK, mime, data)
}

// EventsReport godoc
// @Summary Event participation report
// @Description Without format the rows are returned as JSON. With format=csv|excel|pdf a file is downloaded.
// @Tags Reports
// @Produce json
// @Param format query string false "csv, excel or pdf"
// @Param designer_id query int false "designer id"
// @Param boutique_id query int false "boutique id"
// @Param only_with_registrations query bool false "only events with registrations"
// @Param only_active query bool false "only events running today"
// @Success 200 {object} ReportData
// @Security BearerAuth
// @Router /api/v1/reports/events [get]
func (h *Handler) EventsReport(c *gin.Context) {
	var req EventsReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	if !validFormat(req.Format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format: " + req.Format})
		return
	}

	if req.Format == "" {
		data, err := h.service.GetEventsReport(c.Request.Context(), req)
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("events report failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
			return
		}
		c.JSON(http.StatusOK, data)
		return
	}

	userID := c.GetUint("user_id")
	out, fname, mime, err := h.service.ExportEventsReport(c.Request.Context(), req, &userID, middleware.GetIPFromContext(c))
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("events report export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report"})
		return
	}
	sendFile(c, out, fname, mime)
}

// AuditLogsReport godoc
// @Summary Audit log report (admin only)
// @Tags Reports
// @Produce json
// @Param format query string false "csv, excel or pdf"
// @Param date_range query string false "daily, weekly, monthly, yearly or custom"
// @Param start_date query string false "YYYY-MM-DD, custom range"
// @Param end_date query string false "YYYY-MM-DD, custom range"
// @Param action query string false "action"
// @Param status query string false "success or failure"
// @Success 200 {object} ReportData
// @Security BearerAuth
// @Router /api/v1/reports/audit-logs [get]
func (h *Handler) AuditLogsReport(c *gin.Context) {
	var req AuditLogReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	if !validFormat(req.Format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format: " + req.Format})
		return
	}
	if req.DateRange == DateRangeCustom {
		if _, _, err := GetDateRange(time.Now(), req.DateRange, req.StartDate, req.EndDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if req.Format == "" {
		data, err := h.service.GetAuditLogsReport(c.Request.Context(), req)
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("audit log report failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
			return
		}
		c.JSON(http.StatusOK, data)
		return
	}

	userID := c.GetUint("user_id")
	out, fname, mime, err := h.service.ExportAuditLogsReport(c.Request.Context(), req, &userID, middleware.GetIPFromContext(c))
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("audit log report export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report"})
		return
	}
	sendFile(c, out, fname, mime)
}

func validFormat(f string) bool {
	switch f {
	case "", FormatCSV, FormatExcel, FormatPDF:
		return true
	}
	return false
}
