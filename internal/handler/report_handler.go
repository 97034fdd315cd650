package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
	"github.com/noah-isme/absensi-qr-api/pkg/response"
)

type attendanceReportService interface {
	AttendanceReport(ctx context.Context, from, to time.Time, class string) ([]models.AttendanceReportRow, error)
}

type attendanceExportService interface {
	AttendanceCSV(ctx context.Context, filter models.AttendanceFilter) ([]byte, error)
	AttendanceReportPDF(ctx context.Context, from, to time.Time, class string) ([]byte, error)
}

// ReportHandler serves ranged attendance reports and file exports.
type ReportHandler struct {
	stats  attendanceReportService
	export attendanceExportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(stats attendanceReportService, export attendanceExportService) *ReportHandler {
	return &ReportHandler{stats: stats, export: export}
}

func parseReportRange(c *gin.Context) (time.Time, time.Time, error) {
	var from, to time.Time
	if raw := c.Query("startDate"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := c.Query("endDate"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
		}
		to = parsed
	}
	return from, to, nil
}

// Attendance godoc
// @Summary Per-student attendance report over a date range
// @Tags Reports
// @Produce json
// @Param startDate query string false "Range start (YYYY-MM-DD), open when omitted"
// @Param endDate query string false "Range end (YYYY-MM-DD), open when omitted"
// @Param class query string false "Restrict to one class"
// @Success 200 {object} response.Envelope
// @Router /reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	from, to, err := parseReportRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.stats.AttendanceReport(c.Request.Context(), from, to, c.Query("class"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportCSV godoc
// @Summary Export attendance records as CSV
// @Tags Reports
// @Produce text/csv
// @Param startDate query string false "Range start (YYYY-MM-DD)"
// @Param endDate query string false "Range end (YYYY-MM-DD)"
// @Param date query string false "Single day (YYYY-MM-DD)"
// @Param class query string false "Filter by class"
// @Param status query string false "Attendance status"
// @Success 200 {file} file
// @Router /export/attendance-csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	filter, err := parseAttendanceFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.export.AttendanceCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("absensi_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// ExportPDF godoc
// @Summary Export the attendance report as PDF
// @Tags Reports
// @Produce application/pdf
// @Param startDate query string false "Range start (YYYY-MM-DD), open when omitted"
// @Param endDate query string false "Range end (YYYY-MM-DD), open when omitted"
// @Param class query string false "Restrict to one class"
// @Success 200 {file} file
// @Router /export/attendance-pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	from, to, err := parseReportRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.export.AttendanceReportPDF(c.Request.Context(), from, to, c.Query("class"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("laporan_kehadiran_%s.pdf", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}
