package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-qr-api/internal/middleware"
	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
	"github.com/noah-isme/absensi-qr-api/pkg/response"
)

type dailyStatsService interface {
	DailyStats(ctx context.Context, date time.Time) (*models.DashboardStats, bool, error)
}

type systemMetricsProvider interface {
	Snapshot() models.SystemMetrics
}

// DashboardHandler serves aggregate statistics endpoints.
type DashboardHandler struct {
	stats   dailyStatsService
	metrics systemMetricsProvider
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(stats dailyStatsService, metrics systemMetricsProvider) *DashboardHandler {
	return &DashboardHandler{stats: stats, metrics: metrics}
}

// Stats godoc
// @Summary Daily dashboard statistics
// @Tags Stats
// @Produce json
// @Param date query string false "Day to summarise (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /stats/dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	var date time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	stats, cacheHit, err := h.stats.DailyStats(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// System godoc
// @Summary Runtime metrics snapshot
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/system [get]
func (h *DashboardHandler) System(c *gin.Context) {
	if h.metrics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
