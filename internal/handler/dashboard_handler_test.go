package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/absensi-qr-api/internal/models"
)

type fakeStatsSrv struct {
	stats    *models.DashboardStats
	hit      bool
	err      error
	lastDate time.Time
}

func (f *fakeStatsSrv) DailyStats(_ context.Context, date time.Time) (*models.DashboardStats, bool, error) {
	f.lastDate = date
	return f.stats, f.hit, f.err
}

type fakeMetricsSrv struct {
	snapshot models.SystemMetrics
}

func (f *fakeMetricsSrv) Snapshot() models.SystemMetrics {
	return f.snapshot
}

func TestDashboardHandlerStatsSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeStatsSrv{
		stats: &models.DashboardStats{TotalStudents: 30, PresentToday: 25},
		hit:   true,
	}
	handler := NewDashboardHandler(srv, &fakeMetricsSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/dashboard?date=2024-11-10", nil)

	handler.Stats(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-11-10", srv.lastDate.Format("2006-01-02"))
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(30), envelope.Data["total_students"])
}

func TestDashboardHandlerStatsDefaultsToToday(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeStatsSrv{stats: &models.DashboardStats{}}
	handler := NewDashboardHandler(srv, &fakeMetricsSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/dashboard", nil)

	handler.Stats(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.lastDate.IsZero())
}

func TestDashboardHandlerStatsInvalidDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeStatsSrv{}, &fakeMetricsSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/dashboard?date=10-11-2024", nil)

	handler.Stats(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandlerSystem(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeStatsSrv{}, &fakeMetricsSrv{
		snapshot: models.SystemMetrics{Goroutines: 12},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/system", nil)

	handler.System(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, float64(12), envelope.Data["goroutines"])
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
