package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	"github.com/noah-isme/absensi-qr-api/internal/repository"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type statsAttendanceRepository interface {
	StatusCounts(ctx context.Context, from, to time.Time) ([]models.StatusCount, error)
	StatusCountsByStudent(ctx context.Context, from, to time.Time) ([]models.StudentStatusCount, error)
}

type statsStudentRepository interface {
	CountActive(ctx context.Context) (int, error)
	ListActive(ctx context.Context, class string) ([]models.Student, error)
}

// StatsServiceConfig tunes stats behaviour.
type StatsServiceConfig struct {
	CacheTTL time.Duration
}

// StatsService aggregates attendance records into dashboard statistics and
// ranged per-student reports.
type StatsService struct {
	attendance statsAttendanceRepository
	students   statsStudentRepository
	cache      *CacheService
	logger     *zap.Logger
	now        func() time.Time
	cfg        StatsServiceConfig
}

// NewStatsService constructs a StatsService.
func NewStatsService(attendance statsAttendanceRepository, students statsStudentRepository, cache *CacheService, logger *zap.Logger, cfg StatsServiceConfig) *StatsService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		attendance: attendance,
		students:   students,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
		cfg:        cfg,
	}
}

// DailyStats summarises a single day of attendance. A zero date means today.
// Totals come straight from recorded events: a student without a record that
// day is simply not counted anywhere. The boolean reports cache utilisation.
func (s *StatsService) DailyStats(ctx context.Context, date time.Time) (*models.DashboardStats, bool, error) {
	if date.IsZero() {
		date = s.now()
	}
	from := repository.DayStart(date)
	to := repository.DayEnd(date)

	cacheKey := fmt.Sprintf("stats:daily:%s", from.Format("2006-01-02"))
	if s.cache != nil {
		var cached models.DashboardStats
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			// Degrade to recompute; cache trouble must not break the dashboard.
			s.logger.Warn("stats cache read failed", zap.String("key", cacheKey), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	total, err := s.students.CountActive(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}

	counts, err := s.attendance.StatusCounts(ctx, from, to)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}

	stats := &models.DashboardStats{TotalStudents: total}
	for _, c := range counts {
		switch c.Status {
		case models.StatusPresent:
			stats.PresentToday = c.Count
		case models.StatusLate:
			stats.LateToday = c.Count
		case models.StatusAbsent:
			stats.AbsentToday = c.Count
		case models.StatusSick:
			stats.SickToday = c.Count
		case models.StatusPermission:
			stats.PermissionToday = c.Count
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return stats, false, nil
}

// AttendanceReport pivots recorded events per active student over the
// inclusive [from, to] range, optionally restricted to one class. A zero
// bound leaves that side of the range open; with both bounds omitted the
// report covers the full history. Every selected student yields a row,
// including all-zero ones, ordered by name.
func (s *StatsService) AttendanceReport(ctx context.Context, from, to time.Time, class string) ([]models.AttendanceReportRow, error) {
	var start, end time.Time
	if !from.IsZero() {
		start = repository.DayStart(from)
	}
	if !to.IsZero() {
		end = repository.DayEnd(to)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not precede startDate")
	}

	students, err := s.students.ListActive(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	counts, err := s.attendance.StatusCountsByStudent(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}

	pivot := make(map[string]map[models.AttendanceStatus]int, len(students))
	for _, c := range counts {
		byStatus, ok := pivot[c.StudentID]
		if !ok {
			byStatus = make(map[models.AttendanceStatus]int, len(models.AttendanceStatuses))
			pivot[c.StudentID] = byStatus
		}
		byStatus[c.Status] = c.Count
	}

	rows := make([]models.AttendanceReportRow, 0, len(students))
	for _, student := range students {
		byStatus := pivot[student.ID]
		row := models.AttendanceReportRow{
			Student:    student,
			Present:    byStatus[models.StatusPresent],
			Late:       byStatus[models.StatusLate],
			Sick:       byStatus[models.StatusSick],
			Permission: byStatus[models.StatusPermission],
			Absent:     byStatus[models.StatusAbsent],
		}
		row.TotalDays = row.Present + row.Late + row.Sick + row.Permission + row.Absent
		if row.TotalDays > 0 {
			row.Percentage = round1(float64(row.Present+row.Late) / float64(row.TotalDays) * 100)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
