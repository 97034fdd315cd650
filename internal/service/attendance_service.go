package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceWithStudent, int, error)
	FindByID(ctx context.Context, id string) (*models.AttendanceWithStudent, error)
	Create(ctx context.Context, record *models.AttendanceRecord) error
	Update(ctx context.Context, record *models.AttendanceRecord) error
}

type attendanceStudentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// RecordAttendanceRequest holds payload for recording attendance.
type RecordAttendanceRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	Status    string  `json:"status" validate:"required,oneof=present late sick permission absent"`
	Notes     *string `json:"notes"`
}

// UpdateAttendanceRequest holds payload for correcting a record.
type UpdateAttendanceRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=present late sick permission absent"`
	Notes  *string `json:"notes"`
}

// AttendanceService handles attendance use-cases.
type AttendanceService struct {
	repo      attendanceRepository
	students  attendanceStudentFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, students attendanceStudentFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, students: students, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List returns attendance records and pagination metadata.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceWithStudent, *models.Pagination, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return records, pagination, nil
}

// Get returns a single attendance record.
func (s *AttendanceService) Get(ctx context.Context, id string) (*models.AttendanceWithStudent, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	return record, nil
}

// Record stores a new attendance event. Date, time and the recording user
// are assigned server-side; clients only choose student, status and notes.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest, recordedBy string) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	now := s.now().UTC()
	record := &models.AttendanceRecord{
		StudentID: req.StudentID,
		Date:      now,
		Time:      now,
		Status:    models.AttendanceStatus(req.Status),
		Notes:     req.Notes,
	}
	if recordedBy != "" {
		record.RecordedBy = &recordedBy
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.invalidateStats(ctx)
	return record, nil
}

// Update corrects status or notes of an existing record.
func (s *AttendanceService) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}

	record := existing.AttendanceRecord
	if req.Status != nil {
		record.Status = models.AttendanceStatus(*req.Status)
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	s.invalidateStats(ctx)
	return &record, nil
}

func (s *AttendanceService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, statsCachePattern); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
