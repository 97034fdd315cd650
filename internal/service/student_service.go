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

// statsCachePattern matches every cached statistics payload. Roster and
// attendance mutations invalidate it so stale dashboard numbers never
// outlive their TTL.
const statsCachePattern = "stats:*"

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByQRCode(ctx context.Context, qrCode string) (*models.Student, error)
	ExistsByNIS(ctx context.Context, nis string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	HasAttendance(ctx context.Context, studentID string) (bool, error)
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	NIS       string     `json:"nis" validate:"required"`
	Name      string     `json:"name" validate:"required"`
	Class     string     `json:"class" validate:"required"`
	Gender    string     `json:"gender" validate:"required,oneof=L P"`
	BirthDate *time.Time `json:"birth_date"`
	Address   *string    `json:"address"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	NIS       string     `json:"nis" validate:"required"`
	Name      string     `json:"name" validate:"required"`
	Class     string     `json:"class" validate:"required"`
	Gender    string     `json:"gender" validate:"required,oneof=L P"`
	BirthDate *time.Time `json:"birth_date"`
	Address   *string    `json:"address"`
	Active    bool       `json:"is_active"`
}

// SearchByQRRequest carries a scan token lookup.
type SearchByQRRequest struct {
	QRCode string `json:"qrCode" validate:"required"`
}

// StudentService handles roster use-cases.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
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
	return students, pagination, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// FindByQRCode resolves a scan token to a student.
func (s *StudentService) FindByQRCode(ctx context.Context, req SearchByQRRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid qr payload")
	}
	student, err := s.repo.FindByQRCode(ctx, req.QRCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found for qr code")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve qr code")
	}
	return student, nil
}

// Create registers a new student. The scan token is derived from the NIS
// here and never regenerated afterwards.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	exists, err := s.repo.ExistsByNIS(ctx, req.NIS, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate nis")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "nis already used")
	}
	student := &models.Student{
		NIS:       req.NIS,
		Name:      req.Name,
		Class:     req.Class,
		Gender:    req.Gender,
		BirthDate: req.BirthDate,
		Address:   req.Address,
		QRCode:    models.QRCodeForNIS(req.NIS),
		Active:    true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.invalidateStats(ctx)
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	exists, err := s.repo.ExistsByNIS(ctx, req.NIS, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate nis")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "nis already used")
	}
	student.NIS = req.NIS
	student.Name = req.Name
	student.Class = req.Class
	student.Gender = req.Gender
	student.BirthDate = req.BirthDate
	student.Address = req.Address
	student.Active = req.Active
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.invalidateStats(ctx)
	return student, nil
}

// Delete removes a student permanently. Students with attendance history
// cannot be deleted; deactivate them instead.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	has, err := s.repo.HasAttendance(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check attendance history")
	}
	if has {
		return appErrors.Clone(appErrors.ErrConflict, "student has attendance history; deactivate instead")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.invalidateStats(ctx)
	return nil
}

// Deactivate marks a student inactive while keeping their history.
func (s *StudentService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}
	s.invalidateStats(ctx)
	return nil
}

func (s *StudentService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, statsCachePattern); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
