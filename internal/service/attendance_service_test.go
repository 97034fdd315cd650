package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type fakeAttendanceRepo struct {
	records map[string]*models.AttendanceWithStudent
	created *models.AttendanceRecord
	updated *models.AttendanceRecord
}

func (f *fakeAttendanceRepo) List(context.Context, models.AttendanceFilter) ([]models.AttendanceWithStudent, int, error) {
	result := make([]models.AttendanceWithStudent, 0, len(f.records))
	for _, r := range f.records {
		result = append(result, *r)
	}
	return result, len(result), nil
}

func (f *fakeAttendanceRepo) FindByID(_ context.Context, id string) (*models.AttendanceWithStudent, error) {
	if r, ok := f.records[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAttendanceRepo) Create(_ context.Context, record *models.AttendanceRecord) error {
	record.ID = "att-new"
	f.created = record
	return nil
}

func (f *fakeAttendanceRepo) Update(_ context.Context, record *models.AttendanceRecord) error {
	f.updated = record
	return nil
}

type fakeStudentFinder struct {
	students map[string]*models.Student
}

func (f *fakeStudentFinder) FindByID(_ context.Context, id string) (*models.Student, error) {
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func TestAttendanceServiceRecordAssignsServerTime(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	finder := &fakeStudentFinder{students: map[string]*models.Student{"stu-1": {ID: "stu-1"}}}
	svc := NewAttendanceService(repo, finder, nil, nil, zap.NewNop())

	now := time.Date(2024, 11, 10, 7, 15, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	record, err := svc.Record(context.Background(), RecordAttendanceRequest{
		StudentID: "stu-1",
		Status:    "present",
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, now, record.Date)
	assert.Equal(t, now, record.Time)
	require.NotNil(t, record.RecordedBy)
	assert.Equal(t, "user-1", *record.RecordedBy)
	assert.Equal(t, models.StatusPresent, record.Status)
}

func TestAttendanceServiceRecordUnknownStudent(t *testing.T) {
	svc := NewAttendanceService(&fakeAttendanceRepo{}, &fakeStudentFinder{}, nil, nil, zap.NewNop())

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		StudentID: "missing",
		Status:    "present",
	}, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceRecordInvalidStatus(t *testing.T) {
	svc := NewAttendanceService(&fakeAttendanceRepo{}, &fakeStudentFinder{}, nil, nil, zap.NewNop())

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		StudentID: "stu-1",
		Status:    "attending",
	}, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceUpdatePartial(t *testing.T) {
	notes := "izin dokter"
	repo := &fakeAttendanceRepo{records: map[string]*models.AttendanceWithStudent{
		"att-1": {AttendanceRecord: models.AttendanceRecord{ID: "att-1", Status: models.StatusPresent, Notes: &notes}},
	}}
	svc := NewAttendanceService(repo, &fakeStudentFinder{}, nil, nil, zap.NewNop())

	status := "sick"
	record, err := svc.Update(context.Background(), "att-1", UpdateAttendanceRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSick, record.Status)
	require.NotNil(t, record.Notes)
	assert.Equal(t, "izin dokter", *record.Notes)
}

func TestAttendanceServiceUpdateNotFound(t *testing.T) {
	svc := NewAttendanceService(&fakeAttendanceRepo{}, &fakeStudentFinder{}, nil, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), "missing", UpdateAttendanceRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceRecordInvalidatesStatsCache(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, 0, zap.NewNop(), true)
	finder := &fakeStudentFinder{students: map[string]*models.Student{"stu-1": {ID: "stu-1"}}}
	svc := NewAttendanceService(&fakeAttendanceRepo{}, finder, cacheSvc, nil, zap.NewNop())

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{StudentID: "stu-1", Status: "late"}, "")
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.deleted, "stats:*")
}

func TestAttendanceServiceListRejectsUnknownStatus(t *testing.T) {
	svc := NewAttendanceService(&fakeAttendanceRepo{}, &fakeStudentFinder{}, nil, nil, zap.NewNop())

	bad := models.AttendanceStatus("attending")
	_, _, err := svc.List(context.Background(), models.AttendanceFilter{Status: &bad})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
