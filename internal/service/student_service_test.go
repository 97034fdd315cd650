package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type fakeStudentRepo struct {
	students      map[string]*models.Student
	byQR          map[string]*models.Student
	existingNIS   map[string]bool
	hasAttendance bool

	created *models.Student
	deleted string
}

func (f *fakeStudentRepo) List(context.Context, models.StudentFilter) ([]models.Student, int, error) {
	result := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		result = append(result, *s)
	}
	return result, len(result), nil
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) FindByQRCode(_ context.Context, qrCode string) (*models.Student, error) {
	if s, ok := f.byQR[qrCode]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) ExistsByNIS(_ context.Context, nis string, _ string) (bool, error) {
	return f.existingNIS[nis], nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	student.ID = "stu-new"
	f.created = student
	return nil
}

func (f *fakeStudentRepo) Update(context.Context, *models.Student) error { return nil }

func (f *fakeStudentRepo) Deactivate(context.Context, string) error { return nil }

func (f *fakeStudentRepo) Delete(_ context.Context, id string) error {
	f.deleted = id
	return nil
}

func (f *fakeStudentRepo) HasAttendance(context.Context, string) (bool, error) {
	return f.hasAttendance, nil
}

func TestStudentServiceCreateDerivesQRCode(t *testing.T) {
	repo := &fakeStudentRepo{existingNIS: map[string]bool{}}
	svc := NewStudentService(repo, nil, nil, zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		NIS:    "2023001",
		Name:   "Ahmad Rizki",
		Class:  "XII RPL 1",
		Gender: "L",
	})
	require.NoError(t, err)
	assert.Equal(t, "STD_2023001", student.QRCode)
	assert.True(t, student.Active)
	require.NotNil(t, repo.created)
	assert.Equal(t, "STD_2023001", repo.created.QRCode)
}

func TestStudentServiceCreateDuplicateNIS(t *testing.T) {
	repo := &fakeStudentRepo{existingNIS: map[string]bool{"2023001": true}}
	svc := NewStudentService(repo, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		NIS:    "2023001",
		Name:   "Ahmad Rizki",
		Class:  "XII RPL 1",
		Gender: "L",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateInvalidGender(t *testing.T) {
	svc := NewStudentService(&fakeStudentRepo{}, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		NIS:    "2023001",
		Name:   "Ahmad Rizki",
		Class:  "XII RPL 1",
		Gender: "X",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceDeleteRestrictedByHistory(t *testing.T) {
	repo := &fakeStudentRepo{
		students:      map[string]*models.Student{"stu-1": {ID: "stu-1"}},
		hasAttendance: true,
	}
	svc := NewStudentService(repo, nil, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "stu-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestStudentServiceDeleteWithoutHistory(t *testing.T) {
	repo := &fakeStudentRepo{
		students: map[string]*models.Student{"stu-1": {ID: "stu-1"}},
	}
	svc := NewStudentService(repo, nil, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "stu-1"))
	assert.Equal(t, "stu-1", repo.deleted)
}

func TestStudentServiceFindByQRCode(t *testing.T) {
	repo := &fakeStudentRepo{byQR: map[string]*models.Student{
		"STD_2023001": {ID: "stu-1", NIS: "2023001", QRCode: "STD_2023001"},
	}}
	svc := NewStudentService(repo, nil, nil, zap.NewNop())

	student, err := svc.FindByQRCode(context.Background(), SearchByQRRequest{QRCode: "STD_2023001"})
	require.NoError(t, err)
	assert.Equal(t, "2023001", student.NIS)

	_, err = svc.FindByQRCode(context.Background(), SearchByQRRequest{QRCode: "STD_unknown"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceMutationsInvalidateStatsCache(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, 0, zap.NewNop(), true)
	repo := &fakeStudentRepo{existingNIS: map[string]bool{}}
	svc := NewStudentService(repo, cacheSvc, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		NIS:    "2023001",
		Name:   "Ahmad Rizki",
		Class:  "XII RPL 1",
		Gender: "L",
	})
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.deleted, "stats:*")
}
