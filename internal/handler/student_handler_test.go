package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	"github.com/noah-isme/absensi-qr-api/internal/service"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type fakeStudentSrv struct {
	students   []models.Student
	student    *models.Student
	err        error
	lastFilter models.StudentFilter
	lastQR     string
	deleted    []string
}

func (f *fakeStudentSrv) List(_ context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.students, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(f.students)}, nil
}

func (f *fakeStudentSrv) Get(context.Context, string) (*models.Student, error) {
	return f.student, f.err
}

func (f *fakeStudentSrv) FindByQRCode(_ context.Context, req service.SearchByQRRequest) (*models.Student, error) {
	f.lastQR = req.QRCode
	return f.student, f.err
}

func (f *fakeStudentSrv) Create(context.Context, service.CreateStudentRequest) (*models.Student, error) {
	return f.student, f.err
}

func (f *fakeStudentSrv) Update(context.Context, string, service.UpdateStudentRequest) (*models.Student, error) {
	return f.student, f.err
}

func (f *fakeStudentSrv) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeStudentSrv) Deactivate(context.Context, string) error {
	return f.err
}

func TestStudentHandlerListParsesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeStudentSrv{}
	handler := NewStudentHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students?search=rizki&class=XII+RPL+1&active=true&page=2&limit=10", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rizki", srv.lastFilter.Search)
	assert.Equal(t, "XII RPL 1", srv.lastFilter.Class)
	if assert.NotNil(t, srv.lastFilter.Active) {
		assert.True(t, *srv.lastFilter.Active)
	}
	assert.Equal(t, 2, srv.lastFilter.Page)
	assert.Equal(t, 10, srv.lastFilter.PageSize)
}

func TestStudentHandlerCreateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&fakeStudentSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students", strings.NewReader("{not-json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&fakeStudentSrv{
		student: &models.Student{ID: "stu-1", NIS: "2023001", QRCode: "STD_2023001"},
	})

	body := `{"nis":"2023001","name":"Ahmad Rizki","class":"XII RPL 1","gender":"L"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "STD_2023001", envelope.Data["qr_code"])
}

func TestStudentHandlerSearchByQR(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeStudentSrv{student: &models.Student{ID: "stu-1", NIS: "2023001"}}
	handler := NewStudentHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students/search-by-qr", strings.NewReader(`{"qrCode":"STD_2023001"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.SearchByQR(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "STD_2023001", srv.lastQR)
}

func TestStudentHandlerDeleteConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&fakeStudentSrv{
		err: appErrors.Clone(appErrors.ErrConflict, "student has attendance history; deactivate instead"),
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}
	c.Request = httptest.NewRequest(http.MethodDelete, "/students/stu-1", nil)

	handler.Delete(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStudentHandlerDeleteSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeStudentSrv{}
	handler := NewStudentHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}
	c.Request = httptest.NewRequest(http.MethodDelete, "/students/stu-1", nil)

	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"stu-1"}, srv.deleted)
}
