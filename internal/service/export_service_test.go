package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	"github.com/noah-isme/absensi-qr-api/pkg/export"
)

type fakeExportRepo struct {
	records []models.AttendanceWithStudent
}

func (f *fakeExportRepo) ListAll(context.Context, models.AttendanceFilter) ([]models.AttendanceWithStudent, error) {
	return f.records, nil
}

type fakeReportProvider struct {
	rows []models.AttendanceReportRow
}

func (f *fakeReportProvider) AttendanceReport(context.Context, time.Time, time.Time, string) ([]models.AttendanceReportRow, error) {
	return f.rows, nil
}

func newExportService(repo *fakeExportRepo, reports *fakeReportProvider) *ExportService {
	return NewExportService(repo, reports, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())
}

func TestExportServiceAttendanceCSV(t *testing.T) {
	notes := "sakit demam"
	scan := time.Date(2024, 11, 10, 7, 15, 0, 0, time.UTC)
	repo := &fakeExportRepo{records: []models.AttendanceWithStudent{
		{
			AttendanceRecord: models.AttendanceRecord{Date: scan, Time: scan, Status: models.StatusSick, Notes: &notes},
			StudentName:      "Ahmad Rizki",
			StudentNIS:       "2023001",
			StudentClass:     "XII RPL 1",
		},
		{
			AttendanceRecord: models.AttendanceRecord{Date: scan, Time: scan.Add(5 * time.Minute), Status: models.StatusPresent},
			StudentName:      "Budi Santoso",
			StudentNIS:       "2023002",
			StudentClass:     "XII RPL 2",
		},
	}}
	svc := newExportService(repo, &fakeReportProvider{})

	payload, err := svc.AttendanceCSV(context.Background(), models.AttendanceFilter{})
	require.NoError(t, err)

	want := "Tanggal,Waktu,Nama Siswa,NIS,Kelas,Status,Keterangan\n" +
		"10/11/2024,07.15.00,\"Ahmad Rizki\",2023001,\"XII RPL 1\",sick,\"sakit demam\"\n" +
		"10/11/2024,07.20.00,\"Budi Santoso\",2023002,\"XII RPL 2\",present,\"\"\n"
	assert.Equal(t, want, string(payload))
}

func TestExportServiceAttendanceCSVHeaderOnly(t *testing.T) {
	svc := newExportService(&fakeExportRepo{}, &fakeReportProvider{})

	payload, err := svc.AttendanceCSV(context.Background(), models.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Tanggal,Waktu,Nama Siswa,NIS,Kelas,Status,Keterangan\n", string(payload))
}

func TestReportTitleOpenBounds(t *testing.T) {
	from := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Laporan Kehadiran 01/11/2024 - 30/11/2024", reportTitle(from, to))
	assert.Equal(t, "Laporan Kehadiran awal - 30/11/2024", reportTitle(time.Time{}, to))
	assert.Equal(t, "Laporan Kehadiran 01/11/2024 - sekarang", reportTitle(from, time.Time{}))
	assert.Equal(t, "Laporan Kehadiran", reportTitle(time.Time{}, time.Time{}))
}

func TestExportServiceAttendanceReportPDF(t *testing.T) {
	reports := &fakeReportProvider{rows: []models.AttendanceReportRow{
		{
			Student:    models.Student{Name: "Ahmad Rizki", NIS: "2023001", Class: "XII RPL 1"},
			Present:    18,
			Late:       1,
			TotalDays:  19,
			Percentage: 100,
		},
	}}
	svc := newExportService(&fakeExportRepo{}, reports)

	payload, err := svc.AttendanceReportPDF(context.Background(),
		time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.Equal(t, "%PDF", string(payload[:4]))
}
