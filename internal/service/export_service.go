package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
	"github.com/noah-isme/absensi-qr-api/pkg/export"
)

type exportAttendanceRepository interface {
	ListAll(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceWithStudent, error)
}

type reportProvider interface {
	AttendanceReport(ctx context.Context, from, to time.Time, class string) ([]models.AttendanceReportRow, error)
}

// ExportService renders attendance data as CSV and PDF documents.
type ExportService struct {
	attendance exportAttendanceRepository
	reports    reportProvider
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(attendance exportAttendanceRepository, reports reportProvider, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{attendance: attendance, reports: reports, csv: csv, pdf: pdf, logger: logger}
}

// attendanceCSVColumns is the fixed export layout. Name, class and notes are
// always quoted; dates, times, the NIS and the status stay raw.
var attendanceCSVColumns = []export.Column{
	{Header: "Tanggal"},
	{Header: "Waktu"},
	{Header: "Nama Siswa", Quoted: true},
	{Header: "NIS"},
	{Header: "Kelas", Quoted: true},
	{Header: "Status"},
	{Header: "Keterangan", Quoted: true},
}

// AttendanceCSV renders matching attendance records as CSV. With no matches
// the output still carries the header line.
func (s *ExportService) AttendanceCSV(ctx context.Context, filter models.AttendanceFilter) ([]byte, error) {
	records, err := s.attendance.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance for export")
	}

	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		notes := ""
		if record.Notes != nil {
			notes = *record.Notes
		}
		rows = append(rows, map[string]string{
			"Tanggal":    record.Date.Format("02/01/2006"),
			"Waktu":      record.Time.Format("15.04.05"),
			"Nama Siswa": record.StudentName,
			"NIS":        record.StudentNIS,
			"Kelas":      record.StudentClass,
			"Status":     string(record.Status),
			"Keterangan": notes,
		})
	}

	payload, err := s.csv.Render(export.Dataset{Columns: attendanceCSVColumns, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, nil
}

// reportTitle labels the PDF with the covered interval. Open bounds are
// spelled out instead of rendering a zero date.
func reportTitle(from, to time.Time) string {
	lower := "awal"
	if !from.IsZero() {
		lower = from.Format("02/01/2006")
	}
	upper := "sekarang"
	if !to.IsZero() {
		upper = to.Format("02/01/2006")
	}
	if from.IsZero() && to.IsZero() {
		return "Laporan Kehadiran"
	}
	return fmt.Sprintf("Laporan Kehadiran %s - %s", lower, upper)
}

// AttendanceReportPDF renders the ranged attendance report as a tabular PDF.
// Zero bounds pass through to the report and leave the range open.
func (s *ExportService) AttendanceReportPDF(ctx context.Context, from, to time.Time, class string) ([]byte, error) {
	reportRows, err := s.reports.AttendanceReport(ctx, from, to, class)
	if err != nil {
		return nil, err
	}

	columns := []export.Column{
		{Header: "Nama"},
		{Header: "NIS"},
		{Header: "Kelas"},
		{Header: "Hadir"},
		{Header: "Terlambat"},
		{Header: "Sakit"},
		{Header: "Izin"},
		{Header: "Alpa"},
		{Header: "Persentase"},
	}

	rows := make([]map[string]string, 0, len(reportRows))
	for _, row := range reportRows {
		rows = append(rows, map[string]string{
			"Nama":       row.Student.Name,
			"NIS":        row.Student.NIS,
			"Kelas":      row.Student.Class,
			"Hadir":      fmt.Sprintf("%d", row.Present),
			"Terlambat":  fmt.Sprintf("%d", row.Late),
			"Sakit":      fmt.Sprintf("%d", row.Sick),
			"Izin":       fmt.Sprintf("%d", row.Permission),
			"Alpa":       fmt.Sprintf("%d", row.Absent),
			"Persentase": fmt.Sprintf("%.1f%%", row.Percentage),
		})
	}

	payload, err := s.pdf.Render(export.Dataset{Columns: columns, Rows: rows}, reportTitle(from, to))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, nil
}
