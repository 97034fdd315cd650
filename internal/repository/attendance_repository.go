package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/absensi-qr-api/internal/models"
)

// AttendanceRepository manages persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
	queryTimer
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// WithMetrics attaches a query timing observer and returns the repository.
func (r *AttendanceRepository) WithMetrics(observer QueryObserver) *AttendanceRepository {
	r.observer = observer
	return r
}

const attendanceColumns = `a.id, a.student_id, a.date, a.time, a.status, a.notes, a.recorded_by, a.created_at,
        s.name AS student_name, s.nis AS student_nis, s.class AS student_class`

// DayStart returns midnight of the given day.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayEnd returns the last instant of the given day.
func DayEnd(t time.Time) time.Time {
	return DayStart(t).Add(24*time.Hour - time.Nanosecond)
}

func buildAttendanceWhere(filter models.AttendanceFilter) (string, []interface{}) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, DayStart(*filter.Date))
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, DayEnd(*filter.Date))
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, DayStart(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, DayEnd(*filter.DateTo))
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Class != "" {
		conditions = append(conditions, fmt.Sprintf("s.class = $%d", len(args)+1))
		args = append(args, filter.Class)
	}

	return strings.Join(conditions, " AND "), args
}

// List returns attendance records with student details, newest scan first.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceWithStudent, int, error) {
	defer r.observe("attendance_list", time.Now())
	where, args := buildAttendanceWhere(filter)
	base := fmt.Sprintf("FROM attendance_records a JOIN students s ON s.id = a.student_id WHERE %s", where)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY a.time DESC LIMIT %d OFFSET %d", attendanceColumns, base, size, offset)

	var records []models.AttendanceWithStudent
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}

// ListAll returns every matching record without pagination, newest scan
// first. Used by exports where truncation would corrupt the output.
func (r *AttendanceRepository) ListAll(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceWithStudent, error) {
	defer r.observe("attendance_list_all", time.Now())
	where, args := buildAttendanceWhere(filter)
	query := fmt.Sprintf("SELECT %s FROM attendance_records a JOIN students s ON s.id = a.student_id WHERE %s ORDER BY a.time DESC", attendanceColumns, where)

	var records []models.AttendanceWithStudent
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance for export: %w", err)
	}
	return records, nil
}

// FindByID fetches a single attendance record with student details.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceWithStudent, error) {
	defer r.observe("attendance_find_by_id", time.Now())
	query := fmt.Sprintf("SELECT %s FROM attendance_records a JOIN students s ON s.id = a.student_id WHERE a.id = $1", attendanceColumns)
	var record models.AttendanceWithStudent
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new attendance record.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) error {
	defer r.observe("attendance_create", time.Now())
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance_records (id, student_id, date, time, status, notes, recorded_by, created_at)
        VALUES (:id, :student_id, :date, :time, :status, :notes, :recorded_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// Update modifies status and notes of an existing record.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.AttendanceRecord) error {
	defer r.observe("attendance_update", time.Now())
	const query = `UPDATE attendance_records SET status = :status, notes = :notes WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// buildDateBounds translates optional interval bounds into conditions. A
// zero bound leaves that side of the interval open.
func buildDateBounds(from, to time.Time) (string, []interface{}) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if !from.IsZero() {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, from)
	}
	if !to.IsZero() {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, to)
	}

	return strings.Join(conditions, " AND "), args
}

// StatusCounts groups record counts per status over the inclusive interval.
func (r *AttendanceRepository) StatusCounts(ctx context.Context, from, to time.Time) ([]models.StatusCount, error) {
	defer r.observe("attendance_status_counts", time.Now())
	where, args := buildDateBounds(from, to)
	query := fmt.Sprintf("SELECT a.status, COUNT(*) AS count FROM attendance_records a WHERE %s GROUP BY a.status", where)
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	return counts, nil
}

// StatusCountsByStudent groups record counts per student and status over the
// inclusive interval. Zero bounds cover the full history.
func (r *AttendanceRepository) StatusCountsByStudent(ctx context.Context, from, to time.Time) ([]models.StudentStatusCount, error) {
	defer r.observe("attendance_status_counts_by_student", time.Now())
	where, args := buildDateBounds(from, to)
	query := fmt.Sprintf("SELECT a.student_id, a.status, COUNT(*) AS count FROM attendance_records a WHERE %s GROUP BY a.student_id, a.status", where)
	var counts []models.StudentStatusCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("status counts by student: %w", err)
	}
	return counts, nil
}
