package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/absensi-qr-api/internal/models"
)

// StudentRepository manages persistence for student roster records.
type StudentRepository struct {
	db *sqlx.DB
	queryTimer
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// WithMetrics attaches a query timing observer and returns the repository.
func (r *StudentRepository) WithMetrics(observer QueryObserver) *StudentRepository {
	r.observer = observer
	return r
}

const studentColumns = "s.id, s.nis, s.name, s.class, s.gender, s.birth_date, s.address, s.qr_code, s.is_active, s.created_at"

// List returns students matching the provided filters ordered by name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	defer r.observe("students_list", time.Now())
	base := "FROM students s"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.name) LIKE $%d OR LOWER(s.nis) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Class != "" {
		conditions = append(conditions, fmt.Sprintf("s.class = $%d", len(args)+1))
		args = append(args, filter.Class)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("s.is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY s.name ASC LIMIT %d OFFSET %d", studentColumns, base, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListActive returns every active student ordered by name, optionally
// restricted to a class. Used by report generation where pagination would
// truncate results.
func (r *StudentRepository) ListActive(ctx context.Context, class string) ([]models.Student, error) {
	defer r.observe("students_list_active", time.Now())
	query := fmt.Sprintf("SELECT %s FROM students s WHERE s.is_active = true", studentColumns)
	args := []interface{}{}
	if class != "" {
		query += " AND s.class = $1"
		args = append(args, class)
	}
	query += " ORDER BY s.name ASC"

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	defer r.observe("students_find_by_id", time.Now())
	query := fmt.Sprintf("SELECT %s FROM students s WHERE s.id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByQRCode fetches a student by their scan token.
func (r *StudentRepository) FindByQRCode(ctx context.Context, qrCode string) (*models.Student, error) {
	defer r.observe("students_find_by_qr", time.Now())
	query := fmt.Sprintf("SELECT %s FROM students s WHERE s.qr_code = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, qrCode); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByNIS checks if a student with given NIS exists optionally excluding an ID.
func (r *StudentRepository) ExistsByNIS(ctx context.Context, nis string, excludeID string) (bool, error) {
	defer r.observe("students_exists_by_nis", time.Now())
	query := "SELECT 1 FROM students WHERE nis = $1"
	args := []interface{}{nis}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check nis: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	defer r.observe("students_create", time.Now())
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, nis, name, class, gender, birth_date, address, qr_code, is_active, created_at)
        VALUES (:id, :nis, :name, :class, :gender, :birth_date, :address, :qr_code, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student. The qr_code column is intentionally
// excluded: the scan token is immutable after creation.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	defer r.observe("students_update", time.Now())
	const query = `UPDATE students SET nis = :nis, name = :name, class = :class, gender = :gender, birth_date = :birth_date, address = :address, is_active = :is_active WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Deactivate marks a student as inactive.
func (r *StudentRepository) Deactivate(ctx context.Context, id string) error {
	defer r.observe("students_deactivate", time.Now())
	const query = `UPDATE students SET is_active = false WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deactivate student: %w", err)
	}
	return nil
}

// Delete removes a student row permanently.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	defer r.observe("students_delete", time.Now())
	const query = `DELETE FROM students WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// CountActive returns the number of active students.
func (r *StudentRepository) CountActive(ctx context.Context) (int, error) {
	defer r.observe("students_count_active", time.Now())
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM students WHERE is_active = true"); err != nil {
		return 0, fmt.Errorf("count active students: %w", err)
	}
	return count, nil
}

// HasAttendance reports whether any attendance history exists for the student.
func (r *StudentRepository) HasAttendance(ctx context.Context, studentID string) (bool, error) {
	defer r.observe("students_has_attendance", time.Now())
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM attendance_records WHERE student_id = $1 LIMIT 1", studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check attendance history: %w", err)
	}
	return true, nil
}
