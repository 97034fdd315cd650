package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueryObserver struct {
	labels    []string
	durations []time.Duration
}

func (f *fakeQueryObserver) ObserveDBQuery(label string, duration time.Duration) {
	f.labels = append(f.labels, label)
	f.durations = append(f.durations, duration)
}

func TestAttendanceRepositoryReportsQueryTimings(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()

	observer := &fakeQueryObserver{}
	repo := NewAttendanceRepository(db).WithMetrics(observer)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.status, COUNT(*) AS count FROM attendance_records a WHERE 1=1 GROUP BY a.status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("present", 1))

	_, err := repo.StatusCounts(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)

	require.Len(t, observer.labels, 1)
	assert.Equal(t, "attendance_status_counts", observer.labels[0])
	assert.GreaterOrEqual(t, observer.durations[0], time.Duration(0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryReportsQueryTimings(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()

	observer := &fakeQueryObserver{}
	repo := NewStudentRepository(db).WithMetrics(observer)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE is_active = true")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))

	_, err := repo.CountActive(context.Background())
	require.NoError(t, err)

	require.Len(t, observer.labels, 1)
	assert.Equal(t, "students_count_active", observer.labels[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryTimerNilObserver(t *testing.T) {
	var timer queryTimer
	assert.NotPanics(t, func() { timer.observe("noop", time.Now()) })
}
