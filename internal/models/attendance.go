package models

import "time"

// AttendanceStatus enumerates the recognised attendance outcomes.
type AttendanceStatus string

const (
	StatusPresent    AttendanceStatus = "present"
	StatusLate       AttendanceStatus = "late"
	StatusSick       AttendanceStatus = "sick"
	StatusPermission AttendanceStatus = "permission"
	StatusAbsent     AttendanceStatus = "absent"
)

// AttendanceStatuses lists all statuses in reporting order.
var AttendanceStatuses = []AttendanceStatus{
	StatusPresent,
	StatusLate,
	StatusSick,
	StatusPermission,
	StatusAbsent,
}

// Valid reports whether the status belongs to the closed enumeration.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusSick, StatusPermission, StatusAbsent:
		return true
	}
	return false
}

// AttendanceRecord represents a single attendance event. Date and Time are
// both assigned by the server when the record is created.
type AttendanceRecord struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	Date       time.Time        `db:"date" json:"date"`
	Time       time.Time        `db:"time" json:"time"`
	Status     AttendanceStatus `db:"status" json:"status"`
	Notes      *string          `db:"notes" json:"notes,omitempty"`
	RecordedBy *string          `db:"recorded_by" json:"recorded_by,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceWithStudent joins an attendance record with roster details.
type AttendanceWithStudent struct {
	AttendanceRecord
	StudentName  string `db:"student_name" json:"student_name"`
	StudentNIS   string `db:"student_nis" json:"student_nis"`
	StudentClass string `db:"student_class" json:"student_class"`
}

// AttendanceFilter captures filtering criteria for attendance queries.
// Date narrows to a single day; DateFrom/DateTo bound an inclusive range.
type AttendanceFilter struct {
	StudentID string
	Date      *time.Time
	DateFrom  *time.Time
	DateTo    *time.Time
	Status    *AttendanceStatus
	Class     string
	Page      int
	PageSize  int
}

// StatusCount is a grouped count of records per status.
type StatusCount struct {
	Status AttendanceStatus `db:"status"`
	Count  int              `db:"count"`
}

// StudentStatusCount is a grouped count of records per student and status.
type StudentStatusCount struct {
	StudentID string           `db:"student_id"`
	Status    AttendanceStatus `db:"status"`
	Count     int              `db:"count"`
}

// DashboardStats summarises a single day of attendance.
type DashboardStats struct {
	TotalStudents   int `json:"total_students"`
	PresentToday    int `json:"present_today"`
	LateToday       int `json:"late_today"`
	AbsentToday     int `json:"absent_today"`
	SickToday       int `json:"sick_today"`
	PermissionToday int `json:"permission_today"`
}

// AttendanceReportRow pivots a student's recorded events over a date range.
// TotalDays counts recorded events, not calendar days.
type AttendanceReportRow struct {
	Student    Student `json:"student"`
	Present    int     `json:"present"`
	Late       int     `json:"late"`
	Sick       int     `json:"sick"`
	Permission int     `json:"permission"`
	Absent     int     `json:"absent"`
	TotalDays  int     `json:"total_days"`
	Percentage float64 `json:"percentage"`
}
