package models

import "time"

// Student represents a student roster entry. QRCode is derived from the NIS
// at creation time and never changes afterwards.
type Student struct {
	ID        string     `db:"id" json:"id"`
	NIS       string     `db:"nis" json:"nis"`
	Name      string     `db:"name" json:"name"`
	Class     string     `db:"class" json:"class"`
	Gender    string     `db:"gender" json:"gender"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Address   *string    `db:"address" json:"address,omitempty"`
	QRCode    string     `db:"qr_code" json:"qr_code"`
	Active    bool       `db:"is_active" json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Search   string
	Class    string
	Active   *bool
	Page     int
	PageSize int
}

// QRCodeForNIS builds the scan token for a student number.
func QRCodeForNIS(nis string) string {
	return "STD_" + nis
}
