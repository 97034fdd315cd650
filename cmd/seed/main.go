// Seeder command for bootstrapping a development database.
//
// SAFETY: it refuses to run unless ENV=development and --confirm is given.
//
// Usage:
//
//	ENV=development go run cmd/seed/main.go --confirm
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	"github.com/noah-isme/absensi-qr-api/internal/repository"
	"github.com/noah-isme/absensi-qr-api/pkg/config"
	"github.com/noah-isme/absensi-qr-api/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    role TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS students (
    id TEXT PRIMARY KEY,
    nis TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    class TEXT NOT NULL,
    gender TEXT NOT NULL,
    birth_date TIMESTAMPTZ,
    address TEXT,
    qr_code TEXT NOT NULL UNIQUE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS attendance_records (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL REFERENCES students(id),
    date TIMESTAMPTZ NOT NULL,
    time TIMESTAMPTZ NOT NULL,
    status TEXT NOT NULL,
    notes TEXT,
    recorded_by TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_students_class ON students(class);
CREATE INDEX IF NOT EXISTS idx_attendance_student ON attendance_records(student_id);
CREATE INDEX IF NOT EXISTS idx_attendance_time ON attendance_records(time);
`

func main() {
	confirm := flag.Bool("confirm", false, "Confirm seeding (required)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Env != config.EnvDevelopment {
		log.Fatalf("seeder only runs with ENV=development")
	}
	if !*confirm {
		log.Fatalf("--confirm flag is required")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	students := repository.NewStudentRepository(db)

	seedUsers := []struct {
		username string
		password string
		role     models.UserRole
	}{
		{"admin", "admin123", models.RoleAdmin},
		{"guru", "guru123", models.RoleTeacher},
	}
	for _, u := range seedUsers {
		if existing, err := users.FindByUsername(ctx, u.username); err == nil && existing != nil {
			log.Printf("user %q already present, skipping", u.username)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password for %q: %v", u.username, err)
		}
		if err := users.Create(ctx, &models.User{
			Username:     u.username,
			PasswordHash: string(hash),
			Role:         u.role,
		}); err != nil {
			log.Fatalf("failed to create user %q: %v", u.username, err)
		}
		log.Printf("created user %q (%s)", u.username, u.role)
	}

	seedStudents := []struct {
		nis    string
		name   string
		class  string
		gender string
	}{
		{"2023001", "Ahmad Rizki", "XII RPL 1", "L"},
		{"2023002", "Siti Nurhaliza", "XII RPL 1", "P"},
		{"2023003", "Budi Santoso", "XII RPL 2", "L"},
		{"2023004", "Dewi Lestari", "XII RPL 2", "P"},
		{"2023005", "Eko Prasetyo", "XI TKJ 1", "L"},
	}
	created := 0
	for _, s := range seedStudents {
		exists, err := students.ExistsByNIS(ctx, s.nis, "")
		if err != nil {
			log.Fatalf("failed to check NIS %q: %v", s.nis, err)
		}
		if exists {
			log.Printf("student %q already present, skipping", s.nis)
			continue
		}
		if err := students.Create(ctx, &models.Student{
			NIS:    s.nis,
			Name:   s.name,
			Class:  s.class,
			Gender: s.gender,
			QRCode: models.QRCodeForNIS(s.nis),
			Active: true,
		}); err != nil {
			log.Fatalf("failed to create student %q: %v", s.nis, err)
		}
		created++
	}

	log.Printf("seeding complete: %d students created", created)
}
