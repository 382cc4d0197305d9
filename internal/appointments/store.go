package appointments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	appmigrations "github.com/sofia-praxis/dental-calendar/migrations"
	"github.com/sofia-praxis/dental-calendar/pkg/apperrors"
)

// Store persists appointments in a single SQLite table.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("appointments: open database: %w", err)
	}

	// SQLite allows a single writer; funnel everything through one
	// connection so busy errors never surface under normal load.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("appointments: set WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("appointments: enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing database handle. Used by tests; the caller is
// responsible for the schema.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func runMigrations(db *sql.DB) error {
	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("appointments: migration db driver: %w", err)
	}
	srcDriver, err := iofs.New(appmigrations.FS, ".")
	if err != nil {
		return fmt.Errorf("appointments: migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", srcDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("appointments: create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("appointments: migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT
	}
	// Fallback for wrapped drivers (sqlmock etc.) in tests.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

const appointmentColumns = `id, patient_name, COALESCE(phone, ''), date, start_time, end_time,
	COALESCE(treatment_type, ''), COALESCE(notes, ''), status, created_at`

func scanAppointment(row interface{ Scan(...any) error }) (*Appointment, error) {
	var a Appointment
	var created sql.NullTime
	err := row.Scan(&a.ID, &a.PatientName, &a.Phone, &a.Date, &a.StartTime, &a.EndTime,
		&a.TreatmentType, &a.Notes, &a.Status, &created)
	if err != nil {
		return nil, err
	}
	if created.Valid {
		a.CreatedAt = created.Time
	}
	return &a, nil
}

// Insert persists a new appointment and assigns its id. A collision with a
// non-cancelled appointment at the same (date, start_time) returns
// ErrSlotTaken; the unique index makes the check-and-insert atomic.
func (s *Store) Insert(ctx context.Context, a *Appointment) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (patient_name, phone, date, start_time, end_time, treatment_type, notes, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.PatientName, a.Phone, a.Date, a.StartTime, a.EndTime, a.TreatmentType, a.Notes, a.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrSlotTaken.WithError(err)
		}
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("insert appointment: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("last insert id: %w", err))
	}
	a.ID = id
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}

// GetByID loads one appointment; ErrNotFound if it does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("load appointment %d: %w", id, err))
	}
	return a, nil
}

// List returns appointments matching the filter ordered by (date, start_time).
func (s *Store) List(ctx context.Context, f Filter) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	var where []string
	var args []any
	if f.Date != "" {
		where = append(where, "date = ?")
		args = append(args, f.Date)
	}
	if f.Phone != "" {
		where = append(where, "phone = ?")
		args = append(args, NormalizePhone(f.Phone))
	}
	if f.FromDate != "" {
		where = append(where, "date >= ?")
		args = append(args, f.FromDate)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, start_time"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("list appointments: %w", err))
	}
	defer rows.Close()

	out := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("scan appointment: %w", err))
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("list appointments: %w", err))
	}
	return out, nil
}

// Update writes the full row back. Rescheduling into an occupied slot
// violates the partial unique index and returns ErrSlotTaken.
func (s *Store) Update(ctx context.Context, a *Appointment) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE appointments
		 SET patient_name = ?, phone = ?, date = ?, start_time = ?, end_time = ?,
		     treatment_type = ?, notes = ?, status = ?
		 WHERE id = ?`,
		a.PatientName, a.Phone, a.Date, a.StartTime, a.EndTime,
		a.TreatmentType, a.Notes, a.Status, a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrSlotTaken.WithError(err)
		}
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("update appointment %d: %w", a.ID, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes the row permanently. No soft delete.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("delete appointment %d: %w", id, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// BookedTimes returns the start times of non-cancelled appointments on one
// civil date, normalized to HH:MM and sorted ascending. This feeds the
// availability engine.
func (s *Store) BookedTimes(ctx context.Context, date string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT start_time FROM appointments WHERE date = ? AND status != 'cancelled' ORDER BY start_time`,
		date)
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("booked times for %s: %w", date, err))
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("scan booked time: %w", err))
		}
		if len(t) > 5 {
			t = t[:5]
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("booked times for %s: %w", date, err))
	}
	return times, nil
}
