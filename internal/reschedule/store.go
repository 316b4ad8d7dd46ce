package reschedule

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads and updates the appointment rows a reschedule token grants
// access to.
type Store struct {
	db DB
}

// NewStore creates a reschedule store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// ListByOrder returns the order's non-released appointments, oldest slot first.
func (s *Store) ListByOrder(ctx context.Context, orderID string) ([]AppointmentSlot, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, slot_datetime, original_datetime, package_name, duration_minutes, rescheduled
		FROM appointments
		WHERE order_id = $1 AND status != 'released'
		ORDER BY slot_datetime ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("reschedule: list appointments: %w", err)
	}
	defer rows.Close()

	var result []AppointmentSlot
	for rows.Next() {
		var a AppointmentSlot
		if err := rows.Scan(&a.ID, &a.SlotDateTime, &a.OriginalDateTime, &a.PackageName, &a.DurationMinutes, &a.IsRescheduled); err != nil {
			return nil, fmt.Errorf("reschedule: scan appointment: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// Reschedule moves one appointment to newDateTime. The update is scoped to
// the order so a token can never touch another order's rows.
func (s *Store) Reschedule(ctx context.Context, orderID, appointmentID string, newDateTime time.Time) error {
	now := time.Now().UTC()
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments SET slot_datetime = $1, rescheduled = TRUE, updated_at = $2
		WHERE id = $3 AND order_id = $4 AND status != 'released'`,
		newDateTime.UTC(), now, appointmentID, orderID)
	if err != nil {
		return fmt.Errorf("reschedule: update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}
