package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx pool interface for testing.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides persistence for orders and their appointments.
type Store struct {
	db DB
}

// NewStore creates an orders store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Create inserts the order and its appointment rows in one transaction.
func (s *Store) Create(ctx context.Context, o *Order, appts []Appointment) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = StatusPendingPayment
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("orders: encode items: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("orders: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, org_id, customer_id, first_name, last_name, email, phone, items, total_cents, status, checkout_session_id, reservation_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.ID, o.OrgID, o.CustomerID,
		o.Customer.FirstName, o.Customer.LastName, o.Customer.Email, o.Customer.Phone,
		items, o.TotalCents, string(o.Status), o.CheckoutSessionID, o.ReservationExpiresAt,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("orders: insert order: %w", err)
	}

	for i := range appts {
		a := &appts[i]
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.OrderID = o.ID
		a.OrgID = o.OrgID
		a.CreatedAt = now
		a.UpdatedAt = now
		if a.Status == "" {
			a.Status = AppointmentReserved
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO appointments (id, order_id, org_id, package_name, slot_datetime, original_datetime, duration_minutes, status, rescheduled, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			a.ID, a.OrderID, a.OrgID, a.PackageName, a.SlotDateTime, a.OriginalDateTime,
			a.DurationMinutes, string(a.Status), a.Rescheduled, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("orders: insert appointment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("orders: commit: %w", err)
	}
	return nil
}

// GetForOrg returns an order scoped to the org.
func (s *Store) GetForOrg(ctx context.Context, orgID string, id uuid.UUID) (*Order, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, org_id, customer_id, first_name, last_name, email, phone, items, total_cents, status, checkout_session_id, reservation_expires_at, created_at, updated_at
		FROM orders
		WHERE org_id = $1 AND id = $2`, orgID, id)

	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("orders: load: %w", err)
	}
	return o, nil
}

// ListByOrg returns recent orders for an org.
func (s *Store) ListByOrg(ctx context.Context, orgID string, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, org_id, customer_id, first_name, last_name, email, phone, items, total_cents, status, checkout_session_id, reservation_expires_at, created_at, updated_at
		FROM orders
		WHERE org_id = $1
		ORDER BY created_at DESC LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("orders: list by org: %w", err)
	}
	defer rows.Close()

	var result []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("orders: scan order: %w", err)
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

// MarkPaid transitions a pending order to paid and confirms its appointments.
func (s *Store) MarkPaid(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("orders: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status = 'paid', reservation_expires_at = NULL, updated_at = $1
		WHERE id = $2 AND status = 'pending_payment'`, now, id)
	if err != nil {
		return fmt.Errorf("orders: mark paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("orders: mark paid: no pending order with id %s", id)
	}

	_, err = tx.Exec(ctx, `
		UPDATE appointments SET status = 'confirmed', updated_at = $1
		WHERE order_id = $2 AND status = 'reserved'`, now, id)
	if err != nil {
		return fmt.Errorf("orders: confirm appointments: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("orders: commit: %w", err)
	}
	return nil
}

// ExpireReservations releases slot holds for unpaid orders whose deadline
// passed. Returns the number of orders expired.
func (s *Store) ExpireReservations(ctx context.Context, asOf time.Time) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("orders: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		UPDATE appointments SET status = 'released', updated_at = $1
		WHERE status = 'reserved' AND order_id IN (
			SELECT id FROM orders
			WHERE status = 'pending_payment' AND reservation_expires_at IS NOT NULL AND reservation_expires_at <= $1
		)`, asOf)
	if err != nil {
		return 0, fmt.Errorf("orders: release appointments: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status = 'expired', updated_at = $1
		WHERE status = 'pending_payment' AND reservation_expires_at IS NOT NULL AND reservation_expires_at <= $1`, asOf)
	if err != nil {
		return 0, fmt.Errorf("orders: expire orders: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("orders: commit: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status string
	var items []byte
	err := row.Scan(
		&o.ID, &o.OrgID, &o.CustomerID,
		&o.Customer.FirstName, &o.Customer.LastName, &o.Customer.Email, &o.Customer.Phone,
		&items, &o.TotalCents, &status, &o.CheckoutSessionID, &o.ReservationExpiresAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	}
	return &o, nil
}
