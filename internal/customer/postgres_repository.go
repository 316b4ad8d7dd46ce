package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores contact records in the customers table.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a pgx-backed repository.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or refreshes the saved contact record.
func (r *PostgresRepository) Upsert(ctx context.Context, orgID, customerID string, info Information) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO customers (org_id, customer_id, first_name, last_name, email, phone, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (org_id, customer_id)
		DO UPDATE SET first_name = $3, last_name = $4, email = $5, phone = $6, updated_at = NOW()`,
		orgID, customerID, info.FirstName, info.LastName, info.Email, info.Phone,
	)
	if err != nil {
		return fmt.Errorf("customer: upsert: %w", err)
	}
	return nil
}

// Get loads the saved contact record, or ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, orgID, customerID string) (*Information, error) {
	row := r.db.QueryRow(ctx, `
		SELECT first_name, last_name, email, phone
		FROM customers
		WHERE org_id = $1 AND customer_id = $2`, orgID, customerID)

	var info Information
	err := row.Scan(&info.FirstName, &info.LastName, &info.Email, &info.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("customer: load: %w", err)
	}
	return &info, nil
}
