package customer

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func TestPostgresRepositoryUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectExec("INSERT INTO customers").
		WithArgs("org-1", "cust-1", "A", "B", "a@b.com", "+1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	info := Information{FirstName: "A", LastName: "B", Email: "a@b.com", Phone: "+1"}
	if err := repo.Upsert(context.Background(), "org-1", "cust-1", info); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositoryGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	rows := pgxmock.NewRows([]string{"first_name", "last_name", "email", "phone"}).
		AddRow("A", "B", "a@b.com", "+1")
	mock.ExpectQuery("SELECT first_name").WithArgs("org-1", "cust-1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "org-1", "cust-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "a@b.com" {
		t.Errorf("unexpected record: %#v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositoryGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectQuery("SELECT first_name").
		WithArgs("org-1", "ghost").
		WillReturnRows(pgxmock.NewRows([]string{"first_name", "last_name", "email", "phone"}))

	if _, err := repo.Get(context.Background(), "org-1", "ghost"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
