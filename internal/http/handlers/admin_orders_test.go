package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"

	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

func TestAdminListOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "org_id", "customer_id", "email", "total_cents", "status", "reservation_expires_at", "created_at", "appointments"}).
		AddRow("ord-1", "org-1", "cust-1", "alice@example.com", 120000, "paid", nil, created, 4).
		AddRow("ord-2", "org-1", "cust-2", "bob@example.com", 60000, "pending_payment", created.Add(30*time.Minute), created, 2)

	mock.ExpectQuery("SELECT o.id, o.org_id, o.customer_id").
		WithArgs("org-1").
		WillReturnRows(rows)

	handler := NewAdminOrdersHandler(db, logging.Default())
	req := httptest.NewRequest(http.MethodGet, "/admin/orders?org_id=org-1", nil)
	rec := httptest.NewRecorder()
	handler.ListOrders(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Orders []AdminOrderSummary `json:"orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(resp.Orders))
	}
	if resp.Orders[0].Appointments != 4 {
		t.Fatalf("expected 4 appointments, got %d", resp.Orders[0].Appointments)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAdminListOrdersRequiresOrgID(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	handler := NewAdminOrdersHandler(db, logging.Default())
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	rec := httptest.NewRecorder()
	handler.ListOrders(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminGetOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	items := `[{"id":"pkg-1","name":"LSAT Tutoring Package","price":120000,"quantity":1,"sessions":4,"DateTime":[null,null,null,null]}]`
	row := sqlmock.NewRows([]string{"id", "org_id", "customer_id", "email", "total_cents", "status", "reservation_expires_at", "created_at", "items", "appointments"}).
		AddRow("ord-1", "org-1", "cust-1", "alice@example.com", 120000, "paid", nil, created, []byte(items), 4)

	mock.ExpectQuery("SELECT o.id, o.org_id, o.customer_id").
		WithArgs("ord-1").
		WillReturnRows(row)

	handler := NewAdminOrdersHandler(db, logging.Default())
	req := httptest.NewRequest(http.MethodGet, "/admin/orders/ord-1", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", "ord-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	handler.GetOrder(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var detail AdminOrderDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if detail.ID != "ord-1" || len(detail.Items) != 1 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.Items[0].Sessions != 4 {
		t.Fatalf("expected 4 sessions, got %d", detail.Items[0].Sessions)
	}
}

func TestAdminGetOrderNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT o.id, o.org_id, o.customer_id").
		WithArgs("ord-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	handler := NewAdminOrdersHandler(db, logging.Default())
	req := httptest.NewRequest(http.MethodGet, "/admin/orders/ord-missing", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", "ord-missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	handler.GetOrder(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
