package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/cart"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

// AdminOrdersHandler serves the staff-facing order listing endpoints.
type AdminOrdersHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewAdminOrdersHandler creates a new admin orders handler.
func NewAdminOrdersHandler(db *sql.DB, logger *logging.Logger) *AdminOrdersHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminOrdersHandler{db: db, logger: logger}
}

// AdminOrderSummary is one row of the order listing.
type AdminOrderSummary struct {
	ID            string     `json:"id"`
	OrgID         string     `json:"org_id"`
	CustomerID    string     `json:"customer_id"`
	CustomerEmail string     `json:"customer_email"`
	TotalCents    int        `json:"total_cents"`
	Status        string     `json:"status"`
	Appointments  int        `json:"appointments"`
	ReservedUntil *time.Time `json:"reserved_until,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AdminOrderDetail is the full order view including its items.
type AdminOrderDetail struct {
	AdminOrderSummary
	Items []cart.Item `json:"items"`
}

// ListOrders returns recent orders for an org.
// GET /admin/orders?org_id=...&status=...&limit=...
func (h *AdminOrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("org_id")
	if orgID == "" {
		http.Error(w, "missing org_id", http.StatusBadRequest)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			http.Error(w, "limit must be between 1 and 500", http.StatusBadRequest)
			return
		}
		limit = n
	}

	query := `
		SELECT o.id, o.org_id, o.customer_id, o.email, o.total_cents,
		       o.status, o.reservation_expires_at, o.created_at,
		       (SELECT COUNT(*) FROM appointments a WHERE a.order_id = o.id) AS appointments
		FROM orders o
		WHERE o.org_id = $1`
	args := []any{orgID}
	if status := r.URL.Query().Get("status"); status != "" {
		query += ` AND o.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY o.created_at DESC LIMIT ` + strconv.Itoa(limit)

	rows, err := h.db.QueryContext(r.Context(), query, args...)
	if err != nil {
		h.logger.Error("admin order listing failed", "error", err, "org_id", orgID)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	summaries := []AdminOrderSummary{}
	for rows.Next() {
		var s AdminOrderSummary
		if err := rows.Scan(&s.ID, &s.OrgID, &s.CustomerID, &s.CustomerEmail, &s.TotalCents,
			&s.Status, &s.ReservedUntil, &s.CreatedAt, &s.Appointments); err != nil {
			h.logger.Error("admin order scan failed", "error", err)
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		h.logger.Error("admin order listing failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": summaries})
}

// GetOrder returns one order with its items.
// GET /admin/orders/{orderID}
func (h *AdminOrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		http.Error(w, "missing orderID", http.StatusBadRequest)
		return
	}

	var detail AdminOrderDetail
	var itemsJSON []byte
	err := h.db.QueryRowContext(r.Context(), `
		SELECT o.id, o.org_id, o.customer_id, o.email, o.total_cents,
		       o.status, o.reservation_expires_at, o.created_at, o.items,
		       (SELECT COUNT(*) FROM appointments a WHERE a.order_id = o.id) AS appointments
		FROM orders o
		WHERE o.id = $1`, orderID,
	).Scan(&detail.ID, &detail.OrgID, &detail.CustomerID, &detail.CustomerEmail,
		&detail.TotalCents, &detail.Status, &detail.ReservedUntil, &detail.CreatedAt,
		&itemsJSON, &detail.Appointments)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("admin order fetch failed", "error", err, "order_id", orderID)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &detail.Items); err != nil {
			h.logger.Error("admin order items decode failed", "error", err, "order_id", orderID)
		}
	}

	writeJSON(w, http.StatusOK, detail)
}
