package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/cart"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/tenancy"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

// CartHandler serves the tenant-scoped cart endpoints backed by Redis.
type CartHandler struct {
	store  *cart.Store
	logger *logging.Logger
}

// NewCartHandler creates a cart handler.
func NewCartHandler(store *cart.Store, logger *logging.Logger) *CartHandler {
	if store == nil {
		panic("handlers: cart store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CartHandler{store: store, logger: logger}
}

// GetCart returns the customer's current cart.
// GET /cart?customer_id=...
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant", http.StatusBadRequest)
		return
	}
	customerID := r.URL.Query().Get("customer_id")
	if customerID == "" {
		http.Error(w, "missing customer_id", http.StatusBadRequest)
		return
	}

	c, err := h.store.Get(r.Context(), orgID, customerID)
	if err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			writeJSON(w, http.StatusOK, cart.Cart{Items: []cart.Item{}})
			return
		}
		h.logger.Error("cart fetch failed", "error", err, "customer_id", customerID)
		http.Error(w, "cart unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// PutCart replaces the customer's cart.
// PUT /cart?customer_id=...
func (h *CartHandler) PutCart(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant", http.StatusBadRequest)
		return
	}
	customerID := r.URL.Query().Get("customer_id")
	if customerID == "" {
		http.Error(w, "missing customer_id", http.StatusBadRequest)
		return
	}

	var c cart.Cart
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	for _, item := range c.Items {
		if item.Sessions > 0 && len(item.DateTime) != item.SlotTotal() {
			http.Error(w, "DateTime length must match sessions x quantity", http.StatusBadRequest)
			return
		}
	}

	if err := h.store.Save(r.Context(), orgID, customerID, &c); err != nil {
		h.logger.Error("cart save failed", "error", err, "customer_id", customerID)
		http.Error(w, "cart unavailable", http.StatusInternalServerError)
		return
	}
	selected, total := cart.Progress(c.Items)
	writeJSON(w, http.StatusOK, map[string]any{
		"selectedSlots": selected,
		"totalSlots":    total,
	})
}

// DeleteCart clears the customer's cart.
// DELETE /cart?customer_id=...
func (h *CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant", http.StatusBadRequest)
		return
	}
	customerID := r.URL.Query().Get("customer_id")
	if customerID == "" {
		http.Error(w, "missing customer_id", http.StatusBadRequest)
		return
	}

	if err := h.store.Clear(r.Context(), orgID, customerID); err != nil {
		h.logger.Error("cart clear failed", "error", err, "customer_id", customerID)
		http.Error(w, "cart unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
