package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/cart"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/observability/metrics"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/orders"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/tenancy"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

// orderCreator is satisfied by *orders.Service.
type orderCreator interface {
	CreateOrder(ctx context.Context, orgID, customerID string, req orders.CreateOrderRequest) (*orders.CreateOrderResponse, error)
}

// OrdersHandler serves the tenant-scoped order creation endpoint.
type OrdersHandler struct {
	service orderCreator
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

// NewOrdersHandler creates an orders handler. metrics may be nil.
func NewOrdersHandler(service orderCreator, m *metrics.BookingMetrics, logger *logging.Logger) *OrdersHandler {
	if service == nil {
		panic("handlers: orders service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OrdersHandler{service: service, metrics: m, logger: logger}
}

type createOrderPayload struct {
	CustomerID string `json:"customerId"`
	orders.CreateOrderRequest
}

// CreateOrder books the cart's sessions and opens a payment session.
// POST /orders
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant", http.StatusBadRequest)
		return
	}

	var payload createOrderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if payload.CustomerID == "" {
		payload.CustomerID = payload.Customer.Email
	}
	if payload.CustomerID == "" {
		http.Error(w, "missing customerId", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CreateOrder(r.Context(), orgID, payload.CustomerID, payload.CreateOrderRequest)
	if err != nil {
		h.writeCreateError(w, err)
		return
	}

	h.metrics.ObserveOrderCreated(resp.IsRescheduleFlow)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *OrdersHandler) writeCreateError(w http.ResponseWriter, err error) {
	var incomplete *cart.IncompleteSlotsError
	switch {
	case errors.Is(err, cart.ErrEmptyCart):
		http.Error(w, "cart is empty", http.StatusBadRequest)
	case errors.As(err, &incomplete):
		http.Error(w, incomplete.Error(), http.StatusBadRequest)
	case errors.Is(err, orders.ErrMissingCustomer):
		http.Error(w, "customer information incomplete", http.StatusBadRequest)
	case errors.Is(err, orders.ErrCheckoutFailed):
		h.logger.Error("checkout provider rejected order", "error", err)
		http.Error(w, "checkout provider unavailable", http.StatusBadGateway)
	default:
		h.logger.Error("order creation failed", "error", err)
		http.Error(w, "order creation failed", http.StatusInternalServerError)
	}
}
