package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/cart"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/checkout"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/customer"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/observability/metrics"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/orders"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/tenancy"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

// CheckoutHandler drives the staged booking flow over HTTP. Each customer
// gets one in-memory wizard session; the cart is re-read from the store on
// every appointments-stage advance so the flow always validates the latest
// selection.
type CheckoutHandler struct {
	mu       sync.Mutex
	sessions map[string]*checkout.Wizard

	carts     *cart.Store
	customers customer.Repository
	orders    orderCreator
	bannerTTL time.Duration
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
}

// NewCheckoutHandler creates a checkout handler. metrics may be nil.
func NewCheckoutHandler(carts *cart.Store, customers customer.Repository, service orderCreator, bannerTTL time.Duration, m *metrics.BookingMetrics, logger *logging.Logger) *CheckoutHandler {
	if carts == nil {
		panic("handlers: cart store required")
	}
	if customers == nil {
		panic("handlers: customer repository required")
	}
	if service == nil {
		panic("handlers: orders service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CheckoutHandler{
		sessions:  make(map[string]*checkout.Wizard),
		carts:     carts,
		customers: customers,
		orders:    service,
		bannerTTL: bannerTTL,
		metrics:   m,
		logger:    logger,
	}
}

type checkoutStateResponse struct {
	Stage         checkout.Stage   `json:"stage"`
	SelectedSlots int              `json:"selectedSlots"`
	TotalSlots    int              `json:"totalSlots"`
	Banner        string           `json:"banner,omitempty"`
	Result        *checkout.Result `json:"result,omitempty"`
}

type advancePayload struct {
	Customer *customer.Information `json:"user,omitempty"`
}

// GetState reports the active stage, slot progress, and any banner.
// GET /checkout?customer_id=...
func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	orgID, customerID, ok := h.identify(w, r)
	if !ok {
		return
	}
	wizard := h.session(orgID, customerID)
	writeJSON(w, http.StatusOK, h.state(wizard))
}

// Advance runs the active stage. The body may carry the live contact form;
// a validation failure returns 400 with the stage's banner.
// POST /checkout/advance?customer_id=...
func (h *CheckoutHandler) Advance(w http.ResponseWriter, r *http.Request) {
	orgID, customerID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var payload advancePayload
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	wizard := h.session(orgID, customerID)
	if wizard.Stage() == checkout.StageAppointments {
		h.refreshItems(r, wizard, orgID, customerID)
	}
	if payload.Customer != nil {
		wizard.SetInformation(*payload.Customer)
	}

	if err := wizard.Advance(r.Context()); err != nil {
		h.writeAdvanceError(w, wizard, err)
		return
	}

	resp := h.state(wizard)
	if wizard.Stage() == checkout.StageDone {
		// The redirect URL ends the flow; drop the finished session.
		h.drop(orgID, customerID)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Back steps the wizard to the previous stage.
// POST /checkout/back?customer_id=...
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	orgID, customerID, ok := h.identify(w, r)
	if !ok {
		return
	}
	wizard := h.session(orgID, customerID)
	if err := wizard.Back(); err != nil {
		http.Error(w, "cannot go back from this stage", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, h.state(wizard))
}

// Abandon discards the customer's checkout session.
// DELETE /checkout?customer_id=...
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	orgID, customerID, ok := h.identify(w, r)
	if !ok {
		return
	}
	h.drop(orgID, customerID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) identify(w http.ResponseWriter, r *http.Request) (orgID, customerID string, ok bool) {
	orgID, ok = tenancy.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant", http.StatusBadRequest)
		return "", "", false
	}
	customerID = r.URL.Query().Get("customer_id")
	if customerID == "" {
		http.Error(w, "missing customer_id", http.StatusBadRequest)
		return "", "", false
	}
	return orgID, customerID, true
}

func (h *CheckoutHandler) session(orgID, customerID string) *checkout.Wizard {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := orgID + "|" + customerID
	if wizard, ok := h.sessions[key]; ok {
		return wizard
	}
	wizard := checkout.NewWizard(orgID, customerID, h.customers, h.orders, h.bannerTTL, h.metrics, h.logger)
	h.sessions[key] = wizard
	return wizard
}

func (h *CheckoutHandler) drop(orgID, customerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := orgID + "|" + customerID
	if wizard, ok := h.sessions[key]; ok {
		wizard.Close()
		delete(h.sessions, key)
	}
}

func (h *CheckoutHandler) refreshItems(r *http.Request, wizard *checkout.Wizard, orgID, customerID string) {
	c, err := h.carts.Get(r.Context(), orgID, customerID)
	switch {
	case err == nil:
		wizard.SetItems(c.Items)
	case errors.Is(err, cart.ErrCartNotFound):
		wizard.SetItems(nil)
	default:
		h.logger.Error("cart fetch failed", "error", err, "customer_id", customerID)
	}
}

func (h *CheckoutHandler) state(wizard *checkout.Wizard) checkoutStateResponse {
	resp := checkoutStateResponse{Stage: wizard.Stage()}
	resp.SelectedSlots, resp.TotalSlots = wizard.Progress()
	if msg, ok := wizard.Banner(); ok {
		resp.Banner = msg
	}
	if result, ok := wizard.Result(); ok {
		resp.Result = result
	}
	return resp
}

func (h *CheckoutHandler) writeAdvanceError(w http.ResponseWriter, wizard *checkout.Wizard, err error) {
	switch {
	case errors.Is(err, checkout.ErrStageIncomplete):
		writeJSON(w, http.StatusBadRequest, h.state(wizard))
	case errors.Is(err, orders.ErrCheckoutFailed):
		h.logger.Error("checkout provider rejected order", "error", err)
		writeJSON(w, http.StatusBadGateway, h.state(wizard))
	default:
		h.logger.Error("checkout advance failed", "error", err)
		http.Error(w, "checkout failed", http.StatusInternalServerError)
	}
}
