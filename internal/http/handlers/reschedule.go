package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/observability/metrics"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/reschedule"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

// RescheduleHandler serves the public token-authenticated reschedule
// endpoints. Each request builds a short-lived session around the token's
// order; the session enforces the flow's state rules and fan-out limits.
type RescheduleHandler struct {
	store         *reschedule.Store
	tokens        *reschedule.TokenIssuer
	maxConcurrent int
	bannerTTL     time.Duration
	metrics       *metrics.BookingMetrics
	logger        *logging.Logger
}

// NewRescheduleHandler creates a reschedule handler. metrics may be nil.
func NewRescheduleHandler(store *reschedule.Store, tokens *reschedule.TokenIssuer, maxConcurrent int, bannerTTL time.Duration, m *metrics.BookingMetrics, logger *logging.Logger) *RescheduleHandler {
	if store == nil {
		panic("handlers: reschedule store required")
	}
	if tokens == nil {
		panic("handlers: reschedule token issuer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RescheduleHandler{
		store:         store,
		tokens:        tokens,
		maxConcurrent: maxConcurrent,
		bannerTTL:     bannerTTL,
		metrics:       m,
		logger:        logger,
	}
}

type rescheduleInfoResponse struct {
	Appointments []reschedule.AppointmentSlot `json:"appointments"`
}

// GetInfo lists the appointments a reschedule token grants access to.
// GET /public/reschedule/info?token=...
func (h *RescheduleHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	session := h.newSession()
	defer session.Close()

	if err := session.Load(r.Context(), r.URL.Query().Get("token")); err != nil {
		h.writeLoadError(w, session, err)
		return
	}
	writeJSON(w, http.StatusOK, rescheduleInfoResponse{Appointments: session.Slots()})
}

type confirmPayload struct {
	Token         string    `json:"token"`
	AppointmentID string    `json:"appointment_id"`
	NewDateTime   time.Time `json:"new_datetime"`
}

type confirmResponse struct {
	Appointment reschedule.AppointmentSlot `json:"appointment"`
}

// Confirm moves a single appointment to a new time.
// POST /public/reschedule/confirm
func (h *RescheduleHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var payload confirmPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if payload.AppointmentID == "" || payload.NewDateTime.IsZero() {
		http.Error(w, "appointment_id and new_datetime are required", http.StatusBadRequest)
		return
	}

	session := h.newSession()
	defer session.Close()

	if err := session.Load(r.Context(), payload.Token); err != nil {
		h.writeLoadError(w, session, err)
		return
	}
	if err := session.Propose(payload.AppointmentID, payload.NewDateTime); err != nil {
		h.writeActionError(w, err)
		return
	}
	if err := session.ConfirmOne(r.Context(), payload.AppointmentID); err != nil {
		h.metrics.ObserveRescheduleConfirm("single", "failed")
		h.writeActionError(w, err)
		return
	}
	h.metrics.ObserveRescheduleConfirm("single", "ok")

	for _, slot := range session.Slots() {
		if slot.ID == payload.AppointmentID {
			writeJSON(w, http.StatusOK, confirmResponse{Appointment: slot})
			return
		}
	}
	http.Error(w, "appointment not found", http.StatusNotFound)
}

type confirmAllPayload struct {
	Token   string `json:"token"`
	Changes []struct {
		AppointmentID string    `json:"appointment_id"`
		NewDateTime   time.Time `json:"new_datetime"`
	} `json:"changes"`
}

type confirmAllResponse struct {
	Confirmed    int                          `json:"confirmed"`
	Failed       int                          `json:"failed"`
	Banner       string                       `json:"banner,omitempty"`
	State        reschedule.State             `json:"state"`
	Appointments []reschedule.AppointmentSlot `json:"appointments"`
}

// ConfirmAll applies a batch of changes concurrently and reports the
// partition of successes and failures.
// POST /public/reschedule/confirm-all
func (h *RescheduleHandler) ConfirmAll(w http.ResponseWriter, r *http.Request) {
	var payload confirmAllPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(payload.Changes) == 0 {
		http.Error(w, "changes are required", http.StatusBadRequest)
		return
	}

	session := h.newSession()
	defer session.Close()

	if err := session.Load(r.Context(), payload.Token); err != nil {
		h.writeLoadError(w, session, err)
		return
	}
	for _, change := range payload.Changes {
		if change.AppointmentID == "" || change.NewDateTime.IsZero() {
			http.Error(w, "appointment_id and new_datetime are required", http.StatusBadRequest)
			return
		}
		if err := session.Propose(change.AppointmentID, change.NewDateTime); err != nil {
			h.writeActionError(w, err)
			return
		}
	}

	summary, err := session.ConfirmAll(r.Context())
	if err != nil {
		h.writeActionError(w, err)
		return
	}
	outcome := "ok"
	if summary.Failed > 0 {
		outcome = "partial"
	}
	h.metrics.ObserveRescheduleConfirm("bulk", outcome)

	resp := confirmAllResponse{
		Confirmed:    summary.Confirmed,
		Failed:       summary.Failed,
		State:        session.State(),
		Appointments: session.Slots(),
	}
	if msg, ok := session.Banner(); ok {
		resp.Banner = msg
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *RescheduleHandler) newSession() *reschedule.Session {
	return reschedule.NewSession(h.store, h.tokens, h.maxConcurrent, h.bannerTTL, h.logger)
}

func (h *RescheduleHandler) writeLoadError(w http.ResponseWriter, session *reschedule.Session, err error) {
	if errors.Is(err, reschedule.ErrInvalidToken) {
		http.Error(w, session.ErrorMessage(), http.StatusUnauthorized)
		return
	}
	h.logger.Error("reschedule load failed", "error", err)
	http.Error(w, reschedule.MsgLinkExpired, http.StatusUnauthorized)
}

func (h *RescheduleHandler) writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reschedule.ErrAppointmentNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, reschedule.ErrRowBusy):
		http.Error(w, "appointment is being confirmed", http.StatusConflict)
	case errors.Is(err, reschedule.ErrBadState):
		http.Error(w, "appointment cannot be changed", http.StatusConflict)
	default:
		h.logger.Error("reschedule action failed", "error", err)
		http.Error(w, "reschedule failed", http.StatusInternalServerError)
	}
}
