// Package reschedule implements the token-authenticated flow that lets a
// customer move booked appointment slots without an account session.
package reschedule

import "time"

// State is the lifecycle of one reschedule session:
//
//	loading → ready ⇄ confirming → {ready | success}
//
// and any load or token failure → error, which is terminal for that load; the
// only recovery is a fresh Load.
type State string

const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateConfirming State = "confirming"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// AppointmentSlot is one reschedulable row. HasChanged flips on any local
// edit; IsRescheduled flips only after the server confirms; IsConfirming is
// the per-row in-flight flag that blocks further edits and submissions.
type AppointmentSlot struct {
	ID               string     `json:"id"`
	SlotDateTime     time.Time  `json:"slotDateTime"`
	OriginalDateTime time.Time  `json:"originalDateTime"`
	PackageName      string     `json:"packageName"`
	DurationMinutes  int        `json:"duration"`
	NewDateTime      *time.Time `json:"newDateTime,omitempty"`
	HasChanged       bool       `json:"hasChanged"`
	IsRescheduled    bool       `json:"isRescheduled"`
	IsConfirming     bool       `json:"isConfirming"`
}

// Pending reports whether the row still needs a server confirmation.
func (a *AppointmentSlot) Pending() bool {
	return a.HasChanged && !a.IsRescheduled
}

// FooterAction is what the page's primary button should offer.
type FooterAction string

const (
	FooterConfirmAll FooterAction = "confirm_all"
	FooterDone       FooterAction = "done"
	FooterDisabled   FooterAction = "disabled"
)
