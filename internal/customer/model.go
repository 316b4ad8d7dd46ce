// Package customer captures the contact details collected during checkout.
package customer

import "strings"

// Information is the contact form snapshot: all four fields are required
// before checkout may advance past the information stage.
type Information struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Complete reports whether every field is filled in.
func (i Information) Complete() bool {
	return strings.TrimSpace(i.FirstName) != "" &&
		strings.TrimSpace(i.LastName) != "" &&
		strings.TrimSpace(i.Email) != "" &&
		strings.TrimSpace(i.Phone) != ""
}

// FullName joins first and last name for display and email greetings.
func (i Information) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(i.FirstName) + " " + strings.TrimSpace(i.LastName))
}

// Merge combines the live form snapshot with previously saved details. Live
// fields win when present; saved fields back-fill the rest. The submission is
// read at submit time, so a half-typed form still succeeds when the saved
// record covers the gaps.
func Merge(live, saved Information) Information {
	merged := saved
	if strings.TrimSpace(live.FirstName) != "" {
		merged.FirstName = live.FirstName
	}
	if strings.TrimSpace(live.LastName) != "" {
		merged.LastName = live.LastName
	}
	if strings.TrimSpace(live.Email) != "" {
		merged.Email = live.Email
	}
	if strings.TrimSpace(live.Phone) != "" {
		merged.Phone = live.Phone
	}
	return merged
}
