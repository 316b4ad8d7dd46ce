package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/orders"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

// Service sends customer-facing booking notifications.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// OrderCreated emails the customer their booking summary and the link they
// can use to reschedule any session.
func (s *Service) OrderCreated(ctx context.Context, o *orders.Order, rescheduleURL string) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping order notification")
		return nil
	}
	if o.Customer.Email == "" {
		s.logger.Debug("notify: order has no customer email, skipping", "order_id", o.ID)
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", o.Customer.FirstName)
	b.WriteString("Thanks for booking with us. Your sessions:\n\n")
	for _, item := range o.Items {
		fmt.Fprintf(&b, "%s\n", item.Name)
		for _, slot := range item.DateTime {
			if slot == nil {
				continue
			}
			fmt.Fprintf(&b, "  - %s\n", slot.Format("Monday, January 2 at 3:04 PM"))
		}
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f\n", float64(o.TotalCents)/100)
	if rescheduleURL != "" {
		fmt.Fprintf(&b, "\nNeed to move a session? Reschedule any time:\n%s\n", rescheduleURL)
	}

	msg := EmailMessage{
		To:      o.Customer.Email,
		ToName:  o.Customer.FullName(),
		Subject: "Your tutoring sessions are booked",
		Body:    b.String(),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: order created email: %w", err)
	}
	return nil
}
