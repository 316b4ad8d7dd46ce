// Package payments creates hosted checkout sessions for booking orders.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

var checkoutTracer = otel.Tracer("lsatprep.internal.payments")

// LineItem is one order line on the hosted checkout page.
type LineItem struct {
	Name        string
	AmountCents int64
	Quantity    int
}

// CheckoutParams describes the session to create.
type CheckoutParams struct {
	OrgID         string
	OrderID       string
	CustomerEmail string
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the provider's hosted page: the customer is redirected to
// URL and the SPA session ends there.
type CheckoutSession struct {
	URL       string
	SessionID string
}

// CheckoutClient talks to the payment provider's checkout session API.
type CheckoutClient struct {
	secretKey  string
	successURL string
	cancelURL  string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	dryRun     bool
}

// NewCheckoutClient creates a checkout client. An empty secret key enables
// dry-run mode, which returns placeholder URLs without calling the provider.
func NewCheckoutClient(secretKey, baseURL, successURL, cancelURL string, logger *logging.Logger) *CheckoutClient {
	if logger == nil {
		logger = logging.Default()
	}
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &CheckoutClient{
		secretKey:  secretKey,
		successURL: successURL,
		cancelURL:  cancelURL,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		dryRun:     secretKey == "",
	}
}

// WithBaseURL overrides the provider API base URL (for testing).
func (c *CheckoutClient) WithBaseURL(baseURL string) *CheckoutClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// WithDryRun toggles dry-run mode.
func (c *CheckoutClient) WithDryRun(enabled bool) *CheckoutClient {
	c.dryRun = enabled
	return c
}

// CreateSession creates a hosted checkout session and returns its redirect URL.
func (c *CheckoutClient) CreateSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	ctx, span := checkoutTracer.Start(ctx, "payments.create_checkout_session")
	defer span.End()
	span.SetAttributes(
		attribute.String("lsatprep.org_id", params.OrgID),
		attribute.String("lsatprep.order_id", params.OrderID),
	)

	if c.dryRun {
		fakeID := "cs_dryrun_" + uuid.New().String()[:8]
		c.logger.Info("checkout dry run: skipping session creation",
			"org_id", params.OrgID, "order_id", params.OrderID)
		return &CheckoutSession{
			URL:       fmt.Sprintf("https://checkout.example.com/dry-run/%s", fakeID),
			SessionID: fakeID,
		}, nil
	}

	successURL := params.SuccessURL
	if successURL == "" {
		successURL = c.successURL
	}
	cancelURL := params.CancelURL
	if cancelURL == "" {
		cancelURL = c.cancelURL
	}

	form := url.Values{}
	form.Set("mode", "payment")
	for i, item := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][unit_amount]", fmt.Sprintf("%d", item.AmountCents))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[quantity]", fmt.Sprintf("%d", item.Quantity))
	}
	if successURL != "" {
		form.Set("success_url", successURL)
	}
	if cancelURL != "" {
		form.Set("cancel_url", cancelURL)
	}
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}
	form.Set("metadata[org_id]", params.OrgID)
	form.Set("metadata[order_id]", params.OrderID)

	apiURL := c.baseURL + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payments: checkout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: checkout http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payments: checkout api status %d: %s", resp.StatusCode, string(body))
	}

	var parsed checkoutSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("payments: checkout decode: %w", err)
	}
	if parsed.URL == "" {
		return nil, fmt.Errorf("payments: checkout response missing url")
	}

	return &CheckoutSession{URL: parsed.URL, SessionID: parsed.ID}, nil
}

// checkoutSessionResponse is the subset of the provider session we need.
type checkoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
