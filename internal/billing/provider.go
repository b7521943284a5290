// Package billing abstracts the hosted-checkout provider used for recruiter
// subscriptions. The server never touches card data; it creates a checkout
// session and redirects the client to the provider-hosted page.
package billing

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// CheckoutSession is a provider-hosted payment session the client is
// redirected to.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Provider creates checkout sessions for a user.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, userID, email string) (*CheckoutSession, error)
}

// HostedProvider builds checkout URLs against a configured base endpoint.
// It stands in for a real PSP integration; the session ID is embedded in the
// URL so the return webhook can correlate the purchase.
type HostedProvider struct {
	// BaseURL is the provider checkout endpoint, e.g. "https://pay.example.com/checkout".
	BaseURL string
}

// CreateCheckoutSession mints a session and returns the redirect URL.
func (p *HostedProvider) CreateCheckoutSession(ctx context.Context, userID, email string) (*CheckoutSession, error) {
	if p.BaseURL == "" {
		return nil, fmt.Errorf("billing: base URL not configured")
	}
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("billing: invalid base URL: %w", err)
	}
	id := uuid.NewString()
	q := base.Query()
	q.Set("session", id)
	q.Set("client_reference_id", userID)
	if email != "" {
		q.Set("customer_email", email)
	}
	base.RawQuery = q.Encode()
	return &CheckoutSession{ID: id, URL: base.String()}, nil
}
