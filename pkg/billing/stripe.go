package billing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// PaymentProvider is the subset of the payment provider used for checkout
type PaymentProvider interface {
	// FindCustomerByEmail returns the ID of the first customer with email, or "" when none exists
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
	// HasActiveSubscription reports whether customerID holds an active subscription to priceID
	HasActiveSubscription(ctx context.Context, customerID, priceID string) (bool, error)
	// CreateCheckoutSession creates a hosted subscription checkout and returns its redirect URL
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)
}

// CheckoutParams describes a subscription checkout session.
// Exactly one of CustomerID and CustomerEmail is used, CustomerID first.
type CheckoutParams struct {
	CustomerID    string
	CustomerEmail string
	PriceID       string
	SuccessURL    string
	CancelURL     string
}

// StripeConfig holds Stripe configuration
type StripeConfig struct {
	SecretKey  string
	APIURL     string // optional override of the API base URL
	HTTPClient *http.Client
}

// StripeProvider implements PaymentProvider on the Stripe API
type StripeProvider struct {
	sc *client.API
}

// NewStripeProvider creates a Stripe-backed payment provider.
// Network retries are disabled: a failed call fails the request.
func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		HTTPClient:        cfg.HTTPClient,
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	backends := &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
	}

	return &StripeProvider{sc: client.New(cfg.SecretKey, backends)}
}

// FindCustomerByEmail lists customers by email with limit 1; the first match wins
func (p *StripeProvider) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	i := p.sc.Customers.List(params)
	if i.Next() {
		return i.Customer().ID, nil
	}
	if err := i.Err(); err != nil {
		return "", fmt.Errorf("failed to list customers: %w", err)
	}
	return "", nil
}

// HasActiveSubscription lists active subscriptions of customerID to priceID with limit 1
func (p *StripeProvider) HasActiveSubscription(ctx context.Context, customerID, priceID string) (bool, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Price:    stripe.String(priceID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	i := p.sc.Subscriptions.List(params)
	if i.Next() {
		return true, nil
	}
	if err := i.Err(); err != nil {
		return false, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return false, nil
}

// CreateCheckoutSession creates a subscription-mode checkout session with a single line item
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, cp CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(cp.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(cp.SuccessURL),
		CancelURL:  stripe.String(cp.CancelURL),
	}
	params.Context = ctx

	if cp.CustomerID != "" {
		params.Customer = stripe.String(cp.CustomerID)
	} else {
		params.CustomerEmail = stripe.String(cp.CustomerEmail)
	}

	sess, err := p.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

var _ PaymentProvider = (*StripeProvider)(nil)
