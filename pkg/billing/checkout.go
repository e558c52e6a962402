package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/jordanlanch/scribely/pkg/domain"
	"github.com/jordanlanch/scribely/pkg/identity"
	"github.com/jordanlanch/scribely/pkg/logger"
	"github.com/jordanlanch/scribely/pkg/metrics"
)

// FreePlanMessage is returned when the free plan is selected
const FreePlanMessage = "You now have access to the Basic plan features!"

// Service issues checkout sessions and handles plan selection
type Service struct {
	identity      identity.Verifier
	payments      PaymentProvider
	catalog       *Catalog
	defaultOrigin string
	logger        logger.Logger
	metrics       *metrics.Metrics
}

// NewService creates a new billing service.
// defaultOrigin is used for redirect URLs when a request carries no Origin header.
func NewService(verifier identity.Verifier, payments PaymentProvider, catalog *Catalog, defaultOrigin string, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		identity:      verifier,
		payments:      payments,
		catalog:       catalog,
		defaultOrigin: defaultOrigin,
		logger:        log.With("service", "billing"),
	}
}

// SetMetrics sets the metrics sink for checkout counters
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Catalog returns the plan catalog
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// IssueCheckout creates a subscription checkout session for the caller behind accessToken
// and returns the hosted checkout URL. Nothing is retried or persisted.
func (s *Service) IssueCheckout(ctx context.Context, accessToken, priceID, origin string) (string, error) {
	url, err := s.issueCheckout(ctx, accessToken, priceID, origin)
	switch {
	case err == nil:
		s.metrics.RecordCheckout("created")
	case domain.IsAlreadySubscribed(err):
		s.metrics.RecordCheckout("already_subscribed")
	default:
		s.metrics.RecordCheckout("failed")
	}
	return url, err
}

func (s *Service) issueCheckout(ctx context.Context, accessToken, priceID, origin string) (string, error) {
	if strings.TrimSpace(priceID) == "" {
		return "", domain.NewValidationError("priceId is required")
	}

	id, err := s.identity.Verify(ctx, accessToken)
	if err != nil {
		s.logger.Warn("Checkout caller could not be identified", "error", err)
		if errors.Is(err, identity.ErrMissingToken) || errors.Is(err, identity.ErrInvalidToken) {
			return "", domain.NewAuthRequiredError()
		}
		return "", domain.NewTransportError("Identity provider request failed", err)
	}
	if id == nil || id.Email == "" {
		return "", domain.NewMissingEmailError()
	}

	log := s.logger.With("user_id", id.ID, "price_id", priceID)

	customerID, err := s.payments.FindCustomerByEmail(ctx, id.Email)
	if err != nil {
		log.Error("Customer lookup failed", "error", err)
		return "", domain.NewTransportError("Payment provider request failed", err)
	}

	if customerID != "" {
		subscribed, err := s.payments.HasActiveSubscription(ctx, customerID, priceID)
		if err != nil {
			log.Error("Subscription lookup failed", "customer_id", customerID, "error", err)
			return "", domain.NewTransportError("Payment provider request failed", err)
		}
		if subscribed {
			log.Info("Checkout refused, subscription already active", "customer_id", customerID)
			return "", domain.NewAlreadySubscribedError()
		}
	}

	redirect := s.redirectURL(origin)
	params := CheckoutParams{
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: redirect,
		CancelURL:  redirect,
	}
	if customerID == "" {
		params.CustomerEmail = id.Email
	}

	url, err := s.payments.CreateCheckoutSession(ctx, params)
	if err != nil {
		log.Error("Checkout session creation failed", "error", err)
		return "", domain.NewTransportError("Payment provider request failed", err)
	}
	if url == "" {
		return "", domain.NewMissingRedirectURLError()
	}

	log.Info("Checkout session created", "existing_customer", customerID != "")
	return url, nil
}

// redirectURL is origin + "/", falling back to the configured frontend URL
func (s *Service) redirectURL(origin string) string {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" || origin == "null" {
		origin = strings.TrimRight(s.defaultOrigin, "/")
	}
	return origin + "/"
}

// Selection is the outcome of choosing a plan
type Selection struct {
	Plan    Plan
	Free    bool
	URL     string
	Message string
}

// SelectPlan grants the free plan immediately or issues a checkout session for a paid plan.
// The free plan needs no identity and never reaches the payment provider.
func (s *Service) SelectPlan(ctx context.Context, caller *identity.Identity, planID, origin string) (*Selection, error) {
	plan, ok := s.catalog.Get(planID)
	if !ok {
		return nil, domain.NewNotFoundError("plan")
	}

	if plan.Free() {
		s.logger.Info("Free plan selected", "signed_in", caller != nil)
		s.metrics.RecordPlanSelected(plan.Tier)
		return &Selection{Plan: plan, Free: true, Message: FreePlanMessage}, nil
	}

	if caller == nil {
		return nil, domain.NewAuthRequiredError()
	}

	if plan.PriceID == "" {
		return nil, domain.NewValidationError("Plan is not available for purchase")
	}

	url, err := s.IssueCheckout(ctx, caller.AccessToken, plan.PriceID, origin)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPlanSelected(plan.Tier)
	return &Selection{Plan: plan, URL: url}, nil
}
