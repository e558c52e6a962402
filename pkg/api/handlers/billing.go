package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/scribely/pkg/api/errors"
	"github.com/jordanlanch/scribely/pkg/api/middleware"
	"github.com/jordanlanch/scribely/pkg/billing"
	"github.com/jordanlanch/scribely/pkg/domain"
	"github.com/jordanlanch/scribely/pkg/logger"
	custommiddleware "github.com/jordanlanch/scribely/pkg/middleware"
	"github.com/jordanlanch/scribely/pkg/models"
	"github.com/labstack/echo/v4"
)

// BillingHandler handles checkout and plan endpoints
type BillingHandler struct {
	service   *billing.Service
	logger    logger.Logger
	validator *validator.Validate
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(service *billing.Service, log logger.Logger) *BillingHandler {
	if log == nil {
		log = logger.Default()
	}
	return &BillingHandler{
		service:   service,
		logger:    log.With("handler", "billing"),
		validator: validator.New(),
	}
}

// CreateCheckoutSession issues a Stripe checkout session for the bearer of the
// Authorization header. Every failure is a 500 with {error}.
func (h *BillingHandler) CreateCheckoutSession(c echo.Context) error {
	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return h.checkoutError(c, domain.NewValidationError("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return h.checkoutError(c, domain.NewValidationError("priceId is required"))
	}

	url, err := h.service.IssueCheckout(
		c.Request().Context(),
		middleware.BearerToken(c),
		req.PriceID,
		c.Request().Header.Get(echo.HeaderOrigin),
	)
	if err != nil {
		return h.checkoutError(c, err)
	}

	return c.JSON(http.StatusOK, models.CheckoutResponse{URL: url})
}

func (h *BillingHandler) checkoutError(c echo.Context, err error) error {
	h.logger.Warn("Checkout failed", "code", domain.GetErrorCode(err), "error", err)
	return c.JSON(http.StatusInternalServerError, models.CheckoutErrorResponse{
		Error: domain.UserMessage(err),
	})
}

// CheckoutThrottled answers a rate-limited checkout in the checkout error shape
func CheckoutThrottled(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, models.CheckoutErrorResponse{
		Error: custommiddleware.RateLimitExceededMessage,
	})
}

// GetPlans returns the plan catalog
func (h *BillingHandler) GetPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Catalog().Pricing())
}

// SelectPlan grants the free plan or returns a checkout URL for a paid plan
func (h *BillingHandler) SelectPlan(c echo.Context) error {
	sel, err := h.service.SelectPlan(
		c.Request().Context(),
		middleware.Identity(c),
		c.Param("id"),
		c.Request().Header.Get(echo.HeaderOrigin),
	)
	if err != nil {
		return errors.DomainError(c, err)
	}

	return c.JSON(http.StatusOK, models.PlanSelectionResponse{
		Plan:    sel.Plan.ID,
		Free:    sel.Free,
		URL:     sel.URL,
		Message: sel.Message,
	})
}
