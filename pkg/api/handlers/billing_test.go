package handlers

import (
	"net/http"
	"testing"

	"github.com/jordanlanch/scribely/pkg/api/middleware"
	"github.com/jordanlanch/scribely/pkg/billing"
	"github.com/jordanlanch/scribely/pkg/logger"
	"github.com/jordanlanch/scribely/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBillingTest(payments *stubPayments) *echo.Echo {
	svc := billing.NewService(testVerifier, payments, billing.NewCatalog("price_pro", "price_enterprise"), "http://localhost:5173", logger.Discard())
	h := NewBillingHandler(svc, logger.Discard())

	e := echo.New()
	e.POST("/create-checkout-session", h.CreateCheckoutSession)
	e.GET("/api/v1/plans", h.GetPlans)
	e.POST("/api/v1/plans/:id/select", h.SelectPlan, middleware.OptionalIdentity(testVerifier, logger.Discard()))
	return e
}

func TestCreateCheckoutSession_Success(t *testing.T) {
	payments := &stubPayments{url: "https://checkout.stripe.com/c/pay/cs_1"}
	e := setupBillingTest(payments)

	headers := bearer("good")
	headers[echo.HeaderOrigin] = "https://app.example.com"
	rec := doRequest(e, http.MethodPost, "/create-checkout-session", `{"priceId":"price_pro"}`, headers)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://checkout.stripe.com/c/pay/cs_1"}`, rec.Body.String())
	assert.Equal(t, "https://app.example.com/", payments.last.SuccessURL)
	assert.Equal(t, "writer@example.com", payments.last.CustomerEmail)
}

func TestCreateCheckoutSession_FailuresAre500(t *testing.T) {
	tests := []struct {
		name     string
		payments *stubPayments
		token    string
		body     string
		message  string
	}{
		{"already subscribed", &stubPayments{customerID: "cus_1", subscribed: true, url: "u"}, "good", `{"priceId":"price_pro"}`, "You are already subscribed to this plan"},
		{"no url", &stubPayments{}, "good", `{"priceId":"price_pro"}`, "No checkout URL received"},
		{"missing price", &stubPayments{url: "u"}, "good", `{}`, "priceId is required"},
		{"bad token", &stubPayments{url: "u"}, "bad", `{"priceId":"price_pro"}`, "Please sign in to continue"},
		{"malformed body", &stubPayments{url: "u"}, "good", `{"priceId":`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setupBillingTest(tt.payments)

			rec := doRequest(e, http.MethodPost, "/create-checkout-session", tt.body, bearer(tt.token))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, tt.message, decode[models.CheckoutErrorResponse](t, rec).Error)
			if tt.name == "already subscribed" {
				assert.Equal(t, 0, tt.payments.createCalls)
			}
		})
	}
}

func TestGetPlans(t *testing.T) {
	e := setupBillingTest(&stubPayments{})

	rec := doRequest(e, http.MethodGet, "/api/v1/plans", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[models.PricingResponse](t, rec)
	require.Len(t, resp.Plans, 3)
	assert.Equal(t, "basic", resp.Plans[0].ID)
	assert.True(t, resp.Plans[1].Popular)
}

func TestSelectPlan(t *testing.T) {
	payments := &stubPayments{url: "https://checkout.stripe.com/c/pay/cs_9"}
	e := setupBillingTest(payments)

	rec := doRequest(e, http.MethodPost, "/api/v1/plans/basic/select", "", bearer("good"))
	require.Equal(t, http.StatusOK, rec.Code)
	free := decode[models.PlanSelectionResponse](t, rec)
	assert.True(t, free.Free)
	assert.Equal(t, billing.FreePlanMessage, free.Message)
	assert.Equal(t, 0, payments.createCalls)

	rec = doRequest(e, http.MethodPost, "/api/v1/plans/pro/select", "", bearer("good"))
	require.Equal(t, http.StatusOK, rec.Code)
	paid := decode[models.PlanSelectionResponse](t, rec)
	assert.False(t, paid.Free)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_9", paid.URL)

	rec = doRequest(e, http.MethodPost, "/api/v1/plans/platinum/select", "", bearer("good"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/v1/plans/pro/select", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSelectPlan_FreeForAnonymousCaller(t *testing.T) {
	payments := &stubPayments{url: "https://checkout.stripe.com/c/pay/cs_9"}
	e := setupBillingTest(payments)

	rec := doRequest(e, http.MethodPost, "/api/v1/plans/basic/select", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	free := decode[models.PlanSelectionResponse](t, rec)
	assert.True(t, free.Free)
	assert.Equal(t, 0, payments.createCalls)
}
