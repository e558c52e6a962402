package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jordanlanch/scribely/pkg/billing"
	"github.com/jordanlanch/scribely/pkg/generation"
	"github.com/jordanlanch/scribely/pkg/identity"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

var testWriter = &identity.Identity{ID: "user-1", Email: "writer@example.com", AccessToken: "good"}

// tokenVerifier accepts the tokens it knows
type tokenVerifier map[string]*identity.Identity

func (v tokenVerifier) Verify(_ context.Context, token string) (*identity.Identity, error) {
	if token == "" {
		return nil, identity.ErrMissingToken
	}
	if id, ok := v[token]; ok {
		return id, nil
	}
	return nil, identity.ErrInvalidToken
}

var testVerifier = tokenVerifier{"good": testWriter}

type stubGenerator struct {
	result generation.Result
	calls  int
	apiKey string
}

func (s *stubGenerator) Generate(_ context.Context, _ generation.Request, apiKey string) generation.Result {
	s.calls++
	s.apiKey = apiKey
	return s.result
}

type stubPayments struct {
	customerID  string
	subscribed  bool
	url         string
	err         error
	createCalls int
	last        billing.CheckoutParams
}

func (s *stubPayments) FindCustomerByEmail(context.Context, string) (string, error) {
	return s.customerID, s.err
}

func (s *stubPayments) HasActiveSubscription(context.Context, string, string) (bool, error) {
	return s.subscribed, nil
}

func (s *stubPayments) CreateCheckoutSession(_ context.Context, p billing.CheckoutParams) (string, error) {
	s.createCalls++
	s.last = p
	return s.url, nil
}

// doRequest sends a JSON request through e
func doRequest(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
