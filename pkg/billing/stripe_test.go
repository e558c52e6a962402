package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStripeServer(t *testing.T, handler http.HandlerFunc) *StripeProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStripeProvider(StripeConfig{SecretKey: "sk_test_123", APIURL: srv.URL})
}

func writeStripe(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestStripeProvider_FindCustomerByEmail(t *testing.T) {
	provider := newStripeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/customers", r.URL.Path)
		assert.Equal(t, "writer@example.com", r.URL.Query().Get("email"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		writeStripe(w, http.StatusOK, `{"object":"list","url":"/v1/customers","has_more":false,
			"data":[{"id":"cus_1","object":"customer","email":"writer@example.com"}]}`)
	})

	id, err := provider.FindCustomerByEmail(context.Background(), "writer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", id)
}

func TestStripeProvider_FindCustomerByEmail_None(t *testing.T) {
	provider := newStripeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeStripe(w, http.StatusOK, `{"object":"list","url":"/v1/customers","has_more":false,"data":[]}`)
	})

	id, err := provider.FindCustomerByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestStripeProvider_HasActiveSubscription(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{"active", `[{"id":"sub_1","object":"subscription","status":"active"}]`, true},
		{"none", `[]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newStripeServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/subscriptions", r.URL.Path)
				q := r.URL.Query()
				assert.Equal(t, "cus_1", q.Get("customer"))
				assert.Equal(t, "price_pro", q.Get("price"))
				assert.Equal(t, "active", q.Get("status"))
				writeStripe(w, http.StatusOK, `{"object":"list","url":"/v1/subscriptions","has_more":false,"data":`+tt.data+`}`)
			})

			got, err := provider.HasActiveSubscription(context.Background(), "cus_1", "price_pro")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripeProvider_CreateCheckoutSession(t *testing.T) {
	provider := newStripeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "subscription", r.PostForm.Get("mode"))
		assert.Equal(t, "price_pro", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "writer@example.com", r.PostForm.Get("customer_email"))
		assert.Empty(t, r.PostForm.Get("customer"))
		assert.Equal(t, "https://app.example.com/", r.PostForm.Get("success_url"))
		assert.Equal(t, "https://app.example.com/", r.PostForm.Get("cancel_url"))

		writeStripe(w, http.StatusOK, `{"id":"cs_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_1"}`)
	})

	url, err := provider.CreateCheckoutSession(context.Background(), CheckoutParams{
		CustomerEmail: "writer@example.com",
		PriceID:       "price_pro",
		SuccessURL:    "https://app.example.com/",
		CancelURL:     "https://app.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_1", url)
}

func TestStripeProvider_NoRetries(t *testing.T) {
	var calls int32
	provider := newStripeServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeStripe(w, http.StatusInternalServerError, `{"error":{"type":"api_error","message":"boom"}}`)
	})

	_, err := provider.CreateCheckoutSession(context.Background(), CheckoutParams{
		CustomerID: "cus_1",
		PriceID:    "price_pro",
		SuccessURL: "https://app.example.com/",
		CancelURL:  "https://app.example.com/",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create checkout session")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
