package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/v1/plans/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/pro", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/plans/:id", "200")))
}

func TestRecordHelpers(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordGeneration(true, time.Second)
	m.RecordGeneration(false, time.Second)
	m.RecordGeneration(false, time.Second)
	m.RecordGatingRejection("upgrade")
	m.RecordCheckout("created")
	m.RecordPlanSelected("free")
	m.RecordAuthEvent("SIGNED_IN")
	m.RecordLoginAttempt(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Generations.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatingRejections.WithLabelValues("upgrade")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckoutSessions.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlansSelected.WithLabelValues("free")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("SIGNED_IN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("failed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGeneration(true, time.Millisecond)
		m.RecordGatingRejection("sign_in")
		m.RecordCheckout("failed")
		m.RecordPlanSelected("pro")
		m.RecordAuthEvent("SIGNED_OUT")
		m.RecordLoginAttempt(true)
	})
}
