package main

import (
	"log"
	"net/http"

	"github.com/jordanlanch/scribely/config"
	"github.com/jordanlanch/scribely/pkg/api/handlers"
	custommw "github.com/jordanlanch/scribely/pkg/api/middleware"
	"github.com/jordanlanch/scribely/pkg/identity"
	"github.com/jordanlanch/scribely/pkg/logger"
	"github.com/jordanlanch/scribely/pkg/metrics"
	custommiddleware "github.com/jordanlanch/scribely/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// server holds everything the router needs
type server struct {
	cfg      *config.Config
	logger   logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	verifier identity.Verifier

	generate *handlers.GenerateHandler
	billing  *handlers.BillingHandler
	auth     *handlers.AuthHandler // nil when the auth proxy is disabled
	health   *handlers.HealthHandler

	globalLimiter   *custommiddleware.RateLimiter
	generateLimiter *custommiddleware.RateLimiter
	authLimiter     *custommiddleware.RateLimiter
}

// callerKey counts signed-in callers by identity and everyone else by IP
func callerKey(c echo.Context) string {
	if id := custommw.Identity(c); id != nil {
		return "user:" + id.ID
	}
	ip := c.RealIP()
	if ip == "" {
		ip = c.Request().RemoteAddr
	}
	return "ip:" + ip
}

func newEcho(s *server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(custommiddleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if s.metrics != nil {
		e.Use(s.metrics.Middleware())
	}
	e.Use(middleware.CORSWithConfig(appCORS(s.cfg.FrontendURL)))
	e.Use(middleware.Gzip())
	e.Use(custommiddleware.SecurityHeaders(nil))
	e.Use(s.globalLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", s.health.Root)
	e.GET("/health", s.health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	// Checkout keeps its own permissive CORS policy for browser clients on any origin
	checkoutCORS := middleware.CORSWithConfig(custommiddleware.CheckoutCORSConfig())
	checkoutLimit := s.generateLimiter.RateLimitMiddlewareWith(handlers.CheckoutThrottled)
	for _, path := range checkoutPaths {
		e.POST(path, s.billing.CreateCheckoutSession, checkoutCORS, checkoutLimit)
		e.OPTIONS(path, preflight, checkoutCORS)
	}

	v1 := e.Group("/api/v1")
	requireIdentity := custommw.RequireIdentity(s.verifier)

	// Generation
	v1.POST("/generate", s.generate.Generate,
		custommw.OptionalIdentity(s.verifier, s.logger),
		s.generateLimiter.RateLimitMiddleware(),
	)
	v1.GET("/usage", s.generate.Usage, requireIdentity)

	// Plans and billing
	v1.GET("/plans", s.billing.GetPlans)
	v1.POST("/plans/:id/select", s.billing.SelectPlan, custommw.OptionalIdentity(s.verifier, s.logger))

	// Auth proxy
	if s.auth != nil {
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/signup", s.auth.SignUp, s.authLimiter.RateLimitMiddleware())
			authGroup.POST("/signin", s.auth.SignIn, s.authLimiter.RateLimitMiddleware())
			authGroup.POST("/resend", s.auth.Resend, s.authLimiter.RateLimitMiddleware())
			authGroup.POST("/refresh", s.auth.Refresh)
			authGroup.POST("/signout", s.auth.SignOut, requireIdentity)
			authGroup.GET("/me", s.auth.Me, requireIdentity)
		}
	}

	return e
}

var checkoutPaths = []string{"/create-checkout-session", "/api/v1/billing/checkout"}

// appCORS is the frontend-only policy for every route except checkout
func appCORS(frontendURL string) middleware.CORSConfig {
	cfg := custommiddleware.CORSConfig(frontendURL)
	cfg.Skipper = func(c echo.Context) bool {
		for _, p := range checkoutPaths {
			if c.Path() == p {
				return true
			}
		}
		return false
	}
	return cfg
}

// preflight answers OPTIONS once the CORS middleware has set its headers
func preflight(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}
