package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/scribely/config"
	"github.com/jordanlanch/scribely/pkg/api/handlers"
	"github.com/jordanlanch/scribely/pkg/billing"
	"github.com/jordanlanch/scribely/pkg/cache"
	"github.com/jordanlanch/scribely/pkg/gating"
	"github.com/jordanlanch/scribely/pkg/generation"
	"github.com/jordanlanch/scribely/pkg/identity"
	"github.com/jordanlanch/scribely/pkg/jobs"
	"github.com/jordanlanch/scribely/pkg/logger"
	"github.com/jordanlanch/scribely/pkg/metrics"
	custommiddleware "github.com/jordanlanch/scribely/pkg/middleware"
	"github.com/jordanlanch/scribely/pkg/quota"
	"github.com/jordanlanch/scribely/pkg/secrets"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLogger := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	// Provider credentials from the secrets backend override the environment
	secretsManager, err := secrets.NewManager(secrets.Config{Backend: cfg.SecretsBackend, AWSRegion: cfg.AWSRegion})
	if err != nil {
		log.Fatalf("❌ Failed to initialize secrets manager: %v", err)
	}
	secretsCtx, cancelSecrets := context.WithTimeout(context.Background(), 10*time.Second)
	applied, err := secrets.ApplyCredentials(secretsCtx, secretsManager, cfg)
	cancelSecrets()
	if err != nil {
		log.Fatalf("❌ Failed to load secrets: %v", err)
	}
	log.Printf("🔐 Secrets backend: %s (%d credentials loaded)", cfg.SecretsBackend, applied)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 0.2,
			AttachStacktrace: true,
			BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
				// never ship caller credentials
				if event.Request != nil {
					delete(event.Request.Headers, "Authorization")
					delete(event.Request.Headers, "X-Gemini-Api-Key")
				}
				return event
			},
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	healthChecks := map[string]handlers.Pinger{}

	// Quota store
	var store quota.Store
	switch cfg.QuotaStore {
	case "redis":
		redisClient, err := cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		store = quota.NewRedisStore(redisClient)
		healthChecks["redis"] = redisClient
	default:
		store = quota.NewMemoryStore()
		log.Printf("ℹ️  Quota store: in-memory (counters reset on restart)")
	}
	tracker := quota.NewTracker(store, cfg.QuotaCeiling)

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New(prometheus.DefaultRegisterer)
	log.Printf("✅ Prometheus metrics initialized")

	// Generation provider
	var generator generation.Generator
	switch cfg.GenerationProvider {
	case "openai":
		generator = generation.NewOpenAIGenerator(generation.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, appLogger)
	default:
		generator = generation.NewGeminiClient(generation.GeminiConfig{
			Endpoint: cfg.GeminiEndpoint,
			APIKey:   cfg.GeminiAPIKey,
		}, appLogger)
	}

	// Identity provider
	supabase := identity.NewSupabaseClient(identity.SupabaseConfig{
		URL:     cfg.SupabaseURL,
		AnonKey: cfg.SupabaseAnonKey,
	}, appLogger)
	verifier, checkoutVerifier := identityVerifiers(supabase, cfg.SupabaseJWTSecret)

	notifier := identity.NewNotifier(64)
	authEvents, unsubscribe := notifier.Subscribe()
	defer unsubscribe()
	go func() {
		for ev := range authEvents {
			appLogger.Info("Auth state changed", "event", ev.Type, "user_id", ev.UserID)
			prometheusMetrics.RecordAuthEvent(string(ev.Type))
		}
	}()

	// Services
	coordinator := gating.NewCoordinator(tracker, generator, appLogger)
	coordinator.SetMetrics(prometheusMetrics)

	billingService := billing.NewService(
		checkoutVerifier,
		billing.NewStripeProvider(billing.StripeConfig{SecretKey: cfg.StripeSecretKey}),
		billing.NewCatalog(cfg.StripePricePro, cfg.StripePriceEnterprise),
		firstOrigin(cfg.FrontendURL),
		appLogger,
	)
	billingService.SetMetrics(prometheusMetrics)

	// Rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	generateRateLimiter := custommiddleware.NewRateLimiter(20, 5).WithKeyFunc(callerKey) // 20 req/min per user
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2)                              // 5 req/min for sign-in

	// Background maintenance
	scheduler := jobs.NewScheduler(30*time.Second, appLogger)
	if err := scheduler.Add("rate-limiter-cleanup", "@every 3m", jobs.CleanupJob(globalRateLimiter, generateRateLimiter, authRateLimiter)); err != nil {
		log.Fatalf("❌ Failed to schedule job: %v", err)
	}
	if len(healthChecks) > 0 {
		probes := make(map[string]jobs.Pinger, len(healthChecks))
		for name, p := range healthChecks {
			probes[name] = p
		}
		if err := scheduler.Add("dependency-probe", "@every 1m", jobs.ProbeJob(probes)); err != nil {
			log.Fatalf("❌ Failed to schedule job: %v", err)
		}
	}
	scheduler.Start()
	log.Printf("🕐 Scheduler started (%d jobs)", scheduler.Jobs())

	srv := &server{
		cfg:             cfg,
		logger:          appLogger,
		metrics:         prometheusMetrics,
		gatherer:        prometheus.DefaultGatherer,
		verifier:        verifier,
		generate:        handlers.NewGenerateHandler(coordinator, "/api/v1/plans"),
		billing:         handlers.NewBillingHandler(billingService, appLogger),
		health:          handlers.NewHealthHandler(cfg.APIEnvironment, healthChecks),
		globalLimiter:   globalRateLimiter,
		generateLimiter: generateRateLimiter,
		authLimiter:     authRateLimiter,
	}
	if cfg.FeatureAuthProxy {
		srv.auth = handlers.NewAuthHandler(supabase, notifier, prometheusMetrics, appLogger)
	}

	e := newEcho(srv)

	// Sentry error tracking middleware (if configured)
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 Scribely API starting on %s", address)
	log.Printf("📝 Log level: %s, Log format: %s", cfg.LogLevel, cfg.LogFormat)
	log.Printf("✍️  Generation provider: %s, quota ceiling: %d", cfg.GenerationProvider, tracker.Ceiling())
	log.Printf("🌍 CORS: %s (checkout: any origin)", cfg.FrontendURL)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("🔒 Auth proxy enabled: %t", cfg.FeatureAuthProxy)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop(ctx)

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}

// identityVerifiers returns the verifier used by request middleware and the one used by checkout.
// Requests try the local JWT check first when a secret is configured. Checkout always
// asks the identity provider, so a session revoked there cannot start a purchase.
func identityVerifiers(supabase *identity.SupabaseClient, jwtSecret string) (requests, checkout identity.Verifier) {
	if jwtSecret == "" {
		return supabase, supabase
	}
	return identity.Chain{identity.NewJWTVerifier(jwtSecret, ""), supabase}, supabase
}

// firstOrigin returns the first entry of a comma-separated origin list
func firstOrigin(urls string) string {
	first, _, _ := strings.Cut(urls, ",")
	return strings.TrimSpace(first)
}
