package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/jordanlanch/scribely/config"
)

// credentialKeys maps secret names to the config fields they fill
func credentialKeys(cfg *config.Config) map[string]*string {
	return map[string]*string{
		"GEMINI_API_KEY":      &cfg.GeminiAPIKey,
		"OPENAI_API_KEY":      &cfg.OpenAIAPIKey,
		"SUPABASE_ANON_KEY":   &cfg.SupabaseAnonKey,
		"SUPABASE_JWT_SECRET": &cfg.SupabaseJWTSecret,
		"STRIPE_SECRET_KEY":   &cfg.StripeSecretKey,
		"REDIS_URL":           &cfg.RedisURL,
	}
}

// ApplyCredentials overwrites provider credentials in cfg with values held by m.
// Keys the backend does not know keep their configured value.
func ApplyCredentials(ctx context.Context, m Manager, cfg *config.Config) (int, error) {
	applied := 0
	for key, field := range credentialKeys(cfg) {
		value, err := m.GetSecret(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return applied, fmt.Errorf("load %s: %w", key, err)
		}
		*field = value
		applied++
	}
	return applied, nil
}
