package secrets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
)

// ErrNotFound is returned when a backend has no value for a key
var ErrNotFound = errors.New("secret not found")

// Manager resolves provider credentials by name
type Manager interface {
	GetSecret(ctx context.Context, key string) (string, error)
}

// Config holds secrets manager configuration
type Config struct {
	Backend       string // "env" or "aws-secrets-manager"
	AWSRegion     string
	CacheDuration time.Duration // default: 5m
}

// NewManager creates a secrets manager for the configured backend
func NewManager(cfg Config) (Manager, error) {
	if cfg.CacheDuration == 0 {
		cfg.CacheDuration = 5 * time.Minute
	}

	switch cfg.Backend {
	case "aws-secrets-manager", "aws":
		log.Printf("🔐 Initializing AWS Secrets Manager (region: %s)", cfg.AWSRegion)
		sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		return NewAWSManager(secretsmanager.New(sess), cfg.CacheDuration), nil
	case "", "env", "environment":
		return EnvManager{}, nil
	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", cfg.Backend)
	}
}

// EnvManager reads secrets from the process environment
type EnvManager struct{}

// GetSecret returns the environment variable named key
func (EnvManager) GetSecret(_ context.Context, key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return value, nil
}

// AWSManager reads secrets from AWS Secrets Manager and caches each value
type AWSManager struct {
	client secretsmanageriface.SecretsManagerAPI
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// NewAWSManager wraps an existing Secrets Manager client
func NewAWSManager(client secretsmanageriface.SecretsManagerAPI, ttl time.Duration) *AWSManager {
	return &AWSManager{
		client: client,
		ttl:    ttl,
		now:    time.Now,
		cache:  make(map[string]cachedSecret),
	}
}

// GetSecret returns the string value of the secret named key
func (m *AWSManager) GetSecret(ctx context.Context, key string) (string, error) {
	if value, ok := m.cached(key); ok {
		return value, nil
	}

	out, err := m.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(key),
	})
	if err != nil {
		var nf *secretsmanager.ResourceNotFoundException
		if errors.As(err, &nf) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("failed to get secret %s: %w", key, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", fmt.Errorf("%w: %s has no string value", ErrNotFound, key)
	}

	m.mu.Lock()
	m.cache[key] = cachedSecret{value: *out.SecretString, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()

	return *out.SecretString, nil
}

// Flush drops every cached value
func (m *AWSManager) Flush() {
	m.mu.Lock()
	m.cache = make(map[string]cachedSecret)
	m.mu.Unlock()
}

func (m *AWSManager) cached(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cache[key]
	if !ok || m.now().After(c.expiresAt) {
		return "", false
	}
	return c.value, true
}
