package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jordanlanch/scribely/pkg/logger"
)

// SupabaseConfig for the Supabase Auth (GoTrue) client
type SupabaseConfig struct {
	URL        string // project URL, e.g. https://xyz.supabase.co
	AnonKey    string
	HTTPClient *http.Client
}

// SupabaseClient talks to the Supabase Auth REST API
type SupabaseClient struct {
	baseURL string
	anonKey string
	client  *http.Client
	logger  logger.Logger
}

// NewSupabaseClient creates a new Supabase Auth client
func NewSupabaseClient(cfg SupabaseConfig, log logger.Logger) *SupabaseClient {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.Default()
	}
	return &SupabaseClient{
		baseURL: strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		anonKey: cfg.AnonKey,
		client:  cfg.HTTPClient,
		logger:  log.With("provider", "supabase"),
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// providerErrorBody covers both the legacy and the current GoTrue error shapes
type providerErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (b providerErrorBody) text() string {
	for _, s := range []string{b.Msg, b.ErrorDescription, b.Message, b.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// GetUser returns the user owning accessToken
func (c *SupabaseClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}

	var user User
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &user); err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && (pe.Status == http.StatusUnauthorized || pe.Status == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidToken, pe.Message)
		}
		return nil, err
	}
	return &user, nil
}

// Verify implements Verifier through the provider's token-verification call
func (c *SupabaseClient) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	user, err := c.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &Identity{ID: user.ID, Email: user.Email, AccessToken: accessToken}, nil
}

// SignInWithPassword exchanges email and password for a session
func (c *SupabaseClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", credentials{Email: email, Password: password}, &session)
	if err != nil {
		return nil, mapEmailNotConfirmed(err)
	}
	return &session, nil
}

// RefreshSession exchanges a refresh token for a new session
func (c *SupabaseClient) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	var session Session
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignUp registers a new user. The provider sends the confirmation email.
func (c *SupabaseClient) SignUp(ctx context.Context, email, password string) (*User, error) {
	var raw struct {
		User
		Nested *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/signup", "", credentials{Email: email, Password: password}, &raw); err != nil {
		return nil, err
	}
	if raw.Nested != nil {
		return raw.Nested, nil
	}
	return &raw.User, nil
}

// SignOut revokes the session behind accessToken
func (c *SupabaseClient) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrMissingToken
	}
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

// ResendConfirmation resends the sign-up confirmation email
func (c *SupabaseClient) ResendConfirmation(ctx context.Context, email string) error {
	body := map[string]string{"type": "signup", "email": email}
	return c.do(ctx, http.MethodPost, "/resend", "", body, nil)
}

func (c *SupabaseClient) do(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Identity provider request failed", "path", path, "error", err)
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb providerErrorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, &eb)
		msg := eb.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.Warn("Identity provider rejected request", "path", path, "status", resp.StatusCode, "error_code", eb.ErrorCode)
		return &ProviderError{Status: resp.StatusCode, Code: eb.ErrorCode, Message: msg}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode identity provider response: %w", err)
	}
	return nil
}

func mapEmailNotConfirmed(err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) && (pe.Code == "email_not_confirmed" || strings.Contains(pe.Message, "Email not confirmed")) {
		return ErrEmailNotConfirmed
	}
	return err
}

var _ Verifier = (*SupabaseClient)(nil)
var _ Verifier = (*JWTVerifier)(nil)
var _ Verifier = Chain(nil)
