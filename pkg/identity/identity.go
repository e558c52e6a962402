package identity

import (
	"context"
	"errors"
	"fmt"
)

// Identity is the authenticated caller as seen by the core: read-only, owned by the identity provider
type Identity struct {
	ID          string
	Email       string
	AccessToken string
}

// User is the identity provider's user record
type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	EmailConfirmedAt string `json:"email_confirmed_at,omitempty"`
}

// Session is an authenticated session issued by the identity provider
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Verifier resolves an access token into an identity
type Verifier interface {
	Verify(ctx context.Context, accessToken string) (*Identity, error)
}

var (
	// ErrMissingToken is returned when no access token was supplied
	ErrMissingToken = errors.New("missing access token")
	// ErrInvalidToken is returned when the provider rejects the access token
	ErrInvalidToken = errors.New("invalid access token")
	// ErrEmailNotConfirmed is returned on sign-in before the email address was confirmed
	ErrEmailNotConfirmed = errors.New("email not confirmed")
)

// ProviderError is a non-success answer from the identity provider
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider returned status %d: %s", e.Status, e.Message)
}

// Chain tries each verifier in order and returns the first identity.
// The last error is returned when every verifier fails.
type Chain []Verifier

// Verify implements Verifier
func (c Chain) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}
	err := ErrInvalidToken
	for _, v := range c {
		if v == nil {
			continue
		}
		var id *Identity
		id, err = v.Verify(ctx, accessToken)
		if err == nil {
			return id, nil
		}
	}
	return nil, err
}
