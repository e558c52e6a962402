package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims() Claims {
	return Claims{
		Email: "writer@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestJWTVerifier_Valid(t *testing.T) {
	token := signToken(t, testSecret, validClaims())

	id, err := NewJWTVerifier(testSecret, "").Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id.ID)
	assert.Equal(t, "writer@example.com", id.Email)
	assert.Equal(t, token, id.AccessToken)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	noSubject := validClaims()
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, "another-secret-another-secret-another", validClaims())},
		{"expired", signToken(t, testSecret, expired)},
		{"wrong audience", signToken(t, testSecret, wrongAudience)},
		{"no subject", signToken(t, testSecret, noSubject)},
		{"garbage", "not.a.jwt"},
	}

	verifier := NewJWTVerifier(testSecret, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTVerifier_EmptyToken(t *testing.T) {
	_, err := NewJWTVerifier(testSecret, "").Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

type stubVerifier struct {
	id  *Identity
	err error
}

func (s stubVerifier) Verify(context.Context, string) (*Identity, error) {
	return s.id, s.err
}

func TestChain(t *testing.T) {
	ctx := context.Background()

	id, err := Chain{stubVerifier{err: ErrInvalidToken}, stubVerifier{id: &Identity{ID: "u"}}}.Verify(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u", id.ID)

	_, err = Chain{stubVerifier{err: ErrInvalidToken}}.Verify(ctx, "tok")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Chain{nil}.Verify(ctx, "tok")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Chain{stubVerifier{id: &Identity{ID: "u"}}}.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)
}
