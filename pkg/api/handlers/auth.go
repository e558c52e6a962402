package handlers

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/scribely/pkg/api/errors"
	"github.com/jordanlanch/scribely/pkg/api/middleware"
	"github.com/jordanlanch/scribely/pkg/identity"
	"github.com/jordanlanch/scribely/pkg/logger"
	"github.com/jordanlanch/scribely/pkg/metrics"
	"github.com/jordanlanch/scribely/pkg/models"
	"github.com/labstack/echo/v4"
)

// AuthProvider is the identity provider surface used by the auth endpoints
type AuthProvider interface {
	SignUp(ctx context.Context, email, password string) (*identity.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*identity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	ResendConfirmation(ctx context.Context, email string) error
}

// AuthHandler proxies authentication to the identity provider
type AuthHandler struct {
	provider  AuthProvider
	notifier  *identity.Notifier
	metrics   *metrics.Metrics
	logger    logger.Logger
	validator *validator.Validate
}

// NewAuthHandler creates a new auth handler. notifier and m may be nil.
func NewAuthHandler(provider AuthProvider, notifier *identity.Notifier, m *metrics.Metrics, log logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.Default()
	}
	return &AuthHandler{
		provider:  provider,
		notifier:  notifier,
		metrics:   m,
		logger:    log.With("handler", "auth"),
		validator: validator.New(),
	}
}

func (h *AuthHandler) publish(t identity.EventType, userID, email string) {
	if h.notifier != nil {
		h.notifier.Publish(identity.Event{Type: t, UserID: userID, Email: email})
	}
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid request body",
	})
}

// providerFailure maps an identity provider error onto a response
func (h *AuthHandler) providerFailure(c echo.Context, err error, fallback string) error {
	var pe *identity.ProviderError
	if stderrors.As(err, &pe) && pe.Status >= 400 && pe.Status < 500 {
		return c.JSON(pe.Status, models.ErrorResponse{
			Error:   "auth_error",
			Message: fallback,
		})
	}
	return errors.InternalError(c, err)
}

// SignUp registers a user; the provider emails a confirmation link
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req models.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	user, err := h.provider.SignUp(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.providerFailure(c, err, "Could not create the account")
	}

	h.publish(identity.EventSignedUp, user.ID, user.Email)
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Please check your email to confirm your account",
	})
}

// SignIn exchanges email and password for a session
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	session, err := h.provider.SignInWithPassword(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordLoginAttempt(false)
		if stderrors.Is(err, identity.ErrEmailNotConfirmed) {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "email_not_confirmed",
				Message: "Please confirm your email before signing in",
			})
		}
		var pe *identity.ProviderError
		if stderrors.As(err, &pe) && pe.Status >= 400 && pe.Status < 500 {
			return errors.UnauthorizedError(c, "Invalid email or password")
		}
		return errors.InternalError(c, err)
	}

	h.metrics.RecordLoginAttempt(true)
	resp := sessionResponse(session)
	h.publish(identity.EventSignedIn, resp.User.ID, resp.User.Email)
	return c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new session
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req models.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	session, err := h.provider.RefreshSession(c.Request().Context(), req.RefreshToken)
	if err != nil {
		var pe *identity.ProviderError
		if stderrors.As(err, &pe) && pe.Status >= 400 && pe.Status < 500 {
			return errors.UnauthorizedError(c, "Your session has expired. Please sign in again.")
		}
		return errors.InternalError(c, err)
	}

	resp := sessionResponse(session)
	h.publish(identity.EventTokenRefreshed, resp.User.ID, resp.User.Email)
	return c.JSON(http.StatusOK, resp)
}

// SignOut revokes the caller's session
func (h *AuthHandler) SignOut(c echo.Context) error {
	caller := middleware.Identity(c)

	if err := h.provider.SignOut(c.Request().Context(), middleware.Token(c)); err != nil {
		// the client drops its tokens either way
		h.logger.Warn("Provider sign-out failed", "user_id", caller.ID, "error", err)
	}

	h.publish(identity.EventSignedOut, caller.ID, caller.Email)
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Signed out"})
}

// Resend resends the sign-up confirmation email
func (h *AuthHandler) Resend(c echo.Context) error {
	var req models.ResendRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	if err := h.provider.ResendConfirmation(c.Request().Context(), req.Email); err != nil {
		return h.providerFailure(c, err, "Could not resend the confirmation email")
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Confirmation email sent",
	})
}

// Me returns the authenticated caller
func (h *AuthHandler) Me(c echo.Context) error {
	caller := middleware.Identity(c)
	return c.JSON(http.StatusOK, models.UserInfo{ID: caller.ID, Email: caller.Email})
}

func sessionResponse(s *identity.Session) models.SessionResponse {
	resp := models.SessionResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		User:         &models.UserInfo{},
	}
	if s.User != nil {
		resp.User.ID = s.User.ID
		resp.User.Email = s.User.Email
	}
	return resp
}
