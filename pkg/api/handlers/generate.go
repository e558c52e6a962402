package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/scribely/pkg/api/errors"
	"github.com/jordanlanch/scribely/pkg/api/middleware"
	"github.com/jordanlanch/scribely/pkg/domain"
	"github.com/jordanlanch/scribely/pkg/gating"
	"github.com/jordanlanch/scribely/pkg/generation"
	"github.com/jordanlanch/scribely/pkg/models"
	"github.com/labstack/echo/v4"
)

// APIKeyHeader lets a caller use their own generation provider key
const APIKeyHeader = "X-Gemini-Api-Key"

// GenerateHandler handles content generation endpoints
type GenerateHandler struct {
	coordinator *gating.Coordinator
	upgradeURL  string
	validator   *validator.Validate
}

// NewGenerateHandler creates a new generate handler.
// upgradeURL is where clients are sent when the quota is exhausted.
func NewGenerateHandler(coordinator *gating.Coordinator, upgradeURL string) *GenerateHandler {
	return &GenerateHandler{
		coordinator: coordinator,
		upgradeURL:  upgradeURL,
		validator:   validator.New(),
	}
}

// Generate runs one gated generation
func (h *GenerateHandler) Generate(c echo.Context) error {
	var req models.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	style, err := generation.ParseStyle(req.Style)
	if err != nil {
		return errors.DomainError(c, err)
	}
	length, err := generation.ParseLength(req.Length)
	if err != nil {
		return errors.DomainError(c, err)
	}

	caller := middleware.Identity(c)
	genReq := generation.Request{Topic: req.Topic, Style: style, Length: length}

	out, err := h.coordinator.Generate(c.Request().Context(), genReq, caller, c.Request().Header.Get(APIKeyHeader))
	if err != nil {
		if domain.IsQuotaExhausted(err) {
			return h.quotaExceeded(c, err)
		}
		return errors.DomainError(c, err)
	}

	if out.Result.Failed() {
		return c.JSON(http.StatusBadGateway, models.GenerateResponse{
			Text:  "",
			Error: out.Result.Message(),
		})
	}

	return c.JSON(http.StatusOK, models.GenerateResponse{Text: out.Result.Text})
}

func (h *GenerateHandler) quotaExceeded(c echo.Context, err error) error {
	resp := models.QuotaExceededResponse{
		Error:      "quota_exhausted",
		Message:    domain.UserMessage(err),
		UpgradeURL: h.upgradeURL,
	}
	if u, uerr := h.coordinator.Usage(c.Request().Context(), middleware.Identity(c)); uerr == nil {
		resp.Usage = &models.UsageInfo{Used: u.Used, Limit: u.Limit, Remaining: u.Remaining}
	}
	return c.JSON(http.StatusPaymentRequired, resp)
}

// Usage returns the caller's quota usage
func (h *GenerateHandler) Usage(c echo.Context) error {
	u, err := h.coordinator.Usage(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return errors.DomainError(c, err)
	}
	return c.JSON(http.StatusOK, models.UsageInfo{
		Used:      u.Used,
		Limit:     u.Limit,
		Remaining: u.Remaining,
	})
}
