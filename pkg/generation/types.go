package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/jordanlanch/scribely/pkg/domain"
)

// Style is the kind of content to write
type Style string

const (
	StyleArticle Style = "article"
	StyleBlog    Style = "blog"
	StyleScript  Style = "script"
)

// Length is an advisory size hint embedded in the prompt
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Request is a structured generation prompt
type Request struct {
	Topic  string
	Style  Style
	Length Length
}

// Result is the tagged outcome of a generation call.
// Exactly one of Text or Err is meaningful: callers must check Err first.
type Result struct {
	Text string
	Err  error
}

// Failed reports whether the call did not produce text.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Message returns the sanitized error message, or "" on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return domain.UserMessage(r.Err)
}

// Generator turns a structured request into generated text.
// apiKey overrides the credential configured on the generator when non-empty.
type Generator interface {
	Generate(ctx context.Context, req Request, apiKey string) Result
}

// ParseStyle parses a wire style value. Empty input yields the default (article).
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return StyleArticle, nil
	case StyleArticle:
		return StyleArticle, nil
	case StyleBlog:
		return StyleBlog, nil
	case StyleScript:
		return StyleScript, nil
	default:
		return "", domain.NewValidationError(fmt.Sprintf("unsupported style %q", s))
	}
}

// ParseLength parses a wire length value. Empty input yields the default (medium).
func ParseLength(s string) (Length, error) {
	switch Length(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return LengthMedium, nil
	case LengthShort:
		return LengthShort, nil
	case LengthMedium:
		return LengthMedium, nil
	case LengthLong:
		return LengthLong, nil
	default:
		return "", domain.NewValidationError(fmt.Sprintf("unsupported length %q", s))
	}
}

func failedWithStatus(status int) Result {
	return Result{Err: domain.NewTransportError(fmt.Sprintf("API request failed with status %d", status), nil)}
}

func invalidFormat() Result {
	return Result{Err: domain.NewFormatError("Invalid response format from API")}
}
