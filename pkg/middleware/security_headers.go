package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APISecurityHeaders are set on every API response. Responses are JSON and are
// never rendered, framed or stored by shared caches.
var APISecurityHeaders = map[string]string{
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'; base-uri 'none'",
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Referrer-Policy":         "no-referrer",
	"Permissions-Policy":      "camera=(), microphone=(), geolocation=(), payment=()",
	"Cache-Control":           "no-store",
}

// SecurityHeaders sets APISecurityHeaders merged with overrides.
// An override with an empty value removes that header.
func SecurityHeaders(overrides map[string]string) echo.MiddlewareFunc {
	headers := make(http.Header, len(APISecurityHeaders))
	for name, value := range APISecurityHeaders {
		headers.Set(name, value)
	}
	for name, value := range overrides {
		if value == "" {
			headers.Del(name)
			continue
		}
		headers.Set(name, value)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for name, values := range headers {
				h[name] = append([]string(nil), values...)
			}
			return next(c)
		}
	}
}
