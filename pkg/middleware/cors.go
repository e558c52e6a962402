package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4/middleware"
)

// AllowedMethods are the methods the application CORS policy allows
var AllowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodOptions,
}

// CheckoutAllowedHeaders are the request headers accepted by the checkout endpoint
var CheckoutAllowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// CORSConfig returns the CORS configuration for the API routes.
// frontendURLs is a comma-separated list of allowed origins.
func CORSConfig(frontendURLs string) middleware.CORSConfig {
	var origins []string
	for _, o := range strings.Split(frontendURLs, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}

	return middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     AllowedMethods,
		AllowCredentials: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Gemini-Api-Key",
			"X-Request-ID",
		},
	}
}

// CheckoutCORSConfig returns the permissive policy of the checkout endpoint:
// any origin, and the headers the browser client sends.
func CheckoutCORSConfig() middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodPost, http.MethodOptions},
		AllowHeaders: CheckoutAllowedHeaders,
	}
}
