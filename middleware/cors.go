// middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/contactmail/config"
	"github.com/go-chi/cors"
)

// CORSFromConfig returns a middleware that applies CORS behavior based on the
// given CoreConfig's CORS section, or an identity middleware when disabled.
//
// The contact form is usually posted from a static site on another origin, so
// Content-Type is always allowed; without it the JSON preflight fails.
func CORSFromConfig(coreCfg *config.CoreConfig) func(next http.Handler) http.Handler {
	if coreCfg == nil || !coreCfg.CORS.EnableCORS {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	headers := coreCfg.CORS.CORSAllowedHeaders
	if !containsFold(headers, "Content-Type") {
		headers = append(append([]string{}, headers...), "Content-Type")
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   coreCfg.CORS.CORSAllowedOrigins,
		AllowedMethods:   coreCfg.CORS.CORSAllowedMethods,
		AllowedHeaders:   headers,
		ExposedHeaders:   coreCfg.CORS.CORSExposedHeaders,
		AllowCredentials: coreCfg.CORS.CORSAllowCredentials,
		MaxAge:           coreCfg.CORS.CORSMaxAge,
	})
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if http.CanonicalHeaderKey(v) == http.CanonicalHeaderKey(s) {
			return true
		}
	}
	return false
}
