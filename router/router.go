// router/router.go
package router

import (
	"github.com/dalemusser/contactmail/config"
	"github.com/dalemusser/contactmail/logging"
	"github.com/dalemusser/contactmail/metrics"
	"github.com/dalemusser/contactmail/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// New creates a chi.Router pre-wired with the standard middleware stack:
// - RequestID
// - RealIP
// - Recoverer (panic → 500 JSON)
// - security headers
// - CORS (when enabled)
// - body size limit (MaxRequestBodyBytes)
// - compression (when enabled)
// - metrics HTTP middleware (when enabled)
// - request logging
// - NotFound / MethodNotAllowed JSON handlers
// It does NOT mount routes; those remain app-level decisions.
func New(coreCfg *config.CoreConfig, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Recoverer(logger))

	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))
	r.Use(middleware.CORSFromConfig(coreCfg))

	r.Use(middleware.LimitBodySize(coreCfg.MaxRequestBodyBytes))

	if coreCfg.EnableCompression {
		r.Use(middleware.CompressFromConfig(coreCfg))
	}
	if coreCfg.EnableMetrics {
		r.Use(metrics.HTTPMetrics)
	}

	r.Use(logging.RequestLogger(logger))

	r.NotFound(middleware.NotFoundHandler(logger))
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler(logger))

	return r
}
