// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/contactmail/app"
	"github.com/dalemusser/contactmail/config"
	"github.com/dalemusser/contactmail/health"
	"github.com/dalemusser/contactmail/internal/contact"
	"github.com/dalemusser/contactmail/metrics"
	"github.com/dalemusser/contactmail/middleware"
	"github.com/dalemusser/contactmail/router"
	"github.com/dalemusser/contactmail/version"
	"go.uber.org/zap"
)

// BuildHandler mounts the contact endpoint and the operational routes on the
// standard router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps Deps, logger *zap.Logger) (http.Handler, error) {
	r := router.New(coreCfg, logger)

	contactHandler := contact.NewHandler(appCfg.Contact, deps.Gate, deps.Sender, logger)
	r.With(middleware.RequireJSON()).Post("/mail/send", contactHandler.ServeHTTP)

	health.Mount(r, deps.Checks, logger)
	version.Mount(r)
	if coreCfg.EnableMetrics {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	return r, nil
}

// Hooks wires the service into the app lifecycle.
var Hooks = app.Hooks[AppConfig, Deps]{
	Name:         "contactmail",
	LoadConfig:   LoadConfig,
	Connect:      Connect,
	BuildHandler: BuildHandler,
}
