// health/health.go
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/contactmail/httputil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// checkTimeout bounds each probe so a hung dependency cannot hang the probe.
const checkTimeout = 3 * time.Second

// Check is a single probe. It returns nil when the dependency is usable.
type Check func(ctx context.Context) error

// Response is the JSON body of both probes. Failing checks report "error";
// details go to the log only.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler runs checks concurrently on each request. With no checks it is a
// plain liveness probe answering {"status":"ok"}. Any failure yields 503.
func Handler(checks map[string]Check, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(names) == 0 {
			httputil.WriteJSON(w, http.StatusOK, Response{Status: "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		errs := make([]error, len(names))
		var wg sync.WaitGroup
		for i, name := range names {
			check := checks[name]
			if check == nil {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = check(ctx)
			}()
		}
		wg.Wait()

		resp := Response{Status: "ok", Checks: make(map[string]string, len(names))}
		status := http.StatusOK
		for i, name := range names {
			if errs[i] != nil {
				logger.Warn("health check failed", zap.String("check", name), zap.Error(errs[i]))
				resp.Checks[name] = "error"
				resp.Status = "error"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	})
}

// Mount attaches GET /health (liveness, no checks) and GET /ready (the
// given checks).
func Mount(r chi.Router, checks map[string]Check, logger *zap.Logger) {
	r.Method(http.MethodGet, "/health", Handler(nil, logger))
	r.Method(http.MethodGet, "/ready", Handler(checks, logger))
}
