package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func get(t *testing.T, h http.Handler, path string) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return rec.Code, resp
}

func TestHandler_Liveness(t *testing.T) {
	code, resp := get(t, Handler(nil, nil), "/health")
	if code != http.StatusOK || resp.Status != "ok" {
		t.Fatalf("got %d %+v, want 200 ok", code, resp)
	}
}

func TestMount_ReadyReportsFailures(t *testing.T) {
	r := chi.NewRouter()
	Mount(r, map[string]Check{
		"smtp":   func(ctx context.Context) error { return errors.New("dial tcp 10.0.0.5:587: refused") },
		"config": func(ctx context.Context) error { return nil },
	}, nil)

	code, resp := get(t, r, "/ready")
	if code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", code)
	}
	if resp.Checks["smtp"] != "error" || resp.Checks["config"] != "ok" {
		t.Errorf("checks = %v", resp.Checks)
	}

	code, _ = get(t, r, "/health")
	if code != http.StatusOK {
		t.Errorf("/health status = %d, want 200", code)
	}
}
