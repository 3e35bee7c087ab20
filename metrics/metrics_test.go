package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "h"}, // é is two bytes; never split it
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateUTF8(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateUTF8(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestRecordEmail(t *testing.T) {
	beforeSent := testutil.ToFloat64(emails.WithLabelValues("operator", "sent"))
	beforeFailed := testutil.ToFloat64(emails.WithLabelValues("submitter", "failed"))

	RecordEmail("operator", nil)
	RecordEmail("submitter", errors.New("smtp down"))

	if got := testutil.ToFloat64(emails.WithLabelValues("operator", "sent")); got != beforeSent+1 {
		t.Errorf("operator/sent = %v, want %v", got, beforeSent+1)
	}
	if got := testutil.ToFloat64(emails.WithLabelValues("submitter", "failed")); got != beforeFailed+1 {
		t.Errorf("submitter/failed = %v, want %v", got, beforeFailed+1)
	}
}

func TestHTTPMetrics_RecordsStatus(t *testing.T) {
	RegisterDefault(nil)

	handler := HTTPMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/mail/send", nil))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `http_request_duration_seconds_count{method="POST",path="/mail/send",status="202"}`) {
		t.Error("expected a histogram sample for POST /mail/send 202")
	}
}
