package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/contactmail/config"
	"github.com/dalemusser/contactmail/httputil"
	"github.com/dalemusser/contactmail/internal/contact"
	"github.com/dalemusser/contactmail/internal/mailer"
	"github.com/dalemusser/contactmail/internal/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func baseValues() config.AppConfigValues {
	return config.AppConfigValues{
		"operator_email":       "owner@petsitter.example",
		"from_email":           "noreply@petsitter.example",
		"from_name":            "Pet Sitter",
		"mail_driver":          "smtp",
		"smtp_host":            "smtp.example.com",
		"smtp_port":            int64(2525),
		"smtp_timeout":         "5s",
		"recaptcha_project_id": "petsitter-prod",
		"recaptcha_site_key":   "6Lc_site",
		"recaptcha_action":     "contact_form",
		"recaptcha_min_score":  "0.7",
		"recaptcha_timeout":    "3s",
	}
}

func TestBuildAppConfig(t *testing.T) {
	cfg, err := buildAppConfig(baseValues())
	require.NoError(t, err)

	assert.Equal(t, "owner@petsitter.example", cfg.Contact.OperatorAddress)
	assert.Equal(t, 0.7, cfg.Contact.MinScore)
	assert.Equal(t, "contact_form", cfg.Contact.ExpectedAction)
	assert.Equal(t, 2525, cfg.Mail.SMTP.Port)
	assert.Equal(t, 5*time.Second, cfg.Mail.SMTP.Timeout)
	assert.Equal(t, 3*time.Second, cfg.Verify.Timeout)
	assert.Equal(t, "petsitter-prod", cfg.Verify.ProjectID)
}

func TestBuildAppConfig_ZeroMinScoreKept(t *testing.T) {
	vals := baseValues()
	vals["recaptcha_min_score"] = "0"

	cfg, err := buildAppConfig(vals)
	require.NoError(t, err)
	assert.Zero(t, cfg.Contact.MinScore)
}

func TestBuildAppConfig_ReportsAllProblems(t *testing.T) {
	vals := baseValues()
	delete(vals, "operator_email")
	vals["from_email"] = "not an address"
	vals["smtp_host"] = ""
	vals["recaptcha_min_score"] = "1.5"

	_, err := buildAppConfig(vals)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"operator_email", "from_email", "smtp_host", "recaptcha_min_score"} {
		assert.Contains(t, msg, want)
	}
}

func TestBuildAppConfig_Drivers(t *testing.T) {
	vals := baseValues()
	vals["mail_driver"] = "resend"
	_, err := buildAppConfig(vals)
	assert.ErrorContains(t, err, "resend_api_key")

	vals["resend_api_key"] = "re_123"
	_, err = buildAppConfig(vals)
	assert.NoError(t, err)

	vals["mail_driver"] = "fax"
	_, err = buildAppConfig(vals)
	assert.ErrorContains(t, err, "mail_driver")
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (s *recordingSender) Send(ctx context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

type staticAssessor verify.Result

func (a staticAssessor) Assess(ctx context.Context, token, expectedAction string) (verify.Result, error) {
	return verify.Result(a), nil
}

func testHandler(t *testing.T) (http.Handler, *recordingSender) {
	t.Helper()
	core := &config.CoreConfig{
		Env:                 "dev",
		MaxRequestBodyBytes: 64 << 10,
		EnableMetrics:       true,
		Security:            config.SecurityConfig{EnableSecurityHeaders: true, XContentTypeOptions: "nosniff"},
	}
	appCfg := AppConfig{Contact: contact.Config{
		OperatorAddress: "owner@petsitter.example",
		FromAddress:     "noreply@petsitter.example",
	}}
	sender := &recordingSender{}
	deps := Deps{
		Sender: sender,
		Gate:   verify.NewGate(staticAssessor{Valid: true, Action: "contact_form", Score: 0.9}, zap.NewNop()),
	}
	h, err := BuildHandler(core, appCfg, deps, zap.NewNop())
	require.NoError(t, err)
	return h, sender
}

const validBody = `{"firstName":"Jane","lastName":"Doe","email":"JANE@x.com ","phone":"555-1234",
"petType":"dog","dates":"Jul 1-5","message":"Hello","token":"tok123"}`

func TestRoutes_MailSend(t *testing.T) {
	h, sender := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/mail/send", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res httputil.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Len(t, sender.sent, 2)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRoutes_MailSendRequiresJSON(t *testing.T) {
	h, sender := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/mail/send", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Empty(t, sender.sent)
}

func TestRoutes_Operational(t *testing.T) {
	h, _ := testHandler(t)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/version", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/mail/send", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
	}
}
