package verify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *RecaptchaClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewRecaptchaClient(context.Background(), Config{
		ProjectID: "petsitter-prod",
		SiteKey:   "6Lc_site",
		APIKey:    "AIza-secret",
		Endpoint:  srv.URL,
	})
	require.NoError(t, err)
	return c
}

func TestRecaptchaAssess_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/projects/petsitter-prod/assessments", r.URL.Path)
		assert.Equal(t, "AIza-secret", r.URL.Query().Get("key"))

		var body assessmentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tok123", body.Event.Token)
		assert.Equal(t, "contact_form", body.Event.ExpectedAction)
		assert.Equal(t, "6Lc_site", body.Event.SiteKey)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "projects/123/assessments/abc",
			"tokenProperties": {"valid": true, "invalidReason": "INVALID_REASON_UNSPECIFIED", "action": "contact_form"},
			"riskAnalysis": {"score": 0.9, "reasons": []}
		}`))
	})

	res, err := c.Assess(context.Background(), "tok123", "contact_form")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "contact_form", res.Action)
	assert.Equal(t, 0.9, res.Score)
}

func TestRecaptchaAssess_InvalidToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tokenProperties": {"valid": false, "invalidReason": "MALFORMED"}}`))
	})

	res, err := c.Assess(context.Background(), "garbage", "contact_form")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "MALFORMED", res.InvalidReason)
	assert.Zero(t, res.Score)
}

func TestRecaptchaAssess_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid"}}`},
		{"malformed json", http.StatusOK, `{"tokenProperties":`},
		{"missing token properties", http.StatusOK, `{"riskAnalysis":{"score":0.9}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Assess(context.Background(), "tok123", "contact_form")
			assert.Error(t, err)
		})
	}
}

func TestRecaptchaAssess_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	c, err := NewRecaptchaClient(context.Background(), Config{
		ProjectID: "p", SiteKey: "s", APIKey: "AIza-secret", Endpoint: endpoint,
	})
	require.NoError(t, err)

	_, err = c.Assess(context.Background(), "tok123", "contact_form")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "AIza-secret")
}

func TestNewRecaptchaClient_RequiresIDs(t *testing.T) {
	_, err := NewRecaptchaClient(context.Background(), Config{SiteKey: "s", APIKey: "k"})
	assert.Error(t, err)
	_, err = NewRecaptchaClient(context.Background(), Config{ProjectID: "p", APIKey: "k"})
	assert.Error(t, err)
}
