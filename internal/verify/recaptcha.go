// internal/verify/recaptcha.go
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
)

// DefaultEndpoint is the reCAPTCHA Enterprise API base URL.
const DefaultEndpoint = "https://recaptchaenterprise.googleapis.com"

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	maxResponseBytes   = 1 << 20
)

// Config configures the reCAPTCHA Enterprise assessment client.
type Config struct {
	ProjectID string
	SiteKey   string

	// APIKey authenticates with ?key=. When empty, Application Default
	// Credentials are used instead.
	APIKey string

	// Endpoint overrides DefaultEndpoint.
	Endpoint string

	Timeout time.Duration

	// HTTPClient replaces the built-in client (tests).
	HTTPClient *http.Client
}

// RecaptchaClient requests assessments from reCAPTCHA Enterprise.
type RecaptchaClient struct {
	cfg    Config
	client *http.Client
	url    string
}

// NewRecaptchaClient validates cfg and prepares the HTTP client. Without an
// API key it resolves Application Default Credentials, which may read the
// environment or the metadata server.
func NewRecaptchaClient(ctx context.Context, cfg Config) (*RecaptchaClient, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("verify: project id is required")
	}
	if strings.TrimSpace(cfg.SiteKey) == "" {
		return nil, errors.New("verify: site key is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := cfg.HTTPClient
	switch {
	case client != nil:
	case cfg.APIKey != "":
		client = newHTTPClient(cfg.Timeout)
	default:
		adc, err := google.DefaultClient(ctx, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("verify: application default credentials: %w", err)
		}
		adc.Timeout = cfg.Timeout
		client = adc
	}

	u := strings.TrimRight(cfg.Endpoint, "/") + "/v1/projects/" + url.PathEscape(cfg.ProjectID) + "/assessments"
	if cfg.APIKey != "" {
		u += "?key=" + url.QueryEscape(cfg.APIKey)
	}

	return &RecaptchaClient{cfg: cfg, client: client, url: u}, nil
}

type assessmentRequest struct {
	Event assessmentEvent `json:"event"`
}

type assessmentEvent struct {
	Token          string `json:"token"`
	ExpectedAction string `json:"expectedAction"`
	SiteKey        string `json:"siteKey"`
}

type assessmentResponse struct {
	TokenProperties *struct {
		Valid         bool   `json:"valid"`
		InvalidReason string `json:"invalidReason"`
		Action        string `json:"action"`
	} `json:"tokenProperties"`
	RiskAnalysis *struct {
		Score   *float64 `json:"score"`
		Reasons []string `json:"reasons"`
	} `json:"riskAnalysis"`
}

// Assess implements Assessor. A response without tokenProperties is an
// error; a valid token without a score is reported as score 0.
func (c *RecaptchaClient) Assess(ctx context.Context, token, expectedAction string) (Result, error) {
	body, err := json.Marshal(assessmentRequest{Event: assessmentEvent{
		Token:          token,
		ExpectedAction: expectedAction,
		SiteKey:        c.cfg.SiteKey,
	}})
	if err != nil {
		return Result{}, fmt.Errorf("verify: encode assessment: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("verify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("verify: assessment request: %w", scrubKey(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, fmt.Errorf("verify: read assessment: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("verify: assessment status %d: %s", resp.StatusCode, snippet(raw))
	}

	var ar assessmentResponse
	if err := json.Unmarshal(raw, &ar); err != nil {
		return Result{}, fmt.Errorf("verify: decode assessment: %w", err)
	}
	if ar.TokenProperties == nil {
		return Result{}, errors.New("verify: assessment missing tokenProperties")
	}

	res := Result{
		Valid:         ar.TokenProperties.Valid,
		Action:        ar.TokenProperties.Action,
		InvalidReason: ar.TokenProperties.InvalidReason,
	}
	if ar.RiskAnalysis != nil {
		if ar.RiskAnalysis.Score != nil {
			res.Score = *ar.RiskAnalysis.Score
		}
		res.Reasons = ar.RiskAnalysis.Reasons
	}
	return res, nil
}

// scrubKey drops the request URL from transport errors so the API key in
// the query string never reaches the logs.
func scrubKey(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}

func snippet(b []byte) string {
	const maxSnippet = 200
	s := strings.TrimSpace(string(b))
	if len(s) > maxSnippet {
		s = s[:maxSnippet] + "…"
	}
	return s
}
