package config

import (
	"strings"
	"testing"
	"time"
)

func validCore() CoreConfig {
	return CoreConfig{
		Env:               "dev",
		LogLevel:          "info",
		HTTP:              HTTPConfig{HTTPPort: 8080, HTTPSPort: 443},
		EnableCompression: true,
		CompressionLevel:  5,
	}
}

func TestValidateCoreConfig_Valid(t *testing.T) {
	if err := validateCoreConfig(validCore()); err != nil {
		t.Fatalf("validateCoreConfig() = %v, want nil", err)
	}
}

func TestValidateCoreConfig_Problems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CoreConfig)
		want   string
	}{
		{"bad env", func(c *CoreConfig) { c.Env = "staging" }, `env must be "dev" or "prod"`},
		{"bad port", func(c *CoreConfig) { c.HTTP.HTTPPort = 0 }, "http_port must be in 1..65535"},
		{"lets encrypt without https", func(c *CoreConfig) {
			c.TLS.UseLetsEncrypt = true
			c.TLS.Domain = "example.com"
			c.TLS.LetsEncryptEmail = "ops@example.com"
		}, "use_lets_encrypt=true requires use_https=true"},
		{"manual tls without files", func(c *CoreConfig) { c.HTTP.UseHTTPS = true }, "CONTACT_CERT_FILE"},
		{"compression level", func(c *CoreConfig) { c.CompressionLevel = 12 }, "compression_level must be in 1..9"},
		{"cors wildcard with credentials", func(c *CoreConfig) {
			c.CORS.EnableCORS = true
			c.CORS.CORSAllowedOrigins = []string{"*"}
			c.CORS.CORSAllowedMethods = []string{"POST"}
			c.CORS.CORSAllowCredentials = true
		}, `cannot use "*"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validCore()
			tt.mutate(&cfg)
			err := validateCoreConfig(cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParseDurationFlexible(t *testing.T) {
	def := 7 * time.Second
	tests := []struct {
		raw     any
		want    time.Duration
		wantErr bool
	}{
		{"90s", 90 * time.Second, false},
		{"2m", 2 * time.Minute, false},
		{"120", 120 * time.Second, false},
		{"", def, false},
		{"soon", def, true},
		{"-5s", def, true},
		{30, 30 * time.Second, false},
		{int64(4), 4 * time.Second, false},
		{1.5, 1500 * time.Millisecond, false},
		{nil, def, false},
	}

	for _, tt := range tests {
		got, err := parseDurationFlexible(tt.raw, def)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDurationFlexible(%v) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseDurationFlexible(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLoadArgs_FlagsAndAppKeys(t *testing.T) {
	t.Setenv("CONTACT_OPERATOR_EMAIL", "owner@example.com")
	t.Setenv("CONTACT_HTTP_PORT", "9090")

	keys := []AppKey{
		{Name: "operator_email", Default: "", Required: true},
		{Name: "recaptcha_min_score", Default: 0.5},
		{Name: "smtp_port", Default: 587},
		{Name: "smtp_password", Default: "", Secret: true},
	}

	core, app, err := LoadArgs(nil, []string{"--log_level=warn", "--recaptcha_min_score=0.7"}, EnvPrefix, keys)
	if err != nil {
		t.Fatalf("LoadArgs() error = %v", err)
	}

	if core.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", core.LogLevel, "warn")
	}
	if core.HTTP.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d, want 9090", core.HTTP.HTTPPort)
	}
	if core.HTTP.ShutdownTimeout != 15*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 15s", core.HTTP.ShutdownTimeout)
	}
	if got := app.String("operator_email"); got != "owner@example.com" {
		t.Errorf("operator_email = %q, want %q", got, "owner@example.com")
	}
	if got := app.Float64("recaptcha_min_score"); got != 0.7 {
		t.Errorf("recaptcha_min_score = %v, want 0.7", got)
	}
	if got := app.Int("smtp_port"); got != 587 {
		t.Errorf("smtp_port = %d, want 587", got)
	}
	if err := RequireKeys(app, keys); err != nil {
		t.Errorf("RequireKeys() = %v, want nil", err)
	}
}

func TestRequireKeys_ReportsAllMissing(t *testing.T) {
	keys := []AppKey{
		{Name: "operator_email", Required: true},
		{Name: "from_email", Required: true},
		{Name: "from_name"},
	}
	err := RequireKeys(AppConfigValues{"operator_email": "  ", "from_name": ""}, keys)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"operator_email", "from_email"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want it to mention %q", err.Error(), want)
		}
	}
	if strings.Contains(err.Error(), "from_name") {
		t.Errorf("error = %q, optional key should not be reported", err.Error())
	}
}

func TestAppConfigValues_Accessors(t *testing.T) {
	vals := AppConfigValues{
		"s":   " text ",
		"i64": int64(42),
		"is":  "17",
		"f":   "0.25",
		"b":   "true",
		"d":   "90s",
		"l":   []string{"a", "b"},
	}

	if got := vals.String("s"); got != "text" {
		t.Errorf("String = %q, want %q", got, "text")
	}
	if got := vals.Int("i64"); got != 42 {
		t.Errorf("Int(int64) = %d, want 42", got)
	}
	if got := vals.Int("is"); got != 17 {
		t.Errorf("Int(string) = %d, want 17", got)
	}
	if got := vals.Float64("f"); got != 0.25 {
		t.Errorf("Float64 = %v, want 0.25", got)
	}
	if !vals.Bool("b") {
		t.Error("Bool = false, want true")
	}
	if got := vals.Duration("d", time.Second); got != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", got)
	}
	if got := vals.Duration("missing", time.Second); got != time.Second {
		t.Errorf("Duration(missing) = %v, want 1s", got)
	}
	if got := vals.StringSlice("l"); len(got) != 2 {
		t.Errorf("StringSlice = %v, want 2 items", got)
	}
}
