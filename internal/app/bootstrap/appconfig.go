// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dalemusser/contactmail/config"
	"github.com/dalemusser/contactmail/internal/contact"
	"github.com/dalemusser/contactmail/internal/mailer"
	"github.com/dalemusser/contactmail/internal/verify"
	"go.uber.org/zap"
)

// AppKeys are the service settings, loaded as CONTACT_<NAME>, --<name>, or
// <name> in config.toml/yaml/json.
var AppKeys = []config.AppKey{
	{Name: "operator_email", Default: "", Desc: "Address that receives contact submissions", Required: true},
	{Name: "from_email", Default: "", Desc: "From address for outgoing mail", Required: true},
	{Name: "from_name", Default: "", Desc: "From display name for outgoing mail"},
	{Name: "site_name", Default: "", Desc: "Site name used in subjects and the acknowledgment"},

	{Name: "mail_driver", Default: mailer.DriverSMTP, Desc: "Mail driver: smtp, resend, or log"},
	{Name: "smtp_host", Default: "", Desc: "SMTP relay host"},
	{Name: "smtp_port", Default: 587, Desc: "SMTP relay port"},
	{Name: "smtp_username", Default: "", Desc: "SMTP username"},
	{Name: "smtp_password", Default: "", Desc: "SMTP password", Secret: true},
	{Name: "smtp_tls", Default: mailer.TLSStartTLS, Desc: "SMTP TLS mode: starttls, ssl, or none"},
	{Name: "smtp_timeout", Default: "30s", Desc: "SMTP operation timeout"},
	{Name: "resend_api_key", Default: "", Desc: "Resend API key", Secret: true},

	{Name: "recaptcha_project_id", Default: "", Desc: "reCAPTCHA Enterprise Google Cloud project", Required: true},
	{Name: "recaptcha_site_key", Default: "", Desc: "reCAPTCHA site key", Required: true},
	{Name: "recaptcha_api_key", Default: "", Desc: "Google API key (empty: Application Default Credentials)", Secret: true},
	{Name: "recaptcha_endpoint", Default: verify.DefaultEndpoint, Desc: "reCAPTCHA Enterprise API base URL"},
	{Name: "recaptcha_timeout", Default: "10s", Desc: "Verification request timeout"},
	{Name: "recaptcha_action", Default: contact.DefaultExpectedAction, Desc: "Expected reCAPTCHA action"},
	{Name: "recaptcha_min_score", Default: contact.DefaultMinScore, Desc: "Minimum accepted reCAPTCHA score (0..1)"},
}

// AppConfig holds the typed service configuration.
type AppConfig struct {
	Contact contact.Config
	Mail    mailer.Config
	Verify  verify.Config
}

// LoadConfig loads the core config and the app keys, then validates the
// combination.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, values, err := config.Load(logger, config.EnvPrefix, AppKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}
	appCfg, err := buildAppConfig(values)
	if err != nil {
		return nil, AppConfig{}, err
	}
	return coreCfg, appCfg, nil
}

// buildAppConfig converts raw values and reports every problem at once.
func buildAppConfig(values config.AppConfigValues) (AppConfig, error) {
	var problems []error
	if err := config.RequireKeys(values, AppKeys); err != nil {
		problems = append(problems, err)
	}

	cfg := AppConfig{
		Contact: contact.Config{
			OperatorAddress: values.String("operator_email"),
			FromAddress:     values.String("from_email"),
			FromName:        values.String("from_name"),
			SiteName:        values.String("site_name"),
			ExpectedAction:  values.String("recaptcha_action"),
			MinScore:        values.Float64("recaptcha_min_score"),
		},
		Mail: mailer.Config{
			Driver: strings.ToLower(values.String("mail_driver")),
			SMTP: mailer.SMTPConfig{
				Host:     values.String("smtp_host"),
				Port:     values.Int("smtp_port"),
				Username: values.String("smtp_username"),
				Password: values.String("smtp_password"),
				TLS:      values.String("smtp_tls"),
				Timeout:  values.Duration("smtp_timeout", 30*time.Second),
			},
			Resend: mailer.ResendConfig{
				APIKey:  values.String("resend_api_key"),
				Timeout: values.Duration("smtp_timeout", 30*time.Second),
			},
		},
		Verify: verify.Config{
			ProjectID: values.String("recaptcha_project_id"),
			SiteKey:   values.String("recaptcha_site_key"),
			APIKey:    values.String("recaptcha_api_key"),
			Endpoint:  values.String("recaptcha_endpoint"),
			Timeout:   values.Duration("recaptcha_timeout", 10*time.Second),
		},
	}

	for _, key := range []string{"operator_email", "from_email"} {
		if v := values.String(key); v != "" {
			if _, err := mail.ParseAddress(v); err != nil {
				problems = append(problems, fmt.Errorf("%s: invalid address %q", key, v))
			}
		}
	}

	if cfg.Mail.Driver == "" {
		cfg.Mail.Driver = mailer.DriverSMTP
	}
	switch cfg.Mail.Driver {
	case mailer.DriverSMTP:
		if cfg.Mail.SMTP.Host == "" {
			problems = append(problems, errors.New("smtp_host is required when mail_driver=smtp"))
		}
	case mailer.DriverResend:
		if cfg.Mail.Resend.APIKey == "" {
			problems = append(problems, errors.New("resend_api_key is required when mail_driver=resend"))
		}
	case mailer.DriverLog:
	default:
		problems = append(problems, fmt.Errorf("mail_driver %q must be smtp, resend, or log", cfg.Mail.Driver))
	}

	if s := cfg.Contact.MinScore; s < 0 || s > 1 {
		problems = append(problems, fmt.Errorf("recaptcha_min_score %v must be in 0..1", s))
	}

	return cfg, errors.Join(problems...)
}
