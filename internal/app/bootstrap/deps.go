// internal/app/bootstrap/deps.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/contactmail/config"
	"github.com/dalemusser/contactmail/health"
	"github.com/dalemusser/contactmail/internal/mailer"
	"github.com/dalemusser/contactmail/internal/verify"
	"go.uber.org/zap"
)

// Deps holds the outbound clients the handlers use.
type Deps struct {
	Sender mailer.Sender
	Gate   *verify.Gate

	// Checks back the /ready probe.
	Checks map[string]health.Check
}

// Connect builds the mail sender and the verification gate.
func Connect(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (Deps, error) {
	if appCfg.Mail.Driver == mailer.DriverLog && coreCfg.Env == "prod" {
		logger.Warn("mail_driver=log in prod: contact emails will only be logged")
	}

	sender, err := mailer.New(appCfg.Mail, logger)
	if err != nil {
		return Deps{}, fmt.Errorf("mail sender: %w", err)
	}

	assessor, err := verify.NewRecaptchaClient(ctx, appCfg.Verify)
	if err != nil {
		return Deps{}, fmt.Errorf("verification client: %w", err)
	}

	checks := map[string]health.Check{}
	if smtp, ok := sender.(*mailer.SMTPSender); ok {
		checks["smtp"] = smtp.Ping
	}

	logger.Info("outbound clients ready",
		zap.String("mail_driver", appCfg.Mail.Driver),
		zap.String("recaptcha_project", appCfg.Verify.ProjectID),
		zap.Bool("recaptcha_adc", appCfg.Verify.APIKey == ""),
	)

	return Deps{
		Sender: sender,
		Gate:   verify.NewGate(assessor, logger),
		Checks: checks,
	}, nil
}
