// internal/contact/compose.go
package contact

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/dalemusser/contactmail/internal/mailer"
)

// Defaults for Config.
const (
	DefaultExpectedAction = "contact_form"
	DefaultMinScore       = 0.5
	DefaultSiteName       = "our team"
)

// Config is the immutable handler configuration.
type Config struct {
	// OperatorAddress receives every accepted submission.
	OperatorAddress string

	// FromAddress and FromName identify the sender of both emails.
	FromAddress string
	FromName    string

	// SiteName personalizes subjects and the acknowledgment.
	SiteName string

	// ExpectedAction must match the action bound to the verification token.
	ExpectedAction string

	// MinScore is the lowest accepted verification score. Zero accepts any
	// valid token; DefaultConfig starts from DefaultMinScore.
	MinScore float64
}

// DefaultConfig returns a Config with the default action, threshold and site
// name; callers fill in the addresses.
func DefaultConfig() Config {
	return Config{
		ExpectedAction: DefaultExpectedAction,
		MinScore:       DefaultMinScore,
		SiteName:       DefaultSiteName,
	}
}

func (c Config) withDefaults() Config {
	if c.ExpectedAction == "" {
		c.ExpectedAction = DefaultExpectedAction
	}
	if c.SiteName == "" {
		c.SiteName = DefaultSiteName
	}
	return c
}

var operatorTpl = template.Must(template.New("operator").Parse(`New contact form submission

Name:     {{.Sub.FullName}}
Email:    {{.Sub.Email}}
Phone:    {{.Sub.Phone}}
Pet type: {{.Sub.PetType}}
Dates:    {{.Sub.Dates}}

Message:
{{.Sub.Message}}

Reply to this email to answer {{.Sub.FirstName}} directly.
`))

var submitterTpl = template.Must(template.New("submitter").Parse(`Hi {{.Sub.FirstName}},

Thank you for contacting {{.SiteName}}! We have received your message and will get back to you soon.

If you need to add anything, just reply to this email.

Best regards,
{{.SiteName}}
`))

type tplData struct {
	Sub      Submission
	SiteName string
}

// operatorMessage notifies the operator; Reply-To points at the submitter.
func (c Config) operatorMessage(s Submission) (mailer.Message, error) {
	body, err := render(operatorTpl, tplData{Sub: s, SiteName: c.SiteName})
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{
		To:       c.OperatorAddress,
		From:     c.FromAddress,
		FromName: c.FromName,
		Subject:  fmt.Sprintf("New contact form submission from %s", s.FullName()),
		Body:     body,
		ReplyTo:  s.Email,
	}, nil
}

// submitterMessage acknowledges receipt to the submitter.
func (c Config) submitterMessage(s Submission) (mailer.Message, error) {
	body, err := render(submitterTpl, tplData{Sub: s, SiteName: c.SiteName})
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{
		To:       s.Email,
		From:     c.FromAddress,
		FromName: c.FromName,
		Subject:  fmt.Sprintf("Thank you for contacting %s", c.SiteName),
		Body:     body,
		ReplyTo:  c.OperatorAddress,
	}, nil
}

func render(t *template.Template, data tplData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
