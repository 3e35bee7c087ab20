// metrics/contact.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by final outcome.",
		},
		[]string{"outcome"},
	)

	verifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_verifications_total",
			Help: "Bot-verification decisions by result.",
		},
		[]string{"result"},
	)

	emails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_emails_total",
			Help: "Outbound notification emails by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
)

// Submission outcomes.
const (
	OutcomeAccepted     = "accepted"
	OutcomeInvalid      = "invalid"
	OutcomeUnverified   = "unverified"
	OutcomeDispatchFail = "dispatch_failed"
	OutcomeMisconfig    = "misconfigured"
)

// RecordSubmission counts a finished contact request.
func RecordSubmission(outcome string) {
	submissions.WithLabelValues(outcome).Inc()
}

// RecordVerification counts a verification gate decision, labeled with the
// rejection reason or "accepted".
func RecordVerification(result string) {
	verifications.WithLabelValues(result).Inc()
}

// RecordEmail counts one send attempt. kind is "operator" or "submitter".
func RecordEmail(kind string, err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	emails.WithLabelValues(kind, outcome).Inc()
}
