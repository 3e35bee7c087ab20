// internal/contact/handler.go
package contact

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/contactmail/httputil"
	"github.com/dalemusser/contactmail/internal/apperr"
	"github.com/dalemusser/contactmail/internal/mailer"
	"github.com/dalemusser/contactmail/internal/verify"
	"github.com/dalemusser/contactmail/logging"
	"github.com/dalemusser/contactmail/metrics"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Caller-facing messages.
const (
	MessageSuccess       = "Thank you for your message! We'll get back to you soon."
	MessageTokenRequired = "Security verification is required. Please complete the verification and try again."
	MessageVerifyFailed  = "Security verification failed. Please try again."
)

// Email kinds for logs and metrics.
const (
	kindOperator  = "operator"
	kindSubmitter = "submitter"
)

var errNoOperator = errors.New("contact: operator address not configured")

// Handler accepts contact form posts: validate, verify, compose, dispatch.
type Handler struct {
	cfg      Config
	gate     *verify.Gate
	sender   mailer.Sender
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandler(cfg Config, gate *verify.Gate, sender mailer.Sender, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:      cfg.withDefaults(),
		gate:     gate,
		sender:   sender,
		validate: newValidator(),
		logger:   logger.Named("contact"),
	}
}

// ServeHTTP handles POST /mail/send.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqFields := logging.RequestFields(r)
	log := h.logger.With(reqFields...)

	outcome, err := h.handle(r, reqFields, log)
	metrics.RecordSubmission(outcome)
	if err != nil {
		apperr.Write(w, log, err)
		return
	}

	log.Info("contact submission accepted")
	httputil.WriteResult(w, http.StatusOK, true, MessageSuccess)
}

// handle runs the stages in order and returns the metrics outcome plus the
// error to report, if any. Nothing is sent unless validation and
// verification both pass.
func (h *Handler) handle(r *http.Request, reqFields []zap.Field, log *zap.Logger) (string, error) {
	if strings.TrimSpace(h.cfg.OperatorAddress) == "" || h.sender == nil || h.gate == nil {
		return metrics.OutcomeMisconfig, apperr.Server(errNoOperator)
	}

	var raw Submission
	if err := httputil.BindJSONAllowUnknown(r, &raw); err != nil {
		return metrics.OutcomeInvalid, apperr.Client("", err.Error())
	}
	sub := raw.Normalize()
	if err := validateSubmission(h.validate, sub); err != nil {
		return metrics.OutcomeInvalid, err
	}

	ctx := r.Context()
	ok, err := h.gate.With(reqFields...).Verify(ctx, sub.Token, h.cfg.ExpectedAction, h.cfg.MinScore)
	switch {
	case errors.Is(err, verify.ErrTokenRequired):
		return metrics.OutcomeUnverified, apperr.Client("token", MessageTokenRequired)
	case err != nil:
		return metrics.OutcomeUnverified, apperr.Auth(MessageVerifyFailed, err)
	case !ok:
		return metrics.OutcomeUnverified, apperr.Auth(MessageVerifyFailed, nil)
	}

	opMsg, err := h.cfg.operatorMessage(sub)
	if err != nil {
		return metrics.OutcomeDispatchFail, apperr.Server(err)
	}
	subMsg, err := h.cfg.submitterMessage(sub)
	if err != nil {
		return metrics.OutcomeDispatchFail, apperr.Server(err)
	}

	opErr, subErr := h.dispatch(ctx, opMsg, subMsg)
	if subErr != nil {
		log.Warn("submitter confirmation failed", zap.Error(subErr))
	}
	if opErr != nil {
		return metrics.OutcomeDispatchFail, apperr.Server(opErr)
	}
	return metrics.OutcomeAccepted, nil
}

// dispatch sends both messages concurrently and returns each send's error.
// Sends outlive a client disconnect; the mail clients' timeouts bound them.
func (h *Handler) dispatch(ctx context.Context, opMsg, subMsg mailer.Message) (opErr, subErr error) {
	ctx = context.WithoutCancel(ctx)
	var g errgroup.Group
	g.Go(func() error {
		opErr = h.sender.Send(ctx, opMsg)
		metrics.RecordEmail(kindOperator, opErr)
		return nil
	})
	g.Go(func() error {
		subErr = h.sender.Send(ctx, subMsg)
		metrics.RecordEmail(kindSubmitter, subErr)
		return nil
	})
	_ = g.Wait()
	return opErr, subErr
}
