// internal/verify/verify.go
// Package verify decides whether a bot-verification token is trustworthy
// enough to let a submission through. It fails closed.
package verify

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/contactmail/logging"
	"github.com/dalemusser/contactmail/metrics"
	"go.uber.org/zap"
)

// ErrTokenRequired is returned by Verify for a blank token. No assessment
// is requested in that case.
var ErrTokenRequired = errors.New("verify: token required")

// Result is the scoring service's verdict on one token.
type Result struct {
	Valid         bool
	Action        string
	Score         float64
	InvalidReason string
	Reasons       []string
}

// Assessor asks the scoring service about a token.
type Assessor interface {
	Assess(ctx context.Context, token, expectedAction string) (Result, error)
}

// Decision labels, also used as the verification counter's result label.
const (
	DecisionAccepted       = "accepted"
	DecisionTokenMissing   = "token_missing"
	DecisionUnavailable    = "unavailable"
	DecisionInvalidToken   = "invalid_token"
	DecisionActionMismatch = "action_mismatch"
	DecisionLowScore       = "low_score"
	DecisionMalformed      = "malformed"
)

// Gate turns an assessment into accept or reject.
type Gate struct {
	assessor Assessor
	logger   *zap.Logger
}

func NewGate(assessor Assessor, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{assessor: assessor, logger: logger.Named("verify")}
}

// With returns a Gate whose decision logs carry fields (request id etc.).
func (g *Gate) With(fields ...zap.Field) *Gate {
	return &Gate{assessor: g.assessor, logger: g.logger.With(fields...)}
}

// Verify reports whether token passes: a valid assessment whose action equals
// expectedAction and whose score is at least minScore. Any failure to obtain
// or interpret an assessment is a rejection, never an error; the only error
// is ErrTokenRequired.
func (g *Gate) Verify(ctx context.Context, token, expectedAction string, minScore float64) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		g.reject(DecisionTokenMissing)
		return false, ErrTokenRequired
	}

	log := g.logger.With(zap.String("token", logging.Redact(token)))

	if g.assessor == nil {
		g.rejectLog(log, DecisionUnavailable, zap.String("error", "no assessor configured"))
		return false, nil
	}

	res, err := g.assessor.Assess(ctx, token, expectedAction)
	if err != nil {
		g.rejectLog(log, DecisionUnavailable, zap.Error(err))
		return false, nil
	}

	switch {
	case !res.Valid:
		g.rejectLog(log, DecisionInvalidToken, zap.String("invalid_reason", res.InvalidReason))
		return false, nil
	case res.Score < 0 || res.Score > 1:
		g.rejectLog(log, DecisionMalformed, zap.Float64("score", res.Score))
		return false, nil
	case res.Action != expectedAction:
		g.rejectLog(log, DecisionActionMismatch,
			zap.String("action", res.Action),
			zap.String("expected_action", expectedAction))
		return false, nil
	case res.Score < minScore:
		g.rejectLog(log, DecisionLowScore,
			zap.Float64("score", res.Score),
			zap.Float64("min_score", minScore),
			zap.Strings("reasons", res.Reasons))
		return false, nil
	}

	metrics.RecordVerification(DecisionAccepted)
	log.Info("verification accepted",
		zap.String("action", res.Action),
		zap.Float64("score", res.Score))
	return true, nil
}

func (g *Gate) reject(decision string) {
	metrics.RecordVerification(decision)
	g.logger.Warn("verification rejected", zap.String("reason", decision))
}

func (g *Gate) rejectLog(log *zap.Logger, decision string, fields ...zap.Field) {
	metrics.RecordVerification(decision)
	log.Warn("verification rejected", append([]zap.Field{zap.String("reason", decision)}, fields...)...)
}
