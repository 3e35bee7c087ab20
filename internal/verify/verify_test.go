package verify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAssessor struct {
	res   Result
	err   error
	calls int
}

func (f *fakeAssessor) Assess(ctx context.Context, token, expectedAction string) (Result, error) {
	f.calls++
	return f.res, f.err
}

const testToken = "03AGdBq24PBCbwiDRaS_MJ7Z3rTkQ9"

func TestGateVerify(t *testing.T) {
	tests := []struct {
		name   string
		res    Result
		err    error
		want   bool
		reason string
	}{
		{"accepted", Result{Valid: true, Action: "contact_form", Score: 0.9}, nil, true, ""},
		{"score equal to threshold", Result{Valid: true, Action: "contact_form", Score: 0.5}, nil, true, ""},
		{"low score", Result{Valid: true, Action: "contact_form", Score: 0.3}, nil, false, DecisionLowScore},
		{"action mismatch", Result{Valid: true, Action: "login", Score: 0.9}, nil, false, DecisionActionMismatch},
		{"invalid token", Result{Valid: false, InvalidReason: "EXPIRED"}, nil, false, DecisionInvalidToken},
		{"score out of range", Result{Valid: true, Action: "contact_form", Score: 1.7}, nil, false, DecisionMalformed},
		{"service error", Result{}, errors.New("dial tcp: i/o timeout"), false, DecisionUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			fa := &fakeAssessor{res: tt.res, err: tt.err}
			g := NewGate(fa, zap.New(core))

			ok, err := g.Verify(context.Background(), testToken, "contact_form", 0.5)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, 1, fa.calls)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			if tt.want {
				assert.Equal(t, "verification accepted", entry.Message)
				assert.Equal(t, tt.res.Score, entry.ContextMap()["score"])
			} else {
				assert.Equal(t, "verification rejected", entry.Message)
				assert.Equal(t, tt.reason, entry.ContextMap()["reason"])
			}
			assert.NotContains(t, entry.ContextMap()["token"], testToken)
		})
	}
}

func TestGateVerify_BlankToken(t *testing.T) {
	fa := &fakeAssessor{res: Result{Valid: true, Action: "contact_form", Score: 1}}
	g := NewGate(fa, nil)

	for _, tok := range []string{"", "   "} {
		ok, err := g.Verify(context.Background(), tok, "contact_form", 0.5)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrTokenRequired)
	}
	assert.Zero(t, fa.calls, "no assessment for a blank token")
}

func TestGateVerify_NilAssessorFailsClosed(t *testing.T) {
	ok, err := NewGate(nil, nil).Verify(context.Background(), testToken, "contact_form", 0.5)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestGateWith_AddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g := NewGate(&fakeAssessor{res: Result{Valid: true, Action: "a", Score: 1}}, zap.New(core)).
		With(zap.String("request_id", "req-1"))

	ok, err := g.Verify(context.Background(), testToken, "a", 0.5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])
	assert.True(t, strings.HasSuffix(logs.All()[0].ContextMap()["token"].(string), "***(30)"))
}
