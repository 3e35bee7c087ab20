// internal/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/contactmail/httputil"
	"go.uber.org/zap"
)

// Kind classifies a failure for the caller.
type Kind int

const (
	// KindServer covers failures the caller cannot fix (delivery, misconfiguration).
	KindServer Kind = iota
	// KindClient covers malformed or invalid input.
	KindClient
	// KindAuth covers rejected bot verification.
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindAuth:
		return "auth"
	default:
		return "server"
	}
}

// Error is a classified request failure. Only Message (and Field, for client
// errors) reaches the caller; Err is kept for logs.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if e.Field != "" {
		prefix += " (" + e.Field + ")"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return prefix + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind to its response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindClient:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Client returns a 400 error naming the offending field, if any.
func Client(field, message string) *Error {
	return &Error{Kind: KindClient, Field: field, Message: message}
}

// Auth returns a 401 error. err is the internal reason, never shown.
func Auth(message string, err error) *Error {
	return &Error{Kind: KindAuth, Message: message, Err: err}
}

// Server returns a 500 error with a generic public message.
func Server(err error) *Error {
	return &Error{Kind: KindServer, Message: httputil.MessageServerError, Err: err}
}

// From extracts an *Error from err, or classifies it as a server error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Server(err)
}

// Write logs err with the given request fields and writes the JSON envelope.
// Server errors log at Error level, the rest at Warn.
func Write(w http.ResponseWriter, logger *zap.Logger, err error, fields ...zap.Field) {
	e := From(err)
	if logger != nil {
		fields = append(fields,
			zap.String("kind", e.Kind.String()),
			zap.Int("status", e.HTTPStatus()),
		)
		if e.Field != "" {
			fields = append(fields, zap.String("field", e.Field))
		}
		if e.Err != nil {
			fields = append(fields, zap.Error(e.Err))
		}
		if e.Kind == KindServer {
			logger.Error("request failed", fields...)
		} else {
			logger.Warn("request rejected", append(fields, zap.String("reason", e.Message))...)
		}
	}

	if e.Field != "" {
		httputil.WriteFieldError(w, e.HTTPStatus(), e.Field, e.Message)
		return
	}
	httputil.WriteResult(w, e.HTTPStatus(), false, e.Message)
}
