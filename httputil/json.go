// httputil/json.go
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strings"
)

// Caller-facing messages shared by every JSON endpoint.
const (
	MessageServerError    = "We're experiencing technical difficulties. Please try again later."
	MessageNotFound       = "The requested resource was not found."
	MessageMethodNotAllow = "The requested HTTP method is not allowed for this resource."
	MessageMediaType      = "Content-Type must be application/json."
)

// Result is the JSON envelope returned by every endpoint:
//
//	{ "success": false, "message": "Email must be a valid email address", "field": "email" }
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// jsonLogger is a package-level logger for encoding errors. Use SetJSONLogger to configure.
var jsonLogger JSONLogger

// JSONLogger is the subset of *zap.SugaredLogger used to report encoding errors.
type JSONLogger interface {
	Errorw(msg string, keysAndValues ...any)
}

// SetJSONLogger configures the logger used for JSON encoding errors.
// This should be called once during application startup.
func SetJSONLogger(logger JSONLogger) {
	jsonLogger = logger
}

// WriteJSON writes a JSON response with the given status code.
// If encoding fails, the error is logged (if a logger is configured via
// SetJSONLogger) because headers and status have already been sent.
//
// Invalid status codes (outside 100-599) are clamped to 500 Internal Server Error.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		if jsonLogger != nil {
			func() {
				defer func() {
					if r := recover(); r != nil {
						fmt.Fprintf(os.Stderr, "httputil: logger panic while reporting json error: %v\n", r)
					}
				}()
				typeName := "nil"
				if v != nil {
					typeName = reflect.TypeOf(v).String()
				}
				jsonLogger.Errorw("json encoding failed after headers sent", "type", typeName, "error", err)
			}()
		}
	}
}

// WriteResult writes the standard success/failure envelope.
func WriteResult(w http.ResponseWriter, status int, success bool, message string) {
	WriteJSON(w, status, Result{Success: success, Message: message})
}

// WriteFieldError writes a failure envelope naming the offending field.
func WriteFieldError(w http.ResponseWriter, status int, field, message string) {
	WriteJSON(w, status, Result{Success: false, Message: message, Field: field})
}

// BindJSON decodes the request body as JSON into v.
//
// It returns a user-friendly error if the body is empty, malformed, or contains
// unknown fields. The error messages are safe to return to clients.
func BindJSON(r *http.Request, v any) error {
	return bindJSON(r, v, true)
}

// BindJSONAllowUnknown is like BindJSON but permits unknown fields in the JSON.
// Browser forms often post extra keys, so the contact endpoint uses this.
func BindJSONAllowUnknown(r *http.Request, v any) error {
	return bindJSON(r, v, false)
}

func bindJSON(r *http.Request, v any, strict bool) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	// ContentLength semantics:
	//   0  = explicitly empty body (Content-Length: 0) → reject early
	//  -1  = chunked/unknown length → must attempt decode
	//  >0  = known content length → proceed to decode
	if r.ContentLength == 0 {
		return errors.New("request body is empty")
	}

	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return parseJSONError(err)
	}

	if dec.More() {
		return errors.New("request body contains multiple JSON values")
	}

	return nil
}

// parseJSONError converts json decoding errors into user-friendly messages.
func parseJSONError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return errors.New("request body is empty")
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.New("malformed JSON: unexpected end of input")
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("invalid value for field %q: expected %s", typeErr.Field, typeErr.Type.String())
	}

	// Error format: "json: unknown field \"fieldname\""
	if strings.HasPrefix(err.Error(), "json: unknown field") {
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		field = strings.Trim(field, "\"")
		return fmt.Errorf("unknown field %q", field)
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errors.New("request body too large")
	}

	return errors.New("invalid JSON in request body")
}
