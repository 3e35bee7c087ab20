package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type payload struct {
	Name string `json:"name"`
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		strict  bool
		wantErr string
	}{
		{"valid", `{"name":"Jane"}`, true, ""},
		{"empty", ``, true, "request body is empty"},
		{"malformed", `{"name":`, true, "malformed JSON"},
		{"truncated", `{"name":"Ja`, false, "unexpected end of input"},
		{"bad syntax", `{"name" "Jane"}`, true, "malformed JSON at position"},
		{"wrong type", `{"name":42}`, true, `invalid value for field "name"`},
		{"unknown strict", `{"name":"Jane","extra":1}`, true, `unknown field "extra"`},
		{"unknown lenient", `{"name":"Jane","extra":1}`, false, ""},
		{"multiple values", `{"name":"a"}{"name":"b"}`, false, "multiple JSON values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			var err error
			if tt.strict {
				err = BindJSON(req, &p)
			} else {
				err = BindJSONAllowUnknown(req, &p)
			}

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if p.Name == "" {
					t.Error("expected name to be decoded")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestBindJSON_TooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 100)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	var p payload
	err := BindJSON(req, &p)
	if err == nil || err.Error() != "request body too large" {
		t.Errorf("error = %v, want %q", err, "request body too large")
	}
}

func TestWriteFieldError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteFieldError(rec, http.StatusBadRequest, "email", "Email is required")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var got Result
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Result{Success: false, Message: "Email is required", Field: "email"}
	if got != want {
		t.Errorf("body = %+v, want %+v", got, want)
	}
}

func TestWriteJSON_ClampsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 42, Result{Success: true})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
