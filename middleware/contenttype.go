// middleware/contenttype.go
package middleware

import (
	"mime"
	"net/http"
	"strings"

	"github.com/dalemusser/contactmail/httputil"
)

// RequireJSON returns a middleware that ensures requests have a JSON Content-Type,
// typically "application/json" or something ending in "+json".
//
// If the Content-Type is missing or not JSON, it returns 415 Unsupported Media Type
// with the JSON failure envelope.
func RequireJSON() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isJSONContentType(r.Header.Get("Content-Type")) {
				httputil.WriteResult(w, http.StatusUnsupportedMediaType, false, httputil.MessageMediaType)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isJSONContentType(ct string) bool {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
