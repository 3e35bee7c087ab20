// middleware/compress.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/contactmail/config"
	"github.com/go-chi/chi/v5/middleware"
)

// CompressFromConfig returns a gzip/deflate middleware when compression is
// enabled in the core config, and an identity middleware otherwise.
// Levels outside 1-9 are clamped; config validation normally rejects them.
func CompressFromConfig(coreCfg *config.CoreConfig) func(next http.Handler) http.Handler {
	if coreCfg == nil || !coreCfg.EnableCompression {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	level := coreCfg.CompressionLevel
	if level < 1 {
		level = 1
	}
	if level > 9 {
		level = 9
	}
	return middleware.Compress(level, "application/json", "text/plain")
}
