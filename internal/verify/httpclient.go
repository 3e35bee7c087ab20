// internal/verify/httpclient.go
package verify

import (
	"net"
	"net/http"
	"time"
)

// newHTTPClient returns a client bounded by timeout end to end, with tighter
// dial and header limits so a stalled scoring service fails fast.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	step := timeout / 2

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   step,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   step,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
