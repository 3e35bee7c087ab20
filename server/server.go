// server/server.go
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dalemusser/contactmail/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/acme/autocert"
)

// certWarmTimeout bounds how long startup waits for the first autocert
// certificate before binding :443 anyway.
const certWarmTimeout = 60 * time.Second

// WithShutdownSignals returns a context that is canceled when the process
// receives SIGINT or SIGTERM. The returned cancel function also releases the
// signal handler.
func WithShutdownSignals(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			if logger != nil {
				logger.Info("shutdown signal received", zap.Any("signal", sig))
			}
			cancel()
		case <-ctx.Done():
		}
		// sigCh is not closed; nothing reads it after Stop.
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// ListenAndServeWithContext serves handler over HTTP, HTTPS with manual
// certificates, or HTTPS with Let's Encrypt (http-01), and blocks until ctx
// is canceled or a server fails.
func ListenAndServeWithContext(
	ctx context.Context,
	cfg *config.CoreConfig,
	handler http.Handler,
	logger *zap.Logger,
) error {
	if cfg == nil {
		return errors.New("ListenAndServeWithContext: cfg is nil")
	}
	if handler == nil {
		return errors.New("ListenAndServeWithContext: handler is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ErrorLog:          stdErrorLog(logger),
	}

	httpAddr := ":" + strconv.Itoa(cfg.HTTP.HTTPPort)
	httpsAddr := ":" + strconv.Itoa(cfg.HTTP.HTTPSPort)

	var (
		auxSrv   *http.Server // :80 ACME or redirect server in HTTPS modes
		ln       net.Listener
		serveErr = make(chan error, 1)
		auxErr   chan error // nil in HTTP-only mode; a nil channel never fires in select
	)

	startAux := func(h http.Handler, what string) {
		auxSrv = newAuxServer(cfg, h, logger)
		auxErr = make(chan error, 1)
		go serveAuxiliary(auxSrv, auxErr)
		logger.Info(what+" listening", zap.String("addr", auxSrv.Addr))
	}

	switch {
	case !cfg.HTTP.UseHTTPS:
		var err error
		ln, err = net.Listen("tcp", httpAddr)
		if err != nil {
			return fmt.Errorf("listen http %s: %w", httpAddr, err)
		}
		logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))

	case cfg.TLS.UseLetsEncrypt:
		m := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(cfg.TLS.Domain),
			Cache:      autocert.DirCache(cfg.TLS.LetsEncryptCacheDir),
			Email:      cfg.TLS.LetsEncryptEmail,
		}
		startAux(m.HTTPHandler(httpRedirectHandler()), "ACME + redirect server")

		if err := waitForCert(ctx, m, cfg.TLS.Domain, certWarmTimeout); err != nil {
			logger.Warn("autocert pre-warm failed; first HTTPS hits may see TLS errors", zap.Error(err))
		}

		tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12, GetCertificate: m.GetCertificate}
		var err error
		ln, err = listenTLS(httpsAddr, tlsCfg)
		if err != nil {
			_ = shutdownAux(context.Background(), auxSrv)
			return err
		}
		logger.Info("HTTPS server (Let's Encrypt) listening",
			zap.String("addr", httpsAddr),
			zap.String("domain", cfg.TLS.Domain))

	default:
		if err := checkTLSFiles(cfg, logger); err != nil {
			return err
		}
		cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return fmt.Errorf("load TLS cert/key: %w", err)
		}
		startAux(httpRedirectHandler(), "HTTP → HTTPS redirect server")

		tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12, Certificates: []tls.Certificate{cert}}
		ln, err = listenTLS(httpsAddr, tlsCfg)
		if err != nil {
			_ = shutdownAux(context.Background(), auxSrv)
			return err
		}
		logger.Info("HTTPS server (manual TLS) listening",
			zap.String("addr", httpsAddr),
			zap.String("cert_file", cfg.TLS.CertFile))
	}

	go servePrimary(srv, ln, serveErr)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down server…")
			// ctx is already canceled; the shutdown window is measured from now.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			_ = shutdownAux(shutdownCtx, auxSrv)
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = ln.Close()
				return fmt.Errorf("server shutdown: %w", err)
			}
			logger.Info("server stopped gracefully")
			return nil

		case err := <-serveErr:
			_ = shutdownAux(context.Background(), auxSrv)
			_ = ln.Close()
			if err != nil {
				return fmt.Errorf("primary server error: %w", err)
			}
			return nil

		case err := <-auxErr:
			if err != nil {
				if closeErr := srv.Close(); closeErr != nil {
					logger.Error("failed to close primary server after auxiliary crash", zap.Error(closeErr))
				}
				_ = ln.Close()
				return fmt.Errorf("auxiliary server error: %w", err)
			}
			// serveAuxiliary sends at most once.
			auxSrv = nil
			auxErr = nil
		}
	}
}

func stdErrorLog(logger *zap.Logger) *log.Logger {
	stdlog, err := zap.NewStdLogAt(logger, zapcore.WarnLevel)
	if err != nil {
		return nil
	}
	return stdlog
}

func newAuxServer(cfg *config.CoreConfig, h http.Handler, logger *zap.Logger) *http.Server {
	return &http.Server{
		Addr:              ":80",
		Handler:           h,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ErrorLog:          stdErrorLog(logger),
	}
}

func listenTLS(addr string, tlsCfg *tls.Config) (net.Listener, error) {
	baseLn, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen https %s: %w", addr, err)
	}
	return tls.NewListener(baseLn, tlsCfg), nil
}

// checkTLSFiles validates the manual certificate files. Loose key file
// permissions are fatal in prod and a warning otherwise.
func checkTLSFiles(cfg *config.CoreConfig, logger *zap.Logger) error {
	if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
		return errors.New("manual TLS selected but cert_file / key_file not provided")
	}
	err := validateTLSFiles(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	var permErr *permissionError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &permErr) && cfg.Env != "prod":
		logger.Warn("TLS key file security warning (would block in prod)", zap.Error(err))
		return nil
	case errors.As(err, &permErr):
		return fmt.Errorf("production security: %w", err)
	default:
		return err
	}
}

func servePrimary(srv *http.Server, ln net.Listener, ch chan<- error) {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		ch <- err
		return
	}
	ch <- nil
}

func serveAuxiliary(auxSrv *http.Server, ch chan<- error) {
	if err := auxSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		ch <- err
		return
	}
	ch <- nil
}

func shutdownAux(ctx context.Context, auxSrv *http.Server) error {
	if auxSrv == nil {
		return nil
	}
	return auxSrv.Shutdown(ctx)
}

// httpRedirectHandler redirects any HTTP request to HTTPS preserving host and
// path. Hosts and request targets carrying control characters are rejected.
func httpRedirectHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		reqURI := r.URL.RequestURI()
		if !isValidHost(host) || !isValidRequestURI(reqURI) {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "https://"+host+reqURI, http.StatusMovedPermanently)
	})
}

func isValidRequestURI(uri string) bool {
	for _, c := range uri {
		if (c < 0x20 && c != '\t') || c == 0x7f {
			return false
		}
	}
	return true
}

// isValidHost reports whether a Host header is safe to echo into a redirect.
func isValidHost(host string) bool {
	if host == "" || strings.Contains(host, "://") || strings.HasPrefix(host, "/") {
		return false
	}

	hostPart, portStr, err := net.SplitHostPort(host)
	if err != nil {
		// No port; a bare IPv6 literal also lands here.
		hostPart = host
	} else if portStr != "" {
		port, perr := strconv.Atoi(portStr)
		if perr != nil || port <= 0 || port > 65535 {
			return false
		}
	}
	if hostPart == "" {
		return false
	}

	if strings.HasPrefix(hostPart, "[") && strings.HasSuffix(hostPart, "]") {
		ip := hostPart[1 : len(hostPart)-1]
		if i := strings.IndexByte(ip, '%'); i != -1 {
			ip = ip[:i]
		}
		if net.ParseIP(ip) == nil {
			return false
		}
	}

	for _, c := range hostPart {
		if c <= 0x20 || c == 0x7f {
			return false
		}
	}
	return true
}

type permissionError struct {
	path string
	perm os.FileMode
}

func (e *permissionError) Error() string {
	return fmt.Sprintf("TLS key file %s has overly permissive permissions %o (recommended: 0600)", e.path, e.perm)
}

// validateTLSFiles checks that the certificate and key exist as regular
// files and that the key is not readable by group or others.
func validateTLSFiles(certFile, keyFile string) error {
	if _, err := statRegular("certificate", certFile); err != nil {
		return err
	}
	keyInfo, err := statRegular("key", keyFile)
	if err != nil {
		return err
	}
	// Unix permission bits are meaningless on Windows.
	if runtime.GOOS != "windows" && keyInfo.Mode().Perm()&0o077 != 0 {
		return &permissionError{path: keyFile, perm: keyInfo.Mode().Perm()}
	}
	return nil
}

func statRegular(kind, path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("TLS %s file does not exist: %s", kind, path)
		}
		return nil, fmt.Errorf("cannot access TLS %s file %s: %w", kind, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("TLS %s path is a directory, not a file: %s", kind, path)
	}
	return info, nil
}

// waitForCert blocks until autocert has a certificate for host, the timeout
// elapses, or ctx ends.
func waitForCert(ctx context.Context, m *autocert.Manager, host string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		_, err := m.GetCertificate(&tls.ClientHelloInfo{ServerName: host})
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for cert for %q: %w (last error: %v)", host, ctx.Err(), err)
		case <-ticker.C:
		}
	}
}
