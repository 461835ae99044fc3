package tlsroots

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/yndnr/tokcodec-go/internal/infra/confloader"
	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
)

// DefaultDebounce coalesces bursts of file events into one reload.
const DefaultDebounce = 500 * time.Millisecond

// CertReloader serves a certificate pair and reloads it when the files
// change on disk.
type CertReloader struct {
	certFile string
	keyFile  string
	cert     atomic.Pointer[tls.Certificate]
	logger   logger.Logger
	debounce time.Duration
	reloads  atomic.Int64
}

// ReloaderOption configures a CertReloader.
type ReloaderOption func(*CertReloader)

// WithLogger sets the logger for the reloader.
func WithLogger(l logger.Logger) ReloaderOption {
	return func(r *CertReloader) {
		r.logger = l
	}
}

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) ReloaderOption {
	return func(r *CertReloader) {
		r.debounce = d
	}
}

// NewCertReloader loads the pair once and returns a reloader for it.
func NewCertReloader(certFile, keyFile string, opts ...ReloaderOption) (*CertReloader, error) {
	r := &CertReloader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger.Nop(),
		debounce: DefaultDebounce,
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.Reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}
	return r, nil
}

// Reload reads the pair from disk. On failure the previous certificate
// stays in use.
func (r *CertReloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}
	r.cert.Store(&cert)
	r.reloads.Add(1)

	r.logger.Info("certificate loaded", "cert_file", r.certFile)
	return nil
}

// Reloads returns how many times the pair was loaded.
func (r *CertReloader) Reloads() int64 {
	return r.reloads.Load()
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.cert.Load(), nil
}

// ServerConfig creates a server TLS config backed by the reloader.
func (r *CertReloader) ServerConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}

// Run reloads the pair whenever either file is rewritten, until ctx is
// canceled.
func (r *CertReloader) Run(ctx context.Context) error {
	w, err := confloader.NewWatcher(
		confloader.WithWatcherLogger(r.logger),
		confloader.WithDebounce(r.debounce),
	)
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	defer w.Stop()

	for _, f := range []string{r.certFile, r.keyFile} {
		if err := w.Watch(f); err != nil {
			return fmt.Errorf("tlsroots: watch %s: %w", f, err)
		}
	}

	// Cert and key usually change together; one pending reload is enough.
	changed := make(chan struct{}, 1)
	w.OnChange(func(string) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	w.StartAsync()

	r.logger.Info("certificate watcher started", "cert_file", r.certFile, "key_file", r.keyFile)

	for {
		select {
		case <-changed:
			if err := r.Reload(); err != nil {
				r.logger.Error("certificate reload failed, keeping previous certificate",
					"error", err,
					"cert_file", r.certFile,
				)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
