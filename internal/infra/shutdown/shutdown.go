package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
)

// Hook releases one resource. It must return once ctx is done.
type Hook func(context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Handler coordinates the listeners of a process: it runs them, waits for
// a termination signal or the first listener failure, then runs the
// registered hooks in reverse order within one timeout.
type Handler struct {
	timeout time.Duration
	logger  logger.Logger
	signals []os.Signal

	mu       sync.Mutex
	hooks    []namedHook
	taskErrs []error

	failed     chan struct{}
	failedOnce sync.Once

	once sync.Once
	done chan struct{}
	err  error
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used to report each hook.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithSignals replaces SIGINT and SIGTERM.
func WithSignals(sig ...os.Signal) Option {
	return func(h *Handler) { h.signals = sig }
}

// NewHandler creates a Handler whose hooks share timeout.
func NewHandler(timeout time.Duration, opts ...Option) *Handler {
	h := &Handler{
		timeout: timeout,
		logger:  logger.Nop(),
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		failed:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnShutdown registers hook under name. Hooks run last-registered first.
func (h *Handler) OnShutdown(name string, hook Hook) {
	h.mu.Lock()
	h.hooks = append(h.hooks, namedHook{name: name, fn: hook})
	h.mu.Unlock()
}

// Go runs serve in its own goroutine. An error from serve is reported by
// Wait and starts the shutdown.
func (h *Handler) Go(name string, serve func() error) {
	go func() {
		err := serve()
		if err == nil {
			return
		}
		h.logger.Error("listener failed", "listener", name, "error", err)
		h.mu.Lock()
		h.taskErrs = append(h.taskErrs, fmt.Errorf("%s: %w", name, err))
		h.mu.Unlock()
		h.failedOnce.Do(func() { close(h.failed) })
	}()
}

// Wait blocks until a signal arrives, ctx is done or a Go task fails,
// then runs the hooks. It returns the task errors joined with the hook
// errors.
func (h *Handler) Wait(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, h.signals...)
	defer stop()

	select {
	case <-sigCtx.Done():
		h.logger.Info("shutdown requested")
	case <-h.failed:
		h.logger.Warn("shutting down after listener failure")
	}

	hookErr := h.Shutdown()

	h.mu.Lock()
	taskErr := errors.Join(h.taskErrs...)
	h.mu.Unlock()
	return errors.Join(taskErr, hookErr)
}

// Shutdown runs the hooks once. Later calls return the first result.
func (h *Handler) Shutdown() error {
	h.once.Do(func() {
		defer close(h.done)

		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := append([]namedHook(nil), h.hooks...)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			hk := hooks[i]
			start := time.Now()
			if err := hk.fn(ctx); err != nil {
				h.logger.Error("shutdown step failed", "step", hk.name, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", hk.name, err))
				continue
			}
			h.logger.Debug("shutdown step done", "step", hk.name, "duration", time.Since(start))
		}
		h.err = errors.Join(errs...)
	})
	return h.err
}

// Done is closed once Shutdown has run every hook.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
