package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging interface used across tokcodec. Args are
// alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	// WithContext binds ctx so entries carry its Scope.
	WithContext(ctx context.Context) Logger
}

// Backends.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// Config selects the backend and output of a logger.
type Config struct {
	Level     string // debug, info, warn, error
	Format    string // json, text (console is an alias of text)
	Backend   string // slog (default) or zap
	Output    io.Writer
	AddSource bool
}

// DefaultConfig logs JSON at info level to stderr through slog.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Format:  "json",
		Backend: BackendSlog,
		Output:  os.Stderr,
	}
}

// level is shared by every logger so SetLevel applies on config reload.
var level = new(slog.LevelVar)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// New builds a logger from cfg and applies cfg.Level globally.
func New(cfg Config) (Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	backend := strings.ToLower(cfg.Backend)
	if backend != "" && backend != BackendSlog && backend != BackendZap {
		return nil, fmt.Errorf("unknown log backend %q", cfg.Backend)
	}
	SetLevel(cfg.Level)

	if backend == BackendZap {
		return newZapLogger(cfg, out), nil
	}
	return newSlogLogger(slogHandler(cfg, out)), nil
}

func slogHandler(cfg Config, out io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}
	if f := strings.ToLower(cfg.Format); f == "text" || f == "console" {
		return slog.NewTextHandler(out, opts)
	}
	return slog.NewJSONHandler(out, opts)
}

// SetLevel changes the level of every logger. Unknown names mean info.
func SetLevel(name string) {
	l := parseLevel(name)
	level.Set(l)
	zapLevel.SetLevel(toZapLevel(l))
}

// GetLevel returns the current level name.
func GetLevel() string {
	switch level.Level() {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	}
	return "info"
}

func parseLevel(name string) slog.Level {
	if l, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l
	}
	return slog.LevelInfo
}

type slogLogger struct {
	base *slog.Logger
	ctx  context.Context
}

func newSlogLogger(h slog.Handler) *slogLogger {
	return &slogLogger{base: slog.New(h), ctx: context.Background()}
}

func (l *slogLogger) log(lvl slog.Level, msg string, args []any) {
	l.base.Log(l.ctx, lvl, msg, scopeArgs(l.ctx, args)...)
}

func (l *slogLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *slogLogger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *slogLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{base: l.base.With(args...), ctx: l.ctx}
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	return &slogLogger{base: l.base, ctx: ctx}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return newSlogLogger(slog.DiscardHandler)
}

// box lets atomic.Pointer hold any Logger implementation.
type box struct{ Logger }

var global atomic.Pointer[box]

func init() {
	l, _ := New(DefaultConfig())
	global.Store(&box{l})
}

// SetDefault replaces the process-wide logger. Nil is ignored.
func SetDefault(l Logger) {
	if l != nil {
		global.Store(&box{l})
	}
}

// Default returns the process-wide logger.
func Default() Logger {
	return global.Load().Logger
}

func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
