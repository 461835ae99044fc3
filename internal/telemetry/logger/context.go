package logger

import "context"

type ctxKey int

const (
	loggerKey ctxKey = iota
	scopeKey
)

// Scope identifies the request a log entry belongs to. Non-empty fields
// are appended to every entry of a logger bound with WithContext.
type Scope struct {
	// Transport is the listener that received the request (http, resp).
	Transport string
	// RequestID is the X-Request-ID of an HTTP request or the
	// connection ID of a RESP client.
	RequestID string
	// TraceID is the hex OpenTelemetry trace ID.
	TraceID string
}

// merge overlays the non-empty fields of o on s.
func (s Scope) merge(o Scope) Scope {
	if o.Transport != "" {
		s.Transport = o.Transport
	}
	if o.RequestID != "" {
		s.RequestID = o.RequestID
	}
	if o.TraceID != "" {
		s.TraceID = o.TraceID
	}
	return s
}

func (s Scope) args() []any {
	var out []any
	if s.Transport != "" {
		out = append(out, "transport", s.Transport)
	}
	if s.RequestID != "" {
		out = append(out, "request_id", s.RequestID)
	}
	if s.TraceID != "" {
		out = append(out, "trace_id", s.TraceID)
	}
	return out
}

// WithScope returns a context whose scope is the current one with the
// non-empty fields of s applied.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey, ScopeFrom(ctx).merge(s))
}

// ScopeFrom returns the scope stored in ctx, or the zero Scope.
func ScopeFrom(ctx context.Context) Scope {
	if ctx == nil {
		return Scope{}
	}
	s, _ := ctx.Value(scopeKey).(Scope)
	return s
}

// scopeArgs returns the key/value pairs for the scope in ctx.
func scopeArgs(ctx context.Context, args []any) []any {
	extra := ScopeFrom(ctx).args()
	if len(extra) == 0 {
		return args
	}
	out := make([]any, 0, len(args)+len(extra))
	out = append(out, args...)
	return append(out, extra...)
}

// WithRequestID sets the scope's request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return WithScope(ctx, Scope{RequestID: id})
}

// RequestIDFromContext returns the scope's request ID.
func RequestIDFromContext(ctx context.Context) string {
	return ScopeFrom(ctx).RequestID
}

// WithTraceID sets the scope's trace ID.
func WithTraceID(ctx context.Context, id string) context.Context {
	return WithScope(ctx, Scope{TraceID: id})
}

// TraceIDFromContext returns the scope's trace ID.
func TraceIDFromContext(ctx context.Context) string {
	return ScopeFrom(ctx).TraceID
}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, falling back to Default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// L returns the context's logger bound to the context's scope.
func L(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
