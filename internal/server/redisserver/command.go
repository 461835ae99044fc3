package redisserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
	"github.com/yndnr/tokcodec-go/internal/core/service"
	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
	"github.com/yndnr/tokcodec-go/internal/telemetry/metric"
)

// errArity is returned by commands called with the wrong argument count.
type errArity string

func (e errArity) Error() string {
	return fmt.Sprintf("ERR wrong number of arguments for '%s' command", strings.ToLower(string(e)))
}

// formatError renders err as a RESP error line.
// Domain errors become "ERR <code> <message>[: <details>]".
func formatError(err error) string {
	var arity errArity
	if errors.As(err, &arity) {
		return arity.Error()
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		msg := "ERR " + de.Code + " " + de.Message
		if de.Details != "" {
			msg += ": " + de.Details
		}
		return msg
	}
	return "ERR " + err.Error()
}

// ipLimiter shares one token bucket between the connections of a client IP.
type ipLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*ipBucket
}

type ipBucket struct {
	limiter *rate.Limiter
	conns   int
}

func newIPLimiter(rps float64) *ipLimiter {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &ipLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*ipBucket),
	}
}

func (l *ipLimiter) enabled() bool {
	return l != nil && l.limit > 0
}

func (l *ipLimiter) acquire(ip string) {
	if !l.enabled() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.limiters[ip]
	if !ok {
		b = &ipBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = b
	}
	b.conns++
}

// release forgets the bucket once the last connection of ip closes.
func (l *ipLimiter) release(ip string) {
	if !l.enabled() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.limiters[ip]; ok {
		b.conns--
		if b.conns <= 0 {
			delete(l.limiters, ip)
		}
	}
}

func (l *ipLimiter) allow(ip string) bool {
	if !l.enabled() {
		return true
	}
	l.mu.Lock()
	b, ok := l.limiters[ip]
	l.mu.Unlock()
	if !ok {
		return true
	}
	return b.limiter.Allow()
}

// commandFunc executes one command and writes its reply.
type commandFunc func(ctx context.Context, c *Conn, args []string) error

// commandSpec bounds the argument count, not counting the command name.
// A negative max means unbounded.
type commandSpec struct {
	min, max int
	fn       commandFunc
}

func (s commandSpec) accepts(n int) bool {
	return n >= s.min && (s.max < 0 || n <= s.max)
}

var errUnknownCommand = errors.New("unknown command")

// CommandHandler dispatches commands to the token service.
type CommandHandler struct {
	svc      *service.TokenService
	logger   logger.Logger
	metrics  *metric.Registry
	limiter  *ipLimiter
	commands map[string]commandSpec
}

// NewCommandHandler creates a CommandHandler. rps limits commands per
// client IP; zero disables the limit.
func NewCommandHandler(svc *service.TokenService, rps float64, l logger.Logger, reg *metric.Registry) *CommandHandler {
	h := &CommandHandler{
		svc:     svc,
		logger:  l,
		metrics: reg,
		limiter: newIPLimiter(rps),
	}
	h.commands = map[string]commandSpec{
		"PING":      {0, 1, h.ping},
		"ECHO":      {1, 1, h.echo},
		"QUIT":      {0, -1, h.quit},
		"COMMAND":   {0, -1, h.command},
		"ENCODE":    {1, 1, h.encode},
		"DECODE":    {1, 1, h.decode},
		"FIELDS":    {1, 1, h.fields},
		"NORMALIZE": {1, 1, h.normalize},
		"GENERATE":  {3, 3, h.generate},
		"INSPECT":   {1, 1, h.inspect},
	}
	return h
}

// Handle executes one command and buffers its reply on c.
func (h *CommandHandler) Handle(ctx context.Context, c *Conn, args [][]byte) {
	name := commandName(args[0])

	spec, ok := h.commands[name]
	if !ok {
		h.metrics.RecordCommand("unknown", errUnknownCommand)
		c.out.Error(fmt.Sprintf("ERR unknown command '%s'", name))
		return
	}

	if !h.limiter.allow(c.ip) {
		h.metrics.RecordCommand(name, domain.ErrRateLimited)
		c.out.Error(formatError(domain.ErrRateLimited))
		return
	}

	rest := make([]string, len(args)-1)
	for i, a := range args[1:] {
		rest[i] = string(a)
	}

	var err error
	if spec.accepts(len(rest)) {
		err = spec.fn(ctx, c, rest)
	} else {
		err = errArity(name)
	}

	h.metrics.RecordCommand(name, err)
	if err != nil {
		h.logger.WithContext(ctx).Debug("command failed", "command", name, "error", err)
		c.out.Error(formatError(err))
	}
}

func (h *CommandHandler) ping(_ context.Context, c *Conn, args []string) error {
	if len(args) == 1 {
		c.out.Bulk(args[0])
	} else {
		c.out.Simple("PONG")
	}
	return nil
}

func (h *CommandHandler) echo(_ context.Context, c *Conn, args []string) error {
	c.out.Bulk(args[0])
	return nil
}

func (h *CommandHandler) quit(_ context.Context, c *Conn, _ []string) error {
	c.closing = true
	c.out.Simple("OK")
	return nil
}

// command answers COMMAND and its subcommands with an empty array so
// clients probing for command metadata keep working.
func (h *CommandHandler) command(_ context.Context, c *Conn, _ []string) error {
	c.out.Array(0)
	return nil
}

func (h *CommandHandler) encode(ctx context.Context, c *Conn, args []string) error {
	c.out.Bulk(h.svc.Encode(ctx, args[0]).EncodedToken)
	return nil
}

func (h *CommandHandler) decode(ctx context.Context, c *Conn, args []string) error {
	resp, err := h.svc.Decode(ctx, args[0])
	if err != nil {
		return err
	}
	c.out.Bulk(resp.PlainToken)
	return nil
}

// fields replies with a flat name/value array in field order.
func (h *CommandHandler) fields(ctx context.Context, c *Conn, args []string) error {
	fs := h.svc.Normalize(ctx, args[0]).Fields
	c.out.Array(2 * fs.Len())
	for _, f := range fs {
		c.out.Bulk(f.Name)
		c.out.Bulk(f.Value)
	}
	return nil
}

// normalize replies with a flat key/value array. segments and truncated
// are integers.
func (h *CommandHandler) normalize(ctx context.Context, c *Conn, args []string) error {
	n := h.svc.Normalize(ctx, args[0])
	c.out.Array(10)
	c.out.Bulk("form")
	c.out.Bulk(string(n.Form))
	c.out.Bulk("plain_token")
	c.out.Bulk(n.PlainToken)
	c.out.Bulk("encoded_token")
	c.out.Bulk(n.EncodedToken)
	c.out.Bulk("segments")
	c.out.Int(int64(n.Segments))
	c.out.Bulk("truncated")
	c.out.Bool(n.Truncated)
	return nil
}

func (h *CommandHandler) generate(ctx context.Context, c *Conn, args []string) error {
	g := h.svc.Generate(ctx, domain.Identity{
		LoginMasterID: args[0],
		DatabaseName:  args[1],
		OrgID:         args[2],
	})
	c.out.Strings(g.PlainToken, g.EncodedToken, g.Issued, g.Expires)
	return nil
}

// inspect replies with the JSON rendering of the inspection.
func (h *CommandHandler) inspect(ctx context.Context, c *Conn, args []string) error {
	resp, err := h.svc.Inspect(ctx, args[0])
	if err != nil {
		return err
	}
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		return domain.ErrInternalServer.WithCause(err)
	}
	c.out.Bulk(strings.TrimSuffix(buf.String(), "\n"))
	return nil
}
