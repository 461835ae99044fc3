// Package service provides domain services for tokcodec.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
	"github.com/yndnr/tokcodec-go/internal/telemetry/metric"
	"github.com/yndnr/tokcodec-go/internal/telemetry/tracer"
	"github.com/yndnr/tokcodec-go/pkg/token"
)

// TokenService wraps the token codec with tracing, logging and metrics.
type TokenService struct {
	logger  logger.Logger
	metrics *metric.Registry
	now     func() time.Time
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *TokenService) {
		s.logger = l
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metric.Registry) Option {
	return func(s *TokenService) {
		s.metrics = r
	}
}

// WithClock sets the clock used for token generation.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a new TokenService.
// Defaults are the global logger, the global metrics registry and time.Now.
func NewTokenService(opts ...Option) *TokenService {
	s := &TokenService{
		logger:  logger.Default(),
		metrics: metric.Global(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "token_service")
	return s
}

// EncodeResponse is the result of Encode.
type EncodeResponse struct {
	EncodedToken string `json:"encoded_token" yaml:"encoded_token"`
}

// DecodeResponse is the result of Decode.
type DecodeResponse struct {
	PlainToken string       `json:"plain_token" yaml:"plain_token"`
	Fields     token.Fields `json:"fields" yaml:"fields"`
}

// NormalizeResponse holds both forms of a token and its fields.
type NormalizeResponse struct {
	Form         token.Form   `json:"form" yaml:"form"`
	PlainToken   string       `json:"plain_token" yaml:"plain_token"`
	EncodedToken string       `json:"encoded_token" yaml:"encoded_token"`
	Fields       token.Fields `json:"fields" yaml:"fields"`
	Segments     int          `json:"segments" yaml:"segments"`
	Truncated    bool         `json:"truncated" yaml:"truncated"`
}

// GenerateResponse is a freshly issued full-form token.
// Timestamps use the same rendering as inside the token.
type GenerateResponse struct {
	PlainToken   string `json:"plain_token" yaml:"plain_token"`
	EncodedToken string `json:"encoded_token" yaml:"encoded_token"`
	Issued       string `json:"issued" yaml:"issued"`
	Expires      string `json:"expires" yaml:"expires"`
}

// InspectResponse is the normalized token plus the presentation hints
// of the interactive view.
type InspectResponse struct {
	NormalizeResponse `yaml:",inline"`

	// ShowFields is set when the field listing should be displayed,
	// which is only for full-form tokens.
	ShowFields bool `json:"show_fields" yaml:"show_fields"`

	// Generated is a new token built from the identity fields.
	Generated *GenerateResponse `json:"generated,omitempty" yaml:"generated,omitempty"`
}

// Encode encodes text as a token.
func (s *TokenService) Encode(ctx context.Context, text string) *EncodeResponse {
	ctx, span := tracer.StartSpan(ctx, "TokenService.Encode")
	defer span.End()

	encoded := token.Encode(text)
	s.metrics.TokensEncoded.Inc()

	s.logger.WithContext(ctx).Debug("token encoded",
		"input", logger.RedactString(text),
		"length", len(encoded),
	)

	return &EncodeResponse{EncodedToken: encoded}
}

// Decode decodes an encoded token.
// A malformed token yields domain.ErrTokenMalformed wrapping the
// *token.DecodeError.
func (s *TokenService) Decode(ctx context.Context, encoded string) (*DecodeResponse, error) {
	ctx, span := tracer.StartSpan(ctx, "TokenService.Decode")
	defer span.End()

	plain, err := token.DecodeText(encoded)
	s.metrics.RecordDecode(err)
	if err != nil {
		span.RecordError(err)
		s.logger.WithContext(ctx).Debug("token decode failed",
			"input", logger.RedactString(encoded),
			"error", err,
		)
		return nil, domain.ErrTokenMalformed.WithDetails(decodeReason(err)).WithCause(err)
	}

	fields := token.ParseFields(plain)
	span.SetAttribute("token.segments", token.SegmentCount(plain))

	return &DecodeResponse{PlainToken: plain, Fields: fields}, nil
}

// Normalize accepts a token of either form and returns both.
// It never fails.
func (s *TokenService) Normalize(ctx context.Context, raw string) *NormalizeResponse {
	ctx, span := tracer.StartSpan(ctx, "TokenService.Normalize")
	defer span.End()

	return s.normalize(ctx, span, raw)
}

func (s *TokenService) normalize(ctx context.Context, span tracer.Span, raw string) *NormalizeResponse {
	n := token.Normalize(raw)
	segments := token.SegmentCount(n.PlainToken)
	truncated := token.Truncated(n.PlainToken)

	s.metrics.RecordNormalize(string(n.Form))
	span.SetAttribute("token.form", string(n.Form))
	span.SetAttribute("token.segments", segments)

	log := s.logger.WithContext(ctx)
	log.Debug("token normalized",
		"input", logger.RedactString(raw),
		"form", string(n.Form),
		"segments", segments,
	)
	if truncated {
		log.Warn("token has unexpected segment count, extra segments dropped",
			"segments", segments,
		)
	}

	return &NormalizeResponse{
		Form:         n.Form,
		PlainToken:   n.PlainToken,
		EncodedToken: n.EncodedToken,
		Fields:       n.Fields,
		Segments:     segments,
		Truncated:    truncated,
	}
}

// Generate issues a full-form token for id, expiring one day after now.
// Identity values are used as given.
func (s *TokenService) Generate(ctx context.Context, id domain.Identity) *GenerateResponse {
	ctx, span := tracer.StartSpan(ctx, "TokenService.Generate")
	defer span.End()

	return s.generate(ctx, id)
}

func (s *TokenService) generate(ctx context.Context, id domain.Identity) *GenerateResponse {
	g := token.GenerateAt(s.now(), id.LoginMasterID, id.DatabaseName, id.OrgID)
	s.metrics.TokensGenerated.Inc()

	s.logger.WithContext(ctx).Debug("token generated",
		"issued", token.FormatTimestamp(g.Issued),
		"expires", token.FormatTimestamp(g.Expires),
	)

	return &GenerateResponse{
		PlainToken:   g.PlainToken,
		EncodedToken: g.EncodedToken,
		Issued:       token.FormatTimestamp(g.Issued),
		Expires:      token.FormatTimestamp(g.Expires),
	}
}

// Inspect is the interactive view of a token: surrounding whitespace is
// trimmed, both forms are derived, the field listing is flagged for
// full-form tokens and a new token is generated from the identity fields.
// Empty input yields domain.ErrTokenRequired.
func (s *TokenService) Inspect(ctx context.Context, raw string) (*InspectResponse, error) {
	ctx, span := tracer.StartSpan(ctx, "TokenService.Inspect")
	defer span.End()

	raw = strings.TrimSpace(raw)
	if raw == "" {
		span.RecordError(domain.ErrTokenRequired)
		return nil, domain.ErrTokenRequired
	}

	n := s.normalize(ctx, span, raw)
	resp := &InspectResponse{
		NormalizeResponse: *n,
		ShowFields:        n.Fields.IsFull(),
	}

	if n.Fields.Has(token.IdentityFields...) {
		resp.Generated = s.generate(ctx, domain.IdentityFromFields(n.Fields))
	}

	return resp, nil
}

// decodeReason returns the machine-readable decode failure reason.
func decodeReason(err error) string {
	var de *token.DecodeError
	if errors.As(err, &de) {
		return string(de.Reason)
	}
	return ""
}
