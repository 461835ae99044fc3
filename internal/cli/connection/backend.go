// Package connection selects where tokcodec-cli runs token operations.
package connection

import (
	"context"
	"time"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
	"github.com/yndnr/tokcodec-go/internal/core/service"
	"github.com/yndnr/tokcodec-go/internal/infra/buildinfo"
)

// Backend runs token operations.
type Backend interface {
	Encode(ctx context.Context, text string) (*service.EncodeResponse, error)
	Decode(ctx context.Context, token string) (*service.DecodeResponse, error)
	Normalize(ctx context.Context, token string) (*service.NormalizeResponse, error)
	Generate(ctx context.Context, id domain.Identity) (*service.GenerateResponse, error)
	Inspect(ctx context.Context, token string) (*service.InspectResponse, error)
	Health(ctx context.Context) (*Health, error)

	// Target describes where operations run.
	Target() string
}

// Health is the result of a health check.
type Health struct {
	Status  string `json:"status" yaml:"status"`
	Time    string `json:"time" yaml:"time"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Target  string `json:"target" yaml:"target"`
}

// LocalTarget is the Target of the in-process backend.
const LocalTarget = "local"

// Local runs operations in-process.
type Local struct {
	svc *service.TokenService
}

// NewLocal creates an in-process backend.
func NewLocal(svc *service.TokenService) *Local {
	if svc == nil {
		svc = service.NewTokenService()
	}
	return &Local{svc: svc}
}

func (l *Local) Encode(ctx context.Context, text string) (*service.EncodeResponse, error) {
	return l.svc.Encode(ctx, text), nil
}

func (l *Local) Decode(ctx context.Context, token string) (*service.DecodeResponse, error) {
	return l.svc.Decode(ctx, token)
}

func (l *Local) Normalize(ctx context.Context, token string) (*service.NormalizeResponse, error) {
	return l.svc.Normalize(ctx, token), nil
}

func (l *Local) Generate(ctx context.Context, id domain.Identity) (*service.GenerateResponse, error) {
	return l.svc.Generate(ctx, id), nil
}

func (l *Local) Inspect(ctx context.Context, token string) (*service.InspectResponse, error) {
	return l.svc.Inspect(ctx, token)
}

// Health always reports healthy; the codec has no dependencies.
func (l *Local) Health(_ context.Context) (*Health, error) {
	return &Health{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: buildinfo.Get().Version,
		Target:  LocalTarget,
	}, nil
}

func (l *Local) Target() string {
	return LocalTarget
}
