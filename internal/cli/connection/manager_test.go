package connection

import (
	"context"
	"errors"
	"testing"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
)

func TestNewManager(t *testing.T) {
	m := NewManager(newTestService())
	if m.Current() == nil {
		t.Fatal("new manager should have a backend")
	}
	if m.IsRemote() {
		t.Error("new manager should start local")
	}
	if m.Current().Target() != LocalTarget {
		t.Errorf("Target() = %q", m.Current().Target())
	}
}

func TestManager_Connect(t *testing.T) {
	tests := []struct {
		name       string
		addr       string
		wantRemote bool
		wantErr    bool
	}{
		{"empty is local", "", false, false},
		{"host and port", "localhost:5080", true, false},
		{"url", "https://tokcodec.example", true, false},
		{"path not allowed", "http://localhost:5080/api", false, true},
		{"invalid host", "local host:5080", false, true},
		{"unix socket", "unix:///run/tokcodec.sock", true, false},
		{"unix without path", "unix://", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(newTestService())
			b, err := m.Connect(tt.addr)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if m.IsRemote() {
					t.Error("failed connect should keep the local backend")
				}
				return
			}
			if err != nil {
				t.Fatalf("Connect: %v", err)
			}
			if b != m.Current() {
				t.Error("Connect should return the current backend")
			}
			if m.IsRemote() != tt.wantRemote {
				t.Errorf("IsRemote() = %v, want %v", m.IsRemote(), tt.wantRemote)
			}
		})
	}
}

func TestManager_Disconnect(t *testing.T) {
	m := NewManager(newTestService())
	if _, err := m.Connect("localhost:5080"); err != nil {
		t.Fatal(err)
	}

	m.Disconnect()

	if m.IsRemote() {
		t.Error("Disconnect should return to the local backend")
	}
}

func TestLocal(t *testing.T) {
	l := NewLocal(newTestService())
	ctx := context.Background()

	enc, _ := l.Encode(ctx, "L1&DB1&O1")
	if enc.EncodedToken != "TDEmREIxJk8x" {
		t.Errorf("Encode = %q", enc.EncodedToken)
	}

	if _, err := l.Decode(ctx, "%%%"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Errorf("Decode error = %v", err)
	}

	norm, _ := l.Normalize(ctx, "YWJj")
	if norm.PlainToken != "abc" {
		t.Errorf("Normalize = %+v", norm)
	}

	gen, _ := l.Generate(ctx, domain.Identity{})
	if gen.Issued != "2024-01-01T00:00:00+00:00" {
		t.Errorf("Generate = %+v", gen)
	}

	if _, err := l.Inspect(ctx, ""); !errors.Is(err, domain.ErrTokenRequired) {
		t.Errorf("Inspect error = %v", err)
	}

	h, err := l.Health(ctx)
	if err != nil || h.Status != "healthy" || h.Target != LocalTarget {
		t.Errorf("Health = %+v, %v", h, err)
	}
}

func TestNewLocal_NilService(t *testing.T) {
	l := NewLocal(nil)
	if l.svc == nil {
		t.Error("NewLocal(nil) should create a service")
	}
}

// Both backends must satisfy the interface.
var (
	_ Backend = (*Local)(nil)
	_ Backend = (*HTTPClient)(nil)
)
