// Package connection selects where tokcodec-cli runs token operations.
package connection

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/yndnr/tokcodec-go/internal/core/service"
)

// Manager holds the active backend.
type Manager struct {
	mu         sync.Mutex
	local      *Local
	current    Backend
	clientOpts []ClientOption
}

// NewManager creates a manager that starts on the in-process backend.
// opts apply to every remote connection.
func NewManager(svc *service.TokenService, opts ...ClientOption) *Manager {
	local := NewLocal(svc)
	return &Manager{local: local, current: local, clientOpts: opts}
}

// Connect switches to the server at addr. An empty addr selects the
// in-process backend.
func (m *Manager) Connect(addr string) (Backend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if addr == "" {
		m.current = m.local
		return m.current, nil
	}

	client := NewHTTPClient(addr, m.clientOpts...)
	if strings.HasPrefix(addr, UnixScheme) {
		if client.SocketPath() == "" {
			return nil, fmt.Errorf("invalid server address %q: missing socket path", addr)
		}
		m.current = client
		return m.current, nil
	}
	u, err := url.Parse(client.BaseURL())
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid server address %q", addr)
	}
	if strings.TrimSuffix(u.Path, "/") != "" {
		return nil, fmt.Errorf("server address %q must not contain a path", addr)
	}

	m.current = client
	return m.current, nil
}

// Disconnect returns to the in-process backend.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.local
}

// Current returns the active backend.
func (m *Manager) Current() Backend {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// IsRemote reports whether operations go to a server.
func (m *Manager) IsRemote() bool {
	return m.Current().Target() != LocalTarget
}
