package localserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/yndnr/tokcodec-go/internal/server/httpserver"
	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
)

// SocketMode is the permission of the created socket file.
const SocketMode fs.FileMode = 0600

// ErrSocketInUse is returned when another process serves the socket.
var ErrSocketInUse = errors.New("socket is in use")

// Server serves an http.Handler on a Unix domain socket.
type Server struct {
	path   string
	http   *httpserver.Server
	logger logger.Logger
}

// New creates a local server for the socket at path.
func New(path string, handler http.Handler, l logger.Logger) *Server {
	if l == nil {
		l = logger.Default()
	}
	return &Server{
		path:   path,
		http:   httpserver.New(path, handler),
		logger: l.With("component", "local_server"),
	}
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// ListenAndServe creates the socket and serves until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := Listen(s.path)
	if err != nil {
		return err
	}
	s.logger.Info("local socket listening", "path", s.path)
	return s.http.Serve(ln)
}

// Shutdown stops the server. Closing the listener removes the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Listen creates a Unix socket at path with SocketMode permissions.
// A stale socket left by a crashed process is replaced; a socket with a
// live listener yields ErrSocketInUse.
func Listen(path string) (net.Listener, error) {
	if err := removeStale(path); err != nil {
		return nil, err
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, SocketMode); err != nil {
		ln.Close()
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}
	return ln, nil
}

func removeStale(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("%s exists and is not a socket", path)
	}

	conn, err := net.DialTimeout("unix", path, time.Second)
	if err == nil {
		conn.Close()
		return fmt.Errorf("%s: %w", path, ErrSocketInUse)
	}
	return os.Remove(path)
}
