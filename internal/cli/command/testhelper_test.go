package command

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokcodec-go/internal/core/service"
	"github.com/yndnr/tokcodec-go/internal/server/httpserver"
	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
	"github.com/yndnr/tokcodec-go/internal/telemetry/metric"
)

// result captures one CLI invocation.
type result struct {
	stdout string
	stderr string
	err    error
}

// runApp runs tokcodec-cli with an isolated config file.
func runApp(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	return runAppWithConfig(t, filepath.Join(t.TempDir(), "cli.yaml"), stdin, args...)
}

func runAppWithConfig(t *testing.T, cfgPath, stdin string, args ...string) result {
	t.Helper()
	// Keep the default history file out of the real home directory.
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	full := append([]string{"tokcodec-cli", "--config", cfgPath}, args...)
	err := app.Run(full)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// newTestServer runs the HTTP API in-process.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := metric.NewRegistry()
	cfg := httpserver.DefaultRouterConfig()
	cfg.TokenService = service.NewTokenService(
		service.WithLogger(logger.Nop()),
		service.WithMetrics(reg),
	)
	cfg.Logger = logger.Nop()
	cfg.Metrics = reg
	cfg.EnableAudit = false
	srv := httptest.NewServer(httpserver.NewRouter(cfg))
	t.Cleanup(srv.Close)
	return srv
}
