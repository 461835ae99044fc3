// Package command provides CLI command definitions for tokcodec-cli.
//
// It uses urfave/cli/v2 for command parsing and supports both
// single-command mode and interactive REPL mode.
package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokcodec-go/internal/cli/config"
	"github.com/yndnr/tokcodec-go/internal/cli/connection"
	"github.com/yndnr/tokcodec-go/internal/cli/output"
	"github.com/yndnr/tokcodec-go/internal/core/service"
	"github.com/yndnr/tokcodec-go/internal/infra/buildinfo"
	"github.com/yndnr/tokcodec-go/internal/infra/tlsroots"
	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
)

const stateKey = "state"

// state is shared by all commands of one invocation.
type state struct {
	cfg     *config.CLIConfig
	cfgPath string
	format  output.Format
	mgr     *connection.Manager
	logger  logger.Logger
}

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:      "tokcodec-cli",
		Usage:     "Encode, decode and generate auth tokens",
		UsageText: "tokcodec-cli [global options] [TOKEN]\n   tokcodec-cli [global options] command [arguments...]",
		Version:   buildinfo.String(),
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			EncodeCommand(),
			DecodeCommand(),
			NormalizeCommand(),
			InspectCommand(),
			GenerateCommand(),
			ShellCommand(),
			ConfigCommand(),
			SystemCommand(),
		},
		Before: before,
		Action: rootAction,
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "tokcodec-server address (localhost:5080, https://host or unix:///path.sock); empty runs in-process",
			EnvVars: []string{"TOKCODEC_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			EnvVars: []string{"TOKCODEC_OUTPUT"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file",
			EnvVars: []string{"TOKCODEC_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM file with extra CA certificates for https servers",
			EnvVars: []string{"TOKCODEC_CA_FILE"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout for remote servers",
			Value: connection.DefaultTimeout,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose output",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Output  string
	Config  string
	CAFile  string
	Timeout time.Duration
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Output:  c.String("output"),
		Config:  c.String("config"),
		CAFile:  c.String("ca-file"),
		Timeout: c.Duration("timeout"),
		Verbose: c.Bool("verbose"),
	}
}

// overrides collects explicitly set flags (including their env vars).
func overrides(c *cli.Context, flags *GlobalFlags) map[string]string {
	o := make(map[string]string)
	if c.IsSet("server") {
		o[config.KeyServer] = flags.Server
	}
	if c.IsSet("output") {
		o[config.KeyOutput] = flags.Output
	}
	return o
}

// before loads configuration and selects the backend.
// Precedence: flag, environment, config file, default.
func before(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	fileCfg, err := config.Load(flags.Config)
	if err != nil {
		return err
	}
	cfg := config.Merge(fileCfg, overrides(c, flags))
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	format, err := output.ParseFormat(cfg.DefaultOutput)
	if err != nil {
		return err
	}

	level := "warn"
	if flags.Verbose {
		level = "debug"
	}
	l, err := logger.New(logger.Config{
		Level:   level,
		Format:  "text",
		Backend: logger.BackendSlog,
		Output:  errWriter(c),
	})
	if err != nil {
		return err
	}

	clientOpts := []connection.ClientOption{connection.WithTimeout(flags.Timeout)}
	if flags.CAFile != "" {
		tlsCfg, err := tlsroots.ClientConfig(flags.CAFile)
		if err != nil {
			return err
		}
		clientOpts = append(clientOpts, connection.WithTLSConfig(tlsCfg))
	}

	svc := service.NewTokenService(service.WithLogger(l))
	mgr := connection.NewManager(svc, clientOpts...)
	if _, err := mgr.Connect(cfg.DefaultServer); err != nil {
		return err
	}

	l.Debug("cli configured",
		"config", flags.Config,
		"target", mgr.Current().Target(),
		"output", string(format),
	)

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[stateKey] = &state{
		cfg:     cfg,
		cfgPath: flags.Config,
		format:  format,
		mgr:     mgr,
		logger:  l,
	}
	return nil
}

// rootAction inspects a token given as the only argument, or starts the
// shell when there is none.
func rootAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return shellAction(c)
	}
	return inspectAction(c)
}

func getState(c *cli.Context) (*state, error) {
	if st, ok := c.App.Metadata[stateKey].(*state); ok {
		return st, nil
	}
	return nil, errors.New("cli not initialized")
}

// GetConnectionManager retrieves the connection manager from context.
func GetConnectionManager(c *cli.Context) *connection.Manager {
	st, err := getState(c)
	if err != nil {
		return nil
	}
	return st.mgr
}

// backend returns the active backend.
func backend(c *cli.Context) (connection.Backend, error) {
	st, err := getState(c)
	if err != nil {
		return nil, err
	}
	return st.mgr.Current(), nil
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	st, err := getState(c)
	if err != nil {
		return err
	}
	return output.NewFormatter(st.format).Format(writer(c), data)
}

// argOrStdin returns the joined arguments, or stdin with the trailing
// newline removed when there are none.
func argOrStdin(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	r := c.App.Reader
	if r == nil || r == os.Stdin && isTerminal(os.Stdin) {
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// PrintError prints an error message to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
