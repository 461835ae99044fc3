// Package command provides CLI command definitions for tokcodec-cli.
package command

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokcodec-go/internal/cli/output"
	"github.com/yndnr/tokcodec-go/internal/cli/repl"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:    "shell",
		Aliases: []string{"repl"},
		Usage:   "Start an interactive session; each line is a token to inspect",
		Action:  shellAction,
	}
}

func shellAction(c *cli.Context) error {
	st, err := getState(c)
	if err != nil {
		return err
	}

	history := repl.NewHistory(st.cfg.HistoryPath(), st.cfg.HistorySize)
	if err := history.Load(); err != nil {
		st.logger.Warn("load history failed", "file", st.cfg.HistoryPath(), "error", err)
	}

	in := c.App.Reader
	if in == nil {
		in = os.Stdin
	}

	r := repl.New(st.mgr.Current(),
		repl.WithIO(in, writer(c)),
		repl.WithFormatter(output.NewFormatter(st.format)),
		repl.WithHistory(history),
	)
	runErr := r.Run(c.Context)

	if err := history.Save(); err != nil {
		st.logger.Warn("save history failed", "file", st.cfg.HistoryPath(), "error", err)
	}
	return runErr
}
