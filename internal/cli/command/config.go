// Package command provides CLI command definitions for tokcodec-cli.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokcodec-go/internal/cli/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"cfg"},
		Usage:   "CLI configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective CLI configuration",
				Action: configShow,
			},
			{
				Name:  "init",
				Usage: "Write a config file with the effective settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:      "validate",
				Usage:     "Validate a CLI config file",
				ArgsUsage: "[FILE]",
				Action:    configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	st, err := getState(c)
	if err != nil {
		return err
	}

	if _, err := os.Stat(st.cfgPath); os.IsNotExist(err) {
		fmt.Fprintf(errWriter(c), "# %s not found, showing defaults\n", st.cfgPath)
	} else {
		fmt.Fprintf(errWriter(c), "# %s\n", st.cfgPath)
	}
	return render(c, st.cfg)
}

func configInit(c *cli.Context) error {
	st, err := getState(c)
	if err != nil {
		return err
	}

	if _, err := os.Stat(st.cfgPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", st.cfgPath)
	}

	if err := config.Save(st.cfg, st.cfgPath); err != nil {
		return err
	}
	fmt.Fprintf(writer(c), "Wrote %s\n", st.cfgPath)
	return nil
}

func configValidate(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		st, err := getState(c)
		if err != nil {
			return err
		}
		path = st.cfgPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(writer(c), "No configuration file found at %s\n", path)
		fmt.Fprintf(writer(c), "Using default settings.\n")
		return nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Fprintf(writer(c), "✓ Configuration is valid: %s\n", path)
	return nil
}
