package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokcodec-go/internal/infra/buildinfo"
)

// SystemCommand groups health and build information.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Backend health and build information",
		Subcommands: []*cli.Command{
			{
				Name:  "health",
				Usage: "Check the active backend",
				Action: func(c *cli.Context) error {
					b, err := backend(c)
					if err != nil {
						return err
					}
					h, err := b.Health(c.Context)
					if err != nil {
						return err
					}
					return render(c, h)
				},
			},
			{
				Name:  "version",
				Usage: "Show CLI build information",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "short", Usage: "print the version string only"},
				},
				Action: func(c *cli.Context) error {
					info := buildinfo.Get()
					if c.Bool("short") {
						_, err := fmt.Fprintln(writer(c), info.Version)
						return err
					}
					return render(c, info)
				},
			},
		},
	}
}
