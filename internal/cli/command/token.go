// Package command provides CLI command definitions for tokcodec-cli.
package command

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
)

// EncodeCommand returns the encode command.
func EncodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Aliases:   []string{"enc"},
		Usage:     "Base64-encode text",
		ArgsUsage: "TEXT (or stdin)",
		Action:    encodeAction,
	}
}

// DecodeCommand returns the decode command.
func DecodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Aliases:   []string{"dec"},
		Usage:     "Decode a base64 token into its fields",
		ArgsUsage: "TOKEN (or stdin)",
		Action:    decodeAction,
	}
}

// NormalizeCommand returns the normalize command.
func NormalizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "normalize",
		Aliases:   []string{"norm"},
		Usage:     "Detect whether a token is plain or encoded and show both forms",
		ArgsUsage: "TOKEN (or stdin)",
		Action:    normalizeAction,
	}
}

// InspectCommand returns the inspect command.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show both forms, the fields and a freshly generated token",
		ArgsUsage: "TOKEN (or stdin)",
		Action:    inspectAction,
	}
}

// GenerateCommand returns the generate command.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate an auth token valid for one day",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "login-master-id",
				Aliases: []string{"l"},
				Usage:   "LoginMasterID field",
			},
			&cli.StringFlag{
				Name:    "database-name",
				Aliases: []string{"d"},
				Usage:   "Database_Name field",
			},
			&cli.StringFlag{
				Name:  "org-id",
				Usage: "OrgID field",
			},
		},
		Action: generateAction,
	}
}

func encodeAction(c *cli.Context) error {
	text, err := argOrStdin(c)
	if err != nil {
		return err
	}
	if text == "" {
		return domain.ErrMissingArgument.WithDetails("text")
	}

	b, err := backend(c)
	if err != nil {
		return err
	}
	resp, err := b.Encode(c.Context, text)
	if err != nil {
		return err
	}
	return render(c, resp)
}

// tokenArg reads a token argument. Surrounding whitespace is ignored.
func tokenArg(c *cli.Context) (string, error) {
	raw, err := argOrStdin(c)
	if err != nil {
		return "", err
	}
	tok := strings.TrimSpace(raw)
	if tok == "" {
		return "", domain.ErrTokenRequired
	}
	return tok, nil
}

func decodeAction(c *cli.Context) error {
	tok, err := tokenArg(c)
	if err != nil {
		return err
	}

	b, err := backend(c)
	if err != nil {
		return err
	}
	resp, err := b.Decode(c.Context, tok)
	if err != nil {
		return err
	}
	return render(c, resp)
}

func normalizeAction(c *cli.Context) error {
	tok, err := tokenArg(c)
	if err != nil {
		return err
	}

	b, err := backend(c)
	if err != nil {
		return err
	}
	resp, err := b.Normalize(c.Context, tok)
	if err != nil {
		return err
	}
	return render(c, resp)
}

func inspectAction(c *cli.Context) error {
	tok, err := tokenArg(c)
	if err != nil {
		return err
	}

	b, err := backend(c)
	if err != nil {
		return err
	}
	resp, err := b.Inspect(c.Context, tok)
	if err != nil {
		return err
	}
	return render(c, resp)
}

func generateAction(c *cli.Context) error {
	b, err := backend(c)
	if err != nil {
		return err
	}
	resp, err := b.Generate(c.Context, domain.Identity{
		LoginMasterID: c.String("login-master-id"),
		DatabaseName:  c.String("database-name"),
		OrgID:         c.String("org-id"),
	})
	if err != nil {
		return err
	}
	return render(c, resp)
}
