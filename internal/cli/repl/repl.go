package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/tokcodec-go/internal/cli/connection"
	"github.com/yndnr/tokcodec-go/internal/cli/output"
	"github.com/yndnr/tokcodec-go/internal/core/domain"
)

// Prompt is printed before each line is read.
const Prompt = "tokcodec> "

// EmptyInputHint is printed for a blank line.
const EmptyInputHint = "Enter a token string to see results."

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	backend   connection.Backend
	formatter output.Formatter
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// WithFormatter sets the result formatter.
func WithFormatter(f output.Formatter) Option {
	return func(r *REPL) { r.formatter = f }
}

// New creates a new REPL running operations on backend.
func New(backend connection.Backend, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		backend:   backend,
		formatter: output.NewFormatter(output.FormatTable),
		completer: NewCompleter(),
		history:   NewHistory("", 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// History returns the REPL history.
func (r *REPL) History() *History {
	return r.history
}

// Run starts the REPL loop. It returns on exit, EOF or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewReader(r.input)

	fmt.Fprintf(r.output, "Connected to %s. Type 'help' for commands.\n", r.backend.Target())

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		// Print prompt
		fmt.Fprint(r.output, Prompt)

		// Read line
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		eof := err == io.EOF

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			fmt.Fprintln(r.output, EmptyInputHint)
			continue
		}

		r.history.Add(line)

		// Handle special commands
		if line == "exit" || line == "quit" {
			return nil
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}

		if eof {
			return nil
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) error {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var (
		result any
		err    error
	)

	switch verb {
	case "help":
		fmt.Fprint(r.output, helpText())
		return nil
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return nil
	case "encode":
		if rest == "" {
			return domain.ErrMissingArgument.WithDetails("text")
		}
		result, err = r.backend.Encode(ctx, rest)
	case "decode":
		if rest == "" {
			return domain.ErrTokenRequired
		}
		result, err = r.backend.Decode(ctx, rest)
	case "normalize":
		if rest == "" {
			return domain.ErrTokenRequired
		}
		result, err = r.backend.Normalize(ctx, rest)
	case "inspect":
		if rest == "" {
			return domain.ErrTokenRequired
		}
		result, err = r.backend.Inspect(ctx, rest)
	case "generate":
		result, err = r.backend.Generate(ctx, parseIdentity(rest))
	default:
		// "enc abc" is a mistyped verb, not a token.
		if rest != "" {
			if s := r.completer.Suggest(verb); s != "" {
				return fmt.Errorf("unknown command %q, did you mean %q?", verb, s)
			}
		}
		result, err = r.backend.Inspect(ctx, line)
	}

	if err != nil {
		return err
	}
	return r.formatter.Format(r.output, result)
}

// parseIdentity reads up to three whitespace-separated values. Missing
// values stay empty.
func parseIdentity(args string) domain.Identity {
	parts := strings.Fields(args)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return domain.Identity{
		LoginMasterID: parts[0],
		DatabaseName:  parts[1],
		OrgID:         parts[2],
	}
}
