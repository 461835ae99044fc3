package main

import (
	"io"
	"os"

	"github.com/yndnr/tokcodec-go/internal/cli/command"
)

func main() {
	os.Exit(run(os.Args, os.Stderr))
}

// run executes the CLI and maps its outcome to a process exit code.
func run(args []string, stderr io.Writer) int {
	if err := command.App().Run(args); err != nil {
		command.PrintError(stderr, err)
		return 1
	}
	return 0
}
