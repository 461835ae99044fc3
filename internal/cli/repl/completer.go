package repl

import (
	"fmt"
	"strings"
)

// verb is a shell command. Lines whose first word is not a verb are
// inspected as tokens.
type verb struct {
	name    string
	usage   string // empty hides the verb from help
	summary string
}

var verbs = []verb{
	{"encode", "encode <text>", "base64-encode text"},
	{"decode", "decode <token>", "decode a base64 token into fields"},
	{"normalize", "normalize <token>", "detect the form and show both"},
	{"inspect", "inspect <token>", "same as typing the token"},
	{"generate", "generate <login> <database> <org>", "create a new auth token"},
	{"history", "history", "show previous lines"},
	{"help", "help", "show this help"},
	{"exit", "exit, quit", "leave the shell"},
	{"quit", "", ""},
}

func helpText() string {
	var b strings.Builder
	b.WriteString("Type a token (plain or base64) to inspect it, or one of:\n")
	for _, v := range verbs {
		if v.usage != "" {
			fmt.Fprintf(&b, "  %-40s%s\n", v.usage, v.summary)
		}
	}
	return b.String()
}

// Completer matches partial input against the shell verbs.
type Completer struct {
	names []string
}

// NewCompleter creates a Completer over the built-in verbs.
func NewCompleter() *Completer {
	c := &Completer{names: make([]string, len(verbs))}
	for i, v := range verbs {
		c.names[i] = v.name
	}
	return c
}

// Complete returns the verbs starting with prefix in help order. An
// empty prefix matches nothing.
func (c *Completer) Complete(prefix string) []string {
	if prefix == "" {
		return nil
	}
	var out []string
	for _, name := range c.names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

// Suggest returns the verb word abbreviates when exactly one matches.
func (c *Completer) Suggest(word string) string {
	if m := c.Complete(word); len(m) == 1 && m[0] != word {
		return m[0]
	}
	return ""
}
