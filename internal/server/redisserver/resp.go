package redisserver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Protocol limits.
const (
	// MaxArrayLen bounds the number of arguments of one command.
	MaxArrayLen = 64

	// MaxBulkLen bounds a single argument. Tokens are short strings.
	MaxBulkLen = 64 * 1024

	// MaxInlineLen bounds an inline command line.
	MaxInlineLen = 4 * 1024

	// maxHeaderLen bounds "*<n>" and "$<n>" header lines.
	maxHeaderLen = 32
)

var (
	ErrProtocol      = errors.New("resp: protocol error")
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

const crlf = "\r\n"

// ReadCommand reads one command, either a RESP array of bulk strings or
// an inline command line. An empty command yields nil args.
//
// Inline lines may end in LF or CRLF and accept redis-cli style quoting:
// "..." with backslash escapes and '...' with only \' escaped.
func ReadCommand(r *bufio.Reader) ([][]byte, error) {
	first, err := r.Peek(1)
	if err != nil {
		return nil, err
	}

	if first[0] != '*' {
		line, err := readRawLine(r, MaxInlineLen)
		if err != nil {
			return nil, err
		}
		return splitInline(strings.TrimSuffix(string(line), "\r"))
	}

	count, err := readLength(r, '*', MaxArrayLen)
	if err != nil || count <= 0 {
		return nil, err
	}
	args := make([][]byte, count)
	for i := range args {
		size, err := readLength(r, '$', MaxBulkLen)
		if err != nil {
			return nil, err
		}
		if size < 0 {
			return nil, fmt.Errorf("%w: null bulk argument", ErrProtocol)
		}
		if args[i], err = readBulk(r, size); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// readBulk reads size payload bytes plus the trailing CRLF.
func readBulk(r *bufio.Reader, size int) ([]byte, error) {
	buf := make([]byte, size+len(crlf))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	if string(buf[size:]) != crlf {
		return nil, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}
	return buf[:size], nil
}

// readLength parses a "<kind><int>" header. Values above limit are
// rejected before any payload is read.
func readLength(r *bufio.Reader, kind byte, limit int) (int, error) {
	line, err := readLine(r, maxHeaderLen)
	if err != nil {
		return 0, err
	}
	if len(line) < 2 || line[0] != kind {
		return 0, fmt.Errorf("%w: expected '%c', got %q", ErrProtocol, kind, line)
	}
	n, err := strconv.Atoi(string(line[1:]))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid length %q", ErrProtocol, line[1:])
	}
	if n > limit {
		return 0, fmt.Errorf("%w: length %d exceeds %d", ErrLimitExceeded, n, limit)
	}
	return n, nil
}

// readLine returns one CRLF terminated line without its terminator.
func readLine(r *bufio.Reader, limit int) ([]byte, error) {
	line, err := readRawLine(r, limit)
	if err != nil {
		return nil, err
	}
	n := len(line) - 1
	if n < 0 || line[n] != '\r' {
		return nil, fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return line[:n], nil
}

// readRawLine returns one LF terminated line without the LF.
func readRawLine(r *bufio.Reader, limit int) ([]byte, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > limit+len(crlf) {
			return nil, fmt.Errorf("%w: line exceeds %d bytes", ErrLimitExceeded, limit)
		}
		if err == nil {
			break
		}
		if err != bufio.ErrBufferFull {
			return nil, err
		}
	}
	return line[:len(line)-1], nil
}

// splitInline splits an inline command into arguments. A closing quote
// must be followed by a space or the end of the line.
func splitInline(line string) ([][]byte, error) {
	var args [][]byte
	i := 0
	for {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i == len(line) {
			return args, nil
		}

		var arg []byte
		for i < len(line) && !isSpace(line[i]) {
			c := line[i]
			if c != '"' && c != '\'' {
				arg = append(arg, c)
				i++
				continue
			}
			var err error
			if arg, i, err = unquote(line, i+1, c, arg); err != nil {
				return nil, err
			}
			if i < len(line) && !isSpace(line[i]) {
				return nil, fmt.Errorf("%w: closing quote must be followed by a space", ErrProtocol)
			}
		}
		if arg == nil {
			arg = []byte{}
		}
		args = append(args, arg)
	}
}

// unquote appends the quoted text starting at line[i] to arg and returns
// the index past the closing quote q.
func unquote(line string, i int, q byte, arg []byte) ([]byte, int, error) {
	for ; i < len(line); i++ {
		c := line[i]
		switch {
		case c == q:
			return arg, i + 1, nil
		case c != '\\' || i+1 == len(line):
			arg = append(arg, c)
		case q == '\'':
			if line[i+1] == '\'' {
				i++
				c = '\''
			}
			arg = append(arg, c)
		case line[i+1] == 'x' && i+3 < len(line) && isHex(line[i+2]) && isHex(line[i+3]):
			v, _ := strconv.ParseUint(line[i+2:i+4], 16, 8)
			arg = append(arg, byte(v))
			i += 3
		default:
			i++
			arg = append(arg, escaped(line[i]))
		}
	}
	return nil, 0, fmt.Errorf("%w: unbalanced quotes in request", ErrProtocol)
}

func escaped(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'a':
		return '\a'
	}
	return c
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// Reply buffers RESP replies. The first write error sticks and is
// reported by Err and Flush.
type Reply struct {
	w   *bufio.Writer
	err error
}

// NewReply returns a Reply writing to w.
func NewReply(w io.Writer) *Reply {
	return &Reply{w: bufio.NewWriter(w)}
}

// line writes parts followed by CRLF.
func (r *Reply) line(parts ...string) {
	if r.err != nil {
		return
	}
	for _, p := range parts {
		if _, r.err = r.w.WriteString(p); r.err != nil {
			return
		}
	}
	_, r.err = r.w.WriteString(crlf)
}

// Simple writes a status reply such as +OK.
func (r *Reply) Simple(s string) { r.line("+", s) }

// Error writes an error reply. Line breaks in msg become spaces.
func (r *Reply) Error(msg string) {
	r.line("-", strings.NewReplacer("\r", " ", "\n", " ").Replace(msg))
}

// Int writes an integer reply.
func (r *Reply) Int(n int64) { r.line(":", strconv.FormatInt(n, 10)) }

// Bool writes true as :1 and false as :0.
func (r *Reply) Bool(b bool) {
	if b {
		r.Int(1)
		return
	}
	r.Int(0)
}

// Bulk writes a bulk string reply.
func (r *Reply) Bulk(s string) {
	r.line("$", strconv.Itoa(len(s)))
	r.line(s)
}

// Array writes the header of an n element array.
func (r *Reply) Array(n int) { r.line("*", strconv.Itoa(n)) }

// Strings writes an array of bulk strings.
func (r *Reply) Strings(items ...string) {
	r.Array(len(items))
	for _, s := range items {
		r.Bulk(s)
	}
}

// Err returns the first write error.
func (r *Reply) Err() error { return r.err }

// Flush sends the buffered replies.
func (r *Reply) Flush() error {
	if r.err != nil {
		return r.err
	}
	r.err = r.w.Flush()
	return r.err
}

func commandName(b []byte) string {
	return strings.ToUpper(string(b))
}
