package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before a line was read.
var ErrNoInput = errors.New("no input")

// Prompter reads answers to prompts. Secrets are read without echo when the
// input is a terminal.
type Prompter struct {
	in  *bufio.Reader
	fd  int
	tty bool
	out io.Writer
}

// NewPrompter reads from stdin and writes prompts to stdout.
func NewPrompter() *Prompter {
	fd := int(os.Stdin.Fd())
	return &Prompter{in: bufio.NewReader(os.Stdin), fd: fd, tty: term.IsTerminal(fd), out: os.Stdout}
}

// NewPrompterFrom reads from r and never hides input. Tests use it.
func NewPrompterFrom(r io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: out}
}

// Line prints label and returns the trimmed answer. When def is set and the
// answer is empty, def is returned.
func (p *Prompter) Line(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", ErrNoInput
	}
	if s := strings.TrimSpace(line); s != "" {
		return s, nil
	}
	return def, nil
}

// Secret prints label and reads a line without echoing it.
func (p *Prompter) Secret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.tty {
		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			return "", ErrNoInput
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
