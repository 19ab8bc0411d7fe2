package prompter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from one input. A single buffered reader is kept
// so lines typed ahead are not lost between prompts.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

// New creates a prompter over in and out. Passwords are read with echo
// only when in is not a terminal.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok {
		p.fd = int(f.Fd())
	}
	return p
}

// Stdio prompts on the process terminal
func Stdio() *Prompter {
	return New(os.Stdin, os.Stdout)
}

// String prompts user for a string input
func (p *Prompter) String(label string) (string, error) {
	fmt.Fprint(p.out, label)
	return p.readLine()
}

// Required re-prompts until a non-empty answer is given
func (p *Prompter) Required(label string) (string, error) {
	for {
		v, err := p.String(label)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
		fmt.Fprintln(p.out, "A value is required.")
	}
}

// Password prompts for a password without echoing it on a terminal
func (p *Prompter) Password(label string) (string, error) {
	fmt.Fprint(p.out, label)

	if p.fd < 0 || !term.IsTerminal(p.fd) {
		return p.readLine()
	}

	pw, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// Confirm prompts user for yes/no confirmation
func (p *Prompter) Confirm(label string) (bool, error) {
	fmt.Fprint(p.out, label+" (y/n) ")
	input, err := p.readLine()
	if err != nil {
		return false, err
	}
	response := strings.ToLower(input)
	return response == "y" || response == "yes", nil
}

// Select prompts user to select from options and returns the index
func (p *Prompter) Select(label string, options []string) (int, error) {
	fmt.Fprintln(p.out, label)
	for i, opt := range options {
		fmt.Fprintf(p.out, "%d) %s\n", i+1, opt)
	}

	fmt.Fprint(p.out, "Select option: ")
	input, err := p.readLine()
	if err != nil {
		return -1, err
	}

	var selection int
	if _, err := fmt.Sscanf(input, "%d", &selection); err != nil {
		return -1, fmt.Errorf("invalid selection %q", input)
	}
	if selection < 1 || selection > len(options) {
		return -1, fmt.Errorf("invalid selection")
	}
	return selection - 1, nil
}

// Multiline reads lines until an empty one or maxLines
func (p *Prompter) Multiline(label string, maxLines int) (string, error) {
	fmt.Fprintf(p.out, "%s (empty line to finish):\n", label)

	var lines []string
	for i := 0; i < maxLines; i++ {
		line, err := p.readLine()
		if err != nil && err != io.EOF {
			return "", err
		}
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// Lines streams raw input lines until EOF or ctx is done. The channel is
// closed when reading stops.
func (p *Prompter) Lines(ctx context.Context) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		for {
			line, err := p.in.ReadString('\n')
			if line != "" || err == nil {
				select {
				case ch <- strings.TrimRight(line, "\r\n"):
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

func (p *Prompter) readLine() (string, error) {
	input, err := p.in.ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return strings.TrimSpace(input), err
	}
	return strings.TrimSpace(input), nil
}
