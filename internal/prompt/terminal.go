// Package prompt implements interactive credential collection for login
// forms encountered during a crawl.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/filehound/filehound/internal/crawler"
)

// Terminal reads credentials from an interactive terminal. When stdin is a
// real terminal the password is read without echo. One mutex serializes
// prompts so concurrent workers cannot interleave their questions.
type Terminal struct {
	mu      sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	stdinFd int
}

// NewTerminal wraps the given streams. Pass os.Stdin/os.Stderr in production.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{
		in:      bufio.NewReader(in),
		out:     out,
		stdinFd: -1,
	}
	if f, ok := in.(*os.File); ok {
		t.stdinFd = int(f.Fd())
	}
	return t
}

// Prompt asks the operator for a username and password. hint names the
// domain the login form belongs to.
func (t *Terminal) Prompt(ctx context.Context, hint string) (crawler.Credentials, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return crawler.Credentials{}, err
	}

	fmt.Fprintf(t.out, "\nLogin required for %s\nUsername: ", hint)
	username, err := t.readLine()
	if err != nil {
		return crawler.Credentials{}, fmt.Errorf("read username: %w", err)
	}

	fmt.Fprint(t.out, "Password: ")
	password, err := t.readPassword()
	if err != nil {
		return crawler.Credentials{}, fmt.Errorf("read password: %w", err)
	}

	return crawler.Credentials{Username: username, Password: password}, nil
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if line == "" && errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) readPassword() (string, error) {
	if t.stdinFd >= 0 && term.IsTerminal(t.stdinFd) {
		raw, err := term.ReadPassword(t.stdinFd)
		fmt.Fprintln(t.out)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return t.readLine()
}
