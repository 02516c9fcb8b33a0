// Package launch starts the desktop programs used to review an artifact:
// the PDF viewer and the Thunderbird compose window.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/felixhoffmnn/latex-templates/internal/mail"
)

// ErrNoMailClient is returned when Thunderbird is not installed.
var ErrNoMailClient = errors.New("thunderbird is not installed")

// RunFunc executes a command and returns its combined output.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Launcher starts external programs.
type Launcher struct {
	run RunFunc
	log zerolog.Logger
}

// New returns a Launcher using os/exec.
func New(log zerolog.Logger) *Launcher {
	return &Launcher{run: execRun, log: log}
}

// NewWithRunner returns a Launcher using run.
func NewWithRunner(run RunFunc, log zerolog.Logger) *Launcher {
	return &Launcher{run: run, log: log}
}

// OpenViewer opens path with xdg-open.
func (l *Launcher) OpenViewer(ctx context.Context, path string) error {
	if out, err := l.run(ctx, "xdg-open", path); err != nil {
		return fmt.Errorf("xdg-open: %s: %w", out, err)
	}
	return nil
}

// MailClient returns the Thunderbird command: a native install first, then flatpak.
func (l *Launcher) MailClient(ctx context.Context) ([]string, error) {
	if _, err := l.run(ctx, "thunderbird", "--version"); err == nil {
		return []string{"thunderbird"}, nil
	}
	l.log.Debug().Msg("native thunderbird not found, trying flatpak")

	flatpak := []string{"flatpak", "run", "org.mozilla.Thunderbird"}
	if _, err := l.run(ctx, flatpak[0], append(flatpak[1:], "--version")...); err == nil {
		return flatpak, nil
	}
	return nil, ErrNoMailClient
}

// ComposeMail opens a Thunderbird compose window prefilled with d.
func (l *Launcher) ComposeMail(ctx context.Context, d mail.Draft) error {
	client, err := l.MailClient(ctx)
	if err != nil {
		return err
	}
	args := append(append([]string{}, client[1:]...), "-compose", mail.ComposeArg(d))
	l.log.Debug().Strs("command", append([]string{client[0]}, args...)).Msg("composing mail")

	if out, err := l.run(ctx, client[0], args...); err != nil {
		return fmt.Errorf("%s -compose: %s: %w", client[0], out, err)
	}
	return nil
}
