// Package confirm asks the operator whether a rendered document is correct.
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"
)

// ErrNoAnswer is returned when input ends before a yes/no answer was given.
var ErrNoAnswer = errors.New("confirm: no answer")

const retryHint = "Please respond with 'yes' or 'no' (or 'y' or 'n')."

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Fixed always answers with its own value.
type Fixed bool

func (f Fixed) Confirm(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(f), nil
}

// LinePrompt reads answers line by line. An empty answer means yes.
type LinePrompt struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompt(in io.Reader, out io.Writer) *LinePrompt {
	return &LinePrompt{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompt) Confirm(ctx context.Context, prompt string) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprintf(p.out, "%s [Y/n] ", prompt)
		line, err := p.in.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			if errors.Is(err, io.EOF) {
				return false, ErrNoAnswer
			}
			return false, fmt.Errorf("confirm: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, retryHint)
		if err != nil {
			return false, ErrNoAnswer
		}
	}
}

// SurveyPrompt asks through an interactive terminal prompt.
type SurveyPrompt struct{}

func (SurveyPrompt) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	out := true
	q := &survey.Confirm{Message: prompt, Default: true}
	if err := survey.AskOne(q, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, context.Canceled
		}
		return false, fmt.Errorf("confirm: %w", err)
	}
	return out, nil
}

// ForTerminal picks the survey prompt when in is a terminal and falls back to
// line input otherwise.
func ForTerminal(in *os.File, out io.Writer) Confirmer {
	if term.IsTerminal(int(in.Fd())) {
		return SurveyPrompt{}
	}
	return NewLinePrompt(in, out)
}
