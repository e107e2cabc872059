package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/amonks/recur/internal/config"
	"github.com/amonks/recur/project"
	"golang.org/x/term"
)

// Line asks for a yes/no answer on one line of input. End of input counts
// as no.
type Line struct {
	mu     sync.Mutex
	out    io.Writer
	reader *bufio.Reader
}

// NewLine returns a line prompt reading from in and writing to out.
func NewLine(in io.Reader, out io.Writer) *Line {
	if out == nil {
		out = io.Discard
	}
	return &Line{out: out, reader: bufio.NewReader(in)}
}

// Confirm prints the prompt and reads one answer.
func (l *Line) Confirm(ctx context.Context, prompt project.Prompt) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if prompt.Title != "" {
		fmt.Fprintln(l.out, prompt.Title)
	}
	fmt.Fprintln(l.out, prompt.Message)
	fmt.Fprintf(l.out, "%s? [y/N]: ", prompt.Confirm)

	answer, err := l.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && answer == "" {
		fmt.Fprintln(l.out)
	}
	return isYes(answer, prompt.Confirm), nil
}

func isYes(answer, confirmLabel string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	switch answer {
	case "y", "yes":
		return true
	}
	return confirmLabel != "" && answer == strings.ToLower(confirmLabel)
}

// Fixed answers every prompt without asking.
type Fixed bool

// Confirm returns the fixed answer.
func (f Fixed) Confirm(ctx context.Context, _ project.Prompt) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(f), nil
}

// New returns the confirmer for mode. In auto mode the dialog is used when
// both in and out are terminals.
func New(mode config.ConfirmMode, in, out *os.File) project.Confirmer {
	switch mode {
	case config.ConfirmYes:
		return Fixed(true)
	case config.ConfirmNo:
		return Fixed(false)
	case config.ConfirmDialog:
		return Dialog{In: in, Out: out}
	case config.ConfirmPrompt:
		return NewLine(in, out)
	default:
		if in != nil && out != nil && term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd())) {
			return Dialog{In: in, Out: out}
		}
		return NewLine(in, out)
	}
}
