// Package notice prints transient user notices and diagnostic lines.
package notice

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/amonks/recur/project"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const lineWidth = 80

// Console writes notices to a pair of writers. Informational notices go to
// out; errors and debug lines go to errOut.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	verbose bool

	infoStyle  lipgloss.Style
	errorStyle lipgloss.Style
	debugStyle lipgloss.Style
}

// NewConsole builds a console notifier. Debug lines are printed only when
// verbose is set.
func NewConsole(out, errOut io.Writer, verbose bool) *Console {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &Console{
		out:        out,
		errOut:     errOut,
		verbose:    verbose,
		infoStyle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("34")),
		errorStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
		debugStyle: lipgloss.NewStyle().Faint(true),
	}
}

// Notice shows a message at the given level.
func (console *Console) Notice(level project.Level, message string) {
	if console == nil {
		return
	}
	switch level {
	case project.LevelError:
		console.write(console.errOut, console.errorStyle, message)
	default:
		console.write(console.out, console.infoStyle, message)
	}
}

// Infof prints an informational line.
func (console *Console) Infof(format string, args ...any) {
	if console == nil {
		return
	}
	console.write(console.out, lipgloss.NewStyle(), fmt.Sprintf(format, args...))
}

// Errorf prints an error line.
func (console *Console) Errorf(format string, args ...any) {
	if console == nil {
		return
	}
	console.write(console.errOut, console.errorStyle, fmt.Sprintf(format, args...))
}

// Debugf prints a diagnostic line when verbose output is enabled.
func (console *Console) Debugf(format string, args ...any) {
	if console == nil || !console.verbose {
		return
	}
	console.write(console.errOut, console.debugStyle, "debug: "+fmt.Sprintf(format, args...))
}

func (console *Console) write(w io.Writer, style lipgloss.Style, message string) {
	message = strings.TrimRight(message, "\r\n")
	if strings.TrimSpace(message) == "" {
		return
	}
	wrapped := wordwrap.String(message, lineWidth)

	console.mu.Lock()
	defer console.mu.Unlock()
	for _, line := range strings.Split(wrapped, "\n") {
		fmt.Fprintln(w, style.Render(line))
	}
}
