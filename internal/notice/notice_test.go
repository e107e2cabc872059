package notice

import (
	"bytes"
	"strings"
	"testing"

	"github.com/amonks/recur/project"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func newTestConsole(verbose bool) (*Console, *bytes.Buffer, *bytes.Buffer) {
	lipgloss.SetColorProfile(termenv.Ascii)
	var out, errOut bytes.Buffer
	return NewConsole(&out, &errOut, verbose), &out, &errOut
}

func TestNoticeRoutesByLevel(t *testing.T) {
	console, out, errOut := newTestConsole(false)

	console.Notice(project.LevelInfo, project.NoticeRepeated)
	console.Notice(project.LevelError, project.NoticeNoInterval)

	if out.String() != "Project repeated successfully\n" {
		t.Fatalf("stdout = %q", out.String())
	}
	if errOut.String() != "No repeat interval specified\n" {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestNoticeWrapsLongMessages(t *testing.T) {
	console, _, errOut := newTestConsole(false)

	message := "Error repeating project: " + strings.Repeat("word ", 30)
	console.Notice(project.LevelError, message)

	lines := strings.Split(strings.TrimRight(errOut.String(), "\n"), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapped output, got %q", errOut.String())
	}
	for _, line := range lines {
		if len(line) > lineWidth {
			t.Fatalf("line exceeds %d columns: %q", lineWidth, line)
		}
	}
}

func TestDebugRequiresVerbose(t *testing.T) {
	quiet, _, quietErr := newTestConsole(false)
	quiet.Debugf("checked %s", "a.md")
	if quietErr.Len() != 0 {
		t.Fatalf("expected no debug output, got %q", quietErr.String())
	}

	loud, _, loudErr := newTestConsole(true)
	loud.Debugf("checked %s", "a.md")
	if loudErr.String() != "debug: checked a.md\n" {
		t.Fatalf("stderr = %q", loudErr.String())
	}
}

func TestBlankMessagesAreDropped(t *testing.T) {
	console, out, _ := newTestConsole(false)
	console.Infof("  ")
	console.Notice(project.LevelInfo, "\n")
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestNilConsole(t *testing.T) {
	var console *Console
	console.Notice(project.LevelError, "ignored")
	console.Infof("ignored")
	console.Errorf("ignored")
	console.Debugf("ignored")
}
