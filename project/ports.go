package project

import (
	"context"

	"github.com/amonks/recur/note"
	"github.com/google/uuid"
)

// Workspace reports which note the user is working on.
type Workspace interface {
	ActiveFile() (string, bool)
}

// MetadataCache returns a read-only view of a note's frontmatter.
type MetadataCache interface {
	Metadata(path string) (note.Snapshot, error)
}

// FrontmatterStore persists frontmatter changes.
type FrontmatterStore interface {
	// Stat returns an error when path does not name an existing note.
	Stat(path string) error
	// ProcessFrontmatter hands fn the note's mutable properties and writes
	// them back once fn returns nil. Nothing is written when fn fails.
	ProcessFrontmatter(ctx context.Context, path string, fn func(*note.Properties) error) error
}

// Prompt describes a confirmation dialog.
type Prompt struct {
	Title   string
	Message string
	Confirm string
	Cancel  string
}

// RepeatPrompt asks whether to schedule the next occurrence of a project.
var RepeatPrompt = Prompt{
	Title:   "Repeat Project",
	Message: "This is a repeating project. Do you want to mark it as complete and schedule the next occurrence?",
	Confirm: "Repeat Project",
	Cancel:  "Cancel",
}

// Confirmer asks the user a question and blocks until it is answered.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// Level is the severity of a notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Notice(level Level, message string)
}

// Refresher reloads a note's view after it was written.
type Refresher interface {
	Refresh(path string)
}

// Repeater advances a project to its next occurrence.
type Repeater interface {
	Repeat(ctx context.Context, req Request) error
}

// CompletionHandler runs when the active project was marked complete.
type CompletionHandler interface {
	HandleComplete(ctx context.Context) error
}

// Request asks for one project to be advanced.
type Request struct {
	// ID correlates log lines for one user action.
	ID         uuid.UUID
	SourcePath string
}

// NewRequest returns a request for path with a fresh ID.
func NewRequest(path string) Request {
	return Request{ID: uuid.New(), SourcePath: path}
}

// Logger receives diagnostic output from the workflow.
type Logger interface {
	Debugf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}

type noopRefresher struct{}

func (noopRefresher) Refresh(string) {}

type noopNotifier struct{}

func (noopNotifier) Notice(Level, string) {}
