package main

import (
	"strings"
	"testing"
	"time"

	"github.com/amonks/recur/note"
	"github.com/amonks/recur/project"
)

func snapshot(t *testing.T, content string) note.Snapshot {
	t.Helper()
	doc, err := note.Parse("test.md", []byte(content))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc.Snapshot()
}

func TestSummarize(t *testing.T) {
	keys := project.DefaultKeys()

	t.Run("repeating project", func(t *testing.T) {
		snap := snapshot(t, "---\nproject/status: complete\nproject/repeating: true\nproject/repeat-interval: P1M\nproject/due-date: 2024-01-31\n---\n")
		summary, ok := summarize("review.md", snap, keys, 2)
		if !ok {
			t.Fatal("expected a project")
		}
		if summary.Status != "complete" || !summary.Repeating || summary.Interval != "P1M" {
			t.Fatalf("unexpected summary %+v", summary)
		}
		if got := strings.Join(summary.Upcoming, ","); got != "2024-02-29,2024-03-29" {
			t.Fatalf("Upcoming = %q", got)
		}
	})

	t.Run("not a project", func(t *testing.T) {
		snap := snapshot(t, "---\ntitle: Notes\n---\n")
		if _, ok := summarize("notes.md", snap, keys, 2); ok {
			t.Fatal("expected no project")
		}
	})

	t.Run("invalid interval has no upcoming dates", func(t *testing.T) {
		snap := snapshot(t, "---\nproject/repeating: true\nproject/repeat-interval: weekly\nproject/due-date: 2024-01-31\n---\n")
		summary, ok := summarize("bad.md", snap, keys, 2)
		if !ok {
			t.Fatal("expected a project")
		}
		if len(summary.Upcoming) != 0 {
			t.Fatalf("expected no upcoming dates, got %v", summary.Upcoming)
		}
	})

	t.Run("zero interval has no upcoming dates", func(t *testing.T) {
		snap := snapshot(t, "---\nproject/repeating: true\nproject/repeat-interval: P0D\nproject/due-date: 2024-01-31\n---\n")
		summary, _ := summarize("standup.md", snap, keys, 2)
		if len(summary.Upcoming) != 0 {
			t.Fatalf("expected no upcoming dates, got %v", summary.Upcoming)
		}
	})

	t.Run("non-repeating project has no upcoming dates", func(t *testing.T) {
		snap := snapshot(t, "---\nproject/status: active\nproject/repeat-interval: P1W\nproject/due-date: 2024-01-31\n---\n")
		summary, _ := summarize("once.md", snap, keys, 2)
		if len(summary.Upcoming) != 0 {
			t.Fatalf("expected no upcoming dates, got %v", summary.Upcoming)
		}
	})
}

func TestFormatProjectTable(t *testing.T) {
	today := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	summaries := []projectSummary{
		{Note: "review.md", Status: "complete", Repeating: true, Interval: "P1W", DueDate: "2024-01-15", Upcoming: []string{"2024-01-22"}},
		{Note: "taxes.md", Status: "active", DueDate: "2024-01-21"},
	}

	got := formatProjectTable(summaries, true, today)
	want := "NOTE       STATUS    REPEAT  DUE                      UPCOMING\n" +
		"review.md  complete  P1W     2024-01-15 (5d overdue)  2024-01-22\n" +
		"taxes.md   active    -       2024-01-21 (tomorrow)    -\n"
	if got != want {
		t.Fatalf("table mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatDueCell(t *testing.T) {
	today := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	tests := map[string]string{
		"":                 "-",
		"2024-01-20":       "2024-01-20 (today)",
		"2024-01-23T09:00": "2024-01-23 (in 3d)",
		"someday":          "someday",
	}
	for input, want := range tests {
		if got := formatDueCell(input, today); got != want {
			t.Fatalf("formatDueCell(%q) = %q, want %q", input, got, want)
		}
	}
}
