package ui

import (
	"strings"
	"testing"
	"time"
)

func TestTableAlignsColumns(t *testing.T) {
	table := NewTable("NOTE", "STATUS", "DUE")
	table.AddRow("review.md", "active", "2024-01-22")
	table.AddRow("projects/rent.md", "complete")

	want := "NOTE              STATUS    DUE\n" +
		"review.md         active    2024-01-22\n" +
		"projects/rent.md  complete\n"
	if got := table.String(); got != want {
		t.Fatalf("unexpected table:\n%q\nwant:\n%q", got, want)
	}
	if table.Len() != 2 {
		t.Fatalf("Len = %d", table.Len())
	}
}

func TestTruncateCellNormalizesLineBreaks(t *testing.T) {
	got := TruncateCell("Hello\nWorld\r\nAgain\tTab")
	if got != "Hello World Again Tab" {
		t.Fatalf("expected line breaks to normalize, got %q", got)
	}
}

func TestTruncateCellCountsRunes(t *testing.T) {
	value := strings.Repeat("a", cellMaxWidth-1) + "é"
	if got := TruncateCell(value); got != value {
		t.Fatalf("expected value to remain untruncated, got %q", got)
	}

	long := strings.Repeat("b", cellMaxWidth+5)
	got := TruncateCell(long)
	if len([]rune(got)) != cellMaxWidth || !strings.HasSuffix(got, cellEllipsis) {
		t.Fatalf("expected truncated cell, got %q", got)
	}
}

func TestFormatDue(t *testing.T) {
	today := time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)
	tests := []struct {
		due  time.Time
		want string
	}{
		{due: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), want: "today"},
		{due: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), want: "tomorrow"},
		{due: time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), want: "in 7d"},
		{due: time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC), want: "2d overdue"},
		{due: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), want: "in 76d"},
	}
	for _, tc := range tests {
		if got := FormatDue(tc.due, today); got != tc.want {
			t.Errorf("FormatDue(%s) = %q, want %q", tc.due.Format("2006-01-02"), got, tc.want)
		}
	}
}
