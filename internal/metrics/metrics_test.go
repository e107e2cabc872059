package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amonks/recur/note"
	"github.com/amonks/recur/project"
	"github.com/amonks/recur/recurrence"
	"github.com/amonks/recur/vault"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape returned %d", rec.Code)
	}
	return rec.Body.String()
}

func expectSample(t *testing.T, body, sample string) {
	t.Helper()
	for _, line := range strings.Split(body, "\n") {
		if line == sample {
			return
		}
	}
	t.Fatalf("expected sample %q in:\n%s", sample, body)
}

type repeaterFunc func(context.Context, project.Request) error

func (f repeaterFunc) Repeat(ctx context.Context, req project.Request) error { return f(ctx, req) }

type handlerFunc func(context.Context) error

func (f handlerFunc) HandleComplete(ctx context.Context) error { return f(ctx) }

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: OutcomeRepeated},
		{err: fmt.Errorf("x: %w", project.ErrNotFound), want: OutcomeNotFound},
		{err: fmt.Errorf("x: %w", vault.ErrNotFound), want: OutcomeNotFound},
		{err: project.ErrNoFrontmatter, want: OutcomeNoFrontmatter},
		{err: fmt.Errorf("a.md: %w", recurrence.ErrNoInterval), want: OutcomeNoInterval},
		{err: recurrence.ErrInvalidInterval, want: OutcomeInvalid},
		{err: recurrence.ErrInvalidDate, want: OutcomeInvalid},
		{err: note.ErrInvalidFrontmatter, want: OutcomeInvalid},
		{err: errors.New("disk full"), want: OutcomeError},
	}
	for _, tc := range tests {
		if got := Outcome(tc.err); got != tc.want {
			t.Errorf("Outcome(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestRepeatsCountsOutcomes(t *testing.T) {
	m := New()
	fail := false
	repeater := m.Repeats(repeaterFunc(func(context.Context, project.Request) error {
		if fail {
			return recurrence.ErrNoInterval
		}
		return nil
	}))

	_ = repeater.Repeat(context.Background(), project.NewRequest("a.md"))
	_ = repeater.Repeat(context.Background(), project.NewRequest("a.md"))
	fail = true
	if err := repeater.Repeat(context.Background(), project.NewRequest("a.md")); !errors.Is(err, recurrence.ErrNoInterval) {
		t.Fatalf("expected error to pass through, got %v", err)
	}

	body := scrape(t, m)
	expectSample(t, body, `recur_repeats_total{outcome="repeated"} 2`)
	expectSample(t, body, `recur_repeats_total{outcome="no_interval"} 1`)
}

func TestEventsAndCompletions(t *testing.T) {
	m := New()
	m.ObserveEvent(project.FieldEvent{Widget: project.WidgetLongText})
	m.ObserveEvent(project.FieldEvent{Widget: project.WidgetLongText})
	m.ObserveEvent(project.FieldEvent{Widget: project.WidgetCheckbox})
	m.ObserveDropped(3)

	calls := 0
	handler := m.Completions(handlerFunc(func(context.Context) error {
		calls++
		return nil
	}))
	if err := handler.HandleComplete(context.Background()); err != nil {
		t.Fatalf("HandleComplete failed: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected wrapped handler to run once, got %d", calls)
	}
	body := scrape(t, m)
	expectSample(t, body, `recur_field_events_total{widget="metadata-input-longtext"} 2`)
	expectSample(t, body, `recur_field_events_total{widget="metadata-input-checkbox"} 1`)
	expectSample(t, body, "recur_completions_total 1")
	expectSample(t, body, "recur_watch_dropped_events_total 3")
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveEvent(project.FieldEvent{Widget: project.WidgetNumber})

	expectSample(t, scrape(t, m), `recur_field_events_total{widget="metadata-input-number"} 1`)
}

func TestServe(t *testing.T) {
	m := New()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "recur_completions_total 0") {
		t.Fatalf("unexpected body:\n%s", body)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Serve returned %v", err)
	}
}

func TestObserveCache(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("---\nproject/status: active\n---\n"), 0644); err != nil {
		t.Fatalf("write note: %v", err)
	}
	v, err := vault.Open(dir, nil)
	if err != nil {
		t.Fatalf("open vault: %v", err)
	}

	m := New()
	m.ObserveCache(v.Cache())
	for i := 0; i < 3; i++ {
		if _, err := v.Metadata("a.md"); err != nil {
			t.Fatalf("Metadata failed: %v", err)
		}
	}

	body := scrape(t, m)
	expectSample(t, body, "recur_metadata_cache_hits_total 2")
	expectSample(t, body, "recur_metadata_cache_misses_total 1")
}
