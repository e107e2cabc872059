package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/amonks/recur/note"
	"github.com/amonks/recur/recurrence"
)

// Notices shown by the advancer.
const (
	NoticeNotFound      = "Unable to find file to update"
	NoticeNoFrontmatter = "No frontmatter found"
	NoticeNoInterval    = "No repeat interval specified"
	NoticeRepeated      = "Project repeated successfully"
	noticeErrorPrefix   = "Error repeating project: "
)

// Advancer moves a project's dates forward by its repeat interval and marks
// it active again.
type Advancer struct {
	Keys     Keys
	Store    FrontmatterStore
	Cache    MetadataCache
	Notifier Notifier
	Logger   Logger
}

// Repeat advances the project named by req. Every failure is reported as a
// notice and returned; when Repeat fails the note is left unchanged.
func (a *Advancer) Repeat(ctx context.Context, req Request) error {
	path := req.SourcePath
	a.logger().Debugf("[%s] repeating %s", req.ID, path)

	if err := a.Store.Stat(path); err != nil {
		a.notifier().Notice(LevelError, NoticeNotFound)
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}

	snap, err := a.Cache.Metadata(path)
	if err != nil {
		return a.fail(fmt.Errorf("read metadata %s: %w", path, err))
	}
	if !snap.HasFrontmatter || len(snap.Keys) == 0 {
		a.notifier().Notice(LevelError, NoticeNoFrontmatter)
		return fmt.Errorf("%w: %s", ErrNoFrontmatter, path)
	}

	schedule, err := a.schedule(snap)
	if errors.Is(err, recurrence.ErrNoInterval) {
		a.notifier().Notice(LevelError, NoticeNoInterval)
		return fmt.Errorf("%s: %w", path, err)
	}
	if err != nil {
		return a.fail(err)
	}

	plan, err := recurrence.Next(schedule)
	if err != nil {
		return a.fail(err)
	}

	err = a.Store.ProcessFrontmatter(ctx, path, func(props *note.Properties) error {
		if plan.DueDate != nil {
			props.Set(a.Keys.DueDate, *plan.DueDate)
		}
		if plan.StartDate != nil {
			props.Set(a.Keys.StartDate, *plan.StartDate)
		}
		props.Set(a.Keys.Status, string(StatusActive))
		return nil
	})
	if err != nil {
		return a.fail(fmt.Errorf("write %s: %w", path, err))
	}

	a.logger().Debugf("[%s] advanced %s by %s", req.ID, path, plan.Interval)
	a.notifier().Notice(LevelInfo, NoticeRepeated)
	return nil
}

func (a *Advancer) schedule(snap note.Snapshot) (recurrence.Schedule, error) {
	interval, ok := snap.String(a.Keys.RepeatInterval)
	if !ok {
		return recurrence.Schedule{}, recurrence.ErrNoInterval
	}
	due, err := dateField(snap, a.Keys.DueDate)
	if err != nil {
		return recurrence.Schedule{}, err
	}
	start, err := dateField(snap, a.Keys.StartDate)
	if err != nil {
		return recurrence.Schedule{}, err
	}
	return recurrence.Schedule{Interval: interval, DueDate: due, StartDate: start}, nil
}

// dateField returns the text of a date property. Missing and empty
// properties are absent.
func dateField(snap note.Snapshot, key string) (*string, error) {
	value, ok := snap.Lookup(key)
	if !ok || value.Kind == note.KindNull {
		return nil, nil
	}
	text, ok := value.Scalar()
	if !ok {
		return nil, fmt.Errorf("%s: %w: expected a date, got %s", key, recurrence.ErrInvalidDate, value.Kind)
	}
	return &text, nil
}

func (a *Advancer) fail(err error) error {
	a.notifier().Notice(LevelError, noticeErrorPrefix+err.Error())
	return err
}

func (a *Advancer) logger() Logger {
	if a.Logger == nil {
		return noopLogger{}
	}
	return a.Logger
}

func (a *Advancer) notifier() Notifier {
	if a.Notifier == nil {
		return noopNotifier{}
	}
	return a.Notifier
}
