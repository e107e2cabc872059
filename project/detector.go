package project

import (
	"context"
	"strings"
)

// Detector watches field events for a project being marked complete.
type Detector struct {
	Keys    Keys
	Handler CompletionHandler
	Logger  Logger
}

// Matches reports whether ev is a long-text status field left holding
// "complete".
func (d *Detector) Matches(ev FieldEvent) bool {
	if ev.Widget != WidgetLongText {
		return false
	}
	if ev.PropertyKey != d.Keys.Status {
		return false
	}
	return strings.TrimSpace(ev.Text) == string(StatusComplete)
}

// HandleBlur runs the completion workflow for a matching event. Other events
// are ignored.
func (d *Detector) HandleBlur(ctx context.Context, ev FieldEvent) error {
	if !d.Matches(ev) {
		return nil
	}
	d.logger().Debugf("%s marked complete in %s", ev.PropertyKey, ev.Path)
	if ev.Blur != nil {
		ev.Blur()
	}
	return d.Handler.HandleComplete(ctx)
}

func (d *Detector) logger() Logger {
	if d.Logger == nil {
		return noopLogger{}
	}
	return d.Logger
}
