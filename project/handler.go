package project

import (
	"context"
	"fmt"
)

// Handler decides whether a completed project should repeat.
type Handler struct {
	Keys      Keys
	Workspace Workspace
	Cache     MetadataCache
	Confirmer Confirmer
	Repeater  Repeater
	Refresher Refresher
	Logger    Logger
}

// HandleComplete acts on the active note. Without an active note, or when
// the note is not repeating, it does nothing. A declined confirmation leaves
// the note as the user wrote it.
func (h *Handler) HandleComplete(ctx context.Context) error {
	path, ok := h.Workspace.ActiveFile()
	if !ok {
		h.logger().Debugf("no active note")
		return nil
	}

	snap, err := h.Cache.Metadata(path)
	if err != nil {
		return fmt.Errorf("read metadata %s: %w", path, err)
	}
	if !snap.Bool(h.Keys.Repeating) {
		h.logger().Debugf("%s is not repeating", path)
		return nil
	}

	confirmed, err := h.Confirmer.Confirm(ctx, RepeatPrompt)
	if err != nil {
		return fmt.Errorf("confirm repeat: %w", err)
	}
	if !confirmed {
		h.logger().Debugf("repeat of %s declined", path)
		return nil
	}

	err = h.Repeater.Repeat(ctx, NewRequest(path))
	h.refresher().Refresh(path)
	return err
}

func (h *Handler) logger() Logger {
	if h.Logger == nil {
		return noopLogger{}
	}
	return h.Logger
}

func (h *Handler) refresher() Refresher {
	if h.Refresher == nil {
		return noopRefresher{}
	}
	return h.Refresher
}
