package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/amonks/recur/note"
)

type memoryStore struct {
	docs      map[string]*note.Document
	processed int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: map[string]*note.Document{}}
}

func (s *memoryStore) add(path, content string) {
	doc, err := note.Parse(path, []byte(content))
	if err != nil {
		panic(fmt.Sprintf("parse %s: %v", path, err))
	}
	s.docs[path] = doc
}

func (s *memoryStore) content(path string) string {
	data, err := s.docs[path].Bytes()
	if err != nil {
		panic(err)
	}
	return string(data)
}

func (s *memoryStore) Stat(path string) error {
	if _, ok := s.docs[path]; !ok {
		return errors.New("no such note")
	}
	return nil
}

func (s *memoryStore) Metadata(path string) (note.Snapshot, error) {
	doc, ok := s.docs[path]
	if !ok {
		return note.Snapshot{}, errors.New("no such note")
	}
	return doc.Snapshot(), nil
}

func (s *memoryStore) ProcessFrontmatter(_ context.Context, path string, fn func(*note.Properties) error) error {
	s.processed++
	doc, ok := s.docs[path]
	if !ok {
		return errors.New("no such note")
	}
	data, err := doc.Bytes()
	if err != nil {
		return err
	}
	working, err := note.Parse(path, data)
	if err != nil {
		return err
	}
	if err := fn(working.Properties); err != nil {
		return err
	}
	working.HasFrontmatter = true
	s.docs[path] = working
	return nil
}

type staticWorkspace struct {
	path string
}

func (w staticWorkspace) ActiveFile() (string, bool) {
	return w.path, w.path != ""
}

type scriptedConfirmer struct {
	answer  bool
	err     error
	prompts []Prompt
}

func (c *scriptedConfirmer) Confirm(_ context.Context, prompt Prompt) (bool, error) {
	c.prompts = append(c.prompts, prompt)
	return c.answer, c.err
}

type notice struct {
	level   Level
	message string
}

type recordingNotifier struct {
	notices []notice
}

func (n *recordingNotifier) Notice(level Level, message string) {
	n.notices = append(n.notices, notice{level: level, message: message})
}

type recordingRefresher struct {
	paths []string
}

func (r *recordingRefresher) Refresh(path string) {
	r.paths = append(r.paths, path)
}

type countingHandler struct {
	calls int
}

func (h *countingHandler) HandleComplete(context.Context) error {
	h.calls++
	return nil
}
