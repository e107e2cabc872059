package vault

import "sync"

// Workspace tracks the active note of a vault.
type Workspace struct {
	mu     sync.Mutex
	active string
	save   func(name string) error
}

// NewWorkspace returns a workspace whose active note starts as active.
// save, when set, persists every change of the active note.
func NewWorkspace(active string, save func(name string) error) *Workspace {
	return &Workspace{active: active, save: save}
}

// ActiveFile returns the active note.
func (w *Workspace) ActiveFile() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active, w.active != ""
}

// SetActive makes name the active note.
func (w *Workspace) SetActive(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == name {
		return nil
	}
	w.active = name
	if w.save == nil {
		return nil
	}
	return w.save(name)
}
