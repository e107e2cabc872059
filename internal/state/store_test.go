package state

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"
)

func TestStore_LoadEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	st, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load empty state: %v", err)
	}

	if st == nil {
		t.Fatal("expected non-nil state")
	}

	if len(st.Vaults) != 0 {
		t.Errorf("expected 0 vaults, got %d", len(st.Vaults))
	}

	if st.SettingValue() != DefaultSetting {
		t.Errorf("expected default setting, got %q", st.SettingValue())
	}
}

func TestStore_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	updated := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	st := &State{
		Setting: "weekly",
		Vaults: map[string]VaultState{
			"/Users/test/notes": {Active: "projects/review.md", UpdatedAt: updated},
		},
	}

	if err := store.Save(st); err != nil {
		t.Fatalf("failed to save state: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load state: %v", err)
	}

	if loaded.Setting != "weekly" {
		t.Errorf("Setting = %q", loaded.Setting)
	}
	vault := loaded.Vaults["/Users/test/notes"]
	if vault.Active != "projects/review.md" || !vault.UpdatedAt.Equal(updated) {
		t.Errorf("unexpected vault state: %+v", vault)
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	if err := os.WriteFile(store.statePath(), []byte("{not json"), 0644); err != nil {
		t.Fatalf("write state: %v", err)
	}
	if _, err := store.Load(); err == nil {
		t.Fatal("expected error for corrupt state")
	}
}

func TestStore_SaveNoChange(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	st := &State{Vaults: make(map[string]VaultState)}

	if err := store.Save(st); err != nil {
		t.Fatalf("failed to save initial state: %v", err)
	}

	statePath := store.statePath()
	oldTime := time.Unix(1, 0)
	if err := os.Chtimes(statePath, oldTime, oldTime); err != nil {
		t.Fatalf("failed to set mod time: %v", err)
	}

	if err := store.Save(st); err != nil {
		t.Fatalf("failed to save identical state: %v", err)
	}

	info, err := os.Stat(statePath)
	if err != nil {
		t.Fatalf("failed to stat state file: %v", err)
	}

	if !info.ModTime().Equal(oldTime) {
		t.Errorf("expected mod time to stay %v, got %v", oldTime, info.ModTime())
	}
}

func TestStore_UpdateError(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	boom := errors.New("boom")
	err := store.Update(func(st *State) error {
		st.Setting = "lost"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	value, err := store.Setting()
	if err != nil {
		t.Fatalf("Setting failed: %v", err)
	}
	if value != DefaultSetting {
		t.Fatalf("expected failed update to be discarded, got %q", value)
	}
}

func TestStore_Setting(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	if err := store.SetSetting("every monday"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	value, err := store.Setting()
	if err != nil {
		t.Fatalf("Setting failed: %v", err)
	}
	if value != "every monday" {
		t.Fatalf("Setting = %q", value)
	}
}

func TestStore_ActiveNote(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)
	store.now = func() time.Time { return time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC) }

	if err := store.SetActiveNote("/vaults/a/", "review.md"); err != nil {
		t.Fatalf("SetActiveNote failed: %v", err)
	}
	if err := store.SetActiveNote("/vaults/b", "other.md"); err != nil {
		t.Fatalf("SetActiveNote failed: %v", err)
	}

	active, err := store.ActiveNote("/vaults/a")
	if err != nil || active != "review.md" {
		t.Fatalf("ActiveNote = %q, %v", active, err)
	}

	if err := store.SetActiveNote("/vaults/a", ""); err != nil {
		t.Fatalf("SetActiveNote failed: %v", err)
	}
	active, err = store.ActiveNote("/vaults/a")
	if err != nil || active != "" {
		t.Fatalf("expected cleared active note, got %q, %v", active, err)
	}

	st, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := st.Vaults["/vaults/b"]; !ok {
		t.Fatal("expected other vault to be kept")
	}
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	var wg sync.WaitGroup
	numGoroutines := 10
	updatesPerGoroutine := 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < updatesPerGoroutine; j++ {
				err := store.Update(func(st *State) error {
					st.Setting += "x"
					return nil
				})
				if err != nil {
					t.Errorf("concurrent update failed: %v", err)
				}
			}
		}()
	}

	wg.Wait()

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load final state: %v", err)
	}

	if len(loaded.Setting) != numGoroutines*updatesPerGoroutine {
		t.Errorf("expected %d updates, got %d", numGoroutines*updatesPerGoroutine, len(loaded.Setting))
	}
}
