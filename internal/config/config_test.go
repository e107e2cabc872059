package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amonks/recur/internal/config"
	"github.com/amonks/recur/internal/testsupport"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Project.Namespace != "" {
		t.Errorf("expected empty namespace, got %q", cfg.Project.Namespace)
	}
	if cfg.Confirm.Mode != config.ConfirmAuto {
		t.Errorf("expected auto confirm mode, got %q", cfg.Confirm.Mode)
	}
	debounce, err := cfg.Watch.DebounceDuration()
	if err != nil || debounce != config.DefaultDebounce {
		t.Errorf("DebounceDuration = %v, %v", debounce, err)
	}
}

func TestLoad_Full(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, config.FileName), `
[project]
namespace = "task"

[watch]
debounce = "1s"
exclude = [".trash/**", "templates/**"]

[confirm]
mode = "Prompt"
`)

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Project.Namespace != "task" {
		t.Errorf("Namespace = %q", cfg.Project.Namespace)
	}
	if len(cfg.Watch.Exclude) != 2 || cfg.Watch.Exclude[1] != "templates/**" {
		t.Errorf("Exclude = %v", cfg.Watch.Exclude)
	}
	if cfg.Confirm.Mode != config.ConfirmPrompt {
		t.Errorf("Mode = %q", cfg.Confirm.Mode)
	}
	debounce, err := cfg.Watch.DebounceDuration()
	if err != nil || debounce != time.Second {
		t.Errorf("DebounceDuration = %v, %v", debounce, err)
	}
}

func TestLoad_VaultOverridesGlobal(t *testing.T) {
	home := testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(home, ".config", "recur", "config.toml"), `
[project]
namespace = "global"

[watch]
exclude = ["archive/**"]

[confirm]
mode = "no"
`)
	writeFile(t, filepath.Join(tmpDir, config.FileName), `
[project]
namespace = "vault"

[confirm]
mode = ""
`)

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Project.Namespace != "vault" {
		t.Errorf("Namespace = %q, want vault", cfg.Project.Namespace)
	}
	if len(cfg.Watch.Exclude) != 1 || cfg.Watch.Exclude[0] != "archive/**" {
		t.Errorf("expected global exclude, got %v", cfg.Watch.Exclude)
	}
	if cfg.Confirm.Mode != config.ConfirmAuto {
		t.Errorf("expected vault's empty mode to mean auto, got %q", cfg.Confirm.Mode)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, config.FileName), `this is not valid toml [`)

	_, err := config.Load(tmpDir)
	if err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestLoad_InvalidConfirmMode(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, config.FileName), "[confirm]\nmode = \"maybe\"\n")

	_, err := config.Load(tmpDir)
	if !errors.Is(err, config.ErrInvalidConfirmMode) {
		t.Fatalf("expected ErrInvalidConfirmMode, got %v", err)
	}
}

func TestLoad_InvalidDebounce(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	for _, value := range []string{"soon", "-1s", "0s"} {
		writeFile(t, filepath.Join(tmpDir, config.FileName), "[watch]\ndebounce = \""+value+"\"\n")
		if _, err := config.Load(tmpDir); err == nil {
			t.Errorf("expected error for debounce %q", value)
		}
	}
}

func TestParseConfirmMode(t *testing.T) {
	for _, mode := range config.ValidConfirmModes() {
		got, err := config.ParseConfirmMode(" " + string(mode) + " ")
		if err != nil || got != mode {
			t.Errorf("ParseConfirmMode(%q) = %q, %v", mode, got, err)
		}
	}
}
