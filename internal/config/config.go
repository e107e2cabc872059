// Package config handles loading .recur.toml configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/amonks/recur/internal/paths"
	"github.com/amonks/recur/internal/validation"
)

// FileName is the name of the vault-local config file.
const FileName = ".recur.toml"

// DefaultDebounce is how long a note must be quiet before it is inspected.
const DefaultDebounce = 300 * time.Millisecond

// ErrInvalidConfirmMode indicates an unknown [confirm] mode.
var ErrInvalidConfirmMode = errors.New("invalid confirm mode")

// Config represents the recur configuration.
type Config struct {
	Project Project `toml:"project"`
	Watch   Watch   `toml:"watch"`
	Confirm Confirm `toml:"confirm"`
}

// Project contains property naming configuration.
type Project struct {
	// Namespace prefixes the property keys, as in "project/status".
	Namespace string `toml:"namespace"`
}

// Watch contains watcher configuration.
type Watch struct {
	// Debounce is a Go duration string such as "300ms".
	Debounce string `toml:"debounce"`
	// Exclude lists doublestar globs of vault paths to ignore.
	Exclude []string `toml:"exclude"`
}

// Confirm contains confirmation dialog configuration.
type Confirm struct {
	Mode ConfirmMode `toml:"mode"`
}

// ConfirmMode selects how the repeat question is asked.
type ConfirmMode string

const (
	// ConfirmAuto uses the dialog on a terminal and a line prompt otherwise.
	ConfirmAuto ConfirmMode = "auto"
	// ConfirmDialog always uses the full-screen dialog.
	ConfirmDialog ConfirmMode = "dialog"
	// ConfirmPrompt reads a yes/no answer from a line of input.
	ConfirmPrompt ConfirmMode = "prompt"
	// ConfirmYes answers every question with yes.
	ConfirmYes ConfirmMode = "yes"
	// ConfirmNo answers every question with no.
	ConfirmNo ConfirmMode = "no"
)

// ValidConfirmModes returns all confirm modes.
func ValidConfirmModes() []ConfirmMode {
	return []ConfirmMode{ConfirmAuto, ConfirmDialog, ConfirmPrompt, ConfirmYes, ConfirmNo}
}

// ParseConfirmMode validates a confirm mode. Empty input means ConfirmAuto.
func ParseConfirmMode(value string) (ConfirmMode, error) {
	mode := ConfirmMode(strings.ToLower(strings.TrimSpace(value)))
	if mode == "" {
		return ConfirmAuto, nil
	}
	for _, valid := range ValidConfirmModes() {
		if mode == valid {
			return mode, nil
		}
	}
	return "", validation.FormatInvalidValueError(ErrInvalidConfirmMode, ConfirmMode(value), ValidConfirmModes())
}

// DebounceDuration returns the parsed debounce interval.
func (w Watch) DebounceDuration() (time.Duration, error) {
	if strings.TrimSpace(w.Debounce) == "" {
		return DefaultDebounce, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(w.Debounce))
	if err != nil {
		return 0, fmt.Errorf("parse watch debounce: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse watch debounce: %q must be positive", w.Debounce)
	}
	return d, nil
}

// Load loads configuration from the vault root and the global config file.
// Returns an empty config if no config files exist.
func Load(vaultPath string) (*Config, error) {
	configDir, err := paths.DefaultConfigDir()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(filepath.Join(configDir, "config.toml"))
	if err != nil {
		return nil, err
	}

	vaultCfg, vaultMeta, err := loadConfigFile(filepath.Join(vaultPath, FileName))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, vaultCfg, globalMeta, vaultMeta)
	if merged.Confirm.Mode, err = ParseConfirmMode(string(merged.Confirm.Mode)); err != nil {
		return nil, err
	}
	if _, err := merged.Watch.DebounceDuration(); err != nil {
		return nil, err
	}
	return merged, nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, vaultCfg *Config, globalMeta, vaultMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if vaultCfg == nil {
		vaultCfg = &Config{}
	}

	merged := Config{}
	merged.Project.Namespace = mergeString(vaultMeta.IsDefined("project", "namespace"), vaultCfg.Project.Namespace, globalCfg.Project.Namespace)
	merged.Watch.Debounce = mergeString(vaultMeta.IsDefined("watch", "debounce"), vaultCfg.Watch.Debounce, globalCfg.Watch.Debounce)
	merged.Confirm.Mode = ConfirmMode(mergeString(vaultMeta.IsDefined("confirm", "mode"), string(vaultCfg.Confirm.Mode), string(globalCfg.Confirm.Mode)))
	if vaultMeta.IsDefined("watch", "exclude") {
		merged.Watch.Exclude = append([]string(nil), vaultCfg.Watch.Exclude...)
	} else if globalMeta.IsDefined("watch", "exclude") {
		merged.Watch.Exclude = append([]string(nil), globalCfg.Watch.Exclude...)
	}

	return &merged
}

func mergeString(vaultDefined bool, vaultValue, globalValue string) string {
	value := globalValue
	if vaultDefined {
		value = vaultValue
	}
	return strings.TrimSpace(value)
}
