// Package state manages the recur state file.
//
// The state file (~/.local/state/recur/state.json) holds the plugin data:
// the free-text setting and the active note of each vault. All access is
// serialized through file locking to allow safe concurrent access from
// multiple processes.
package state

import "time"

// DefaultSetting is the value of the free-text setting before it is set.
const DefaultSetting = "default"

// State represents the persisted state file.
type State struct {
	// Setting is the free-text plugin setting. Empty means DefaultSetting.
	Setting string `json:"setting,omitempty"`

	// Vaults maps an absolute vault root to its workspace state.
	Vaults map[string]VaultState `json:"vaults"`
}

// VaultState stores the workspace of one vault.
type VaultState struct {
	Active    string    `json:"active,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// SettingValue returns the setting, falling back to DefaultSetting.
func (st *State) SettingValue() string {
	if st.Setting == "" {
		return DefaultSetting
	}
	return st.Setting
}
