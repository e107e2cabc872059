package main

import (
	"fmt"
	"strings"

	"github.com/amonks/recur/internal/paths"
	"github.com/amonks/recur/internal/state"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change recur's stored setting",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the setting",
	Args:  cobra.NoArgs,
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <value>",
	Short: "Change the setting",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSettingsSet,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
}

func openStateStore() (*state.Store, error) {
	dir, err := paths.DefaultStateDir()
	if err != nil {
		return nil, err
	}
	return state.NewStore(dir), nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	store, err := openStateStore()
	if err != nil {
		return err
	}

	value, err := store.Setting()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	store, err := openStateStore()
	if err != nil {
		return err
	}

	return store.SetSetting(strings.Join(args, " "))
}
