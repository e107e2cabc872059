package main

import (
	"github.com/amonks/recur/project"
	"github.com/spf13/cobra"
)

var repeatCmd = &cobra.Command{
	Use:   "repeat <note>",
	Short: "Schedule the next occurrence of a project without asking",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepeat,
}

func init() {
	rootCmd.AddCommand(repeatCmd)
}

func runRepeat(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	// Missing notes are reported by the advancer, so only the path is
	// resolved here.
	name, err := a.vault.Resolve(args[0])
	if err != nil {
		return err
	}

	if err := a.advancer().Repeat(cmd.Context(), project.NewRequest(name)); err != nil {
		return reportedError{err: err}
	}
	return nil
}
