package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <note>",
	Short: "Make a note the active note",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "Print the active note",
	Args:  cobra.NoArgs,
	RunE:  runActive,
}

func init() {
	rootCmd.AddCommand(openCmd, activeCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	name, err := a.resolveNote(args[0])
	if err != nil {
		return err
	}
	if err := a.workspace.SetActive(name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", name)
	return nil
}

func runActive(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	name, err := requireActive(a)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}
