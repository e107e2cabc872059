// Package main implements the recur CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "recur",
	Short: "Recur - repeat completed projects in a notes vault",
	Long: `Recur watches a vault of markdown notes. When a repeating project's
status is set to complete, it asks whether to schedule the next occurrence
and, if so, moves the project's dates forward by its repeat interval.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	vaultFlag   string
	verboseFlag bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "Vault directory (default: $RECUR_VAULT, else the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print debug output")
}

// reportedError marks an error the user has already been told about.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

func (e reportedError) ExitCode() int { return 1 }
