package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/amonks/recur/internal/config"
	"github.com/amonks/recur/internal/confirm"
	"github.com/amonks/recur/internal/metrics"
	"github.com/amonks/recur/internal/notice"
	"github.com/amonks/recur/internal/paths"
	"github.com/amonks/recur/internal/state"
	"github.com/amonks/recur/project"
	"github.com/amonks/recur/vault"
	"github.com/spf13/cobra"
)

// app holds the collaborators shared by recur's commands.
type app struct {
	config    *config.Config
	vault     *vault.Vault
	store     *state.Store
	workspace *vault.Workspace
	console   *notice.Console
	keys      project.Keys
}

func openApp(cmd *cobra.Command) (*app, error) {
	dir, err := paths.ResolveVault(vaultFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	v, err := vault.Open(dir, cfg.Watch.Exclude)
	if err != nil {
		return nil, err
	}

	stateDir, err := paths.DefaultStateDir()
	if err != nil {
		return nil, err
	}
	store := state.NewStore(stateDir)

	active, err := store.ActiveNote(v.Root())
	if err != nil {
		return nil, err
	}
	workspace := vault.NewWorkspace(active, func(name string) error {
		return store.SetActiveNote(v.Root(), name)
	})

	return &app{
		config:    cfg,
		vault:     v,
		store:     store,
		workspace: workspace,
		console:   notice.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), verboseFlag),
		keys:      project.NewKeys(cfg.Project.Namespace),
	}, nil
}

// resolveNote turns a command argument into an existing note path.
func (a *app) resolveNote(input string) (string, error) {
	name, err := a.vault.Resolve(input)
	if err != nil {
		return "", err
	}
	if err := a.vault.Stat(name); err != nil {
		return "", err
	}
	return name, nil
}

func (a *app) advancer() *project.Advancer {
	return &project.Advancer{
		Keys:     a.keys,
		Store:    a.vault,
		Cache:    a.vault,
		Notifier: a.console,
		Logger:   a.console,
	}
}

// workflow wires the detector, handler, and advancer. m may be nil.
func (a *app) workflow(confirmer project.Confirmer, m *metrics.Metrics) (*project.Detector, *project.Handler) {
	var repeater project.Repeater = reportingRepeater{next: a.advancer()}
	if m != nil {
		repeater = m.Repeats(repeater)
	}

	handler := &project.Handler{
		Keys:      a.keys,
		Workspace: a.workspace,
		Cache:     a.vault,
		Confirmer: confirmer,
		Repeater:  repeater,
		Logger:    a.console,
	}

	var completion project.CompletionHandler = handler
	if m != nil {
		completion = m.Completions(handler)
	}

	return &project.Detector{
		Keys:    a.keys,
		Handler: completion,
		Logger:  a.console,
	}, handler
}

// reportingRepeater marks repeat failures as reported, since the advancer
// has already shown a notice for each one.
type reportingRepeater struct {
	next project.Repeater
}

func (r reportingRepeater) Repeat(ctx context.Context, req project.Request) error {
	if err := r.next.Repeat(ctx, req); err != nil {
		return reportedError{err: err}
	}
	return nil
}

var (
	yesFlag bool
	noFlag  bool
)

func addConfirmFlags(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Repeat without asking")
		cmd.Flags().BoolVar(&noFlag, "no", false, "Never repeat; leave completed projects as they are")
		cmd.MarkFlagsMutuallyExclusive("yes", "no")
	}
	addConfirmFlagAliases(cmds...)
}

func (a *app) confirmer() project.Confirmer {
	mode := a.config.Confirm.Mode
	switch {
	case yesFlag:
		mode = config.ConfirmYes
	case noFlag:
		mode = config.ConfirmNo
	}
	return confirm.New(mode, os.Stdin, os.Stdout)
}

// dispatch runs events through the detector and stops at the first failure.
func dispatch(ctx context.Context, detector *project.Detector, events []project.FieldEvent) error {
	for _, ev := range events {
		if err := detector.HandleBlur(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func requireActive(a *app) (string, error) {
	name, ok := a.workspace.ActiveFile()
	if !ok {
		return "", project.ErrNoActiveDocument
	}
	if err := a.vault.Stat(name); err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			return "", fmt.Errorf("active note %s: %w", name, err)
		}
		return "", err
	}
	return name, nil
}
