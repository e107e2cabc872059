package main

import (
	"fmt"
	"strings"

	"github.com/amonks/recur/internal/editor"
	"github.com/amonks/recur/note"
	"github.com/amonks/recur/project"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <note>",
	Short: "Edit a note in $EDITOR and act on the properties you changed",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var completeCmd = &cobra.Command{
	Use:   "complete [note]",
	Short: "Mark a project complete (default: the active note)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runComplete,
}

var setCmd = &cobra.Command{
	Use:   "set <note> [KEY=VALUE...]",
	Short: "Set or remove frontmatter properties and act on the change",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSet,
}

var setUnset []string

func init() {
	rootCmd.AddCommand(editCmd, completeCmd, setCmd)
	setCmd.Flags().StringArrayVar(&setUnset, "unset", nil, "Remove this property (repeatable)")
	addConfirmFlags(editCmd, completeCmd, setCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
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

	before, err := a.vault.Metadata(name)
	if err != nil {
		return err
	}
	if err := editor.Edit(a.vault.Abs(name)); err != nil {
		return err
	}
	after, err := a.vault.Metadata(name)
	if err != nil {
		return err
	}

	detector, _ := a.workflow(a.confirmer(), nil)
	return dispatch(cmd.Context(), detector, project.Changes(name, before, after))
}

func runComplete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	var name string
	if len(args) > 0 {
		name, err = a.resolveNote(args[0])
	} else {
		name, err = requireActive(a)
	}
	if err != nil {
		return err
	}
	if err := a.workspace.SetActive(name); err != nil {
		return err
	}

	ctx := cmd.Context()
	complete := string(project.StatusComplete)
	err = a.vault.ProcessFrontmatter(ctx, name, func(props *note.Properties) error {
		props.Set(a.keys.Status, complete)
		return nil
	})
	if err != nil {
		return err
	}
	a.console.Infof("Marked %s complete", name)

	detector, _ := a.workflow(a.confirmer(), nil)
	return detector.HandleBlur(ctx, project.FieldEvent{
		Path:        name,
		Widget:      project.WidgetLongText,
		PropertyKey: a.keys.Status,
		Text:        complete,
	})
}

type assignment struct {
	key, value string
}

func parseAssignments(args []string) ([]assignment, error) {
	assignments := make([]assignment, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: want KEY=VALUE", arg)
		}
		assignments = append(assignments, assignment{key: key, value: value})
	}
	return assignments, nil
}

func runSet(cmd *cobra.Command, args []string) error {
	assignments, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}
	if len(assignments) == 0 && len(setUnset) == 0 {
		return fmt.Errorf("nothing to set: pass KEY=VALUE or --unset KEY")
	}

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

	before, err := a.vault.Metadata(name)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	err = a.vault.ProcessFrontmatter(ctx, name, func(props *note.Properties) error {
		for _, key := range setUnset {
			if !props.Delete(key) {
				a.console.Debugf("%s has no property %s", name, key)
			}
		}
		for _, as := range assignments {
			props.Set(as.key, as.value)
		}
		return nil
	})
	if err != nil {
		return err
	}
	after, err := a.vault.Metadata(name)
	if err != nil {
		return err
	}

	detector, _ := a.workflow(a.confirmer(), nil)
	return dispatch(ctx, detector, project.Changes(name, before, after))
}
