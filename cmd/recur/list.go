package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/amonks/recur/internal/markdown"
	"github.com/amonks/recur/internal/ui"
	"github.com/amonks/recur/note"
	"github.com/amonks/recur/project"
	"github.com/amonks/recur/recurrence"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List project notes",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <note>",
	Short: "Show a note's properties, upcoming dates, and body",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	listJSON     bool
	listUpcoming int
	listStatus   string
	showUpcoming int
)

func init() {
	rootCmd.AddCommand(listCmd, showCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().IntVar(&listUpcoming, "upcoming", 0, "Include the next N due dates of repeating projects")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only list projects with this status (active, complete)")
	showCmd.Flags().IntVar(&showUpcoming, "upcoming", 3, "Number of upcoming due dates to show")
}

// projectSummary is the list entry of one project note.
type projectSummary struct {
	Note      string   `json:"note"`
	Status    string   `json:"status,omitempty"`
	Repeating bool     `json:"repeating"`
	Interval  string   `json:"repeat_interval,omitempty"`
	DueDate   string   `json:"due_date,omitempty"`
	StartDate string   `json:"start_date,omitempty"`
	Upcoming  []string `json:"upcoming,omitempty"`
}

// summarize reports whether snap describes a project and, if so, its
// summary.
func summarize(name string, snap note.Snapshot, keys project.Keys, upcoming int) (projectSummary, bool) {
	_, hasStatus := snap.Lookup(keys.Status)
	_, hasRepeating := snap.Lookup(keys.Repeating)
	_, hasInterval := snap.Lookup(keys.RepeatInterval)
	if !hasStatus && !hasRepeating && !hasInterval {
		return projectSummary{}, false
	}

	summary := projectSummary{Note: name, Repeating: snap.Bool(keys.Repeating)}
	summary.Status, _ = snap.String(keys.Status)
	summary.Interval, _ = snap.String(keys.RepeatInterval)
	summary.DueDate, _ = snap.String(keys.DueDate)
	summary.StartDate, _ = snap.String(keys.StartDate)
	if summary.Repeating {
		summary.Upcoming = upcomingDates(summary.Interval, summary.DueDate, upcoming)
	}
	return summary, true
}

func upcomingDates(interval, due string, count int) []string {
	if count <= 0 {
		return nil
	}
	parsed, err := recurrence.ParseInterval(interval)
	if err != nil || parsed.IsZero() {
		return nil
	}
	from, err := recurrence.ParseDate(due)
	if err != nil {
		return nil
	}
	var dates []string
	for _, date := range parsed.Occurrences(from, count) {
		dates = append(dates, recurrence.FormatDate(date))
	}
	return dates
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	var status project.Status
	if listStatus != "" {
		if status, err = project.ParseStatus(listStatus); err != nil {
			return err
		}
	}

	names, err := a.vault.Notes()
	if err != nil {
		return err
	}

	summaries := []projectSummary{}
	for _, name := range names {
		snap, err := a.vault.Metadata(name)
		if err != nil {
			a.console.Errorf("skip %s: %v", name, err)
			continue
		}
		summary, ok := summarize(name, snap, a.keys, listUpcoming)
		if !ok {
			continue
		}
		if status != "" && strings.TrimSpace(summary.Status) != string(status) {
			continue
		}
		summaries = append(summaries, summary)
	}

	if listJSON {
		return encodeJSONToStdout(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), formatProjectTable(summaries, listUpcoming > 0, time.Now()))
	return nil
}

func formatProjectTable(summaries []projectSummary, withUpcoming bool, today time.Time) string {
	headers := []string{"NOTE", "STATUS", "REPEAT", "DUE"}
	if withUpcoming {
		headers = append(headers, "UPCOMING")
	}
	table := ui.NewTable(headers...)

	for _, summary := range summaries {
		repeat := "-"
		if summary.Repeating {
			repeat = summary.Interval
			if repeat == "" {
				repeat = "?"
			}
		}
		row := []string{
			summary.Note,
			orDash(summary.Status),
			repeat,
			formatDueCell(summary.DueDate, today),
		}
		if withUpcoming {
			row = append(row, orDash(strings.Join(summary.Upcoming, ", ")))
		}
		table.AddRow(row...)
	}
	return table.String()
}

func formatDueCell(due string, today time.Time) string {
	if due == "" {
		return "-"
	}
	date, err := recurrence.ParseDate(due)
	if err != nil {
		return due
	}
	return fmt.Sprintf("%s (%s)", recurrence.FormatDate(date), ui.FormatDue(date, today))
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	name, err := a.resolveNote(args[0])
	if err != nil {
		return err
	}
	doc, err := a.vault.Read(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	snap := doc.Snapshot()
	for _, key := range snap.Keys {
		value := snap.Values[key]
		switch value.Kind {
		case note.KindList:
			fmt.Fprintf(out, "%s: [%s]\n", key, value.Text)
		case note.KindObject:
			fmt.Fprintf(out, "%s: {...}\n", key)
		default:
			fmt.Fprintf(out, "%s: %s\n", key, value.Text)
		}
	}

	summary, isProject := summarize(name, snap, a.keys, showUpcoming)
	if isProject && summary.Repeating {
		if interval, err := recurrence.ParseInterval(summary.Interval); err != nil {
			fmt.Fprintf(out, "\nWarning: %v\n", err)
		} else if interval.IsZero() {
			fmt.Fprintf(out, "\nWarning: repeat interval %s does not move any date\n", interval)
		}
	}
	if len(summary.Upcoming) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Upcoming:")
		for _, date := range summary.Upcoming {
			fmt.Fprintf(out, "  %s\n", date)
		}
	}

	if body := markdown.SafeRender(terminalWidth(), 0, []byte(doc.Body)); len(body) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, string(body))
	}
	return nil
}

func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}
