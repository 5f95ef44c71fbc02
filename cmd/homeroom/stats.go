package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dori/homeroom/internal/app"
	"github.com/dori/homeroom/internal/ics"
	"github.com/dori/homeroom/internal/stats"
)

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				report := a.Planner.Report()
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(report)
				}
				printReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func printReport(w io.Writer, r stats.Report) {
	if r.Checkpoint.IsSet() {
		fmt.Fprintf(w, "Since %s\n\n", r.Checkpoint.Since.Format("Jan 2, 2006 15:04"))
	} else {
		fmt.Fprintln(w, "All tasks")
		fmt.Fprintln(w)
	}

	m := r.Overall
	fmt.Fprintf(w, "Score      %d%%\n", m.Percent)
	fmt.Fprintf(w, "Completed  %d/%d\n", m.Completed, m.Total)
	fmt.Fprintf(w, "On time    %d\n", m.OnTime)
	fmt.Fprintf(w, "Missed     %d\n", m.Missed)
	fmt.Fprintf(w, "Homework   %d%%   Reminders %d%%\n", r.ByKind.Homework.Percent, r.ByKind.Reminder.Percent)

	printTrend(w, "This week", r.Weekly)
	printTrend(w, "Months", r.Monthly)

	if len(r.Subjects) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Subjects")
		for i, s := range r.Subjects {
			fmt.Fprintf(w, "  %d. %-15s %3.0f%% done  %3.0f%% on time  (%d)\n",
				i+1, s.Subject.Name, s.CompletionRate*100, s.OnTimeRate*100, s.Metrics.Total)
		}
	}
}

func printTrend(w io.Writer, title string, points []stats.Point) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	if len(points) == 0 {
		fmt.Fprintln(w, "  (no tasks)")
		return
	}

	dirs := stats.Directions(points)
	for i, p := range points {
		arrow := " "
		if i > 0 {
			switch dirs[i-1] {
			case stats.Up:
				arrow = "↑"
			case stats.Down:
				arrow = "↓"
			default:
				arrow = "→"
			}
		}
		bar := strings.Repeat("█", p.Score/5)
		fmt.Fprintf(w, "  %-4s %s %3d%% %s\n", p.Label, arrow, p.Score, bar)
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Start a new stats window; only tasks created from now on count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				cp := a.Planner.ResetStats()
				fmt.Fprintf(cmd.OutOrStdout(), "Stats reset at %s\n", cp.Since.Format("Jan 2, 2006 15:04:05"))
				return nil
			})
		},
	}
}

func newRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Clear the stats window so every task counts again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				a.Planner.RebuildStats()
				fmt.Fprintln(cmd.OutOrStdout(), "Stats rebuilt from all tasks")
				return nil
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	var output string
	var includeDone bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				tasks := a.Planner.Tasks()
				if !includeDone {
					open := tasks[:0]
					for _, t := range tasks {
						if !t.IsDone {
							open = append(open, t)
						}
					}
					tasks = open
				}

				w := cmd.OutOrStdout()
				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", output, err)
					}
					defer f.Close()
					w = f
				}

				if err := ics.Export(w, tasks, a.Planner.Subjects(), a.Attachments.Resolve, a.Planner.Now()); err != nil {
					return fmt.Errorf("failed to export: %w", err)
				}
				if output != "" && output != "-" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d task(s) to %s\n", len(tasks), output)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVarP(&includeDone, "all", "a", false, "Include completed tasks")
	return cmd
}
