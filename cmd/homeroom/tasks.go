package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dori/homeroom/internal/app"
	"github.com/dori/homeroom/internal/model"
	"github.com/dori/homeroom/internal/planner"
	"github.com/dori/homeroom/internal/quickadd"
	"github.com/dori/homeroom/internal/recur"
)

// shortIDLen is how much of a task id the CLI prints
const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <task>",
		Short: "Quick add a task",
		Example: `  homeroom add "Read chapter 4"
  homeroom add "Lab report #bio due:fri at:9:30 every:weekly !pin"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				created, err := addTask(a.Planner, strings.Join(args, " "))
				if err != nil {
					return err
				}
				first := created[0]
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Added: %s (%s)\n", first.Title, shortID(first.ID))
				fmt.Fprintf(out, "  Due: %s\n", quickadd.FormatDue(first.DueDate, a.Planner.Now()))
				if first.SubjectID != nil {
					fmt.Fprintf(out, "  Subject: %s\n", a.Planner.SubjectName(first.SubjectID))
				}
				if len(created) > 1 {
					fmt.Fprintf(out, "  Repeats %s: %d occurrences\n", first.Recurrence, len(created))
				}
				return nil
			})
		},
	}
}

// addTask parses a quick-add line and creates its occurrences
func addTask(p *planner.Planner, text string) ([]model.Task, error) {
	res, err := quickadd.Parse(text, p.Now())
	if err != nil {
		return nil, err
	}

	tpl := recur.Template{
		Title:    res.Title,
		Kind:     res.Kind,
		DueDate:  res.DueDate,
		IsPinned: res.Pinned,
	}
	if res.Subject != "" {
		s, err := p.SubjectByName(res.Subject)
		if err != nil {
			return nil, fmt.Errorf("subject %q not found (create it with 'homeroom subject add')", res.Subject)
		}
		tpl.SubjectID = &s.ID
	}
	return p.CreateTask(tpl, res.Cadence)
}

func newListCmd() *cobra.Command {
	var all, today, pinned bool
	var subject, kind string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				f := planner.Filter{IncludeDone: all, PinnedOnly: pinned}
				if subject != "" {
					s, err := a.Planner.SubjectByName(subject)
					if err != nil {
						return fmt.Errorf("subject %q not found", subject)
					}
					f.SubjectID = s.ID
				}
				if kind != "" {
					k := model.Kind(strings.ToLower(kind))
					if !k.Valid() {
						return fmt.Errorf("unknown kind %q (want homework or reminder)", kind)
					}
					f.Kind = k
				}
				if today {
					now := a.Planner.Now()
					f.DueOn = &now
				}
				printTasks(cmd.OutOrStdout(), a.Planner, a.Planner.List(f))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")
	cmd.Flags().BoolVar(&today, "today", false, "Only tasks due today")
	cmd.Flags().BoolVar(&pinned, "pinned", false, "Only pinned tasks")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Only tasks in this subject")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only homework or reminder tasks")
	return cmd
}

func printTasks(w io.Writer, p *planner.Planner, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}

	now := p.Now()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t\tTITLE\tSUBJECT\tDUE\tREPEAT")
	for _, t := range tasks {
		mark := "[ ]"
		if t.IsDone {
			mark = "[x]"
		}
		if t.IsPinned {
			mark += "*"
		}
		due := quickadd.FormatDue(t.DueDate, now)
		if !t.IsDone && t.IsOverdue(now) {
			due += " (overdue)"
		}
		repeat := ""
		if t.IsRecurring() {
			repeat = string(t.Recurrence)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID), mark, t.Title, p.SubjectName(t.SubjectID), due, repeat)
	}
	tw.Flush()
}

// taskCmd builds a command that acts on one task given by id prefix
func taskCmd(use, short string, fn func(cmd *cobra.Command, a *app.App, t model.Task) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				t, err := a.Planner.FindByPrefix(args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				return fn(cmd, a, t)
			})
		},
	}
}

func newDoneCmd() *cobra.Command {
	return taskCmd("done", "Toggle a task done", func(cmd *cobra.Command, a *app.App, t model.Task) error {
		updated, err := a.Planner.ToggleDone(t.ID)
		if err != nil {
			return err
		}
		state := "open"
		if updated.IsDone {
			state = "done"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", updated.Title, state)
		return nil
	})
}

func newPinCmd() *cobra.Command {
	return taskCmd("pin", "Toggle a task pinned", func(cmd *cobra.Command, a *app.App, t model.Task) error {
		updated, err := a.Planner.TogglePinned(t.ID)
		if err != nil {
			return err
		}
		state := "unpinned"
		if updated.IsPinned {
			state = "pinned"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", updated.Title, state)
		return nil
	})
}

func newRmCmd() *cobra.Command {
	var series bool
	cmd := taskCmd("rm", "Delete a task, or its whole series", func(cmd *cobra.Command, a *app.App, t model.Task) error {
		if series {
			n, err := a.Planner.DeleteSeries(t.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d task(s)\n", n)
			return nil
		}
		if err := a.Planner.DeleteOccurrence(t.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s\n", t.Title)
		return nil
	})
	cmd.Flags().BoolVar(&series, "series", false, "Delete every occurrence in the task's series")
	return cmd
}

func newEditCmd() *cobra.Command {
	var title, due, at, every, subject, kind string

	cmd := taskCmd("edit", "Edit one occurrence", func(cmd *cobra.Command, a *app.App, t model.Task) error {
		var edit planner.TaskEdit
		flags := cmd.Flags()
		now := a.Planner.Now()

		if flags.Changed("title") {
			edit.Title = &title
		}
		if flags.Changed("due") || flags.Changed("at") {
			day := t.DueDate
			if flags.Changed("due") {
				parsed, ok := quickadd.ParseDate(due, now)
				if !ok {
					return fmt.Errorf("unknown date %q", due)
				}
				day = parsed
			}
			clock := t.DueDate.Format("15:04")
			if flags.Changed("at") {
				clock = at
			}
			d, ok := quickadd.At(day, clock)
			if !ok {
				return fmt.Errorf("unknown time %q", clock)
			}
			edit.DueDate = &d
		}
		if flags.Changed("every") {
			r, ok := model.ParseRecurrence(every)
			if !ok {
				return fmt.Errorf("unknown cadence %q", every)
			}
			edit.Recurrence = &r
		}
		if flags.Changed("subject") {
			id := ""
			if subject != "" && !strings.EqualFold(subject, "none") {
				s, err := a.Planner.SubjectByName(subject)
				if err != nil {
					return fmt.Errorf("subject %q not found", subject)
				}
				id = s.ID
			}
			edit.Subject = &id
		}
		if flags.Changed("kind") {
			k := model.Kind(strings.ToLower(kind))
			if !k.Valid() {
				return fmt.Errorf("unknown kind %q", kind)
			}
			edit.Kind = &k
		}

		updated, err := a.Planner.EditTask(t.ID, edit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated: %s (due %s)\n", updated.Title, quickadd.FormatDue(updated.DueDate, now))
		return nil
	})

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&due, "due", "", "New due date (tomorrow, fri, 2026-01-15)")
	cmd.Flags().StringVar(&at, "at", "", "New due time (17, 9:30)")
	cmd.Flags().StringVar(&every, "every", "", "Recurrence (none, daily, weekly, monthly, yearly)")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject name, or none")
	cmd.Flags().StringVar(&kind, "kind", "", "homework or reminder")
	return cmd
}

func newAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <id> <file>...",
		Short: "Attach files to a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				t, err := a.Planner.FindByPrefix(args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}

				added := a.Attachments.ImportAll(context.Background(), args[1:])
				if len(added) == 0 {
					return fmt.Errorf("no files could be attached")
				}
				all := append(t.Attachments, added...)
				if _, err := a.Planner.EditTask(t.ID, planner.TaskEdit{Attachments: &all}); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, att := range added {
					fmt.Fprintf(out, "Attached %s (%s)\n", att.OriginalName, att.Kind)
				}
				if skipped := len(args) - 1 - len(added); skipped > 0 {
					fmt.Fprintf(out, "Skipped %d file(s)\n", skipped)
				}
				return nil
			})
		},
	}
}
