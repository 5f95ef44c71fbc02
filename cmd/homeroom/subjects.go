package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dori/homeroom/internal/app"
	"github.com/dori/homeroom/internal/model"
)

// defaultSubjectColor is used when no --color is given
const defaultSubjectColor = "#4c8bf5"

func newSubjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subject",
		Aliases: []string{"subjects"},
		Short:   "Manage subjects",
	}
	cmd.AddCommand(newSubjectAddCmd(), newSubjectListCmd(), newSubjectRmCmd(), newSubjectColorCmd())
	return cmd
}

func newSubjectAddCmd() *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a subject",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := model.ParseHexColor(color)
			if err != nil {
				return err
			}
			return withApp(func(a *app.App) error {
				s, err := a.Planner.AddSubject(strings.Join(args, " "), c)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created subject: %s (%s)\n", s.Name, s.Color.Hex())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&color, "color", "c", defaultSubjectColor, "Color as #rrggbb")
	return cmd
}

func newSubjectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List subjects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				out := cmd.OutOrStdout()
				subjects := a.Planner.Subjects()
				if len(subjects) == 0 {
					fmt.Fprintln(out, "No subjects.")
					return nil
				}
				tasks := a.Planner.Tasks()
				for _, s := range subjects {
					n := 0
					for _, t := range tasks {
						if t.HasSubject(s.ID) {
							n++
						}
					}
					fmt.Fprintf(out, "%s  %-20s %d task(s)\n", s.Color.Hex(), s.Name, n)
				}
				return nil
			})
		},
	}
}

func newSubjectRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a subject; its tasks keep a dangling reference",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				name := strings.Join(args, " ")
				s, err := a.Planner.SubjectByName(name)
				if err != nil {
					return fmt.Errorf("subject %q not found", name)
				}
				if err := a.Planner.DeleteSubject(s.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted subject: %s\n", s.Name)
				return nil
			})
		},
	}
}

func newSubjectColorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "color <name> <#rrggbb>",
		Short: "Change a subject's color",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := model.ParseHexColor(args[1])
			if err != nil {
				return err
			}
			return withApp(func(a *app.App) error {
				s, err := a.Planner.SubjectByName(args[0])
				if err != nil {
					return fmt.Errorf("subject %q not found", args[0])
				}
				s.Color = c
				if err := a.Planner.UpdateSubject(s); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", s.Name, c.Hex())
				return nil
			})
		},
	}
}
