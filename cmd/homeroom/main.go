package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dori/homeroom/internal/app"
	"github.com/dori/homeroom/internal/config"
	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/notify"
	"github.com/dori/homeroom/internal/ui"
	"github.com/dori/homeroom/internal/ui/theme"
)

var (
	version = "0.1.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var viewFlag, themeFlag string

	root := &cobra.Command{
		Use:   "homeroom",
		Short: "Homework and reminder planner",
		Long: `homeroom - homework and reminder planner

Run without a command to start the TUI.

Quick add syntax (TUI 'a' and 'homeroom add'):
  homeroom add "Essay draft #english due:fri at:17 every:weekly !pin"

  Subject:    #name
  Kind:       !homework (default) !reminder
  Pinned:     !pin
  Due date:   due:tomorrow due:friday due:2026-01-15  (default: today 23:59)
  Time:       at:9 at:17:30
  Repeat:     every:daily every:weekly every:monthly every:yearly`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(viewFlag, themeFlag)
		},
	}
	root.Flags().StringVar(&viewFlag, "view", "list", "Starting view (list, stats)")
	root.Flags().StringVar(&themeFlag, "theme", "", "Theme name (nord, dracula, gruvbox, catppuccin)")

	root.AddCommand(
		newAddCmd(),
		newListCmd(),
		newDoneCmd(),
		newPinCmd(),
		newRmCmd(),
		newEditCmd(),
		newAttachCmd(),
		newStatsCmd(),
		newResetCmd(),
		newRebuildCmd(),
		newExportCmd(),
		newSubjectCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "homeroom v%s\n", version)
			},
		},
	)
	return root
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrCreate(afero.NewOsFs(), config.ResolveConfigPath())
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// withApp opens the app for one CLI command, logging to stderr
func withApp(fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applog.Init(applog.Options{Level: cfg.LogLevel})

	a, err := app.New(cfg, app.Options{})
	if err != nil {
		return err
	}
	if err := fn(a); err != nil {
		a.Close()
		return err
	}
	return a.Close()
}

func runTUI(startView, themeName string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = filepath.Join(cfg.DataDir, "homeroom.log")
	}
	applog.Init(applog.Options{Level: cfg.LogLevel, File: logFile, MaxBackups: 3})

	if themeName != "" {
		t, ok := theme.ByName(themeName)
		if !ok {
			return fmt.Errorf("unknown theme %q", themeName)
		}
		theme.SetTheme(t)
	}

	view, err := ui.ParseView(startView)
	if err != nil {
		return err
	}

	// Reminders fire on the cron goroutine, possibly before the program exists
	var prog atomic.Pointer[tea.Program]
	echo := func(next notify.Sender) notify.Sender {
		return notify.SenderFunc(func(n notify.Notification) error {
			err := next.Send(n)
			if p := prog.Load(); p != nil {
				if err != nil {
					p.Send(ui.ErrorMsg{Err: fmt.Errorf("reminder %q: %w", n.Title, err)})
				} else {
					p.Send(ui.StatusMsg{Message: "Reminder: " + n.Title})
				}
			}
			return err
		})
	}

	application, err := app.New(cfg, app.Options{StartReminders: true, WrapSender: echo})
	if err != nil {
		return err
	}
	defer application.Close()

	p := tea.NewProgram(
		ui.NewRootModel(application).StartIn(view),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	prog.Store(p)

	_, err = p.Run()
	return err
}
