package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/dori/homeroom/internal/attach"
	"github.com/dori/homeroom/internal/config"
	"github.com/dori/homeroom/internal/db"
	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/notify"
	"github.com/dori/homeroom/internal/planner"
	"github.com/dori/homeroom/internal/store"
)

// App holds the application state and dependencies
type App struct {
	Config      config.Config
	Planner     *planner.Planner
	Attachments *attach.Store
	Notifier    *notify.Notifier
	Reminders   *notify.Reminders

	store    store.Store
	saver    *store.Saver
	lockFile *flock.Flock
}

// Options tune how New wires the app
type Options struct {
	// StartReminders runs the minute tick; CLI one-shots leave it off
	StartReminders bool
	// Fs backs the JSON store and attachments; defaults to the OS
	Fs afero.Fs
	// WrapSender, when set, decorates the desktop notifier used for reminders
	WrapSender func(next notify.Sender) notify.Sender
}

// New creates a new application instance
func New(cfg config.Config, opts Options) (*App, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config:   cfg,
		Notifier: notify.NewNotifier(),
	}
	app.Notifier.SetEnabled(cfg.Notifications)

	// Acquire lock to ensure single instance
	if err := app.acquireLock(); err != nil {
		return nil, err
	}

	backend, err := openStore(cfg, opts.Fs)
	if err != nil {
		app.releaseLock()
		return nil, err
	}
	app.store = backend

	blobs, err := attach.New(opts.Fs, cfg.AttachmentDir(), attach.WithWorkers(cfg.AttachmentWorkers))
	if err != nil {
		backend.Close()
		app.releaseLock()
		return nil, fmt.Errorf("failed to open attachment store: %w", err)
	}
	app.Attachments = blobs

	app.saver = store.NewSaver(backend, time.Duration(cfg.SaveDebounceMS)*time.Millisecond)

	var sender notify.Sender = app.Notifier
	if opts.WrapSender != nil {
		sender = opts.WrapSender(sender)
	}
	var p *planner.Planner
	app.Reminders = notify.NewReminders(sender, func(id *string) string {
		return p.SubjectName(id)
	})
	p = planner.New(
		planner.WithReminders(app.Reminders),
		planner.WithBlobs(blobs),
		planner.WithSaver(app.saver),
	)
	app.Planner = p

	p.Load(backend.Load(context.Background()))

	if opts.StartReminders {
		if err := app.Reminders.Start(); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to start reminders: %w", err)
		}
	}

	applog.Log.WithField("data_dir", cfg.DataDir).WithField("storage", cfg.Storage).Debug("app started")
	return app, nil
}

func openStore(cfg config.Config, fs afero.Fs) (store.Store, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		database, err := db.Open(cfg.DBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return database, nil
	default:
		s, err := store.NewJSONStore(fs, cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		return s, nil
	}
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.Config.DataDir, "homeroom.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of homeroom is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close flushes pending saves and cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.Reminders != nil {
		a.Reminders.Stop()
	}

	if a.saver != nil {
		if err := a.saver.Flush(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("failed to save: %w", err))
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}

	a.releaseLock()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
