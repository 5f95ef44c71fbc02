package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dori/homeroom/internal/config"
	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/model"
	"github.com/dori/homeroom/internal/notify"
	"github.com/dori/homeroom/internal/recur"
)

func init() {
	applog.Discard()
}

func testConfig(t *testing.T, storage string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Storage = storage
	cfg.Notifications = false
	cfg.SaveDebounceMS = 10
	return cfg
}

func TestPersistsAcrossRestarts(t *testing.T) {
	for _, storage := range []string{config.StorageJSON, config.StorageSQLite} {
		t.Run(storage, func(t *testing.T) {
			cfg := testConfig(t, storage)

			a, err := New(cfg, Options{})
			require.NoError(t, err)
			_, err = a.Planner.CreateTask(recur.Template{Title: "Quiz prep", DueDate: time.Now().Add(time.Hour)}, model.RecurDaily)
			require.NoError(t, err)
			a.Planner.ResetStats()
			require.NoError(t, a.Close())

			b, err := New(cfg, Options{})
			require.NoError(t, err)
			defer b.Close()
			assert.Len(t, b.Planner.Tasks(), recur.OccurrenceCap(model.RecurDaily))
			assert.True(t, b.Planner.Checkpoint().IsSet())
			assert.Equal(t, recur.OccurrenceCap(model.RecurDaily), b.Reminders.Len())
		})
	}
}

func TestSingleInstance(t *testing.T) {
	cfg := testConfig(t, config.StorageJSON)

	a, err := New(cfg, Options{})
	require.NoError(t, err)
	defer a.Close()

	_, err = New(cfg, Options{})
	assert.ErrorContains(t, err, "already running")
}

func TestStartReminders(t *testing.T) {
	a, err := New(testConfig(t, config.StorageJSON), Options{StartReminders: true})
	require.NoError(t, err)
	require.NoError(t, a.Close())
}

func TestWrapSenderDecoratesNotifier(t *testing.T) {
	cfg := testConfig(t, config.StorageJSON)

	var wrapped notify.Sender
	a, err := New(cfg, Options{WrapSender: func(next notify.Sender) notify.Sender {
		wrapped = next
		return next
	}})
	require.NoError(t, err)
	defer a.Close()

	assert.Same(t, a.Notifier, wrapped)
}
