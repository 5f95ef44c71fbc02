package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/model"
)

const (
	TasksFile      = "tasks.json"
	SubjectsFile   = "subjects.json"
	CheckpointFile = "checkpoint.json"
)

// JSONStore keeps each collection in its own JSON file under dir
type JSONStore struct {
	fs  afero.Fs
	dir string
}

// NewJSONStore creates a store rooted at dir on fs
func NewJSONStore(fs afero.Fs, dir string) (*JSONStore, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create data dir %s", dir)
	}
	return &JSONStore{fs: fs, dir: dir}, nil
}

// Load reads all three files. Each file is independent: a corrupt tasks
// file does not prevent subjects from loading.
func (s *JSONStore) Load(ctx context.Context) Snapshot {
	snap := Snapshot{Tasks: []model.Task{}, Subjects: []model.Subject{}}
	readFile(s.fs, filepath.Join(s.dir, TasksFile), &snap.Tasks)
	readFile(s.fs, filepath.Join(s.dir, SubjectsFile), &snap.Subjects)
	readFile(s.fs, filepath.Join(s.dir, CheckpointFile), &snap.Checkpoint)

	// a file holding null decodes to a nil slice
	if snap.Tasks == nil {
		snap.Tasks = []model.Task{}
	}
	if snap.Subjects == nil {
		snap.Subjects = []model.Subject{}
	}
	return snap
}

// readFile decodes the file at path into dst. A missing or corrupt file
// leaves dst as it was.
func readFile[T any](fs afero.Fs, path string, dst *T) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			applog.Log.WithError(err).WithField("file", path).Warn("failed to read collection")
		}
		return
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		applog.Log.WithError(err).WithField("file", path).Warn("corrupt collection, ignoring")
		return
	}
	*dst = out
}

// Save writes every collection atomically
func (s *JSONStore) Save(ctx context.Context, snap Snapshot) error {
	tasks := snap.Tasks
	if tasks == nil {
		tasks = []model.Task{}
	}
	subjects := snap.Subjects
	if subjects == nil {
		subjects = []model.Subject{}
	}

	if err := s.writeFile(TasksFile, tasks); err != nil {
		return err
	}
	if err := s.writeFile(SubjectsFile, subjects); err != nil {
		return err
	}
	return s.writeFile(CheckpointFile, snap.Checkpoint)
}

// writeFile writes v to a temp file in the same directory and renames it
// over name, so readers see either the old or the new file.
func (s *JSONStore) writeFile(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", name)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, "."+name+"-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file for %s", name)
	}
	tmpName := tmp.Name()
	defer s.fs.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", name)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to sync %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.WithStack(err)
	}

	return errors.Wrapf(s.fs.Rename(tmpName, filepath.Join(s.dir, name)), "failed to replace %s", name)
}

// Close is a no-op; files are closed after every write
func (s *JSONStore) Close() error {
	return nil
}
