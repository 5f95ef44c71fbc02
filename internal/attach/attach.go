// Package attach stores attachment blobs. Tasks hold Attachment records
// that name blobs by StoredFileName; this package owns the blobs.
package attach

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/model"
)

// DefaultWorkers bounds concurrent imports in ImportAll
const DefaultWorkers = 4

var photoExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".heic": true, ".heif": true, ".webp": true, ".bmp": true, ".tiff": true,
}

var audioExts = map[string]bool{
	".m4a": true, ".mp3": true, ".wav": true, ".aac": true,
	".caf": true, ".ogg": true, ".flac": true, ".opus": true,
}

// Classify maps a file name to an attachment kind by extension
func Classify(name string) model.AttachmentKind {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case photoExts[ext]:
		return model.AttachmentPhoto
	case audioExts[ext]:
		return model.AttachmentAudio
	default:
		return model.AttachmentFile
	}
}

// Store keeps blobs in one directory of fs
type Store struct {
	fs      afero.Fs
	src     afero.Fs
	dir     string
	workers int
}

// Option configures a Store
type Option func(*Store)

// WithSourceFs sets where ImportExternal reads from; defaults to the OS
func WithSourceFs(fs afero.Fs) Option {
	return func(s *Store) { s.src = fs }
}

// WithWorkers sets the ImportAll concurrency
func WithWorkers(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New creates a blob store under dir
func New(fs afero.Fs, dir string, opts ...Option) (*Store, error) {
	s := &Store{
		fs:      fs,
		src:     afero.NewOsFs(),
		dir:     dir,
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create attachment dir %s", dir)
	}
	return s, nil
}

// Save copies r into a new blob. suggestedName supplies the display name
// and the extension used for classification.
func (s *Store) Save(r io.Reader, suggestedName string) (model.Attachment, error) {
	name := filepath.Base(strings.TrimSpace(suggestedName))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "attachment"
	}

	stored := uuid.NewString() + strings.ToLower(filepath.Ext(name))
	path := filepath.Join(s.dir, stored)

	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return model.Attachment{}, errors.Wrapf(err, "failed to create blob for %s", name)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		s.fs.Remove(path)
		return model.Attachment{}, errors.Wrapf(err, "failed to copy %s", name)
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(path)
		return model.Attachment{}, errors.WithStack(err)
	}

	return model.Attachment{
		ID:             uuid.NewString(),
		OriginalName:   name,
		StoredFileName: stored,
		Kind:           Classify(name),
	}, nil
}

// ImportExternal copies a file the user picked into the store
func (s *Store) ImportExternal(source string) (model.Attachment, error) {
	f, err := s.src.Open(source)
	if err != nil {
		return model.Attachment{}, errors.Wrapf(err, "failed to open %s", source)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return model.Attachment{}, errors.Wrapf(err, "failed to stat %s", source)
	}
	if info.IsDir() {
		return model.Attachment{}, errors.Errorf("%s is a directory", source)
	}
	return s.Save(f, filepath.Base(source))
}

// ImportAll imports every source concurrently. A source that fails is
// logged and skipped; the others still import. Results keep input order.
func (s *Store) ImportAll(ctx context.Context, sources []string) []model.Attachment {
	results := make([]*model.Attachment, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, src := range sources {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			a, err := s.ImportExternal(src)
			if err != nil {
				applog.Log.WithError(err).WithField("source", src).Warn("attachment import failed")
				return nil
			}
			results[i] = &a
			return nil
		})
	}
	g.Wait()

	out := make([]model.Attachment, 0, len(sources))
	for _, a := range results {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}

// Delete removes the blob behind a. Missing blobs are ignored; other
// failures are logged.
func (s *Store) Delete(a model.Attachment) {
	if a.StoredFileName == "" {
		return
	}
	err := s.fs.Remove(s.Resolve(a))
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return
	}
	applog.Log.WithError(err).WithField("blob", a.StoredFileName).Warn("failed to delete attachment")
}

// Resolve returns the blob's path inside the store
func (s *Store) Resolve(a model.Attachment) string {
	return filepath.Join(s.dir, filepath.Base(a.StoredFileName))
}

// Exists reports whether the blob behind a is present
func (s *Store) Exists(a model.Attachment) bool {
	ok, err := afero.Exists(s.fs, s.Resolve(a))
	return err == nil && ok
}
