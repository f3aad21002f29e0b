package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/voltfolio/evisync/internal/core/domain"
	"github.com/voltfolio/evisync/internal/core/ports/driven"
	"github.com/voltfolio/evisync/internal/core/ports/driving"
	"github.com/voltfolio/evisync/internal/logger"
)

// defaultSettle is how long a file must stay unchanged before the watcher
// uploads it. Editors and network copies write in bursts; uploading too early
// ships a half-written file.
const defaultSettle = 2 * time.Second

// Watcher synchronizes a local inbox directory laid out as
// <root>/<unit>/<criteria>/<file> into the remote evidence store. Completed
// uploads are journaled by path, size and mtime so restarting the watcher
// does not re-upload unchanged files.
type Watcher struct {
	svc     driving.EvidenceService
	journal driven.JournalStore
	root    string
	settle  time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

var _ driving.WatchService = (*Watcher)(nil)

// NewWatcher creates a watcher over the inbox rooted at dir.
func NewWatcher(svc driving.EvidenceService, journal driven.JournalStore, dir string) *Watcher {
	return &Watcher{
		svc:     svc,
		journal: journal,
		root:    filepath.Clean(dir),
		settle:  defaultSettle,
		pending: make(map[string]*time.Timer),
	}
}

// Run scans the inbox once, then watches it until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.scan(ctx); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.watchTree(fsw); err != nil {
		return err
	}
	logger.Info().Str("dir", w.root).Msg("watching evidence inbox")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, event)
		case werr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(werr).Msg("watch error")
		}
	}
}

// scan uploads any file in the inbox that is missing from the journal or has
// changed since it was journaled.
func (w *Watcher) scan(ctx context.Context) error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		w.process(ctx, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %q: %w", w.root, err)
	}
	return nil
}

// watchTree registers the root and every directory beneath it.
func (w *Watcher) watchTree(fsw *fsnotify.Watcher) error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if werr := fsw.Add(path); werr != nil {
			return fmt.Errorf("watch %q: %w", path, werr)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fsw.Add(event.Name); err != nil {
				logger.Warn().Err(err).Str("dir", event.Name).Msg("cannot watch new directory")
			}
			return
		}
	}
	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		w.cancelPending(event.Name)
		if err := w.journal.Delete(ctx, event.Name); err != nil {
			logger.Debug().Err(err).Str("path", event.Name).Msg("journal delete failed")
		}
		return
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}
	w.schedule(ctx, event.Name)
}

// schedule arms (or re-arms) the settle timer for a path. Each write event
// pushes the upload back until the file has been quiet for the settle window.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.process(ctx, path)
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

// process uploads one file if the journal says it is new or changed.
func (w *Watcher) process(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	unit, criteria, ok := w.codesFor(path)
	if !ok {
		logger.Debug().Str("path", path).Msg("ignoring file outside unit/criteria layout")
		return
	}

	entry, err := w.journal.Get(ctx, path)
	if err == nil && entry.Size == info.Size() && entry.ModTime.Equal(info.ModTime()) {
		return
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn().Err(err).Str("path", path).Msg("journal lookup failed, uploading anyway")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("cannot read evidence file")
		return
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	rec, err := w.svc.UploadEvidence(ctx, driving.UploadInput{
		Data:         data,
		MIMEType:     mimeType,
		FileName:     filepath.Base(path),
		UnitCode:     unit,
		CriteriaCode: criteria,
		Reread: func() ([]byte, error) {
			return os.ReadFile(path)
		},
	})
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("evidence upload failed")
		return
	}

	logger.Info().Str("path", path).Str("id", rec.ID).Msg("evidence uploaded")

	if err := w.journal.Put(ctx, driven.JournalEntry{
		ID:         uuid.NewString(),
		LocalPath:  path,
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		RemoteID:   rec.ID,
		WebURL:     rec.WebURL,
		UploadedAt: time.Now().UTC(),
	}); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("journal write failed")
	}
}

// codesFor maps an inbox path onto unit and criteria codes. Only files
// exactly two directories below the root qualify; folder names use the
// underscore spelling of the codes.
func (w *Watcher) codesFor(path string) (unit, criteria string, ok bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	return domain.DecodeCode(parts[0]), domain.DecodeCode(parts[1]), true
}
