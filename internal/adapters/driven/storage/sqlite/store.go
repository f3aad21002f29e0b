package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/voltfolio/evisync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/voltfolio/evisync/internal/core/domain"
	"github.com/voltfolio/evisync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.JournalStore = (*Store)(nil)

// Store is the SQLite-backed upload journal.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a journal store at the specified data directory.
// If dataDir is empty, defaults to ~/.evisync/data/journal.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".evisync", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "journal.db")

	// WAL mode: the watcher's timer goroutines write concurrently.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the journal entry for a local path.
func (s *Store) Get(ctx context.Context, localPath string) (*driven.JournalEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, local_path, size, mod_time, remote_id, web_url, uploaded_at
		FROM upload_journal WHERE local_path = ?
	`, localPath)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("journal entry %q: %w", localPath, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	return entry, nil
}

// Put inserts or replaces the entry for entry.LocalPath.
func (s *Store) Put(ctx context.Context, entry driven.JournalEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO upload_journal (local_path, id, size, mod_time, remote_id, web_url, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(local_path) DO UPDATE SET
			id = excluded.id,
			size = excluded.size,
			mod_time = excluded.mod_time,
			remote_id = excluded.remote_id,
			web_url = excluded.web_url,
			uploaded_at = excluded.uploaded_at
	`, entry.LocalPath, entry.ID, entry.Size, entry.ModTime.UTC().Format(time.RFC3339Nano),
		entry.RemoteID, entry.WebURL, entry.UploadedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving journal entry: %w", err)
	}
	return nil
}

// Delete removes the entry for a local path. Missing entries are not an
// error.
func (s *Store) Delete(ctx context.Context, localPath string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM upload_journal WHERE local_path = ?", localPath); err != nil {
		return fmt.Errorf("deleting journal entry: %w", err)
	}
	return nil
}

// List returns all entries ordered by local path.
func (s *Store) List(ctx context.Context) ([]driven.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, local_path, size, mod_time, remote_id, web_url, uploaded_at
		FROM upload_journal ORDER BY local_path
	`)
	if err != nil {
		return nil, fmt.Errorf("listing journal: %w", err)
	}
	defer rows.Close()

	var entries []driven.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*driven.JournalEntry, error) {
	var entry driven.JournalEntry
	var modTime, uploadedAt string
	if err := row.Scan(&entry.ID, &entry.LocalPath, &entry.Size, &modTime, &entry.RemoteID, &entry.WebURL, &uploadedAt); err != nil {
		return nil, err
	}

	var err error
	if entry.ModTime, err = time.Parse(time.RFC3339Nano, modTime); err != nil {
		return nil, fmt.Errorf("parsing mod_time: %w", err)
	}
	if entry.UploadedAt, err = time.Parse(time.RFC3339Nano, uploadedAt); err != nil {
		return nil, fmt.Errorf("parsing uploaded_at: %w", err)
	}
	return &entry, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
