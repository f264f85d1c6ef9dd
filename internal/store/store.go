// Package store persists the fly directory index in an embedded SQLite
// database: registered roots, one row per indexed directory, and the
// last-query-result slot used for numeric recall.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Root is a registered top-level directory. Lower priority values sort
// first when listing and reindexing.
type Root struct {
	ID       int64
	Path     string
	Priority int
}

// Directory is one indexed directory under a root. Fullpath is absolute
// and normalized and acts as the natural key. LastUsed is nil until the
// directory is the target of a successful jump.
type Directory struct {
	ID       int64
	Basename string
	Fullpath string
	Depth    int
	RootID   int64
	MTime    int64
	LastUsed *int64
	Segments string
}

// Store manages the SQLite database backing the index.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates a Store at dbPath, creating parent directories and the
// schema as needed. Pass ":memory:" for an in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout must come first so the remaining pragmas wait on
	// locks held by a concurrent invocation.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a statement with exponential backoff on
// "database is locked" errors from concurrent initialization.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// UpsertRoot registers a root by absolute path and returns its id.
// Re-registering an existing path updates its priority.
func (s *Store) UpsertRoot(ctx context.Context, path string, priority int) (int64, error) {
	query := `INSERT INTO roots(path, priority) VALUES(?, ?)
		ON CONFLICT(path) DO UPDATE SET priority = excluded.priority`
	if _, err := s.db.ExecContext(ctx, query, path, priority); err != nil {
		return 0, fmt.Errorf("upsert root: %w", err)
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM roots WHERE path = ?`, path).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("fetch root id after upsert: %w", err)
	}
	return id, nil
}

// ListRoots returns every registered root ordered by priority, then id.
func (s *Store) ListRoots(ctx context.Context) ([]Root, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, priority FROM roots ORDER BY priority ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list roots: %w", err)
	}
	defer rows.Close()

	var roots []Root
	for rows.Next() {
		var r Root
		if err := rows.Scan(&r.ID, &r.Path, &r.Priority); err != nil {
			return nil, fmt.Errorf("scan root: %w", err)
		}
		roots = append(roots, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roots: %w", err)
	}
	return roots, nil
}

// DeleteRoot removes a root by path. Its directories are cascade-deleted.
// Returns true when a root was actually removed.
func (s *Store) DeleteRoot(ctx context.Context, path string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM roots WHERE path = ?`, path)
	if err != nil {
		return false, fmt.Errorf("delete root: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete root rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteDirectoriesByRoot purges every directory owned by a root, e.g.
// ahead of a full reindex. Returns the number of rows removed.
func (s *Store) DeleteDirectoriesByRoot(ctx context.Context, rootID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM directories WHERE root_id = ?`, rootID)
	if err != nil {
		return 0, fmt.Errorf("delete directories for root: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete directories rows affected: %w", err)
	}
	return n, nil
}

// BulkUpsertDirectories inserts or updates a batch of directories inside
// one transaction.
func (s *Store) BulkUpsertDirectories(ctx context.Context, dirs []Directory) error {
	if len(dirs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO directories
		(basename, fullpath, depth, root_id, mtime, last_used, segments)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fullpath) DO UPDATE SET
			basename = excluded.basename,
			depth    = excluded.depth,
			root_id  = excluded.root_id,
			mtime    = excluded.mtime,
			segments = excluded.segments`)
	if err != nil {
		return fmt.Errorf("prepare bulk upsert: %w", err)
	}
	defer stmt.Close()

	for _, d := range dirs {
		var lastUsed sql.NullInt64
		if d.LastUsed != nil {
			lastUsed = sql.NullInt64{Int64: *d.LastUsed, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			d.Basename, d.Fullpath, d.Depth, d.RootID, d.MTime, lastUsed, d.Segments); err != nil {
			return fmt.Errorf("upsert directory %s: %w", d.Fullpath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk upsert: %w", err)
	}
	return nil
}

// ReplaceDirectoriesForRoot swaps a root's directory set atomically:
// every existing row owned by rootID is deleted and the new batch
// inserted inside one transaction, so queries never observe a hybrid of
// old and new state.
func (s *Store) ReplaceDirectoriesForRoot(ctx context.Context, rootID int64, dirs []Directory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace directories: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM directories WHERE root_id = ?`, rootID); err != nil {
		return fmt.Errorf("clear directories for root: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO directories
		(basename, fullpath, depth, root_id, mtime, last_used, segments)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fullpath) DO UPDATE SET
			basename = excluded.basename,
			depth    = excluded.depth,
			root_id  = excluded.root_id,
			mtime    = excluded.mtime,
			segments = excluded.segments`)
	if err != nil {
		return fmt.Errorf("prepare replace directories: %w", err)
	}
	defer stmt.Close()

	for _, d := range dirs {
		var lastUsed sql.NullInt64
		if d.LastUsed != nil {
			lastUsed = sql.NullInt64{Int64: *d.LastUsed, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			d.Basename, d.Fullpath, d.Depth, d.RootID, d.MTime, lastUsed, d.Segments); err != nil {
			return fmt.Errorf("insert directory %s: %w", d.Fullpath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace directories: %w", err)
	}
	return nil
}

// FindByBasename returns every directory whose basename equals name,
// compared case-insensitively.
func (s *Store) FindByBasename(ctx context.Context, name string) ([]Directory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, basename, fullpath, depth, root_id, mtime, last_used, segments
		FROM directories WHERE basename = ? COLLATE NOCASE`, name)
	if err != nil {
		return nil, fmt.Errorf("find by basename: %w", err)
	}
	defer rows.Close()
	return scanDirectories(rows)
}

// BasenamePaths returns every (basename, fullpath) pair as a multi-valued
// map. Basenames are not unique across the index, so each key holds the
// full list of paths carrying it.
func (s *Store) BasenamePaths(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT basename, fullpath FROM directories`)
	if err != nil {
		return nil, fmt.Errorf("load basename paths: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string][]string)
	for rows.Next() {
		var basename, fullpath string
		if err := rows.Scan(&basename, &fullpath); err != nil {
			return nil, fmt.Errorf("scan basename pair: %w", err)
		}
		pairs[basename] = append(pairs[basename], fullpath)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate basename pairs: %w", err)
	}
	return pairs, nil
}

// LastResult returns the paths of the most recent multi-result query in
// display order, or nil when no result has been recorded.
func (s *Store) LastResult(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fullpath FROM last_result ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("load last result: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan last result: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate last result: %w", err)
	}
	return paths, nil
}

// ReplaceLastResult overwrites the last-query slot with paths in order.
// An empty slice clears the slot.
func (s *Store) ReplaceLastResult(ctx context.Context, paths []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace last result: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM last_result`); err != nil {
		return fmt.Errorf("clear last result: %w", err)
	}
	for i, p := range paths {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO last_result(position, fullpath) VALUES(?, ?)`, i+1, p); err != nil {
			return fmt.Errorf("insert last result entry %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace last result: %w", err)
	}
	return nil
}

// TouchLastUsed records a successful jump into the directory at fullpath.
func (s *Store) TouchLastUsed(ctx context.Context, fullpath string, epochSeconds int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE directories SET last_used = ? WHERE fullpath = ?`, epochSeconds, fullpath)
	if err != nil {
		return fmt.Errorf("touch last used: %w", err)
	}
	return nil
}

// CountDirectories returns the total number of indexed directories.
func (s *Store) CountDirectories(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM directories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count directories: %w", err)
	}
	return n, nil
}

// CountRoots returns the number of registered roots.
func (s *Store) CountRoots(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count roots: %w", err)
	}
	return n, nil
}

// Reset drops every root, every directory, and the last-result slot.
// Returns the number of directory rows removed.
func (s *Store) Reset(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM directories`)
	if err != nil {
		return 0, fmt.Errorf("reset directories: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset rows affected: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM roots`); err != nil {
		return 0, fmt.Errorf("reset roots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM last_result`); err != nil {
		return 0, fmt.Errorf("reset last result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reset: %w", err)
	}
	return removed, nil
}

// Vacuum reclaims space after large deletions. Optional maintenance.
func (s *Store) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

func scanDirectories(rows *sql.Rows) ([]Directory, error) {
	var dirs []Directory
	for rows.Next() {
		var d Directory
		var lastUsed sql.NullInt64
		if err := rows.Scan(&d.ID, &d.Basename, &d.Fullpath, &d.Depth,
			&d.RootID, &d.MTime, &lastUsed, &d.Segments); err != nil {
			return nil, fmt.Errorf("scan directory: %w", err)
		}
		if lastUsed.Valid {
			v := lastUsed.Int64
			d.LastUsed = &v
		}
		dirs = append(dirs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate directories: %w", err)
	}
	return dirs, nil
}
