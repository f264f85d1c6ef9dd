package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/VaibhavPandit-09/fly/internal/filelock"
)

// DefaultPriority is used for roots registered without an explicit one.
// Lower values rank first when listing and reindexing.
const DefaultPriority = 100

// RootEntry is one line of the roots file.
type RootEntry struct {
	Path     string
	Priority int
}

// RootSyncer is the store surface needed to mirror configured roots into
// the database.
type RootSyncer interface {
	UpsertRoot(ctx context.Context, path string, priority int) (int64, error)
}

// Manager handles the files under the fly config directory: the roots
// list and the global ignore patterns.
type Manager struct {
	configDir  string
	rootsFile  string
	ignoreFile string
}

// NewManager creates a Manager rooted at configDir.
func NewManager(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		rootsFile:  filepath.Join(configDir, RootsFilename),
		ignoreFile: filepath.Join(configDir, IgnoreFilename),
	}
}

// Dir returns the config directory path.
func (m *Manager) Dir() string {
	return m.configDir
}

// EnsureLayout creates the config directory and seed files on first run.
func (m *Manager) EnsureLayout() error {
	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(m.rootsFile); os.IsNotExist(err) {
		header := "# fly roots file\n# Format: <priority> <absolute-path>\n"
		if err := filelock.AtomicWrite(m.rootsFile, []byte(header)); err != nil {
			return fmt.Errorf("seed roots file: %w", err)
		}
	}
	if _, err := os.Stat(m.ignoreFile); os.IsNotExist(err) {
		header := "# fly global ignore patterns (gitignore syntax)\n# Example:\n# node_modules/\n"
		if err := filelock.AtomicWrite(m.ignoreFile, []byte(header)); err != nil {
			return fmt.Errorf("seed ignore file: %w", err)
		}
	}
	return nil
}

// LoadRoots parses the roots file. Lines it cannot make sense of are
// skipped; a missing file means no roots.
func (m *Manager) LoadRoots() ([]RootEntry, error) {
	data, err := os.ReadFile(m.rootsFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read roots file: %w", err)
	}

	var entries []RootEntry
	for _, line := range strings.Split(string(data), "\n") {
		if entry, ok := parseRootLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// AddRoot records a root, replacing any existing entry for the same
// normalized path.
func (m *Manager) AddRoot(path string, priority int) error {
	normalized, err := normalizePath(path)
	if err != nil {
		return err
	}

	entries, err := m.LoadRoots()
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.Path != normalized {
			kept = append(kept, e)
		}
	}
	kept = append(kept, RootEntry{Path: normalized, Priority: priority})
	return m.writeRoots(kept)
}

// RemoveRoot drops a root from the roots file. Returns true when an
// entry was actually removed.
func (m *Manager) RemoveRoot(path string) (bool, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return false, err
	}

	entries, err := m.LoadRoots()
	if err != nil {
		return false, err
	}

	kept := entries[:0]
	removed := false
	for _, e := range entries {
		if e.Path == normalized {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return false, nil
	}
	return true, m.writeRoots(kept)
}

// SyncRoots mirrors every configured root into the store.
func (m *Manager) SyncRoots(ctx context.Context, store RootSyncer) error {
	entries, err := m.LoadRoots()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := store.UpsertRoot(ctx, e.Path, e.Priority); err != nil {
			return fmt.Errorf("sync root %s: %w", e.Path, err)
		}
	}
	return nil
}

// GlobalPatterns returns the raw lines of the global ignore file. Blank
// and comment lines are left in; the compiler skips them.
func (m *Manager) GlobalPatterns() ([]string, error) {
	return readLines(m.ignoreFile)
}

// RootPatterns returns the raw lines of a root's own ignore file, if any.
func (m *Manager) RootPatterns(rootPath string) ([]string, error) {
	return readLines(filepath.Join(rootPath, IgnoreFilename))
}

// writeRoots rewrites the roots file atomically under a flock, sorted by
// priority then case-insensitive path.
func (m *Manager) writeRoots(entries []RootEntry) error {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority < entries[j].Priority
		}
		return strings.ToLower(entries[i].Path) < strings.ToLower(entries[j].Path)
	})

	var sb strings.Builder
	sb.WriteString("# fly roots file\n# Format: <priority> <absolute-path>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "%d %s\n", e.Priority, e.Path)
	}

	if err := filelock.LockAndWrite(m.rootsFile, []byte(sb.String())); err != nil {
		return fmt.Errorf("write roots file: %w", err)
	}
	return nil
}

// parseRootLine reads one "<priority> <path>" line. A line without a
// numeric first token is treated as a bare path with the default
// priority; a lone priority with no path is dropped.
func parseRootLine(raw string) (RootEntry, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return RootEntry{}, false
	}

	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx < 0 {
		if _, err := strconv.Atoi(line); err == nil {
			return RootEntry{}, false
		}
		return RootEntry{Path: line, Priority: DefaultPriority}, true
	}

	first := line[:idx]
	rest := strings.TrimSpace(line[idx+1:])
	priority, err := strconv.Atoi(first)
	if err != nil {
		// First token was part of the path after all.
		return RootEntry{Path: line, Priority: DefaultPriority}, true
	}
	return RootEntry{Path: rest, Priority: priority}, true
}

// normalizePath makes path absolute and cleaned.
func normalizePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

// readLines splits a file into lines, tolerating a missing file.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), nil
}
