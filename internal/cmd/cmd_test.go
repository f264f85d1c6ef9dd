package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv points fly's config and data dirs at per-test temp dirs.
func setupEnv(t *testing.T) (configDir, dataDir string) {
	t.Helper()
	configDir, dataDir = t.TempDir(), t.TempDir()
	t.Setenv("FLY_CONFIG_DIR", configDir)
	t.Setenv("FLY_DATA_DIR", dataDir)
	return configDir, dataDir
}

// runFly executes the command tree with args and returns stdout.
func runFly(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// makeTree builds a small directory tree and returns its root.
func makeTree(t *testing.T, dirs ...string) string {
	t.Helper()
	base := t.TempDir()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(base, filepath.FromSlash(d)), 0755))
	}
	return base
}

func TestAddRootAndReindex(t *testing.T) {
	setupEnv(t)
	root := makeTree(t, "projects/api", "projects/web", "scratch")

	out, err := runFly(t, "add-root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Root registered: "+root)

	out, err = runFly(t, "reindex")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 5 directories across 1 roots.")
}

func TestAddRootRejectsNonDirectory(t *testing.T) {
	setupEnv(t)

	_, err := runFly(t, "add-root", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestQuerySingleMatch(t *testing.T) {
	setupEnv(t)
	root := makeTree(t, "projects/api")
	_, err := runFly(t, "add-root", root)
	require.NoError(t, err)
	_, err = runFly(t, "reindex")
	require.NoError(t, err)

	out, err := runFly(t, "api")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "projects", "api")+"\n", out)
}

func TestQueryMultipleMatchesAndRecall(t *testing.T) {
	setupEnv(t)
	root := makeTree(t, "a/src", "b/src")
	_, err := runFly(t, "add-root", root)
	require.NoError(t, err)
	_, err = runFly(t, "reindex")
	require.NoError(t, err)

	out, err := runFly(t, "src")
	require.NoError(t, err)
	assert.Contains(t, out, "--Multiple matches found--")
	assert.Contains(t, out, "1: "+filepath.Join(root, "a", "src"))
	assert.Contains(t, out, "2: "+filepath.Join(root, "b", "src"))

	// Recall the second entry from the previous result.
	out, err = runFly(t, "2")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "b", "src")+"\n", out)

	// Out-of-range recall is a miss, not a crash, and leaves the
	// remembered result intact.
	_, err = runFly(t, "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no directory indexed")

	out, err = runFly(t, "1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "src")+"\n", out)
}

func TestQueryWithHints(t *testing.T) {
	setupEnv(t)
	root := makeTree(t, "work/api/project", "work/web/project")
	_, err := runFly(t, "add-root", root)
	require.NoError(t, err)
	_, err = runFly(t, "reindex")
	require.NoError(t, err)

	out, err := runFly(t, "api", "project")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "work", "api", "project")+"\n", out)
}

func TestQueryNumericBasenameFallback(t *testing.T) {
	setupEnv(t)
	root := makeTree(t, "archive/2024")
	_, err := runFly(t, "add-root", root)
	require.NoError(t, err)
	_, err = runFly(t, "reindex")
	require.NoError(t, err)

	// The recall slot is empty, so the number is retried as a basename.
	out, err := runFly(t, "2024")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "archive", "2024")+"\n", out)
}

func TestQueryFuzzyFallback(t *testing.T) {
	setupEnv(t)
	root := makeTree(t, "projects/kitten")
	_, err := runFly(t, "add-root", root)
	require.NoError(t, err)
	_, err = runFly(t, "reindex")
	require.NoError(t, err)

	// Suggestions are printed but the query itself still misses.
	out, err := runFly(t, "query", "kitte")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no directory indexed matching")
	assert.Contains(t, out, filepath.Join(root, "projects", "kitten"))

	// The suggestion list is recallable by position.
	out, err = runFly(t, "1")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(root, "projects", "kitten")+"\n")
}

func TestQueryExplicitSubcommand(t *testing.T) {
	setupEnv(t)
	// A directory named like a subcommand is reachable via 'fly query'.
	root := makeTree(t, "tools/count")
	_, err := runFly(t, "add-root", root)
	require.NoError(t, err)
	_, err = runFly(t, "reindex")
	require.NoError(t, err)

	out, err := runFly(t, "query", "count")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "tools", "count")+"\n", out)
}

func TestReindexHonorsIgnoreFile(t *testing.T) {
	configDir, _ := setupEnv(t)
	root := makeTree(t, "src", "node_modules/dep")
	require.NoError(t, os.WriteFile(
		filepath.Join(configDir, ".flyIgnore"), []byte("node_modules/\n"), 0644))

	_, err := runFly(t, "add-root", root)
	require.NoError(t, err)
	out, err := runFly(t, "reindex")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 2 directories", "root itself and src; node_modules pruned")

	_, err = runFly(t, "dep")
	require.Error(t, err, "pruned descendants must not resolve")
}

func TestReindexWithoutRoots(t *testing.T) {
	setupEnv(t)
	_, err := runFly(t, "reindex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no roots configured")
}

func TestListRoots(t *testing.T) {
	configDir, _ := setupEnv(t)

	out, err := runFly(t, "list-roots")
	require.NoError(t, err)
	assert.Contains(t, out, "No roots configured.")

	rootA := makeTree(t)
	rootB := makeTree(t)
	_, err = runFly(t, "add-root", rootA, "--priority", "20")
	require.NoError(t, err)
	_, err = runFly(t, "add-root", rootB, "--priority", "10")
	require.NoError(t, err)

	out, err = runFly(t, "list-roots")
	require.NoError(t, err)
	assert.Contains(t, out, "Config directory: "+configDir)
	posA := bytes.Index([]byte(out), []byte(rootA))
	posB := bytes.Index([]byte(out), []byte(rootB))
	require.GreaterOrEqual(t, posA, 0)
	require.GreaterOrEqual(t, posB, 0)
	assert.Less(t, posB, posA, "lower priority value lists first")
}

func TestRemoveRoot(t *testing.T) {
	setupEnv(t)
	root := makeTree(t, "src")
	_, err := runFly(t, "add-root", root)
	require.NoError(t, err)
	_, err = runFly(t, "reindex")
	require.NoError(t, err)

	out, err := runFly(t, "remove-root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Root removed: "+root)

	_, err = runFly(t, "src")
	require.Error(t, err, "cascade removed the root's directories")

	_, err = runFly(t, "remove-root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no root registered")
}

func TestCountAndReset(t *testing.T) {
	setupEnv(t)
	root := makeTree(t, "a", "b")
	_, err := runFly(t, "add-root", root)
	require.NoError(t, err)
	_, err = runFly(t, "reindex")
	require.NoError(t, err)

	out, err := runFly(t, "count")
	require.NoError(t, err)
	assert.Contains(t, out, "Roots: 1")
	assert.Contains(t, out, "Total indexed directories: 3")

	out, err = runFly(t, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 3 indexed entries")

	out, err = runFly(t, "count")
	require.NoError(t, err)
	assert.Contains(t, out, "Total indexed directories: 0")
}

func TestQueryNoMatchIsDistinctError(t *testing.T) {
	setupEnv(t)
	root := makeTree(t)
	_, err := runFly(t, "add-root", root)
	require.NoError(t, err)
	_, err = runFly(t, "reindex")
	require.NoError(t, err)

	_, err = runFly(t, "nothing-like-this")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no directory indexed matching")
}
