package fswalk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestFiles_ListsRegularFilesInOrder(t *testing.T) {
	// Given: a nested tree
	root := t.TempDir()
	write(t, filepath.Join(root, "b.txt"))
	write(t, filepath.Join(root, "a", "z.md"))
	write(t, filepath.Join(root, "a", "y.md"))

	// When: listing files
	files := Files(root)

	// Then: every file is found, lexical within each directory
	assert.Equal(t, []string{
		filepath.Join(root, "a", "y.md"),
		filepath.Join(root, "a", "z.md"),
		filepath.Join(root, "b.txt"),
	}, files)
}

func TestFiles_FollowsSymlinkedDirectories(t *testing.T) {
	// Given: a link inside root pointing at a directory outside it
	root := t.TempDir()
	outside := t.TempDir()
	write(t, filepath.Join(outside, "shared.txt"))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))

	// When: listing files
	files := Files(root)

	// Then: the file is reported under the link name
	assert.Equal(t, []string{filepath.Join(root, "link", "shared.txt")}, files)
}

func TestWalk_CutsSymlinkLoops(t *testing.T) {
	// Given: a directory containing a link back to itself
	root := t.TempDir()
	write(t, filepath.Join(root, "sub", "f.txt"))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "sub", "back")))

	// When: walking
	files := Files(root)

	// Then: the walk terminates and the file is seen once
	assert.Equal(t, []string{filepath.Join(root, "sub", "f.txt")}, files)
}

func TestFiles_SkipsDanglingSymlinks(t *testing.T) {
	// Given: a dangling link next to a real file
	root := t.TempDir()
	write(t, filepath.Join(root, "real.txt"))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling.txt")))

	// When/Then: only the real file is listed
	assert.Equal(t, []string{filepath.Join(root, "real.txt")}, Files(root))
}

func TestDirs_IncludesRoot(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a", "b", "f.txt"))

	assert.Equal(t, []string{root, filepath.Join(root, "a"), filepath.Join(root, "a", "b")}, Dirs(root))
}
