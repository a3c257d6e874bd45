package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_ResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	assert.Equal(t, Canonicalize(target), Canonicalize(link))
}

func TestCanonicalize_MissingPathFallsBackToAbsolute(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does", "not", "exist")

	got := Canonicalize(missing)

	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, missing, got)
}

func TestCanonicalize_RelativePathBecomesAbsolute(t *testing.T) {
	got := Canonicalize("some/relative/path")

	assert.True(t, filepath.IsAbs(got))
}
