package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreflightFailsOnNonexistentRepo(t *testing.T) {
	err := Preflight(Options{GitRepo: filepath.Join(t.TempDir(), "does-not-exist")})
	require.Error(t, err)
	var pe *PreflightError
	assert.ErrorAs(t, err, &pe)
}

func TestPreflightFailsOnBadGitCommand(t *testing.T) {
	err := Preflight(Options{GitCommand: "this-is-not-a-real-binary-xyz", GitRepo: t.TempDir()})
	require.Error(t, err)
}

func TestOptionsDefaultGitCommand(t *testing.T) {
	assert.Equal(t, "git", Options{}.gitCommand())
	assert.Equal(t, "custom-git", Options{GitCommand: "custom-git"}.gitCommand())
}

func TestNewFailsWhenGitUnavailable(t *testing.T) {
	markFile := filepath.Join(t.TempDir(), "marks")
	_, err := New(nil, markFile, Options{GitCommand: "this-is-not-a-real-binary-xyz", GitRepo: t.TempDir()})
	require.Error(t, err)
}

func TestNewWithExistingMarkFileFailsWhenGitUnavailable(t *testing.T) {
	dir := t.TempDir()
	markFile := filepath.Join(dir, "marks")
	require.NoError(t, os.WriteFile(markFile, []byte(":7 deadbeef\n"), 0o644))

	_, err := New(nil, markFile, Options{GitCommand: "this-is-not-a-real-binary-xyz", GitRepo: dir})
	require.Error(t, err)
}
