package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvsfastimport/cvsfastimport/config"
	"github.com/cvsfastimport/cvsfastimport/ids"
	"github.com/cvsfastimport/cvsfastimport/state"
)

func TestLoadConfigMergesFlagsOverFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "cvsfastimport.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("cvsroot: /cvsroot\nhead_branch: trunk\n"), 0644))

	cfg, err := loadConfig(configFile, config.Config{HeadBranch: "main"})
	require.NoError(t, err)
	assert.Equal(t, "/cvsroot", cfg.CVSRoot, "flag left unset, config value kept")
	assert.Equal(t, "main", cfg.HeadBranch, "flag set, overrides config value")
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := loadConfig("", config.Config{CVSRoot: "/cvsroot", Store: "state.db"})
	require.NoError(t, err)
	assert.Equal(t, "/cvsroot", cfg.CVSRoot)
	assert.Equal(t, "state.db", cfg.Store)
	assert.Equal(t, config.DefaultHeadBranch, cfg.HeadBranch)
}

func TestLoadStateMissingFileReturnsEmptyManager(t *testing.T) {
	dir := t.TempDir()
	st, err := loadState(filepath.Join(dir, "does-not-exist.db"))
	require.NoError(t, err)
	assert.Empty(t, st.GetTags())
}

func TestSaveAndLoadStateRoundTrips(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "state.db")

	st := state.New()
	mark := ids.Mark(1)
	id := st.AddFileRevision(state.FileRevision{Key: state.Key{Path: "a.txt", Revision: "1.1"}, Mark: &mark, Time: time.Now()})
	st.AddPatchset(mark, "main", time.Now(), []ids.FileRevisionID{id})

	require.NoError(t, saveState(storePath, st))

	loaded, err := loadState(storePath)
	require.NoError(t, err)
	gotMark, ok := loaded.GetLastPatchsetMarkOnBranch("main")
	require.True(t, ok)
	assert.Equal(t, mark, gotMark)
}

func TestDumpAndSaveMarksRoundTrip(t *testing.T) {
	st := state.New()
	st.SetRawMarks([]byte(":1 deadbeef\n:2 cafef00d\n"))

	markFile, err := dumpMarksToFile(st)
	require.NoError(t, err)
	defer os.Remove(markFile)

	data, err := os.ReadFile(markFile)
	require.NoError(t, err)
	assert.Equal(t, st.GetRawMarks(), data)

	other := state.New()
	require.NoError(t, saveMarksFromFile(other, markFile))
	assert.Equal(t, st.GetRawMarks(), other.GetRawMarks())
}
