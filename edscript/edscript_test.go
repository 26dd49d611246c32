package edscript

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestApplyScriptFixture(t *testing.T) {
	lao := readFixture(t, "lao")
	script := readFixture(t, "script.ed")
	want := readFixture(t, "tzu")

	commands, err := ParseScript(script)
	require.NoError(t, err)

	got, err := NewFile(lao).Apply(commands)
	require.NoError(t, err)

	assert.Equal(t, string(want), string(got.Bytes()))
}

// TestReversePrependReconstructsFile applies fifteen single-command a0
// scripts, one at a time in reverse order, to an initially empty file. Each
// script prepends one line, so processing them from line 15 down to line 1
// reconstructs the fifteen-line file in forward order.
func TestReversePrependReconstructsFile(t *testing.T) {
	const n = 15
	want := make([]byte, 0)
	for i := 1; i <= n; i++ {
		want = append(want, []byte(fmt.Sprintf("line-%02d\n", i))...)
	}

	f := File{}
	for i := n; i >= 1; i-- {
		script := []byte(fmt.Sprintf("a0 1\nline-%02d\n", i))
		commands, err := ParseScript(script)
		require.NoError(t, err)
		f, err = f.Apply(commands)
		require.NoError(t, err)
	}

	assert.Equal(t, string(want), string(f.Bytes()))
}

func TestConflictingAppend(t *testing.T) {
	_, err := ParseScript([]byte("a1 1\nx\na1 1\ny\n"))
	require.NoError(t, err)

	commands, err := ParseScript([]byte("a1 1\nx\na1 1\ny\n"))
	require.NoError(t, err)

	_, err = NewFile([]byte("one\ntwo\n")).Apply(commands)
	var conflict *ConflictingAppendError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.Pos)
}

func TestConflictingPrepend(t *testing.T) {
	commands, err := ParseScript([]byte("a0 1\nx\na0 1\ny\n"))
	require.NoError(t, err)

	_, err = NewFile([]byte("one\n")).Apply(commands)
	var conflict *ConflictingAppendError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, 0, conflict.Pos)
}

func TestDeleteOutOfRange(t *testing.T) {
	commands, err := ParseScript([]byte("d5 1\n"))
	require.NoError(t, err)

	_, err = NewFile([]byte("one\ntwo\n")).Apply(commands)
	var eof *EndOfFileError
	assert.ErrorAs(t, err, &eof)
}

func TestFinalNewlinePreserved(t *testing.T) {
	f := NewFile([]byte("a\nb"))
	assert.False(t, f.FinalNewline)
	assert.Equal(t, []byte("a\nb"), f.Bytes())

	f = NewFile([]byte("a\nb\n"))
	assert.True(t, f.FinalNewline)
	assert.Equal(t, []byte("a\nb\n"), f.Bytes())
}
