package fastimport

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkString(t *testing.T) {
	assert.Equal(t, ":42", Mark(42).String())
}

func TestIdentityString(t *testing.T) {
	when := time.Unix(1000, 0).UTC()
	assert.Equal(t, "Alice <alice@example.com> 1000 +0000",
		Identity{Name: "Alice", Email: "alice@example.com", When: when}.String())
	assert.Equal(t, "<alice@example.com> 1000 +0000",
		Identity{Email: "alice@example.com", When: when}.String())
}

func TestWriterBlob(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mark, err := w.Command(Blob{Data: []byte("hello")})
	require.NoError(t, err)
	assert.Equal(t, Mark(1), mark)
	assert.Equal(t, "blob\nmark :1\ndata 5\nhello\n", buf.String())
}

func TestWriterCommitFull(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	when := time.Unix(500, 0).UTC()

	blobMark, err := w.Command(Blob{Data: []byte("x")})
	require.NoError(t, err)

	commit, err := NewCommitBuilder("refs/heads/main").
		Committer(Identity{Name: "Bob", Email: "bob@example.com", When: when}).
		Message("hello world").
		From(Mark(0)).
		AddFileCommand(FileCommand{Kind: Modify, Mode: ModeNormal, Mark: blobMark, Path: "a.txt"}).
		AddFileCommand(FileCommand{Kind: Delete, Path: "b.txt"}).
		Build()
	require.NoError(t, err)

	mark, err := w.Command(commit)
	require.NoError(t, err)
	assert.Equal(t, Mark(2), mark)

	out := buf.String()
	assert.True(t, strings.Contains(out, "commit refs/heads/main\n"))
	assert.True(t, strings.Contains(out, "mark :2\n"))
	assert.True(t, strings.Contains(out, "committer Bob <bob@example.com> 500 +0000\n"))
	assert.True(t, strings.Contains(out, "data 11\nhello world\n"))
	assert.True(t, strings.Contains(out, "from :0\n"))
	assert.True(t, strings.Contains(out, "M 100644 :1 a.txt\n"))
	assert.True(t, strings.Contains(out, "D b.txt\n"))
}

func TestCommitBuilderRequiresCommitterAndMessage(t *testing.T) {
	_, err := NewCommitBuilder("refs/heads/main").Message("msg").Build()
	require.Error(t, err)
	var mce *MissingCommitterError
	assert.ErrorAs(t, err, &mce)

	_, err = NewCommitBuilder("refs/heads/main").
		Committer(Identity{Email: "a@b.com"}).Build()
	require.Error(t, err)
	var mme *MissingMessageError
	assert.ErrorAs(t, err, &mme)
}

func TestWriterTag(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	when := time.Unix(1, 0).UTC()
	mark, err := w.Command(Tag{
		Name:    "REL1_0",
		From:    Mark(5),
		Tagger:  Identity{Email: "tagger@example.com", When: when},
		Message: "release",
	})
	require.NoError(t, err)
	assert.Equal(t, Mark(1), mark)
	assert.Equal(t, "tag REL1_0\nmark :1\nfrom :5\ntagger <tagger@example.com> 1 +0000\ndata 7\nrelease\n", buf.String())
}

func TestWriterResetAndControlCommands(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	from := Mark(3)
	require.NoError(t, w.Reset("refs/heads/main", &from))
	require.NoError(t, w.Reset("refs/heads/empty", nil))
	require.NoError(t, w.Checkpoint())
	require.NoError(t, w.Progress("halfway"))

	assert.Equal(t, "reset refs/heads/main\nfrom :3\nreset refs/heads/empty\ncheckpoint\nprogress halfway\n", buf.String())
}

func TestWriterResume(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Resume(Mark(10))
	mark, err := w.Command(Blob{Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, Mark(11), mark)
}

func TestLastMark(t *testing.T) {
	m, ok, err := LastMark(strings.NewReader(""))
	require.NoError(t, err)
	assert.False(t, ok)

	m, ok, err = LastMark(strings.NewReader("\n"))
	require.NoError(t, err)
	assert.False(t, ok)

	m, ok, err = LastMark(strings.NewReader(":25 0123456789abcdef"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Mark(25), m)

	m, ok, err = LastMark(strings.NewReader(":25 0123456789abcdef\n\n"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Mark(25), m)

	_, _, err = LastMark(strings.NewReader("not a mark"))
	require.Error(t, err)

	_, _, err = LastMark(strings.NewReader(":xx xx"))
	require.Error(t, err)

	_, _, err = LastMark(strings.NewReader(":25"))
	require.Error(t, err)
}
