package fastimport

import (
	"fmt"
	"io"
)

// Blob is a `blob` command, storing file content under a mark that later
// `M` file commands reference.
type Blob struct {
	Data []byte
}

func (b Blob) writeCommand(w io.Writer, mark Mark) error {
	if _, err := fmt.Fprintf(w, "blob\nmark %s\ndata %d\n", mark, len(b.Data)); err != nil {
		return err
	}
	if _, err := w.Write(b.Data); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
