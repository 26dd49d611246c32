package fastimport

import (
	"fmt"
	"io"
)

// Tag is a `tag` command, creating an annotated tag object pointing at
// from.
type Tag struct {
	Name    string
	From    Mark
	Tagger  Identity
	Message string
}

func (t Tag) writeCommand(w io.Writer, mark Mark) error {
	_, err := fmt.Fprintf(w, "tag %s\nmark %s\nfrom %s\ntagger %s\ndata %d\n%s\n",
		t.Name, mark, t.From, t.Tagger, len(t.Message), t.Message)
	return err
}
