package fastimport

import (
	"fmt"
	"time"
)

// Identity is a git author/committer/tagger identity: an optional display
// name, an email (not validated — fast-import doesn't check it either),
// and the time of the action.
type Identity struct {
	Name  string
	Email string
	When  time.Time
}

// String formats the identity in wire form: "Name <email> unixtime +0000".
// Imported history has no reliable timezone, so every identity is written
// in UTC.
func (id Identity) String() string {
	if id.Name != "" {
		return fmt.Sprintf("%s <%s> %d +0000", id.Name, id.Email, id.When.Unix())
	}
	return fmt.Sprintf("<%s> %d +0000", id.Email, id.When.Unix())
}
