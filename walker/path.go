package walker

import (
	"path/filepath"
	"strings"
)

// MungePath normalizes a `,v` file's path for use as a repository-relative
// path: the cvsroot prefix is stripped if present, the trailing ",v" is
// dropped from the filename, and a final "Attic/" directory component is
// removed (CVS stores deleted-file revisions there). Non-terminal Attic
// components — a real directory literally named Attic — are left alone.
func MungePath(cvsroot, raw string) string {
	path := raw
	if cvsroot != "" {
		rel := strings.TrimPrefix(path, cvsroot)
		if rel != path {
			path = strings.TrimPrefix(rel, string(filepath.Separator))
		}
	}

	dir, file := filepath.Split(path)
	file = strings.TrimSuffix(file, ",v")

	dir = strings.TrimSuffix(dir, string(filepath.Separator))
	base := filepath.Base(dir)
	if base == "Attic" {
		dir = strings.TrimSuffix(dir, "Attic")
		dir = strings.TrimSuffix(dir, string(filepath.Separator))
	}

	if dir == "" {
		return file
	}
	return dir + string(filepath.Separator) + file
}
