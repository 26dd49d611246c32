package walker

import "testing"

func TestMungePath(t *testing.T) {
	cases := []struct {
		name    string
		cvsroot string
		raw     string
		want    string
	}{
		{"no cvsroot prefix, no attic", "", "module/foo.c,v", "module/foo.c"},
		{"strips cvsroot prefix", "/cvsroot", "/cvsroot/module/foo.c,v", "module/foo.c"},
		{"drops terminal attic", "/cvsroot", "/cvsroot/module/Attic/foo.c,v", "module/foo.c"},
		{"preserves non-terminal attic", "/cvsroot", "/cvsroot/module/Attic/sub/foo.c,v", "module/Attic/sub/foo.c"},
		{"root-level file under attic", "/cvsroot", "/cvsroot/Attic/foo.c,v", "foo.c"},
		{"no leading directory", "", "foo.c,v", "foo.c"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MungePath(tc.cvsroot, tc.raw)
			if got != tc.want {
				t.Errorf("MungePath(%q, %q) = %q, want %q", tc.cvsroot, tc.raw, got, tc.want)
			}
		})
	}
}
