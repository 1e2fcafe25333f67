package buildinfo

import (
	"strings"
	"testing"
)

func TestStringIncludesFields(t *testing.T) {
	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02"
	t.Cleanup(func() { Version, Commit, Date = "dev", "none", "unknown" })

	for _, s := range []string{String(), Template()} {
		for _, want := range []string{"v1.2.3", "abc123", "2026-01-02"} {
			if !strings.Contains(s, want) {
				t.Errorf("%q missing %q", s, want)
			}
		}
	}
}
