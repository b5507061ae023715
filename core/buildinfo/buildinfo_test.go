package buildinfo

import "testing"

func TestString(t *testing.T) {
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })

	Version, Commit, Date = "v1.0.0", "abc", ""
	if got := String(); got != "v1.0.0 (abc)" {
		t.Fatalf("got %q", got)
	}
	Date = "2026-01-02T00:00:00Z"
	if got := String(); got != "v1.0.0 (abc, built 2026-01-02T00:00:00Z)" {
		t.Fatalf("got %q", got)
	}
}
