package version

import "testing"

func TestInfoString(t *testing.T) {
	i := Info{Version: "1.2.0", Commit: "abc123", Dirty: "true", Date: "2026-01-02"}
	if got, want := i.String(), "1.2.0 (commit abc123, dirty, built 2026-01-02)"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got := (Info{Version: "dev", Commit: "none"}).String(); got != "dev (commit none)" {
		t.Fatalf("unexpected %q", got)
	}
}
