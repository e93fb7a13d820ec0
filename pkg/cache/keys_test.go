package cache

import "testing"

func TestJoinKey(t *testing.T) {
	cases := map[string][]string{
		"stockpull:calendar:2024-03-SSE": {"stockpull", "calendar", "2024-03-SSE"},
		"calendar:2024-03-SSE":           {"", "calendar:", "2024-03-SSE"},
		"":                               {},
	}
	for want, parts := range cases {
		if got := JoinKey(parts...); got != want {
			t.Fatalf("JoinKey(%q) = %q, want %q", parts, got, want)
		}
	}
}

func TestPrefixPattern(t *testing.T) {
	if got := PrefixPattern("calendar"); got != "calendar:*" {
		t.Fatalf("unexpected pattern %q", got)
	}
}
