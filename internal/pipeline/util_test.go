package pipeline

import "testing"

func TestFormatDurationShort(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{500, "0.5s"},
		{1500, "1.5s"},
		{65000, "1m5s"},
		{3700000, "1h1m"},
	}
	for _, c := range cases {
		if got := FormatDurationShort(c.ms); got != c.want {
			t.Errorf("FormatDurationShort(%d) = %q, want %q", c.ms, got, c.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	if got := TruncateMiddle("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	got := TruncateMiddle("a very long conversation title that keeps going", 20)
	if len(got) != 20 {
		t.Errorf("len = %d: %q", len(got), got)
	}
	if got[:2] != "a " {
		t.Errorf("start lost: %q", got)
	}
}
