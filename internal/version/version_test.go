package version

import "testing"

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0.1", "1.0.2", -1},
		{"1.0.2", "1.0.1", 1},
		{"1.2", "1.2.0", 0},
		{"2.0.0", "1.9.9", 1},
		{"1.9.9", "2.0.0", -1},
		{"1.0.0", "1.0.0", 0},
		{"1.10.0", "1.9.0", 1},
		{"", "1.0.0", -1},
		{"", "", 0},
		{"1.x.5", "1.0.5", 0}, // non-numeric segment counts as zero
		{"1.0.0.1", "1.0.0", 1},
	}
	for _, tc := range cases {
		if got := Compare(tc.a, tc.b); got != tc.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestLess(t *testing.T) {
	if !Less("1.0.0", "1.0.1") {
		t.Error("expected 1.0.0 < 1.0.1")
	}
	if Less("1.0.1", "1.0.1") {
		t.Error("equal versions must not be less")
	}
	if Less("1.0.2", "1.0.1") {
		t.Error("expected 1.0.2 not less than 1.0.1")
	}
}
