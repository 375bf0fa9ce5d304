// Package version compares dotted data-version tags. The comparison gates
// schema migrations: a migration applies iff the stored tag sorts before
// the migration's threshold.
package version

import (
	"strconv"
	"strings"
)

// Compare orders two dotted version strings segment by segment, numerically
// from the left. Missing and non-numeric segments count as zero, so
// "1.2" == "1.2.0" and "1.x.5" == "1.0.5". Returns -1, 0 or 1.
func Compare(a, b string) int {
	as := parse(a)
	bs := parse(b)
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// Less reports whether a sorts strictly before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

func parse(v string) []int {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ".")
	segs := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			n = 0
		}
		segs[i] = n
	}
	return segs
}
