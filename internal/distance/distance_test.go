package distance

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/xrash/smetrics"

	"github.com/mfenderov/songsim/pkg/models"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"kitten sitting", "kitten", "sitting", 3},
		{"identical", "grace", "grace", 0},
		{"both empty", "", "", 0},
		{"one empty", "", "abc", 3},
		{"other empty", "abcd", "", 4},
		{"single replace", "sound", "round", 1},
		{"insert at end", "me", "mee", 1},
		{"flaw lawn", "flaw", "lawn", 2},
		{"umlaut counts as one rune", "Gnade", "Gnäde", 1},
		{"accented vs plain", "café", "cafe", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDistance_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		a := randomString(r, 12)
		b := randomString(r, 12)

		ab := Distance(a, b)
		if ba := Distance(b, a); ab != ba {
			t.Fatalf("Distance not symmetric for %q, %q: %d != %d", a, b, ab, ba)
		}
		if Distance(a, a) != 0 {
			t.Fatalf("Distance(%q, %q) should be 0", a, a)
		}
		// Wagner-Fischer with unit costs is the Levenshtein distance.
		if want := smetrics.WagnerFischer(a, b, 1, 1, 1); ab != want {
			t.Fatalf("Distance(%q, %q) = %d, smetrics says %d", a, b, ab, want)
		}
		rel := Relative(a, b)
		if rel < 0 || rel > 1 {
			t.Fatalf("Relative(%q, %q) = %f, want within [0,1]", a, b, rel)
		}
	}
}

func TestRelative(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 0},
		{"identical", "abc", "abc", 0},
		{"completely different", "abc", "xyz", 1},
		{"one empty", "", "abcd", 1},
		{"kitten sitting", "kitten", "sitting", 3.0 / 7.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relative(tt.a, tt.b); got != tt.want {
				t.Errorf("Relative(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLineDistance(t *testing.T) {
	doc := models.NewDocument("a.sng")
	a := models.NewLine("kitten", doc)
	b := models.NewLine("sitting", doc)

	got := LineDistance(a, b)
	if got.Absolute != 3 {
		t.Errorf("Absolute = %d, want 3", got.Absolute)
	}
	if got.Relative != 3.0/7.0 {
		t.Errorf("Relative = %f, want %f", got.Relative, 3.0/7.0)
	}
}

func TestLongestCommonSubsequence(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"empty a", "", "abc", ""},
		{"empty b", "abc", "", ""},
		{"identical", "grace", "grace", "grace"},
		{"classic", "ABCBDAB", "BDCABA", "BCBA"},
		{"no overlap", "abc", "xyz", ""},
		{"tie goes up", "ab", "ba", "a"},
		{"with spaces", "how sweet the sound", "how sweet a sound", "how sweet  sound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LongestCommonSubsequence(tt.a, tt.b); got != tt.want {
				t.Errorf("LongestCommonSubsequence(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLongestCommonSubsequence_Deterministic(t *testing.T) {
	a, b := "abcabcab", "bacbacba"
	first := LongestCommonSubsequence(a, b)
	for range 20 {
		if got := LongestCommonSubsequence(a, b); got != first {
			t.Fatalf("result changed between calls: %q vs %q", first, got)
		}
	}
}

func TestLongestCommonSubsequence_BruteForce(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for range 200 {
		a := randomString(r, 8)
		b := randomString(r, 8)

		got := LongestCommonSubsequence(a, b)
		if !isSubsequence(got, a) {
			t.Fatalf("%q is not a subsequence of %q", got, a)
		}
		if !isSubsequence(got, b) {
			t.Fatalf("%q is not a subsequence of %q", got, b)
		}
		if want := bruteForceLCSLength(a, b); len(got) != want {
			t.Fatalf("LongestCommonSubsequence(%q, %q) = %q (len %d), longest is %d", a, b, got, len(got), want)
		}
	}
}

// randomString draws from a small alphabet so overlaps are common.
func randomString(r *rand.Rand, maxLen int) string {
	const alphabet = "abcd "
	n := r.IntN(maxLen + 1)
	var sb strings.Builder
	for range n {
		sb.WriteByte(alphabet[r.IntN(len(alphabet))])
	}
	return sb.String()
}

func isSubsequence(sub, s string) bool {
	i := 0
	for j := 0; j < len(s) && i < len(sub); j++ {
		if sub[i] == s[j] {
			i++
		}
	}
	return i == len(sub)
}

// bruteForceLCSLength tries every subsequence of a.
func bruteForceLCSLength(a, b string) int {
	best := 0
	for mask := 0; mask < 1<<len(a); mask++ {
		var sb strings.Builder
		for i := range len(a) {
			if mask&(1<<i) != 0 {
				sb.WriteByte(a[i])
			}
		}
		sub := sb.String()
		if len(sub) > best && isSubsequence(sub, b) {
			best = len(sub)
		}
	}
	return best
}
