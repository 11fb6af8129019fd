package textdiff

import (
	"strings"
	"testing"

	"github.com/mfenderov/songsim/pkg/models"
)

func ops(changes []Change) string {
	var sb strings.Builder
	for _, c := range changes {
		sb.WriteString(c.Op.String())
	}
	return sb.String()
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []string
		wantOps string
	}{
		{"identical", []string{"one", "two"}, []string{"one", "two"}, "  "},
		{"both empty", nil, nil, ""},
		{"all inserted", nil, []string{"one", "two"}, "++"},
		{"all deleted", []string{"one", "two"}, nil, "--"},
		{"middle line changed", []string{"one", "two", "three"}, []string{"one", "too", "three"}, " ~ "},
		{"line appended", []string{"one"}, []string{"one", "two"}, " +"},
		{"line removed", []string{"one", "two", "three"}, []string{"one", "three"}, " - "},
		{"empty lines", []string{"", "x"}, []string{"", "y"}, " ~"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.a, tt.b)
			if ops(got) != tt.wantOps {
				t.Errorf("Diff() ops = %q, want %q (%+v)", ops(got), tt.wantOps, got)
			}
		})
	}
}

func TestDiff_ReconstructsBothSides(t *testing.T) {
	a := []string{"Amazing grace", "how sweet the sound", "that saved a wretch", "like me"}
	b := []string{"Amazing grace", "how sweet a sound", "like me", "I once was lost"}

	var gotA, gotB []string
	for _, c := range Diff(a, b) {
		if c.Op != Insert {
			gotA = append(gotA, c.A)
		}
		if c.Op != Delete {
			gotB = append(gotB, c.B)
		}
	}
	if strings.Join(gotA, "|") != strings.Join(a, "|") {
		t.Errorf("first side = %v, want %v", gotA, a)
	}
	if strings.Join(gotB, "|") != strings.Join(b, "|") {
		t.Errorf("second side = %v, want %v", gotB, b)
	}
}

func TestDiff_ReplacementDistance(t *testing.T) {
	changes := Diff([]string{"kitten"}, []string{"sitting"})
	if len(changes) != 1 || changes[0].Op != Replace {
		t.Fatalf("Diff() = %+v, want a single replacement", changes)
	}
	if want := 3.0 / 7.0; changes[0].Distance != want {
		t.Errorf("Distance = %f, want %f", changes[0].Distance, want)
	}
}

func TestLines(t *testing.T) {
	a := models.NewDocument("a.sng")
	a.LoadLines([]string{"Holy holy holy", "Lord God almighty"})
	b := models.NewDocument("b.sng")
	b.LoadLines([]string{"Holy holy holy", "Lord God Almighty", "Early in the morning"})

	summary := Summarize(Lines(a, b))
	if summary != (Summary{Equal: 1, Replaced: 1, Inserted: 1}) {
		t.Errorf("Summarize() = %+v", summary)
	}
}

func TestFormat(t *testing.T) {
	changes := []Change{
		{Op: Equal, A: "same", B: "same"},
		{Op: Delete, A: "gone"},
		{Op: Insert, B: "new"},
		{Op: Replace, A: "ab", B: "ba", Distance: 1},
	}

	got := Format(changes, true)
	want := "  same\n" +
		"- gone\n" +
		"+ new\n" +
		"- ab\n" +
		"+ ba\n" +
		"    distance 1.000\n" +
		"    common   \"a\"\n"
	if got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}

	if strings.Contains(Format(changes, false), "common") {
		t.Error("Format() without LCS should not show the common subsequence")
	}
}
