package chktex

import (
	"context"
	"errors"
	"slices"
	"testing"

	"quill/internal/diag"
	"quill/internal/source"
)

func TestParse(t *testing.T) {
	out := "3:5:1:Warning:1:Command terminated with space.\n" +
		"10:1:2:Error:17:Number of `(' doesn't match the number of `)'!\n" +
		"garbage line\n" +
		"7:2:0:Message:30:Multiple spaces detected in output: yes\n"
	got := Parse(out, nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d: %+v", len(got), got)
	}

	first := got[0]
	wantRange := source.Range{
		Start: source.Position{Line: 2, Character: 4},
		End:   source.Position{Line: 2, Character: 5},
	}
	if first.Range != wantRange || first.Severity != diag.SevWarning || first.External != "1" {
		t.Fatalf("unexpected first diagnostic: %+v", first)
	}
	if first.Origin() != diag.OriginChktex {
		t.Fatalf("expected chktex origin, got %s", first.Origin())
	}
	if got[1].Severity != diag.SevError || got[1].CodeID() != "17" {
		t.Fatalf("unexpected error diagnostic: %+v", got[1])
	}
	if got[2].Severity != diag.SevInfo || got[2].Message != "Multiple spaces detected in output: yes" {
		t.Fatalf("message with colon not preserved: %+v", got[2])
	}
}

func TestParseCountsUTF16(t *testing.T) {
	file := source.NewFile("main.tex", []byte("plain\n\u00e9\U0001F600\\LaTeX is fun\n"))
	cases := []struct {
		name string
		out  string
		want source.Range
	}{
		{
			name: "multibyte prefix",
			out:  "2:7:6:Warning:1:Command terminated with space.\n",
			want: source.Range{
				Start: source.Position{Line: 1, Character: 3},
				End:   source.Position{Line: 1, Character: 9},
			},
		},
		{
			name: "length past line end",
			out:  "1:4:10:Warning:1:Command terminated with space.\n",
			want: source.Range{
				Start: source.Position{Line: 0, Character: 3},
				End:   source.Position{Line: 0, Character: 5},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.out, file)
			if len(got) != 1 || got[0].Range != tc.want {
				t.Fatalf("expected range %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	r := Runner{Args: []string{"-n1"}}
	got := r.Command()
	want := []string{"chktex", "-I0", "-f" + Format, "-n1"}
	if !slices.Equal(got, want) {
		t.Fatalf("command = %q, want %q", got, want)
	}
}

func TestRunMissingExecutable(t *testing.T) {
	r := Runner{Executable: "quill-no-such-chktex"}
	_, err := r.Run(context.Background(), t.TempDir(), "")
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled, got %v", err)
	}
}
