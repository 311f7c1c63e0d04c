package token

import "testing"

func TestCommandName(t *testing.T) {
	tests := []struct {
		text    string
		name    string
		starred bool
	}{
		{`\cite`, "cite", false},
		{`\cite*`, "cite", true},
		{`\\`, `\`, false},
		{`\*`, "*", false},
	}
	for _, tt := range tests {
		tok := Token{Kind: Command, Text: tt.text}
		if got := tok.CommandName(); got != tt.name {
			t.Errorf("CommandName(%q) = %q, want %q", tt.text, got, tt.name)
		}
		if got := tok.Starred(); got != tt.starred {
			t.Errorf("Starred(%q) = %v, want %v", tt.text, got, tt.starred)
		}
	}
	if (Token{Kind: Word, Text: "cite"}).CommandName() != "" {
		t.Fatal("non-command token returned a name")
	}
}

func TestHasNewlineBefore(t *testing.T) {
	tok := Token{Kind: Word, Leading: []Trivia{{Kind: TriviaSpace}, {Kind: TriviaNewline}}}
	if !tok.HasNewlineBefore() {
		t.Fatal("expected newline in leading trivia")
	}
	if (Token{Kind: Word}).HasNewlineBefore() {
		t.Fatal("unexpected newline")
	}
}

func TestCommandNameWithInlineVerbatim(t *testing.T) {
	tok := Token{Kind: Command, Text: `\verb|a{b|`}
	if tok.CommandName() != "verb" || tok.Starred() {
		t.Fatalf("unexpected name %q", tok.CommandName())
	}
}
