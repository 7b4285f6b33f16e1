package profanity

import (
	"testing"
)

func TestCompileMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		word  string
		input string
		want  bool
	}{
		{name: "exact word", word: "conne", input: "conne", want: true},
		{name: "uppercase input", word: "conne", input: "CONNE", want: true},
		{name: "mixed case input", word: "conne", input: "CoNnE", want: true},
		{name: "digit substitution", word: "conne", input: "c0nne", want: true},
		{name: "accent substitution", word: "conne", input: "cònne", want: true},
		{name: "at-sign substitution", word: "salaud", input: "s@laud", want: true},
		{name: "masked letter", word: "conne", input: "c*nne", want: true},
		{name: "x masked letter", word: "conne", input: "cxnnex", want: true},
		{name: "spaced out letters", word: "conne", input: "c o n n e", want: true},
		{name: "dot separated", word: "conne", input: "c.o.n.n.e", want: true},
		{name: "star separated", word: "conne", input: "c*o*n*n*e", want: true},
		{name: "underscore separated", word: "conne", input: "c_o_n_n_e", want: true},
		{name: "hyphen separated", word: "conne", input: "c-o-n-n-e", want: true},
		{name: "embedded in sentence", word: "conne", input: "quelle conne celle-la", want: true},
		{name: "trailing x padding", word: "conne", input: "connex", want: true},
		{name: "word extended by letter", word: "conne", input: "conner", want: false},
		{name: "word inside longer word", word: "conne", input: "economne", want: false},
		{name: "leading letter attached", word: "conne", input: "aconne", want: false},
		{name: "unrelated text", word: "conne", input: "bonjour tout le monde", want: false},
		{name: "empty input", word: "conne", input: "", want: false},
		{name: "phrase with literal space", word: "fils de pute", input: "fils de pute", want: true},
		{name: "phrase with extra spaces", word: "fils de pute", input: "fils   de   pute", want: true},
		{name: "phrase missing space", word: "fils de pute", input: "filsdepute", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			re, err := Compile(tt.word)
			if err != nil {
				t.Fatalf("Compile(%q) returned error: %v", tt.word, err)
			}
			if got := re.MatchString(tt.input); got != tt.want {
				t.Errorf("Compile(%q).MatchString(%q) = %v, want %v", tt.word, tt.input, got, tt.want)
			}
		})
	}
}

func TestCompileEmptyWord(t *testing.T) {
	t.Parallel()

	for _, word := range []string{"", "   ", "\t"} {
		if _, err := Compile(word); err == nil {
			t.Errorf("Compile(%q) expected error, got nil", word)
		}
	}
}

func TestCompileMetacharactersLiteral(t *testing.T) {
	t.Parallel()

	re, err := Compile("a+b")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if !re.MatchString("a+b") {
		t.Error("expected literal plus to match itself")
	}
	if re.MatchString("aab") {
		t.Error("plus must not act as a repetition operator")
	}
}

func TestCompileMatchOffsets(t *testing.T) {
	t.Parallel()

	re, err := Compile("conne")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	input := "grosse c0nne voila"
	loc := re.FindStringIndex(input)
	if loc == nil {
		t.Fatalf("expected a match in %q", input)
	}
	if loc[0] != 7 {
		t.Errorf("match start = %d, want 7", loc[0])
	}
	if got := input[loc[0]:loc[1]]; got != "c0nne" {
		t.Errorf("matched text = %q, want %q", got, "c0nne")
	}
}
