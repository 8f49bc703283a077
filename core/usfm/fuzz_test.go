package usfm

import (
	"testing"
)

// FuzzTokenize checks that tokenization never panics and that a line
// without backslashes survives as a single text token.
func FuzzTokenize(f *testing.F) {
	f.Add(`\v 1 In the beginning God created the heaven and the earth.`)
	f.Add(`\f + \fr 1:1 \ft a note\f*`)
	f.Add(`\it*`)
	f.Add(``)
	f.Add(`no tags at all`)
	f.Add("\\toc1\tGenesis")

	f.Fuzz(func(t *testing.T, line string) {
		tokens := Tokenize(line)

		hasBackslash := false
		for i := 0; i < len(line); i++ {
			if line[i] == '\\' {
				hasBackslash = true
				break
			}
		}
		if !hasBackslash {
			switch {
			case len(line) == 0 && len(tokens) != 0:
				t.Errorf("empty line produced tokens: %v", tokens)
			case len(line) > 0 && (len(tokens) != 1 || tokens[0].Kind != TokenText || tokens[0].Value != line):
				t.Errorf("Tokenize(%q) = %v, want single text token", line, tokens)
			}
		}
	})
}

// FuzzParseText checks that the whole pipeline never panics and that
// every input yields a book, however degenerate.
func FuzzParseText(f *testing.F) {
	f.Add(`\id GEN
\h Genesis
\toc1 The First Book of Moses
\toc2 Genesis
\c 1
\p
\v 1 In the beginning God created the heaven and the earth.
`)
	f.Add(`\id PSA
\c 23
\q1 The LORD is my shepherd;
\q1 I shall not want.
\d A Psalm of David.
`)
	f.Add(`\id JHN
\c 3
\v 16 For God so loved the world \f + \fr 3:16 \ft Gk. kosmos\f* that he gave his Son.
`)
	f.Add(`\v 3 He said \it truly\it* amen`)
	f.Add(`\c not-a-number`)
	f.Add(``)

	f.Fuzz(func(t *testing.T, text string) {
		b, diags := ParseText(text)
		if b == nil {
			t.Fatal("ParseText returned nil book")
		}
		for _, ch := range b.Chapters {
			if len(ch.Content) == 0 {
				t.Errorf("assembler emitted an empty chapter: %d", ch.Number)
			}
		}
		for _, d := range diags {
			if d.Line < 1 {
				t.Errorf("diagnostic with invalid line number: %+v", d)
			}
		}
	})
}
