package usfm

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []Token
	}{
		{
			name: "empty line",
			line: "",
			want: nil,
		},
		{
			name: "plain text only",
			line: "In the beginning",
			want: []Token{{TokenText, "In the beginning"}},
		},
		{
			name: "whitespace ending a tag is consumed",
			line: `\tag text`,
			want: []Token{{TokenTag, "tag"}, {TokenText, "text"}},
		},
		{
			name: "only the tag-breaking whitespace is consumed",
			line: `\tag  text`,
			want: []Token{{TokenTag, "tag"}, {TokenText, " text"}},
		},
		{
			name: "trailing whitespace after a bare tag yields no text token",
			line: `\p `,
			want: []Token{{TokenTag, "p"}},
		},
		{
			name: "closing tag",
			line: `\tag*`,
			want: []Token{{TokenTagEnd, "tag"}},
		},
		{
			name: "bare tag at end of line",
			line: `\p`,
			want: []Token{{TokenTag, "p"}},
		},
		{
			name: "italic span",
			line: `\v 3 He said \it truly\it* amen`,
			want: []Token{
				{TokenTag, "v"},
				{TokenText, "3 He said "},
				{TokenTag, "it"},
				{TokenText, "truly"},
				{TokenTagEnd, "it"},
				{TokenText, " amen"},
			},
		},
		{
			name: "footnote tags",
			line: `\f + \fr 1:1 \ft a note\f*`,
			want: []Token{
				{TokenTag, "f"},
				{TokenText, "+ "},
				{TokenTag, "fr"},
				{TokenText, "1:1 "},
				{TokenTag, "ft"},
				{TokenText, "a note"},
				{TokenTagEnd, "f"},
			},
		},
		{
			name: "tab ends a tag name",
			line: "\\toc1\tGenesis",
			want: []Token{{TokenTag, "toc1"}, {TokenText, "Genesis"}},
		},
		{
			name: "text resumes after closing tag",
			line: `\it*?`,
			want: []Token{{TokenTagEnd, "it"}, {TokenText, "?"}},
		},
		{
			name: "backslash inside text starts a new tag",
			line: `one\two`,
			want: []Token{{TokenText, "one"}, {TokenTag, "two"}},
		},
		{
			name: "plus-prefixed nested tag",
			line: `\+it word\+it*`,
			want: []Token{
				{TokenTag, "+it"},
				{TokenText, "word"},
				{TokenTagEnd, "+it"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestTokenizeNoBackslashIsOneTextToken(t *testing.T) {
	lines := []string{"a", "  leading space", "trailing space  ", "1:1 * punctuation?"}
	for _, line := range lines {
		got := Tokenize(line)
		if len(got) != 1 || got[0].Kind != TokenText || got[0].Value != line {
			t.Errorf("Tokenize(%q) = %v, want single text token", line, got)
		}
	}
}
