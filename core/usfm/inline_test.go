package usfm

import (
	"reflect"
	"testing"

	"github.com/cedarworks/CedarBible/core/book"
)

func TestParseInlinePlainAndItalic(t *testing.T) {
	tokens := Tokenize(` 3 He said \it truly\it* amen`)
	items, err := parseInline(tokens)
	if err != nil {
		t.Fatalf("parseInline failed: %v", err)
	}

	want := []book.InlineItem{
		book.PlainText(" 3 He said "),
		book.ItalicText("truly"),
		book.PlainText(" amen"),
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("parseInline() = %v, want %v", items, want)
	}
}

func TestParseInlineFootnote(t *testing.T) {
	tokens := Tokenize(`before \f + \fr 1:1 \ft a note\f* after`)
	items, err := parseInline(tokens)
	if err != nil {
		t.Fatalf("parseInline failed: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("got %d items, want 3: %v", len(items), items)
	}
	if items[0].Kind != book.InlinePlainText || items[0].Text != "before " {
		t.Errorf("items[0] = %v, want plain %q", items[0], "before ")
	}
	fn := items[1].Footnote
	if items[1].Kind != book.InlineFootnote || fn == nil {
		t.Fatalf("items[1] = %v, want footnote", items[1])
	}
	if fn.Symbol != "+" {
		t.Errorf("Symbol = %q, want %q", fn.Symbol, "+")
	}
	if fn.Reference != "1:1" {
		t.Errorf("Reference = %q, want %q", fn.Reference, "1:1")
	}
	if fn.Body != "a note" {
		t.Errorf("Body = %q, want %q", fn.Body, "a note")
	}
	if items[2].Kind != book.InlinePlainText || items[2].Text != " after" {
		t.Errorf("items[2] = %v, want plain %q", items[2], " after")
	}
}

func TestParseInlineFootnoteWithoutReference(t *testing.T) {
	tokens := Tokenize(`\f + \ft only a body\f*`)
	items, err := parseInline(tokens)
	if err != nil {
		t.Fatalf("parseInline failed: %v", err)
	}
	if len(items) != 1 || items[0].Footnote == nil {
		t.Fatalf("items = %v, want one footnote", items)
	}
	fn := items[0].Footnote
	if fn.Reference != "" || fn.Body != "only a body" {
		t.Errorf("footnote = %+v", fn)
	}
}

func TestParseInlineFootnoteBodyBeforeSectionMarker(t *testing.T) {
	// Text reaching the awaiting-section state before any \fr/\ft marker
	// counts as body. The tokenizer never emits adjacent text tokens, so
	// the sequence is built by hand.
	tokens := []Token{
		{TokenTag, "f"},
		{TokenText, " + "},
		{TokenText, "a bare note"},
		{TokenTagEnd, "f"},
	}
	items, err := parseInline(tokens)
	if err != nil {
		t.Fatalf("parseInline failed: %v", err)
	}
	if len(items) != 1 || items[0].Footnote == nil {
		t.Fatalf("items = %v, want one footnote", items)
	}
	if got := items[0].Footnote.Body; got != "a bare note" {
		t.Errorf("Body = %q, want %q", got, "a bare note")
	}
}

func TestParseInlineWholeTextBecomesSymbol(t *testing.T) {
	// A footnote whose single text token runs to the closing marker
	// captures everything as the symbol, leaving no body.
	tokens := Tokenize(`\f + a bare note\f*`)
	if _, err := parseInline(tokens); err == nil {
		t.Error("footnote with no body after symbol capture should fail")
	}
}

func TestParseInlineFootnoteWithoutBodyFails(t *testing.T) {
	tokens := Tokenize(`\f + \fr 1:1\f*`)
	if _, err := parseInline(tokens); err == nil {
		t.Error("footnote without body should fail")
	}
}

func TestParseInlineNestedTagsMergeIntoOpenField(t *testing.T) {
	// \xt and italics inside a footnote are consumed without producing
	// items; their text merges into the open section.
	tokens := Tokenize(`\f + \fr 1:1 \ft see \xt Gen 2:4\xt* and \it more\it* text\f*`)
	items, err := parseInline(tokens)
	if err != nil {
		t.Fatalf("parseInline failed: %v", err)
	}
	if len(items) != 1 || items[0].Footnote == nil {
		t.Fatalf("items = %v, want one footnote", items)
	}
	want := "see Gen 2:4 and more text"
	if got := items[0].Footnote.Body; got != want {
		t.Errorf("Body = %q, want %q", got, want)
	}
}

func TestParseInlineRepeatedReferenceMarker(t *testing.T) {
	tokens := Tokenize(`\f + \fr 1:1 \fr 1:2 \ft note\f*`)
	items, err := parseInline(tokens)
	if err != nil {
		t.Fatalf("parseInline failed: %v", err)
	}
	if got := items[0].Footnote.Reference; got != "1:1 1:2" {
		t.Errorf("Reference = %q, want %q", got, "1:1 1:2")
	}
}

func TestParseInlineFailures(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unterminated italic", `\it never closed`},
		{"unterminated footnote", `\f + \ft body with no close`},
		{"stray closing tag", `text \it* more`},
		{"unknown tag in normal state", `text \bd bold\bd*`},
		{"tag inside italic", `\it one \f two\it*`},
		{"unknown tag in footnote body", `\f + \ft body \bd x\f*`},
		{"footnote closed in symbol state", `\f\f*`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseInline(Tokenize(tt.line)); err == nil {
				t.Errorf("parseInline(%q) expected error", tt.line)
			}
		})
	}
}
