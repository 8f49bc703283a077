// Package ref parses the chapter:verse locators carried by footnote
// reference fields (e.g. "1:1", "3:16-18", "119:105a").
package ref

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Ref represents a structured verse locator within one book.
type Ref struct {
	// Chapter is the chapter number (1-indexed).
	Chapter int `json:"chapter"`

	// Verse is the verse number (1-indexed, 0 for whole-chapter references).
	Verse int `json:"verse,omitempty"`

	// VerseEnd is the ending verse for ranges (optional).
	VerseEnd int `json:"verse_end,omitempty"`

	// SubVerse is the verse subdivision (e.g., "a", "b").
	SubVerse string `json:"sub_verse,omitempty"`

	// Raw is the original reference string as it appeared in the source.
	Raw string `json:"raw,omitempty"`
}

// refGrammar is the participle grammar for footnote verse locators.
// Examples: "1", "1:1", "1:1a", "3:16-18"
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	Chapter  int        `@Int`
	VerseRef *versePart `( ":" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versePart struct {
	Verse    int     `@Int`
	SubVerse *string `@SubVerse?`
	Range    *int    `( "-" @Int )?`
}

// refLexer defines the lexer for verse locators.
var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "SubVerse", Pattern: `[a-z]`}, // Single lowercase letter for sub-verse
	{Name: "Punct", Pattern: `[:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// refParser is the participle parser for verse locators.
var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a chapter:verse locator string.
// Supported formats:
//   - "1" (chapter only)
//   - "1:1" (chapter and verse)
//   - "1:1a" (with sub-verse)
//   - "3:16-18" (verse range)
func Parse(s string) (*Ref, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid reference format: %q: %w", s, err)
	}

	ref := &Ref{
		Chapter: parsed.Chapter,
		Raw:     raw,
	}

	if parsed.VerseRef != nil {
		ref.Verse = parsed.VerseRef.Verse
		if parsed.VerseRef.SubVerse != nil {
			ref.SubVerse = *parsed.VerseRef.SubVerse
		}
		if parsed.VerseRef.Range != nil {
			ref.VerseEnd = *parsed.VerseRef.Range
		}
	}

	return ref, nil
}

// OSISRef renders the locator as an OSIS reference within the given book
// (e.g. "Gen.1.1" or "Matt.5.3-Matt.5.12" for ranges).
func (r *Ref) OSISRef(bookID string) string {
	if r.Verse == 0 {
		return fmt.Sprintf("%s.%d", bookID, r.Chapter)
	}
	base := fmt.Sprintf("%s.%d.%d", bookID, r.Chapter, r.Verse)
	if r.VerseEnd > 0 {
		return fmt.Sprintf("%s-%s.%d.%d", base, bookID, r.Chapter, r.VerseEnd)
	}
	return base
}

// IsRange reports whether the locator spans more than one verse.
func (r *Ref) IsRange() bool {
	return r.VerseEnd > 0 && r.VerseEnd != r.Verse
}

// String renders the locator in its canonical chapter:verse form.
func (r *Ref) String() string {
	if r.Verse == 0 {
		return fmt.Sprintf("%d", r.Chapter)
	}
	s := fmt.Sprintf("%d:%d%s", r.Chapter, r.Verse, r.SubVerse)
	if r.VerseEnd > 0 {
		s += fmt.Sprintf("-%d", r.VerseEnd)
	}
	return s
}
