// Package book defines the typed document tree produced by parsing one
// USFM source file: a book of chapters, each holding ordered content
// blocks whose text may carry inline rich content (italics, footnotes).
package book

import (
	"strings"

	"github.com/cedarworks/CedarBible/core/ref"
)

// MissingField is the sentinel value for metadata fields never set by
// the source file.
const MissingField = "MISSING"

// BlockKind identifies the kind of a chapter-level content block.
type BlockKind string

// Block kind constants.
const (
	BlockPara             BlockKind = "para"
	BlockPoeticLine       BlockKind = "poetic_line"
	BlockVerse            BlockKind = "verse"
	BlockDescriptiveTitle BlockKind = "descriptive_title"
)

// validBlockKinds is the set of valid block kinds.
var validBlockKinds = map[BlockKind]bool{
	BlockPara:             true,
	BlockPoeticLine:       true,
	BlockVerse:            true,
	BlockDescriptiveTitle: true,
}

// IsValid returns true if the block kind is valid.
func (k BlockKind) IsValid() bool {
	return validBlockKinds[k]
}

// InlineKind identifies the kind of an inline content item.
type InlineKind string

// Inline kind constants.
const (
	InlinePlainText  InlineKind = "text"
	InlineItalicText InlineKind = "italics"
	InlineFootnote   InlineKind = "footnote"
)

// Footnote is an inline annotation with an optional symbol, an optional
// reference locator, and a required body.
type Footnote struct {
	// Symbol is the caller symbol (e.g., "+", "*"), trimmed.
	Symbol string `json:"symbol,omitempty"`

	// Reference is the raw reference locator (e.g., "1:1"), trimmed.
	Reference string `json:"reference,omitempty"`

	// Body is the footnote text. A footnote without a body is malformed
	// and never survives parsing.
	Body string `json:"body"`
}

// Ref returns the structured form of the reference locator, or nil when
// the footnote has no reference or the locator does not parse.
func (f *Footnote) Ref() *ref.Ref {
	if f.Reference == "" {
		return nil
	}
	r, err := ref.Parse(f.Reference)
	if err != nil {
		return nil
	}
	return r
}

// InlineItem is one run of inline content within a block: plain text,
// italicized text, or a footnote.
type InlineItem struct {
	// Kind indicates the item variant.
	Kind InlineKind `json:"kind"`

	// Text is the run text for plain and italic items.
	Text string `json:"text,omitempty"`

	// Footnote holds the footnote payload for footnote items.
	Footnote *Footnote `json:"footnote,omitempty"`
}

// PlainText constructs a plain text inline item.
func PlainText(s string) InlineItem {
	return InlineItem{Kind: InlinePlainText, Text: s}
}

// ItalicText constructs an italicized text inline item.
func ItalicText(s string) InlineItem {
	return InlineItem{Kind: InlineItalicText, Text: s}
}

// FootnoteItem constructs a footnote inline item.
func FootnoteItem(f *Footnote) InlineItem {
	return InlineItem{Kind: InlineFootnote, Footnote: f}
}

// ContentBlock is one chapter-level unit: a paragraph, a poetic line, a
// verse, or a descriptive title. A plain-string block is represented as
// a single plain text inline item; empty paragraph and poetic line
// markers carry no items at all.
type ContentBlock struct {
	// Kind indicates the block variant.
	Kind BlockKind `json:"kind"`

	// Items is the ordered inline content of the block.
	Items []InlineItem `json:"items,omitempty"`

	// Indented is set for indented paragraphs.
	Indented bool `json:"indented,omitempty"`

	// VerseNumber is the verse number for verse blocks.
	VerseNumber int `json:"verse_number,omitempty"`

	// Hash is the SHA-256 hash of the flattened block text.
	Hash string `json:"hash,omitempty"`
}

// FlattenText joins the readable text of the block's inline items.
// Footnote bodies are not part of the running text and are skipped.
func (cb *ContentBlock) FlattenText() string {
	var sb strings.Builder
	for _, item := range cb.Items {
		switch item.Kind {
		case InlinePlainText, InlineItalicText:
			sb.WriteString(item.Text)
		}
	}
	return sb.String()
}

// Footnotes returns the footnotes carried by the block, in order.
func (cb *ContentBlock) Footnotes() []*Footnote {
	var notes []*Footnote
	for _, item := range cb.Items {
		if item.Kind == InlineFootnote && item.Footnote != nil {
			notes = append(notes, item.Footnote)
		}
	}
	return notes
}

// Chapter holds the ordered content blocks of one chapter. Chapter 0 is
// front matter appearing before the first explicit chapter marker.
type Chapter struct {
	// Number is the chapter number as encountered in the source. The
	// assembler preserves encounter order and does not validate numbering.
	Number int `json:"number"`

	// Content is the ordered sequence of blocks in this chapter.
	Content []*ContentBlock `json:"content,omitempty"`
}

// Book is the typed result of parsing one USFM source file. It is built
// once per file and not mutated afterwards.
type Book struct {
	// ID is the book identifier from the \id line (e.g., "GEN").
	ID string `json:"id"`

	// LongName is the full book name from \toc1.
	LongName string `json:"long_name"`

	// ShortName is the short book name from \toc2.
	ShortName string `json:"short_name"`

	// Chapters are ordered by encounter, not by numeric value.
	Chapters []*Chapter `json:"chapters,omitempty"`
}

// VerseCount returns the total number of verse blocks across all chapters.
func (b *Book) VerseCount() int {
	n := 0
	for _, ch := range b.Chapters {
		for _, cb := range ch.Content {
			if cb.Kind == BlockVerse {
				n++
			}
		}
	}
	return n
}
