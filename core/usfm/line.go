package usfm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cedarworks/CedarBible/core/book"
)

// line.go - Classification of one line's token sequence into a typed
// line part. Three rules are tried in fixed priority order: the simple
// tag-plus-plain-text shape, the simple numbered-verse shape, and the
// general rich-content shape.

// PartKind identifies the variant of a classified line part.
type PartKind string

// Part kind constants.
const (
	// Metadata variants.
	PartID         PartKind = "id"
	PartHeader     PartKind = "header"
	PartToc1       PartKind = "toc1"
	PartToc2       PartKind = "toc2"
	PartToc3       PartKind = "toc3"
	PartMajorTitle PartKind = "major_title"

	// Content variants.
	PartPoeticLineEmpty         PartKind = "poetic_line_empty"
	PartPoeticLine              PartKind = "poetic_line"
	PartParaEmpty               PartKind = "para_empty"
	PartParaWithText            PartKind = "para_with_text"
	PartParaIndented            PartKind = "para_indented"
	PartDescriptiveTitle        PartKind = "descriptive_title"
	PartChapterNumber           PartKind = "chapter_number"
	PartSimpleVerse             PartKind = "simple_verse"
	PartComplexVerse            PartKind = "complex_verse"
	PartComplexPara             PartKind = "complex_para"
	PartComplexParaIndented     PartKind = "complex_para_indented"
	PartComplexDescriptiveTitle PartKind = "complex_descriptive_title"
)

// LinePart is the single typed result of classifying one source line.
// Which fields are meaningful depends on Kind: Code and Text for \id
// lines, Text for the simple string variants, Number for chapter and
// verse numbers, Items for the complex variants.
type LinePart struct {
	Kind   PartKind
	Code   string
	Text   string
	Number int
	Items  []book.InlineItem
}

// Classify interprets one line's token sequence as a typed line part.
// The first token must be a plain tag; a line opening with text or a
// closing tag never classifies. The rules are attempted in priority
// order and the first success wins; if none succeeds the line is a
// parse failure carrying the rich-content rule's error, the most
// specific reason available.
func Classify(tokens []Token) (*LinePart, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty line")
	}
	first := tokens[0]
	if first.Kind != TokenTag {
		return nil, fmt.Errorf("line does not begin with a tag")
	}
	tag := first.Value
	rest := tokens[1:]

	if part, ok := classifySimple(tag, rest); ok {
		return part, nil
	}
	if part, ok := classifySimpleVerse(tag, rest); ok {
		return part, nil
	}
	part, err := classifyRich(tag, rest)
	if err != nil {
		return nil, err
	}
	return part, nil
}

// simpleKinds maps tag names to the line part kinds of their
// tag-plus-plain-text shape.
var simpleKinds = map[string]PartKind{
	"p":    PartParaWithText,
	"q1":   PartPoeticLine,
	"pi1":  PartParaIndented,
	"d":    PartDescriptiveTitle,
	"h":    PartHeader,
	"toc1": PartToc1,
	"toc2": PartToc2,
	"toc3": PartToc3,
	"mt1":  PartMajorTitle,
}

// emptyKinds maps tag names allowed to stand alone on a line.
var emptyKinds = map[string]PartKind{
	"p":   PartParaEmpty,
	"pi1": PartParaIndented,
	"q1":  PartPoeticLineEmpty,
}

// classifySimple handles lines whose remaining tokens are all plain
// text (possibly none). A remainder mixing text and tag tokens is not
// this rule's business and falls through to the rich-content rule.
func classifySimple(tag string, rest []Token) (*LinePart, bool) {
	if len(rest) == 0 {
		kind, ok := emptyKinds[tag]
		if !ok {
			return nil, false
		}
		return &LinePart{Kind: kind}, true
	}

	var sb strings.Builder
	for _, tok := range rest {
		if tok.Kind != TokenText {
			return nil, false
		}
		sb.WriteString(tok.Value)
	}
	text := strings.TrimSpace(sb.String())

	switch tag {
	case "c":
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, false
		}
		return &LinePart{Kind: PartChapterNumber, Number: n}, true
	case "id":
		code, desc, _ := strings.Cut(text, " ")
		if code == "" {
			return nil, false
		}
		return &LinePart{Kind: PartID, Code: code, Text: desc}, true
	default:
		kind, ok := simpleKinds[tag]
		if !ok {
			return nil, false
		}
		return &LinePart{Kind: kind, Text: text}, true
	}
}

// splitVerseHead splits "12 In the beginning" (after discarding leading
// whitespace) into the verse number and the verse text. Both parts must
// be non-empty and the first must be an integer.
func splitVerseHead(s string) (int, string, bool) {
	s = strings.TrimLeft(s, " \t")
	numText, rest, found := strings.Cut(s, " ")
	if !found || numText == "" || rest == "" {
		return 0, "", false
	}
	n, err := strconv.Atoi(numText)
	if err != nil {
		return 0, "", false
	}
	return n, rest, true
}

// classifySimpleVerse handles \v lines whose remainder is exactly one
// text token of the "number space text" shape.
func classifySimpleVerse(tag string, rest []Token) (*LinePart, bool) {
	if tag != "v" || len(rest) != 1 || rest[0].Kind != TokenText {
		return nil, false
	}
	n, text, ok := splitVerseHead(rest[0].Value)
	if !ok {
		return nil, false
	}
	return &LinePart{Kind: PartSimpleVerse, Number: n, Text: text}, true
}

// richKinds maps tag names to the complex line part kinds their inline
// content is wrapped in.
var richKinds = map[string]PartKind{
	"p":   PartComplexPara,
	"pi1": PartComplexParaIndented,
	"d":   PartComplexDescriptiveTitle,
}

// classifyRich handles lines with inline rich content. Verses
// additionally require their first inline item to be plain text opening
// with the verse number, which is stripped from the item.
func classifyRich(tag string, rest []Token) (*LinePart, error) {
	items, err := parseInline(rest)
	if err != nil {
		return nil, err
	}

	if tag == "v" {
		if len(items) == 0 || items[0].Kind != book.InlinePlainText {
			return nil, fmt.Errorf("verse does not open with plain text")
		}
		n, text, ok := splitVerseHead(items[0].Text)
		if !ok {
			return nil, fmt.Errorf("verse does not open with a number")
		}
		items[0].Text = text
		return &LinePart{Kind: PartComplexVerse, Number: n, Items: items}, nil
	}

	kind, ok := richKinds[tag]
	if !ok {
		return nil, fmt.Errorf("tag \\%s does not take rich content", tag)
	}
	return &LinePart{Kind: kind, Items: items}, nil
}
