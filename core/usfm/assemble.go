package usfm

import (
	"github.com/cedarworks/CedarBible/core/book"
)

// assemble.go - Folding an ordered sequence of line parts into a book:
// metadata fields plus chapters of content blocks.

// assembler accumulates one in-progress book. It is owned by a single
// Assemble call and never shared.
type assembler struct {
	id        string
	longName  string
	shortName string
	current   int
	content   []*book.ContentBlock
	chapters  []*book.Chapter
}

// Assemble folds line parts into a book. Content before the first
// chapter marker becomes chapter 0 (front matter). Metadata fields are
// last-write-wins; \h and \mt1 are discarded as redundant with the toc
// fields. Fields never set keep the "MISSING" sentinel. A chapter
// marker with no accumulated content emits no empty chapter.
func Assemble(parts []*LinePart) *book.Book {
	a := &assembler{
		id:        book.MissingField,
		longName:  book.MissingField,
		shortName: book.MissingField,
	}
	for _, part := range parts {
		a.add(part)
	}
	return a.finish()
}

func (a *assembler) add(part *LinePart) {
	switch part.Kind {
	case PartID:
		a.id = part.Code
	case PartToc1:
		a.longName = part.Text
	case PartToc2:
		a.shortName = part.Text
	case PartToc3, PartHeader, PartMajorTitle:
		// Toc3 is unused; header and major title duplicate the toc
		// fields with unreliable casing.

	case PartChapterNumber:
		a.flushChapter()
		a.current = part.Number

	default:
		if cb := blockFor(part); cb != nil {
			a.content = append(a.content, cb)
		}
	}
}

// blockFor maps a content line part to its chapter-level block. Simple
// string variants become a one-item plain text sequence.
func blockFor(part *LinePart) *book.ContentBlock {
	switch part.Kind {
	case PartPoeticLineEmpty:
		return &book.ContentBlock{Kind: book.BlockPoeticLine}
	case PartPoeticLine:
		return &book.ContentBlock{Kind: book.BlockPoeticLine, Items: plainItems(part.Text)}
	case PartParaEmpty:
		return &book.ContentBlock{Kind: book.BlockPara}
	case PartParaWithText:
		return &book.ContentBlock{Kind: book.BlockPara, Items: plainItems(part.Text)}
	case PartParaIndented:
		return &book.ContentBlock{Kind: book.BlockPara, Indented: true, Items: plainItems(part.Text)}
	case PartDescriptiveTitle:
		return &book.ContentBlock{Kind: book.BlockDescriptiveTitle, Items: plainItems(part.Text)}
	case PartSimpleVerse:
		return &book.ContentBlock{Kind: book.BlockVerse, VerseNumber: part.Number, Items: plainItems(part.Text)}
	case PartComplexVerse:
		return &book.ContentBlock{Kind: book.BlockVerse, VerseNumber: part.Number, Items: part.Items}
	case PartComplexPara:
		return &book.ContentBlock{Kind: book.BlockPara, Items: part.Items}
	case PartComplexParaIndented:
		return &book.ContentBlock{Kind: book.BlockPara, Indented: true, Items: part.Items}
	case PartComplexDescriptiveTitle:
		return &book.ContentBlock{Kind: book.BlockDescriptiveTitle, Items: part.Items}
	default:
		return nil
	}
}

func plainItems(text string) []book.InlineItem {
	if text == "" {
		return nil
	}
	return []book.InlineItem{book.PlainText(text)}
}

// flushChapter closes out the accumulated content as one chapter.
// Nothing accumulated means nothing emitted.
func (a *assembler) flushChapter() {
	if len(a.content) == 0 {
		return
	}
	a.chapters = append(a.chapters, &book.Chapter{
		Number:  a.current,
		Content: a.content,
	})
	a.content = nil
}

func (a *assembler) finish() *book.Book {
	a.flushChapter()
	return &book.Book{
		ID:        a.id,
		LongName:  a.longName,
		ShortName: a.shortName,
		Chapters:  a.chapters,
	}
}
