package usfm

import (
	"reflect"
	"testing"

	"github.com/cedarworks/CedarBible/core/book"
)

func TestAssembleChapterFolding(t *testing.T) {
	parts := []*LinePart{
		{Kind: PartParaWithText, Text: "intro"},
		{Kind: PartChapterNumber, Number: 1},
		{Kind: PartSimpleVerse, Number: 1, Text: "x"},
		{Kind: PartChapterNumber, Number: 2},
		{Kind: PartSimpleVerse, Number: 1, Text: "y"},
	}

	b := Assemble(parts)
	if len(b.Chapters) != 3 {
		t.Fatalf("got %d chapters, want 3", len(b.Chapters))
	}

	front := b.Chapters[0]
	if front.Number != 0 {
		t.Errorf("front matter chapter number = %d, want 0", front.Number)
	}
	if len(front.Content) != 1 || front.Content[0].Kind != book.BlockPara {
		t.Fatalf("front matter content = %+v", front.Content)
	}
	if got := front.Content[0].FlattenText(); got != "intro" {
		t.Errorf("front matter text = %q, want %q", got, "intro")
	}

	for i, want := range []struct {
		number int
		text   string
	}{{1, "x"}, {2, "y"}} {
		ch := b.Chapters[i+1]
		if ch.Number != want.number {
			t.Errorf("chapter[%d].Number = %d, want %d", i+1, ch.Number, want.number)
		}
		if len(ch.Content) != 1 || ch.Content[0].Kind != book.BlockVerse {
			t.Fatalf("chapter[%d].Content = %+v", i+1, ch.Content)
		}
		if ch.Content[0].VerseNumber != 1 {
			t.Errorf("chapter[%d] verse number = %d, want 1", i+1, ch.Content[0].VerseNumber)
		}
		if got := ch.Content[0].FlattenText(); got != want.text {
			t.Errorf("chapter[%d] verse text = %q, want %q", i+1, got, want.text)
		}
	}
}

func TestAssembleMetadata(t *testing.T) {
	parts := []*LinePart{
		{Kind: PartID, Code: "GEN", Text: "The First Book of Moses"},
		{Kind: PartHeader, Text: "genesis"},
		{Kind: PartToc1, Text: "The First Book of Moses"},
		{Kind: PartToc2, Text: "Genesis"},
		{Kind: PartToc3, Text: "Gen"},
		{Kind: PartMajorTitle, Text: "GENESIS"},
	}

	b := Assemble(parts)
	if b.ID != "GEN" {
		t.Errorf("ID = %q, want GEN", b.ID)
	}
	if b.LongName != "The First Book of Moses" {
		t.Errorf("LongName = %q", b.LongName)
	}
	if b.ShortName != "Genesis" {
		t.Errorf("ShortName = %q", b.ShortName)
	}
	if len(b.Chapters) != 0 {
		t.Errorf("metadata-only input should yield no chapters, got %d", len(b.Chapters))
	}
}

func TestAssembleMetadataLastWriteWins(t *testing.T) {
	parts := []*LinePart{
		{Kind: PartID, Code: "GEN"},
		{Kind: PartID, Code: "EXO"},
	}
	b := Assemble(parts)
	if b.ID != "EXO" {
		t.Errorf("ID = %q, want EXO (last write wins)", b.ID)
	}
}

func TestAssembleMissingMetadataSentinels(t *testing.T) {
	b := Assemble([]*LinePart{{Kind: PartParaWithText, Text: "orphan"}})
	if b.ID != book.MissingField || b.LongName != book.MissingField || b.ShortName != book.MissingField {
		t.Errorf("metadata = %q/%q/%q, want sentinels", b.ID, b.LongName, b.ShortName)
	}
}

func TestAssembleChapterMarkerWithoutContentEmitsNoEmptyChapter(t *testing.T) {
	parts := []*LinePart{
		{Kind: PartID, Code: "GEN"},
		{Kind: PartChapterNumber, Number: 1},
		{Kind: PartChapterNumber, Number: 2},
		{Kind: PartSimpleVerse, Number: 1, Text: "x"},
	}
	b := Assemble(parts)
	if len(b.Chapters) != 1 {
		t.Fatalf("got %d chapters, want 1", len(b.Chapters))
	}
	if b.Chapters[0].Number != 2 {
		t.Errorf("chapter number = %d, want 2", b.Chapters[0].Number)
	}
}

func TestAssembleBlockMapping(t *testing.T) {
	items := []book.InlineItem{
		book.PlainText("He said "),
		book.ItalicText("truly"),
	}
	parts := []*LinePart{
		{Kind: PartChapterNumber, Number: 1},
		{Kind: PartPoeticLineEmpty},
		{Kind: PartPoeticLine, Text: "A line of verse"},
		{Kind: PartParaEmpty},
		{Kind: PartParaIndented, Text: "indented"},
		{Kind: PartDescriptiveTitle, Text: "A Psalm"},
		{Kind: PartComplexVerse, Number: 3, Items: items},
		{Kind: PartComplexPara, Items: items},
		{Kind: PartComplexParaIndented, Items: items},
		{Kind: PartComplexDescriptiveTitle, Items: items},
	}

	b := Assemble(parts)
	if len(b.Chapters) != 1 {
		t.Fatalf("got %d chapters, want 1", len(b.Chapters))
	}
	content := b.Chapters[0].Content
	if len(content) != 9 {
		t.Fatalf("got %d blocks, want 9", len(content))
	}

	if content[0].Kind != book.BlockPoeticLine || len(content[0].Items) != 0 {
		t.Errorf("empty poetic line = %+v", content[0])
	}
	if content[1].Kind != book.BlockPoeticLine || content[1].FlattenText() != "A line of verse" {
		t.Errorf("poetic line = %+v", content[1])
	}
	if content[2].Kind != book.BlockPara || len(content[2].Items) != 0 {
		t.Errorf("empty para = %+v", content[2])
	}
	if content[3].Kind != book.BlockPara || !content[3].Indented {
		t.Errorf("indented para = %+v", content[3])
	}
	if content[4].Kind != book.BlockDescriptiveTitle {
		t.Errorf("descriptive title = %+v", content[4])
	}
	if content[5].Kind != book.BlockVerse || content[5].VerseNumber != 3 {
		t.Errorf("complex verse = %+v", content[5])
	}
	if !reflect.DeepEqual(content[5].Items, items) {
		t.Errorf("complex verse items = %v, want %v", content[5].Items, items)
	}
	if content[6].Kind != book.BlockPara || content[6].Indented {
		t.Errorf("complex para = %+v", content[6])
	}
	if content[7].Kind != book.BlockPara || !content[7].Indented {
		t.Errorf("complex indented para = %+v", content[7])
	}
	if content[8].Kind != book.BlockDescriptiveTitle {
		t.Errorf("complex descriptive title = %+v", content[8])
	}
}

func TestAssembleIdempotence(t *testing.T) {
	parts := []*LinePart{
		{Kind: PartID, Code: "GEN"},
		{Kind: PartChapterNumber, Number: 1},
		{Kind: PartSimpleVerse, Number: 1, Text: "In the beginning"},
	}
	b1 := Assemble(parts)
	b2 := Assemble(parts)
	if !reflect.DeepEqual(b1, b2) {
		t.Error("assembling the same parts twice should be structurally equal")
	}
}
