// Package osis emits parsed books as OSIS XML and verifies emitted
// documents by re-parsing them.
package osis

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/cedarworks/CedarBible/core/book"
	cerrors "github.com/cedarworks/CedarBible/core/errors"
)

const osisNamespace = "http://www.bibletechnologies.net/2003/OSIS/namespace"

// Emit renders one book as an OSIS XML document.
func Emit(b *book.Book) []byte {
	var buf bytes.Buffer

	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, "<osis xmlns=\"%s\">\n", osisNamespace)
	fmt.Fprintf(&buf, "  <osisText osisIDWork=\"%s\">\n", escape(b.ID))

	buf.WriteString("    <header>\n")
	fmt.Fprintf(&buf, "      <work osisWork=\"%s\">\n", escape(b.ID))
	fmt.Fprintf(&buf, "        <title>%s</title>\n", escape(b.LongName))
	buf.WriteString("      </work>\n")
	buf.WriteString("    </header>\n")

	fmt.Fprintf(&buf, "    <div type=\"book\" osisID=\"%s\">\n", escape(b.ID))
	for _, ch := range b.Chapters {
		fmt.Fprintf(&buf, "      <chapter osisID=\"%s.%d\" n=\"%d\">\n", b.ID, ch.Number, ch.Number)
		for _, cb := range ch.Content {
			writeBlock(&buf, b.ID, ch.Number, cb)
		}
		buf.WriteString("      </chapter>\n")
	}
	buf.WriteString("    </div>\n")
	buf.WriteString("  </osisText>\n")
	buf.WriteString("</osis>\n")

	return buf.Bytes()
}

func writeBlock(buf *bytes.Buffer, bookID string, chapter int, cb *book.ContentBlock) {
	switch cb.Kind {
	case book.BlockVerse:
		fmt.Fprintf(buf, "        <verse osisID=\"%s.%d.%d\" n=\"%d\">", bookID, chapter, cb.VerseNumber, cb.VerseNumber)
		writeItems(buf, bookID, cb.Items)
		buf.WriteString("</verse>\n")

	case book.BlockPoeticLine:
		buf.WriteString("        <l level=\"1\">")
		writeItems(buf, bookID, cb.Items)
		buf.WriteString("</l>\n")

	case book.BlockDescriptiveTitle:
		buf.WriteString("        <title type=\"psalm\" canonical=\"true\">")
		writeItems(buf, bookID, cb.Items)
		buf.WriteString("</title>\n")

	default:
		if cb.Indented {
			buf.WriteString("        <p subType=\"x-indented\">")
		} else {
			buf.WriteString("        <p>")
		}
		writeItems(buf, bookID, cb.Items)
		buf.WriteString("</p>\n")
	}
}

func writeItems(buf *bytes.Buffer, bookID string, items []book.InlineItem) {
	for _, item := range items {
		switch item.Kind {
		case book.InlineItalicText:
			buf.WriteString(`<hi type="italic">`)
			buf.WriteString(escape(item.Text))
			buf.WriteString("</hi>")

		case book.InlineFootnote:
			if item.Footnote != nil {
				writeFootnote(buf, bookID, item.Footnote)
			}

		default:
			buf.WriteString(escape(item.Text))
		}
	}
}

func writeFootnote(buf *bytes.Buffer, bookID string, fn *book.Footnote) {
	buf.WriteString(`<note type="study"`)
	if fn.Symbol != "" {
		fmt.Fprintf(buf, " n=\"%s\"", escape(fn.Symbol))
	}
	if r := fn.Ref(); r != nil {
		fmt.Fprintf(buf, " osisRef=\"%s\"", r.OSISRef(bookID))
	}
	buf.WriteString(">")
	if fn.Reference != "" {
		fmt.Fprintf(buf, "<reference>%s</reference> ", escape(fn.Reference))
	}
	buf.WriteString(escape(fn.Body))
	buf.WriteString("</note>")
}

func escape(s string) string {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return s
	}
	return sb.String()
}

// Stats summarizes the structure of an OSIS document.
type Stats struct {
	Books    int `json:"books"`
	Chapters int `json:"chapters"`
	Verses   int `json:"verses"`
	Notes    int `json:"notes"`
}

// Verify re-parses an emitted OSIS document and counts its structural
// elements, failing on malformed XML.
func Verify(data []byte) (*Stats, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &cerrors.ParseError{Format: "OSIS", Message: err.Error(), Err: err}
	}

	return &Stats{
		Books:    count(doc, "//div[@type='book']"),
		Chapters: count(doc, "//chapter"),
		Verses:   count(doc, "//verse"),
		Notes:    count(doc, "//note"),
	}, nil
}

// count evaluates a count() XPath expression against the document.
func count(doc *xmlquery.Node, query string) int {
	expr := xpath.MustCompile(fmt.Sprintf("count(%s)", query))
	nav := xmlquery.CreateXPathNavigator(doc)
	if n, ok := expr.Evaluate(nav).(float64); ok {
		return int(n)
	}
	return 0
}

// Query returns the nodes matching an XPath expression, for callers
// inspecting emitted documents.
func Query(data []byte, query string) ([]*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &cerrors.ParseError{Format: "OSIS", Message: err.Error(), Err: err}
	}
	return xmlquery.QueryAll(doc, query)
}
