package usfm

import (
	"strings"

	"github.com/cedarworks/CedarBible/core/book"
	cerrors "github.com/cedarworks/CedarBible/core/errors"
)

// parser.go - Per-file orchestration: tokenize and classify every line,
// record a diagnostic for each line that fails, assemble the rest.

// Diagnostic records one line-level parse failure. Failures are
// isolated per line and never abort the file.
type Diagnostic struct {
	// Line is the 1-based line number within the source.
	Line int `json:"line"`

	// Text is the raw offending line.
	Text string `json:"text"`

	// Err is the classification error.
	Err error `json:"-"`

	// Reason is the classification error message, for serialization.
	Reason string `json:"reason"`
}

func (d Diagnostic) Error() string {
	return (&cerrors.ParseError{
		Format:  "USFM",
		Line:    d.Line,
		Message: d.Reason + ": " + strings.TrimSpace(d.Text),
		Err:     d.Err,
	}).Error()
}

// ParseLines runs the full pipeline over one file's lines and returns
// the assembled book together with the diagnostics for every skipped
// line. Blank lines are skipped silently. ParseLines never fails as a
// whole; a file of nothing but malformed lines yields a book with
// sentinel metadata and no chapters.
func ParseLines(lines []string) (*book.Book, []Diagnostic) {
	var parts []*LinePart
	var diags []Diagnostic

	for i, line := range lines {
		tokens := Tokenize(line)
		if len(tokens) == 0 {
			continue
		}
		part, err := Classify(tokens)
		if err != nil {
			diags = append(diags, Diagnostic{
				Line:   i + 1,
				Text:   line,
				Err:    err,
				Reason: err.Error(),
			})
			continue
		}
		parts = append(parts, part)
	}

	return Assemble(parts), diags
}

// ParseText is a convenience wrapper splitting raw text on newlines
// before parsing. Carriage returns are stripped.
func ParseText(text string) (*book.Book, []Diagnostic) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return ParseLines(lines)
}
