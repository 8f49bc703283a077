package usfm

import (
	"fmt"
	"strings"

	"github.com/cedarworks/CedarBible/core/book"
)

// inline.go - State machine for rich inline content: plain text runs,
// italic spans, and footnotes with symbol/reference/body sections.

// inlineState enumerates the positions of the inline parser.
type inlineState int

const (
	// stateNormal is plain running text between inline constructs.
	stateNormal inlineState = iota
	// stateItalic is inside an open \it ... \it* span.
	stateItalic
	// stateFnSymbol is immediately after \f, expecting the caller symbol.
	stateFnSymbol
	// stateFnAwait is after the symbol, before \fr or \ft selects a section.
	stateFnAwait
	// stateFnReference is inside the \fr reference section.
	stateFnReference
	// stateFnBody is inside the \ft body section.
	stateFnBody
)

func (s inlineState) String() string {
	switch s {
	case stateNormal:
		return "normal"
	case stateItalic:
		return "italics"
	case stateFnSymbol:
		return "footnote symbol"
	case stateFnAwait:
		return "footnote"
	case stateFnReference:
		return "footnote reference"
	case stateFnBody:
		return "footnote body"
	default:
		return "unknown"
	}
}

// footnoteAccum builds up one footnote across tokens. It is owned by a
// single parseInline call and reset on every \f.
type footnoteAccum struct {
	symbol    string
	reference strings.Builder
	body      strings.Builder
}

func (a *footnoteAccum) reset() {
	a.symbol = ""
	a.reference.Reset()
	a.body.Reset()
}

// close finalizes the accumulated footnote. The body is required; the
// symbol and reference are optional and trimmed.
func (a *footnoteAccum) close() (*book.Footnote, error) {
	body := strings.TrimSpace(a.body.String())
	if body == "" {
		return nil, fmt.Errorf("footnote closed without a body")
	}
	return &book.Footnote{
		Symbol:    a.symbol,
		Reference: strings.TrimSpace(a.reference.String()),
		Body:      body,
	}, nil
}

// skippedInFootnote reports tags that are recognized inside footnote
// sections but deliberately not captured as separate items: their
// enclosed text merges into whichever section is open.
func skippedInFootnote(name string) bool {
	return name == "xt" || name == "it" || name == "+it"
}

// parseInline walks a token sequence and produces the ordered inline
// items it encodes. It fails on any tag the state machine does not
// recognize in its current state, and on a sequence that ends inside an
// unterminated italic span or footnote.
func parseInline(tokens []Token) ([]book.InlineItem, error) {
	var items []book.InlineItem
	var accum footnoteAccum
	state := stateNormal

	for _, tok := range tokens {
		switch state {
		case stateNormal:
			switch {
			case tok.Kind == TokenText:
				items = append(items, book.PlainText(tok.Value))
			case tok.Kind == TokenTag && tok.Value == "it":
				state = stateItalic
			case tok.Kind == TokenTag && tok.Value == "f":
				accum.reset()
				state = stateFnSymbol
			default:
				return nil, unexpectedToken(tok, state)
			}

		case stateItalic:
			switch {
			case tok.Kind == TokenText:
				items = append(items, book.ItalicText(tok.Value))
			case tok.Kind == TokenTagEnd && tok.Value == "it":
				state = stateNormal
			default:
				return nil, unexpectedToken(tok, state)
			}

		case stateFnSymbol:
			if tok.Kind != TokenText {
				return nil, unexpectedToken(tok, state)
			}
			accum.symbol = strings.TrimSpace(tok.Value)
			state = stateFnAwait

		case stateFnAwait:
			switch {
			case tok.Kind == TokenText:
				// Lenient: text before any section marker counts as body.
				accum.body.WriteString(tok.Value)
			case tok.Kind == TokenTag && tok.Value == "fr":
				state = stateFnReference
			case tok.Kind == TokenTag && tok.Value == "ft":
				state = stateFnBody
			case tok.Kind == TokenTagEnd && tok.Value == "f":
				fn, err := accum.close()
				if err != nil {
					return nil, err
				}
				items = append(items, book.FootnoteItem(fn))
				state = stateNormal
			default:
				return nil, unexpectedToken(tok, state)
			}

		case stateFnReference:
			switch {
			case tok.Kind == TokenText:
				accum.reference.WriteString(tok.Value)
			case tok.Kind == TokenTag && tok.Value == "fr":
				// Repeated \fr stays in the reference section.
			case tok.Kind == TokenTag && tok.Value == "ft":
				state = stateFnBody
			case skippedInFootnote(tok.Value):
				// Recognized but not captured; enclosed text merges into
				// the reference.
			case tok.Kind == TokenTagEnd && tok.Value == "f":
				fn, err := accum.close()
				if err != nil {
					return nil, err
				}
				items = append(items, book.FootnoteItem(fn))
				state = stateNormal
			default:
				return nil, unexpectedToken(tok, state)
			}

		case stateFnBody:
			switch {
			case tok.Kind == TokenText:
				accum.body.WriteString(tok.Value)
			case tok.Kind == TokenTag && tok.Value == "fr":
				state = stateFnReference
			case skippedInFootnote(tok.Value):
				// Recognized but not captured; enclosed text merges into
				// the body.
			case tok.Kind == TokenTagEnd && tok.Value == "f":
				fn, err := accum.close()
				if err != nil {
					return nil, err
				}
				items = append(items, book.FootnoteItem(fn))
				state = stateNormal
			default:
				return nil, unexpectedToken(tok, state)
			}
		}
	}

	if state != stateNormal {
		return nil, fmt.Errorf("unterminated %s at end of line", state)
	}
	return items, nil
}

func unexpectedToken(tok Token, state inlineState) error {
	switch tok.Kind {
	case TokenTag:
		return fmt.Errorf("unexpected tag \\%s in %s", tok.Value, state)
	case TokenTagEnd:
		return fmt.Errorf("unexpected closing tag \\%s* in %s", tok.Value, state)
	default:
		return fmt.Errorf("unexpected text in %s", state)
	}
}
