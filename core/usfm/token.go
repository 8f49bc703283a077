// Package usfm implements the line-oriented USFM parsing pipeline: a
// tokenizer splitting one raw line into tag and text tokens, a line
// classifier turning a token sequence into one typed line part, and an
// assembler folding line parts into a book.
package usfm

// TokenKind identifies the kind of a lexical token.
type TokenKind int

// Token kind constants.
const (
	// TokenTag is a backslash-prefixed tag name (e.g., \p, \v).
	TokenTag TokenKind = iota
	// TokenTagEnd is a tag name terminated by an asterisk (e.g., \it*),
	// marking the close of a previously opened tag.
	TokenTagEnd
	// TokenText is a run of plain text between tags.
	TokenText
)

// Token is one lexical unit of a source line. Value holds the tag name
// for tag tokens and the raw text for text tokens.
type Token struct {
	Kind  TokenKind
	Value string
}

// tokenizer sub-states.
const (
	scanIdle = iota
	scanText
	scanTag
)

func isTagBreak(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// Tokenize splits one raw source line into an ordered token sequence.
// A backslash always begins a tag name, flushing whatever was being
// accumulated. Inside a tag name an asterisk closes the tag as a
// TokenTagEnd; whitespace closes it as a plain TokenTag and is
// consumed, so the following text run starts at the next character.
// End of line flushes the pending accumulation. Tokenize never fails;
// an empty line yields no tokens.
func Tokenize(line string) []Token {
	var tokens []Token
	var buf []byte
	state := scanIdle

	flush := func() {
		switch state {
		case scanText:
			tokens = append(tokens, Token{Kind: TokenText, Value: string(buf)})
		case scanTag:
			tokens = append(tokens, Token{Kind: TokenTag, Value: string(buf)})
		}
		buf = buf[:0]
		state = scanIdle
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\':
			flush()
			state = scanTag

		case state == scanTag && c == '*':
			tokens = append(tokens, Token{Kind: TokenTagEnd, Value: string(buf)})
			buf = buf[:0]
			state = scanIdle

		case state == scanTag && isTagBreak(c):
			flush()

		default:
			if state == scanIdle {
				state = scanText
			}
			buf = append(buf, c)
		}
	}

	flush()
	return tokens
}
