package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// TokenType classifies a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenComment
	TokenKeyword // obj, endobj, stream, R, content operators
	TokenInteger
	TokenReal
	TokenString    // (literal), value is unescaped
	TokenHexString // <hex>, value holds the digits only
	TokenName      // /Name, value is #-decoded without the slash
	TokenArrayStart
	TokenArrayEnd
	TokenDictStart
	TokenDictEnd
)

// Token is one lexical unit of PDF syntax.
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int64
}

func (t *Token) is(typ TokenType, value string) bool {
	return t != nil && t.Type == typ && string(t.Value) == value
}

// Lexer splits PDF syntax into tokens.
type Lexer struct {
	r   *bufio.Reader
	pos int64
}

// NewLexer returns a lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r)}
}

// Pos returns the number of bytes consumed so far.
func (l *Lexer) Pos() int64 { return l.pos }

// NextToken returns the next token, or a TokenEOF token at end of input.
func (l *Lexer) NextToken() (*Token, error) {
	if err := l.skipSpace(); err != nil && err != io.EOF {
		return nil, err
	}
	c, err := l.peek()
	if err == io.EOF {
		return &Token{Type: TokenEOF, Pos: l.pos}, nil
	}
	if err != nil {
		return nil, err
	}

	start := l.pos
	switch c {
	case '%':
		return l.readComment()
	case '(':
		return l.readLiteral()
	case '[':
		l.readByte()
		return &Token{Type: TokenArrayStart, Value: []byte("["), Pos: start}, nil
	case ']':
		l.readByte()
		return &Token{Type: TokenArrayEnd, Value: []byte("]"), Pos: start}, nil
	case '{', '}':
		// PostScript calculator braces, only seen in function streams.
		l.readByte()
		return &Token{Type: TokenKeyword, Value: []byte{c}, Pos: start}, nil
	case '<':
		if next, _ := l.r.Peek(2); len(next) == 2 && next[1] == '<' {
			l.discard(2)
			return &Token{Type: TokenDictStart, Value: []byte("<<"), Pos: start}, nil
		}
		return l.readHex()
	case '>':
		if next, _ := l.r.Peek(2); len(next) == 2 && next[1] == '>' {
			l.discard(2)
			return &Token{Type: TokenDictEnd, Value: []byte(">>"), Pos: start}, nil
		}
		return nil, fmt.Errorf("unexpected '>' at offset %d", start)
	case '/':
		return l.readName()
	case ')':
		return nil, fmt.Errorf("unbalanced ')' at offset %d", start)
	}
	return l.readRegular()
}

func (l *Lexer) readByte() (byte, error) {
	c, err := l.r.ReadByte()
	if err == nil {
		l.pos++
	}
	return c, err
}

func (l *Lexer) peek() (byte, error) {
	b, err := l.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (l *Lexer) discard(n int) {
	m, _ := l.r.Discard(n)
	l.pos += int64(m)
}

func (l *Lexer) skipSpace() error {
	for {
		c, err := l.peek()
		if err != nil {
			return err
		}
		if !IsSpace(c) {
			return nil
		}
		l.readByte()
	}
}

func (l *Lexer) readComment() (*Token, error) {
	start := l.pos
	l.readByte()
	var buf bytes.Buffer
	for {
		c, err := l.peek()
		if err != nil || c == '\r' || c == '\n' {
			break
		}
		l.readByte()
		buf.WriteByte(c)
	}
	return &Token{Type: TokenComment, Value: buf.Bytes(), Pos: start}, nil
}

func (l *Lexer) readLiteral() (*Token, error) {
	start := l.pos
	l.readByte()
	var buf bytes.Buffer
	depth := 1

	for {
		c, err := l.readByte()
		if err != nil {
			return nil, fmt.Errorf("unterminated string at offset %d", start)
		}
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return &Token{Type: TokenString, Value: buf.Bytes(), Pos: start}, nil
			}
		case '\r':
			// EOL inside a literal reads as a single LF.
			if next, _ := l.peek(); next == '\n' {
				l.readByte()
			}
			c = '\n'
		case '\\':
			esc, err := l.readByte()
			if err != nil {
				return nil, fmt.Errorf("unterminated string at offset %d", start)
			}
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '\r':
				if next, _ := l.peek(); next == '\n' {
					l.readByte()
				}
			case '\n':
			default:
				if esc >= '0' && esc <= '7' {
					v := esc - '0'
					for i := 0; i < 2; i++ {
						d, err := l.peek()
						if err != nil || d < '0' || d > '7' {
							break
						}
						l.readByte()
						v = v*8 + d - '0'
					}
					buf.WriteByte(v)
				} else {
					buf.WriteByte(esc)
				}
			}
			continue
		}
		buf.WriteByte(c)
	}
}

func (l *Lexer) readHex() (*Token, error) {
	start := l.pos
	l.readByte()
	var buf bytes.Buffer
	for {
		c, err := l.readByte()
		if err != nil {
			return nil, fmt.Errorf("unterminated hex string at offset %d", start)
		}
		if c == '>' {
			return &Token{Type: TokenHexString, Value: buf.Bytes(), Pos: start}, nil
		}
		if IsSpace(c) {
			continue
		}
		if !isHex(c) {
			return nil, fmt.Errorf("invalid hex digit %q at offset %d", c, l.pos-1)
		}
		buf.WriteByte(c)
	}
}

func (l *Lexer) readName() (*Token, error) {
	start := l.pos
	l.readByte()
	var buf bytes.Buffer
	for {
		c, err := l.peek()
		if err != nil || IsSpace(c) || IsDelimiter(c) {
			break
		}
		l.readByte()
		if c == '#' {
			if h, _ := l.r.Peek(2); len(h) == 2 && isHex(h[0]) && isHex(h[1]) {
				l.discard(2)
				c = unhex(h[0])<<4 | unhex(h[1])
			}
		}
		buf.WriteByte(c)
	}
	return &Token{Type: TokenName, Value: buf.Bytes(), Pos: start}, nil
}

// readRegular reads a run of regular characters and classifies it as a
// number or a keyword.
func (l *Lexer) readRegular() (*Token, error) {
	start := l.pos
	var buf bytes.Buffer
	for {
		c, err := l.peek()
		if err != nil || IsSpace(c) || IsDelimiter(c) {
			break
		}
		l.readByte()
		buf.WriteByte(c)
	}
	v := buf.Bytes()
	return &Token{Type: classifyRegular(v), Value: v, Pos: start}, nil
}

func classifyRegular(v []byte) TokenType {
	digits, dots := 0, 0
	for i, c := range v {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		case (c == '-' || c == '+') && i == 0:
		default:
			return TokenKeyword
		}
	}
	switch {
	case digits == 0 || dots > 1:
		return TokenKeyword
	case dots == 1:
		return TokenReal
	}
	return TokenInteger
}

// SkipStreamEOL consumes the end-of-line marker that follows the stream
// keyword. A lone CR is tolerated.
func (l *Lexer) SkipStreamEOL() error {
	for {
		c, err := l.peek()
		if err != nil {
			return err
		}
		if c != ' ' && c != '\t' {
			break
		}
		l.readByte()
	}
	c, err := l.peek()
	if err != nil {
		return err
	}
	switch c {
	case '\n':
		l.readByte()
	case '\r':
		l.readByte()
		if next, _ := l.peek(); next == '\n' {
			l.readByte()
		}
	}
	return nil
}

// ReadBytes reads exactly n raw bytes.
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	m, err := io.ReadFull(l.r, buf)
	l.pos += int64(m)
	if err != nil {
		return buf[:m], fmt.Errorf("read %d of %d bytes: %w", m, n, err)
	}
	return buf, nil
}

// ReadUntil reads raw bytes up to and including the first occurrence of
// marker and returns the bytes before it. At end of input it returns
// everything read and io.ErrUnexpectedEOF.
func (l *Lexer) ReadUntil(marker []byte) ([]byte, error) {
	var buf []byte
	for {
		c, err := l.readByte()
		if err != nil {
			return buf, io.ErrUnexpectedEOF
		}
		buf = append(buf, c)
		if bytes.HasSuffix(buf, marker) {
			return buf[:len(buf)-len(marker)], nil
		}
	}
}

// IsSpace reports whether c is PDF white space.
func IsSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

// IsDelimiter reports whether c is a PDF delimiter character.
func IsDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}
