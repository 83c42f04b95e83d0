package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ReferenceResolver resolves indirect references. The parser needs one to
// read streams whose /Length is itself an indirect object.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser builds PDF objects from a token stream with one token of lookahead
// beyond the current one, which is enough to recognise "n g R".
type Parser struct {
	lexer    *Lexer
	cur      *Token
	next     *Token
	err      error
	resolver ReferenceResolver
}

// NewParser returns a parser reading from r.
func NewParser(r io.Reader) *Parser {
	p := &Parser{lexer: NewLexer(r)}
	p.advance()
	p.advance()
	return p
}

// SetReferenceResolver installs the resolver used for indirect stream lengths.
func (p *Parser) SetReferenceResolver(r ReferenceResolver) { p.resolver = r }

// advance shifts the lookahead. Tokens following "stream" and "ID" are raw
// bytes, so the lookahead is left empty after them.
func (p *Parser) advance() {
	p.cur = p.next
	p.next = nil
	if p.cur.is(TokenKeyword, "stream") || p.cur.is(TokenKeyword, "ID") {
		return
	}
	if p.err != nil {
		return
	}
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			p.err = err
			return
		}
		if tok.Type != TokenComment {
			p.next = tok
			return
		}
	}
}

// reload discards lookahead and reads two fresh tokens after raw data.
func (p *Parser) reload() {
	p.next = nil
	p.cur = nil
	p.advance()
	p.advance()
}

func (p *Parser) current() (*Token, error) {
	if p.cur == nil {
		if p.err != nil {
			return nil, p.err
		}
		return nil, io.ErrUnexpectedEOF
	}
	return p.cur, nil
}

// ParseObject parses the next object. It returns io.EOF at end of input.
func (p *Parser) ParseObject() (Object, error) {
	obj, op, err := p.ParseOperand()
	if err != nil {
		return nil, err
	}
	if op != "" {
		return nil, fmt.Errorf("unexpected keyword %q", op)
	}
	return obj, nil
}

// ParseOperand parses the next object, or returns the keyword in op when
// the next token is a bare keyword such as a content stream operator.
func (p *Parser) ParseOperand() (obj Object, op string, err error) {
	tok, err := p.current()
	if err != nil {
		return nil, "", err
	}

	switch tok.Type {
	case TokenEOF:
		return nil, "", io.EOF
	case TokenKeyword:
		kw := string(tok.Value)
		if kw == "ID" {
			// Raw image bytes follow; InlineImageData resumes tokenizing.
			p.cur = nil
			return nil, kw, nil
		}
		p.advance()
		switch kw {
		case "null":
			return Null{}, "", nil
		case "true":
			return Bool(true), "", nil
		case "false":
			return Bool(false), "", nil
		}
		return nil, kw, nil
	case TokenInteger:
		return p.parseInteger()
	case TokenReal:
		v, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, "", fmt.Errorf("invalid real %q at offset %d", tok.Value, tok.Pos)
		}
		p.advance()
		return Real(v), "", nil
	case TokenString:
		p.advance()
		return String(tok.Value), "", nil
	case TokenHexString:
		p.advance()
		return String(decodeHex(tok.Value)), "", nil
	case TokenName:
		p.advance()
		return Name(tok.Value), "", nil
	case TokenArrayStart:
		a, err := p.parseArray()
		return a, "", err
	case TokenDictStart:
		d, err := p.parseDict()
		return d, "", err
	}
	return nil, "", fmt.Errorf("unexpected %q at offset %d", tok.Value, tok.Pos)
}

func decodeHex(digits []byte) []byte {
	out := make([]byte, (len(digits)+1)/2)
	for i, c := range digits {
		v := unhex(c)
		if i%2 == 0 {
			out[i/2] = v << 4
		} else {
			out[i/2] |= v
		}
	}
	return out
}

func (p *Parser) parseInteger() (Object, string, error) {
	v, err := strconv.ParseInt(string(p.cur.Value), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(p.cur.Value), 64)
		if ferr != nil {
			return nil, "", fmt.Errorf("invalid number %q", p.cur.Value)
		}
		p.advance()
		return Real(f), "", nil
	}

	if p.next != nil && p.next.Type == TokenInteger {
		gen, err := strconv.Atoi(string(p.next.Value))
		if err == nil {
			p.advance()
			if p.next.is(TokenKeyword, "R") {
				p.advance()
				p.advance()
				return IndirectRef{Number: int(v), Generation: gen}, "", nil
			}
			// The generation candidate stays current for the next call.
			return Int(v), "", nil
		}
	}
	p.advance()
	return Int(v), "", nil
}

func (p *Parser) parseArray() (Array, error) {
	p.advance()
	arr := Array{}
	for {
		tok, err := p.current()
		if err != nil {
			return nil, fmt.Errorf("array: %w", err)
		}
		switch tok.Type {
		case TokenArrayEnd:
			p.advance()
			return arr, nil
		case TokenEOF:
			return nil, errors.New("array: unexpected end of input")
		}
		obj, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", len(arr), err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Dict, error) {
	p.advance()
	dict := Dict{}
	for {
		tok, err := p.current()
		if err != nil {
			return nil, fmt.Errorf("dictionary: %w", err)
		}
		switch tok.Type {
		case TokenDictEnd:
			p.advance()
			return dict, nil
		case TokenEOF:
			return nil, errors.New("dictionary: unexpected end of input")
		case TokenName:
		default:
			return nil, fmt.Errorf("dictionary key must be a name, got %q at offset %d", tok.Value, tok.Pos)
		}
		key := string(tok.Value)
		p.advance()

		if t, _ := p.current(); t != nil && t.Type == TokenDictEnd {
			// A key with no value reads as null; drop it.
			continue
		}
		val, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("dictionary value for /%s: %w", key, err)
		}
		if _, isNull := val.(Null); !isNull {
			dict[key] = val
		}
	}
}

// ParseIndirectObject parses "n g obj ... endobj", including stream bodies.
// A missing endobj keyword is tolerated.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	var hdr [2]int
	for i := range hdr {
		tok, err := p.current()
		if err != nil {
			return nil, err
		}
		if tok.Type != TokenInteger {
			return nil, fmt.Errorf("expected object header, got %q at offset %d", tok.Value, tok.Pos)
		}
		hdr[i], _ = strconv.Atoi(string(tok.Value))
		p.advance()
	}
	if !p.cur.is(TokenKeyword, "obj") {
		return nil, fmt.Errorf("expected 'obj' after %d %d", hdr[0], hdr[1])
	}
	p.advance()

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("object %d %d: %w", hdr[0], hdr[1], err)
	}

	if p.cur.is(TokenKeyword, "stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("object %d %d: stream keyword after %s", hdr[0], hdr[1], obj.Type())
		}
		s, err := p.parseStream(dict)
		if err != nil {
			return nil, fmt.Errorf("object %d %d: %w", hdr[0], hdr[1], err)
		}
		obj = s
	}
	if p.cur.is(TokenKeyword, "endobj") {
		p.advance()
	}

	return &IndirectObject{Ref: IndirectRef{Number: hdr[0], Generation: hdr[1]}, Object: obj}, nil
}

var endstream = []byte("endstream")

// parseStream reads the body after the stream keyword. When /Length is
// absent or unresolvable the data runs to the endstream keyword.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	if err := p.lexer.SkipStreamEOL(); err != nil {
		return nil, fmt.Errorf("stream: %w", err)
	}

	length, ok := p.streamLength(dict)
	var data []byte
	if ok {
		var err error
		data, err = p.lexer.ReadBytes(length)
		if err != nil {
			return nil, fmt.Errorf("stream data: %w", err)
		}
		if _, err := p.lexer.ReadUntil(endstream); err != nil {
			return nil, errors.New("stream: missing endstream")
		}
	} else {
		raw, err := p.lexer.ReadUntil(endstream)
		if err != nil {
			return nil, errors.New("stream: missing endstream")
		}
		data = bytes.TrimSuffix(raw, []byte("\n"))
		data = bytes.TrimSuffix(data, []byte("\r"))
	}

	p.reload()
	return &Stream{Dict: dict, Data: data}, nil
}

func (p *Parser) streamLength(dict Dict) (int, bool) {
	obj := dict.Get("Length")
	if ref, ok := obj.(IndirectRef); ok {
		if p.resolver == nil {
			return 0, false
		}
		resolved, err := p.resolver.ResolveReference(ref)
		if err != nil {
			return 0, false
		}
		obj = resolved
	}
	n, ok := obj.(Int)
	if !ok || n < 0 {
		return 0, false
	}
	return int(n), true
}

// InlineImageData reads the raw bytes of an inline image once the parser
// has returned the ID operator. The data ends at white space followed by
// EI and then white space, a delimiter or end of input.
func (p *Parser) InlineImageData() ([]byte, error) {
	// One white-space byte separates ID from the data.
	if c, err := p.lexer.peek(); err == nil && IsSpace(c) {
		p.lexer.readByte()
	}
	var data []byte
	for {
		chunk, err := p.lexer.ReadUntil([]byte("EI"))
		data = append(data, chunk...)
		if err != nil {
			p.reload()
			return data, fmt.Errorf("inline image: %w", err)
		}
		c, perr := p.lexer.peek()
		precededBySpace := len(data) > 0 && IsSpace(data[len(data)-1])
		if precededBySpace && (perr != nil || IsSpace(c) || IsDelimiter(c)) {
			p.reload()
			return data[:len(data)-1], nil
		}
		data = append(data, 'E', 'I')
	}
}
