package contentstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tsawler/pdftext/core"
)

// Operation is one operator with the operands that preceded it.
type Operation struct {
	Operator string
	Operands []core.Object
	// Data holds the bytes of an inline image.
	Data []byte
}

// Parser reads operations from a content stream.
type Parser struct {
	p *core.Parser
}

// NewParser returns a parser over data.
func NewParser(data []byte) *Parser {
	return &Parser{p: core.NewParser(bytes.NewReader(data))}
}

// Parse returns every operation in order. On malformed input it returns
// the operations read before the error together with the error.
func (p *Parser) Parse() ([]Operation, error) {
	var ops []Operation
	var operands []core.Object

	for {
		obj, op, err := p.p.ParseOperand()
		if errors.Is(err, io.EOF) {
			return ops, nil
		}
		if err != nil {
			return ops, fmt.Errorf("content stream: %w", err)
		}
		if op == "" {
			operands = append(operands, obj)
			continue
		}

		switch {
		case op == "BI":
			operands = nil
			continue
		case op == "ID":
			data, err := p.p.InlineImageData()
			ops = append(ops, Operation{Operator: "BI", Operands: []core.Object{imageDict(operands)}, Data: data})
			operands = nil
			if err != nil {
				return ops, fmt.Errorf("content stream: %w", err)
			}
			continue
		}

		ops = append(ops, Operation{Operator: op, Operands: operands})
		operands = nil
	}
}

// imageDict pairs up the key/value operands of an inline image.
func imageDict(operands []core.Object) core.Dict {
	d := core.Dict{}
	for i := 0; i+1 < len(operands); i += 2 {
		if k, ok := operands[i].(core.Name); ok {
			d[string(k)] = operands[i+1]
		}
	}
	return d
}

// Parse is shorthand for NewParser(data).Parse().
func Parse(data []byte) ([]Operation, error) {
	return NewParser(data).Parse()
}
