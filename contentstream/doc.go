// Package contentstream splits PDF content streams into operations.
//
// A content stream is a sequence of operands followed by an operator:
//
//	ops, err := contentstream.NewParser(data).Parse()
//	for _, op := range ops {
//	    fmt.Println(op.Operator, op.Operands)
//	}
//
// Operands are ordinary PDF objects from package core. Inline images
// (BI ... ID ... EI) come back as a single "BI" operation whose operand is
// the image dictionary and whose Data holds the raw image bytes.
package contentstream
