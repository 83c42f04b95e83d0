package core

import (
	"bytes"
	"fmt"
)

// ObjectStream gives access to the objects packed in a /Type /ObjStm stream.
// The stream is decoded and its header parsed on first use.
type ObjectStream struct {
	stream  *Stream
	n       int
	first   int
	data    []byte
	numbers []int
	offsets []int
}

// NewObjectStream validates the stream dictionary of an object stream.
func NewObjectStream(s *Stream) (*ObjectStream, error) {
	if s == nil {
		return nil, fmt.Errorf("object stream is nil")
	}
	if t, _ := s.Dict.GetName("Type"); t != "ObjStm" {
		return nil, fmt.Errorf("not an object stream: /Type %q", t)
	}
	n, ok := s.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream: invalid /N")
	}
	first, ok := s.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream: invalid /First")
	}
	return &ObjectStream{stream: s, n: int(n), first: int(first)}, nil
}

// N returns the number of objects in the stream.
func (o *ObjectStream) N() int { return o.n }

func (o *ObjectStream) load() error {
	if o.data != nil {
		return nil
	}
	data, err := o.stream.Decode()
	if err != nil {
		return fmt.Errorf("object stream: %w", err)
	}
	if o.first > len(data) {
		return fmt.Errorf("object stream: /First %d beyond %d decoded bytes", o.first, len(data))
	}

	p := NewParser(bytes.NewReader(data[:o.first]))
	numbers := make([]int, 0, o.n)
	offsets := make([]int, 0, o.n)
	for i := 0; i < o.n; i++ {
		num, err1 := p.readInt()
		off, err2 := p.readInt()
		if err1 != nil || err2 != nil {
			return fmt.Errorf("object stream: header pair %d is malformed", i)
		}
		numbers = append(numbers, int(num))
		offsets = append(offsets, int(off))
	}

	o.data, o.numbers, o.offsets = data, numbers, offsets
	return nil
}

// ObjectAt parses the object at position index and returns it together
// with the object number the header assigns to it.
func (o *ObjectStream) ObjectAt(index int) (Object, int, error) {
	if err := o.load(); err != nil {
		return nil, 0, err
	}
	if index < 0 || index >= len(o.offsets) {
		return nil, 0, fmt.Errorf("object stream: index %d out of range [0,%d)", index, len(o.offsets))
	}
	start := o.first + o.offsets[index]
	end := len(o.data)
	if index+1 < len(o.offsets) {
		end = o.first + o.offsets[index+1]
	}
	if start > len(o.data) || end > len(o.data) || start > end {
		return nil, 0, fmt.Errorf("object stream: bad offset for index %d", index)
	}

	obj, err := NewParser(bytes.NewReader(o.data[start:end])).ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("object stream index %d: %w", index, err)
	}
	return obj, o.numbers[index], nil
}

// Object finds an object by number. The index hint from the xref entry is
// tried first.
func (o *ObjectStream) Object(num, hint int) (Object, error) {
	if err := o.load(); err != nil {
		return nil, err
	}
	if hint >= 0 && hint < len(o.numbers) && o.numbers[hint] == num {
		obj, _, err := o.ObjectAt(hint)
		return obj, err
	}
	for i, n := range o.numbers {
		if n == num {
			obj, _, err := o.ObjectAt(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("object %d not in object stream", num)
}
