package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Object is any PDF object.
type Object interface {
	Type() ObjectType
	String() string
}

// ObjectType identifies the kind of an Object.
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjInt
	ObjReal
	ObjString
	ObjName
	ObjArray
	ObjDict
	ObjStream
	ObjIndirect
)

var objectTypeNames = [...]string{"Null", "Bool", "Int", "Real", "String", "Name", "Array", "Dict", "Stream", "IndirectRef"}

func (t ObjectType) String() string {
	if t < 0 || int(t) >= len(objectTypeNames) {
		return "Unknown"
	}
	return objectTypeNames[t]
}

// Null is the PDF null object.
type Null struct{}

func (Null) Type() ObjectType { return ObjNull }
func (Null) String() string   { return "null" }

// Bool is a PDF boolean.
type Bool bool

func (b Bool) Type() ObjectType { return ObjBool }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }

// Int is a PDF integer.
type Int int64

func (i Int) Type() ObjectType { return ObjInt }
func (i Int) String() string   { return strconv.FormatInt(int64(i), 10) }

// Real is a PDF real number.
type Real float64

func (r Real) Type() ObjectType { return ObjReal }
func (r Real) String() string   { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String is a PDF string. The value holds the raw bytes after literal or hex
// decoding; no text encoding is applied.
type String string

func (s String) Type() ObjectType { return ObjString }
func (s String) String() string   { return string(s) }

// Name is a PDF name without the leading slash.
type Name string

func (n Name) Type() ObjectType { return ObjName }
func (n Name) String() string   { return "/" + string(n) }

// Array is a PDF array.
type Array []Object

func (a Array) Type() ObjectType { return ObjArray }
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = obj.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Number returns element i as a float64 if it is an Int or Real.
func (a Array) Number(i int) (float64, bool) {
	if i < 0 || i >= len(a) {
		return 0, false
	}
	return Number(a[i])
}

// Dict is a PDF dictionary keyed by name (without the slash).
type Dict map[string]Object

func (d Dict) Type() ObjectType { return ObjDict }

// String renders the dictionary with keys in sorted order.
func (d Dict) String() string {
	parts := make([]string, 0, len(d))
	for _, k := range d.Keys() {
		parts = append(parts, "/"+k+" "+d[k].String())
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

// Get returns the value for key, or nil.
func (d Dict) Get(key string) Object { return d[key] }

// Has reports whether key is present.
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Set stores value under key.
func (d Dict) Set(key string, value Object) { d[key] = value }

// Keys returns the keys in sorted order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d Dict) GetName(key string) (Name, bool) {
	n, ok := d[key].(Name)
	return n, ok
}

func (d Dict) GetInt(key string) (Int, bool) {
	i, ok := d[key].(Int)
	return i, ok
}

func (d Dict) GetDict(key string) (Dict, bool) {
	v, ok := d[key].(Dict)
	return v, ok
}

func (d Dict) GetArray(key string) (Array, bool) {
	a, ok := d[key].(Array)
	return a, ok
}

func (d Dict) GetString(key string) (String, bool) {
	s, ok := d[key].(String)
	return s, ok
}

func (d Dict) GetRef(key string) (IndirectRef, bool) {
	r, ok := d[key].(IndirectRef)
	return r, ok
}

// Stream is a dictionary followed by raw (still encoded) bytes.
type Stream struct {
	Dict Dict
	Data []byte
}

func (s *Stream) Type() ObjectType { return ObjStream }
func (s *Stream) String() string {
	return fmt.Sprintf("stream %s (%d bytes)", s.Dict, len(s.Data))
}

// IndirectRef points at an indirect object by number and generation.
type IndirectRef struct {
	Number     int
	Generation int
}

func (r IndirectRef) Type() ObjectType { return ObjIndirect }
func (r IndirectRef) String() string   { return fmt.Sprintf("%d %d R", r.Number, r.Generation) }

// IndirectObject is an object together with the reference it was defined under.
type IndirectObject struct {
	Ref    IndirectRef
	Object Object
}

// Number converts an Int or Real to float64.
func Number(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

// Text returns the string value of a Name or String.
func Text(obj Object) (string, bool) {
	switch v := obj.(type) {
	case Name:
		return string(v), true
	case String:
		return string(v), true
	}
	return "", false
}
