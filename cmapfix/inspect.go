package cmapfix

import (
	"strings"

	"github.com/tsawler/pdftext/core"
)

// ObjectResolver follows indirect references.
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Verdict is the result of classifying one font.
type Verdict int

const (
	Skip Verdict = iota
	Patchable
)

func (v Verdict) String() string {
	if v == Patchable {
		return "patchable"
	}
	return "skip"
}

// Reason explains a Skip verdict.
type Reason int

const (
	NoReason Reason = iota
	NotFound
	UnsupportedEncoding
	NoBaseFont
	AlreadyMapped
)

var reasonNames = [...]string{
	NoReason:            "",
	NotFound:            "font not found",
	UnsupportedEncoding: "encoding is not Identity-H",
	NoBaseFont:          "no base font name",
	AlreadyMapped:       "already has ToUnicode",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// Classification describes one font of a resource dictionary.
type Classification struct {
	Verdict  Verdict
	Reason   Reason
	BaseFont string    // subset tag removed; set when the font was found
	Font     core.Dict // the font dictionary itself, shared with the document
}

// fontLookup is one strategy for finding a font dictionary by name.
type fontLookup func(in *Inspector, resources core.Dict, name string) (core.Dict, bool)

// resourceCategories are the keys of a well-formed resource dictionary;
// they never name a font.
var resourceCategories = map[string]bool{
	"ExtGState": true, "ColorSpace": true, "Pattern": true, "Shading": true,
	"XObject": true, "Font": true, "ProcSet": true, "Properties": true,
}

// lookups run in order; the first hit wins. Some broken producers flatten
// fonts into the resource dictionary itself, so that is tried first.
var lookups = []fontLookup{
	func(in *Inspector, resources core.Dict, name string) (core.Dict, bool) {
		if resourceCategories[name] {
			return nil, false
		}
		return in.dict(resources.Get(name))
	},
	func(in *Inspector, resources core.Dict, name string) (core.Dict, bool) {
		fonts, ok := in.dict(resources.Get("Font"))
		if !ok {
			return nil, false
		}
		return in.dict(fonts.Get(name))
	},
}

// Inspector decides which fonts need a ToUnicode CMap.
type Inspector struct {
	r ObjectResolver
}

// NewInspector returns an inspector resolving references through r.
func NewInspector(r ObjectResolver) *Inspector {
	return &Inspector{r: r}
}

// Classify inspects the font called name in resources.
func (in *Inspector) Classify(resources core.Dict, name string) Classification {
	var font core.Dict
	for _, lookup := range lookups {
		if d, ok := lookup(in, resources, name); ok && isFont(d) {
			font = d
			break
		}
	}
	if font == nil {
		return Classification{Verdict: Skip, Reason: NotFound}
	}
	return in.ClassifyFont(font)
}

// ClassifyFont inspects a font dictionary that is already at hand.
func (in *Inspector) ClassifyFont(font core.Dict) Classification {
	c := Classification{Verdict: Skip, Font: font}

	enc, _ := in.resolve(font.Get("Encoding")).(core.Name)
	if enc != "Identity-H" {
		c.Reason = UnsupportedEncoding
		return c
	}

	var base string
	switch v := in.resolve(font.Get("BaseFont")).(type) {
	case core.Name:
		base = string(v)
	case core.String:
		base = string(v)
	}
	c.BaseFont = StripSubset(base)
	if c.BaseFont == "" {
		c.Reason = NoBaseFont
		return c
	}

	if font.Has("ToUnicode") {
		c.Reason = AlreadyMapped
		return c
	}

	c.Verdict = Patchable
	return c
}

// StripSubset drops everything up to and including the first '+'.
func StripSubset(baseFont string) string {
	if i := strings.IndexByte(baseFont, '+'); i >= 0 {
		return baseFont[i+1:]
	}
	return baseFont
}

// isFont rejects dictionaries that are plainly something else, such as
// the Font category dictionary itself.
func isFont(d core.Dict) bool {
	if t, ok := d.GetName("Type"); ok {
		return t == "Font"
	}
	return d.Has("Subtype") || d.Has("BaseFont")
}

func (in *Inspector) dict(obj core.Object) (core.Dict, bool) {
	d, ok := in.resolve(obj).(core.Dict)
	return d, ok && d != nil
}

func (in *Inspector) resolve(obj core.Object) core.Object {
	if _, ok := obj.(core.IndirectRef); !ok || in.r == nil {
		return obj
	}
	v, err := in.r.Resolve(obj)
	if err != nil {
		return nil
	}
	return v
}
