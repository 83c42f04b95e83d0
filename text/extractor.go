package text

import (
	"math"

	"github.com/tsawler/pdftext/contentstream"
	"github.com/tsawler/pdftext/core"
	"github.com/tsawler/pdftext/font"
	"github.com/tsawler/pdftext/graphicsstate"
	"github.com/tsawler/pdftext/model"
)

// maxFormDepth bounds nested Form XObjects.
const maxFormDepth = 16

// Resolver follows indirect references.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// TextFragment is one shown string at its position on the page.
type TextFragment struct {
	Text      string
	X, Y      float64 // device-space origin of the first glyph
	Width     float64 // device-space advance
	Height    float64
	FontName  string
	FontSize  float64 // effective size after the text matrix and CTM
	Direction Direction
}

// Extractor walks content streams and collects text fragments. It is not
// safe for concurrent use; create one per goroutine.
type Extractor struct {
	r        Resolver
	gs       *graphicsstate.GraphicsState
	font     *font.Font
	fonts    map[core.IndirectRef]*font.Font
	fallback *font.Font
	frags    []TextFragment
	forms    map[int]bool
}

// NewExtractor returns an extractor resolving references through r.
func NewExtractor(r Resolver) *Extractor {
	fallback, _ := font.Load(core.Dict{"Subtype": core.Name("Type1"), "BaseFont": core.Name("Helvetica")}, nil)
	return &Extractor{r: r, fallback: fallback}
}

// Extract runs a page's content stream against its resources. When the
// stream is malformed the fragments read before the damage are returned
// along with the error.
func (e *Extractor) Extract(content []byte, resources core.Dict) ([]TextFragment, error) {
	e.gs = graphicsstate.NewGraphicsState()
	e.font = nil
	e.fonts = map[core.IndirectRef]*font.Font{}
	e.forms = map[int]bool{}
	e.frags = nil

	err := e.run(content, resources, 0)
	return e.frags, err
}

func (e *Extractor) run(content []byte, resources core.Dict, depth int) error {
	ops, err := contentstream.Parse(content)
	for _, op := range ops {
		e.apply(op, resources, depth)
	}
	return err
}

func (e *Extractor) apply(op contentstream.Operation, resources core.Dict, depth int) {
	args := op.Operands
	switch op.Operator {
	case "q":
		e.gs.Save()
	case "Q":
		// Unbalanced Q is common in the wild and harmless here.
		_ = e.gs.Restore()
	case "cm":
		if m, ok := matrix(args); ok {
			e.gs.Concat(m)
		}
	case "BT":
		e.gs.BeginText()
	case "Tf":
		if len(args) == 2 {
			name, _ := args[0].(core.Name)
			size, _ := core.Number(args[1])
			e.gs.SetFont(string(name), size)
			e.font = e.loadFont(resources, string(name))
		}
	case "Tc":
		withNumber(args, e.gs.SetCharSpacing)
	case "Tw":
		withNumber(args, e.gs.SetWordSpacing)
	case "Tz":
		withNumber(args, e.gs.SetHorizontalScaling)
	case "TL":
		withNumber(args, e.gs.SetLeading)
	case "Ts":
		withNumber(args, e.gs.SetRise)
	case "Tr":
		withNumber(args, func(v float64) { e.gs.SetRenderingMode(int(v)) })
	case "Td", "TD":
		if len(args) == 2 {
			tx, _ := core.Number(args[0])
			ty, _ := core.Number(args[1])
			if op.Operator == "TD" {
				e.gs.TranslateTextSetLeading(tx, ty)
			} else {
				e.gs.TranslateText(tx, ty)
			}
		}
	case "Tm":
		if m, ok := matrix(args); ok {
			e.gs.SetTextMatrix(m)
		}
	case "T*":
		e.gs.NextLine()
	case "Tj":
		if len(args) == 1 {
			e.show(args[0])
		}
	case "'":
		e.gs.NextLine()
		if len(args) == 1 {
			e.show(args[0])
		}
	case "\"":
		if len(args) == 3 {
			withNumber(args[:1], e.gs.SetWordSpacing)
			withNumber(args[1:2], e.gs.SetCharSpacing)
			e.gs.NextLine()
			e.show(args[2])
		}
	case "TJ":
		if len(args) == 1 {
			arr, _ := args[0].(core.Array)
			for _, item := range arr {
				if adj, ok := core.Number(item); ok {
					e.gs.Kern(adj, e.currentFont().IsVertical())
					continue
				}
				e.show(item)
			}
		}
	case "Do":
		if len(args) == 1 && depth < maxFormDepth {
			if name, ok := args[0].(core.Name); ok {
				e.doForm(resources, string(name), depth)
			}
		}
	}
}

func (e *Extractor) currentFont() *font.Font {
	if e.font != nil {
		return e.font
	}
	return e.fallback
}

// show decodes a string operand, records it as a fragment and advances the
// text matrix glyph by glyph.
func (e *Extractor) show(obj core.Object) {
	s, ok := obj.(core.String)
	if !ok {
		return
	}
	f := e.currentFont()
	x0, y0 := e.gs.Position()
	size := e.gs.EffectiveFontSize()

	var raw []rune
	for _, g := range f.Decode([]byte(s)) {
		raw = append(raw, []rune(g.Text)...)
		e.gs.ShowGlyph(g.Width, g.WordSpace, f.IsVertical())
	}
	x1, y1 := e.gs.Position()

	text := font.NormalizeUnicode(string(raw))
	if text == "" {
		return
	}
	e.frags = append(e.frags, TextFragment{
		Text:      text,
		X:         x0,
		Y:         y0,
		Width:     math.Hypot(x1-x0, y1-y0),
		Height:    size,
		FontName:  e.gs.Text.FontName,
		FontSize:  size,
		Direction: DetectDirection(text),
	})
}

// loadFont looks a font up in resources. Fonts reached by reference are
// cached per extraction.
func (e *Extractor) loadFont(resources core.Dict, name string) *font.Font {
	fonts, ok := e.resolve(resources.Get("Font")).(core.Dict)
	if !ok {
		return nil
	}
	entry := fonts.Get(name)
	ref, isRef := entry.(core.IndirectRef)
	if isRef {
		if f, ok := e.fonts[ref]; ok {
			return f
		}
	}
	dict, ok := e.resolve(entry).(core.Dict)
	if !ok {
		return nil
	}
	f, err := font.Load(dict, e.r)
	if err != nil {
		return nil
	}
	if isRef {
		e.fonts[ref] = f
	}
	return f
}

func (e *Extractor) doForm(resources core.Dict, name string, depth int) {
	xobjects, ok := e.resolve(resources.Get("XObject")).(core.Dict)
	if !ok {
		return
	}
	entry := xobjects.Get(name)
	if ref, ok := entry.(core.IndirectRef); ok {
		if e.forms[ref.Number] {
			return
		}
		e.forms[ref.Number] = true
		defer delete(e.forms, ref.Number)
	}
	form, ok := e.resolve(entry).(*core.Stream)
	if !ok {
		return
	}
	if st, _ := form.Dict.GetName("Subtype"); st != "Form" {
		return
	}
	data, err := form.Decode()
	if err != nil {
		return
	}

	formResources, ok := e.resolve(form.Dict.Get("Resources")).(core.Dict)
	if !ok {
		formResources = resources
	}

	e.gs.Save()
	if m, ok := e.resolve(form.Dict.Get("Matrix")).(core.Array); ok {
		if fm, ok := matrix(m); ok {
			e.gs.Concat(fm)
		}
	}
	saved := e.font
	_ = e.run(data, formResources, depth+1)
	e.font = saved
	_ = e.gs.Restore()
}

func (e *Extractor) resolve(obj core.Object) core.Object {
	if _, ok := obj.(core.IndirectRef); !ok || e.r == nil {
		return obj
	}
	v, err := e.r.Resolve(obj)
	if err != nil {
		return nil
	}
	return v
}

func matrix(args []core.Object) (model.Matrix, bool) {
	var m model.Matrix
	if len(args) != 6 {
		return m, false
	}
	for i, a := range args {
		v, ok := core.Number(a)
		if !ok {
			return m, false
		}
		m[i] = v
	}
	return m, true
}

func withNumber(args []core.Object, set func(float64)) {
	if len(args) == 1 {
		if v, ok := core.Number(args[0]); ok {
			set(v)
		}
	}
}
