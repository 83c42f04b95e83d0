package graphicsstate

import (
	"errors"

	"github.com/tsawler/pdftext/model"
)

// ErrStackUnderflow is returned by Restore without a matching Save.
var ErrStackUnderflow = errors.New("graphics state stack underflow")

// GraphicsState is the current state plus the q/Q stack.
type GraphicsState struct {
	CTM  model.Matrix
	Text TextState

	stack []saved
}

type saved struct {
	ctm  model.Matrix
	text TextState
}

// TextState holds the text parameters set by the T* operators.
type TextState struct {
	FontName          string
	FontSize          float64
	CharSpacing       float64
	WordSpacing       float64
	HorizontalScaling float64 // percent
	Leading           float64
	RenderingMode     int
	Rise              float64

	TextMatrix     model.Matrix
	TextLineMatrix model.Matrix
}

// NewGraphicsState returns the initial state of a page.
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM: model.Identity(),
		Text: TextState{
			FontSize:          12,
			HorizontalScaling: 100,
			TextMatrix:        model.Identity(),
			TextLineMatrix:    model.Identity(),
		},
	}
}

// Depth returns the number of saved states.
func (gs *GraphicsState) Depth() int { return len(gs.stack) }

// Save pushes the current state (q).
func (gs *GraphicsState) Save() {
	gs.stack = append(gs.stack, saved{ctm: gs.CTM, text: gs.Text})
}

// Restore pops the last saved state (Q).
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return ErrStackUnderflow
	}
	top := gs.stack[len(gs.stack)-1]
	gs.stack = gs.stack[:len(gs.stack)-1]
	gs.CTM, gs.Text = top.ctm, top.text
	return nil
}

// Concat premultiplies the CTM by m (cm).
func (gs *GraphicsState) Concat(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// SetFont sets the font resource name and size (Tf).
func (gs *GraphicsState) SetFont(name string, size float64) {
	gs.Text.FontName = name
	gs.Text.FontSize = size
}

// SetCharSpacing sets Tc.
func (gs *GraphicsState) SetCharSpacing(v float64) { gs.Text.CharSpacing = v }

// SetWordSpacing sets Tw.
func (gs *GraphicsState) SetWordSpacing(v float64) { gs.Text.WordSpacing = v }

// SetHorizontalScaling sets Tz, in percent.
func (gs *GraphicsState) SetHorizontalScaling(v float64) { gs.Text.HorizontalScaling = v }

// SetLeading sets TL.
func (gs *GraphicsState) SetLeading(v float64) { gs.Text.Leading = v }

// SetRenderingMode sets Tr.
func (gs *GraphicsState) SetRenderingMode(mode int) { gs.Text.RenderingMode = mode }

// SetRise sets Ts.
func (gs *GraphicsState) SetRise(v float64) { gs.Text.Rise = v }

// BeginText resets both text matrices (BT).
func (gs *GraphicsState) BeginText() {
	gs.Text.TextMatrix = model.Identity()
	gs.Text.TextLineMatrix = model.Identity()
}

// SetTextMatrix sets both text matrices (Tm).
func (gs *GraphicsState) SetTextMatrix(m model.Matrix) {
	gs.Text.TextMatrix = m
	gs.Text.TextLineMatrix = m
}

// TranslateText starts a new line offset from the current one (Td).
func (gs *GraphicsState) TranslateText(tx, ty float64) {
	gs.SetTextMatrix(model.Translate(tx, ty).Multiply(gs.Text.TextLineMatrix))
}

// TranslateTextSetLeading is TD: Td that also sets the leading to -ty.
func (gs *GraphicsState) TranslateTextSetLeading(tx, ty float64) {
	gs.Text.Leading = -ty
	gs.TranslateText(tx, ty)
}

// NextLine moves to the start of the next line (T*).
func (gs *GraphicsState) NextLine() {
	gs.TranslateText(0, -gs.Text.Leading)
}

// ShowGlyph advances the text matrix past one glyph whose width is in text
// space units per unit of font size, and returns the displacement.
func (gs *GraphicsState) ShowGlyph(width float64, wordSpace, vertical bool) (tx, ty float64) {
	spacing := gs.Text.CharSpacing
	if wordSpace {
		spacing += gs.Text.WordSpacing
	}
	if vertical {
		// No vertical metrics: every glyph advances one em downward.
		ty = -gs.Text.FontSize + spacing
	} else {
		tx = (width*gs.Text.FontSize + spacing) * gs.Text.HorizontalScaling / 100
	}
	gs.translate(tx, ty)
	return tx, ty
}

// Kern applies a TJ array adjustment, given in thousandths of an em.
func (gs *GraphicsState) Kern(adjust float64, vertical bool) (tx, ty float64) {
	d := -adjust / 1000 * gs.Text.FontSize
	if vertical {
		ty = d
	} else {
		tx = d * gs.Text.HorizontalScaling / 100
	}
	gs.translate(tx, ty)
	return tx, ty
}

func (gs *GraphicsState) translate(tx, ty float64) {
	gs.Text.TextMatrix = model.Translate(tx, ty).Multiply(gs.Text.TextMatrix)
}

// RenderingMatrix returns the text rendering matrix, mapping glyph space
// (scaled to the font size) to device space.
func (gs *GraphicsState) RenderingMatrix() model.Matrix {
	t := gs.Text
	params := model.Matrix{t.FontSize * t.HorizontalScaling / 100, 0, 0, t.FontSize, 0, t.Rise}
	return params.Multiply(t.TextMatrix).Multiply(gs.CTM)
}

// Position returns the current text origin in device space.
func (gs *GraphicsState) Position() (x, y float64) {
	m := gs.RenderingMatrix()
	return m[4], m[5]
}

// EffectiveFontSize is the font size after the text matrix and CTM, taken
// from the vertical scale so that Tf 1 with a scaling Tm still reads true.
func (gs *GraphicsState) EffectiveFontSize() float64 {
	return gs.Text.FontSize * gs.Text.TextMatrix.Multiply(gs.CTM).ScaleY()
}

// ToDevice maps a text-space distance along the baseline to device space
// units.
func (gs *GraphicsState) ToDevice(d float64) float64 {
	return d * gs.Text.TextMatrix.Multiply(gs.CTM).ScaleX()
}
