package graphicsstate

import (
	"errors"
	"math"
	"testing"

	"github.com/tsawler/pdftext/model"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNewGraphicsState(t *testing.T) {
	gs := NewGraphicsState()
	if gs.Text.FontSize != 12 || gs.Text.HorizontalScaling != 100 {
		t.Errorf("text defaults = %+v", gs.Text)
	}
	if !gs.CTM.IsIdentity() || !gs.Text.TextMatrix.IsIdentity() {
		t.Error("matrices not identity")
	}
}

func TestSaveRestore(t *testing.T) {
	gs := NewGraphicsState()
	gs.SetFont("F1", 14)
	gs.Save()
	gs.SetFont("F2", 18)
	gs.Concat(model.Scale(2, 2))

	if err := gs.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if gs.Text.FontName != "F1" || gs.Text.FontSize != 14 {
		t.Errorf("font after restore = %s %v", gs.Text.FontName, gs.Text.FontSize)
	}
	if !gs.CTM.IsIdentity() {
		t.Errorf("CTM after restore = %v", gs.CTM)
	}
	if err := gs.Restore(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Restore on empty stack = %v, want ErrStackUnderflow", err)
	}
}

func TestConcatOrder(t *testing.T) {
	gs := NewGraphicsState()
	gs.Concat(model.Translate(100, 0))
	gs.Concat(model.Scale(2, 2))
	// The later cm applies first: (10, 10) -> (20, 20) -> (120, 20).
	p := gs.CTM.Transform(model.Point{X: 10, Y: 10})
	if p != (model.Point{X: 120, Y: 20}) {
		t.Errorf("point = %+v, want {120 20}", p)
	}
}

func TestTextPositioning(t *testing.T) {
	gs := NewGraphicsState()
	gs.BeginText()
	gs.SetTextMatrix(model.Matrix{2, 0, 0, 2, 50, 700})
	gs.TranslateText(10, -5)
	// Td is scaled by the line matrix.
	if x, y := gs.Position(); !near(x, 70) || !near(y, 690) {
		t.Errorf("after Td = (%v, %v), want (70, 690)", x, y)
	}

	gs.TranslateTextSetLeading(0, -12)
	if gs.Text.Leading != 12 {
		t.Errorf("leading = %v, want 12", gs.Text.Leading)
	}
	gs.NextLine()
	if _, y := gs.Position(); !near(y, 690-48) {
		t.Errorf("after TD and T* y = %v, want %v", y, 690-48)
	}
}

func TestShowGlyph(t *testing.T) {
	gs := NewGraphicsState()
	gs.SetFont("F1", 10)
	gs.SetCharSpacing(1)
	gs.SetWordSpacing(3)
	gs.SetHorizontalScaling(50)

	tx, _ := gs.ShowGlyph(0.5, false, false)
	if !near(tx, 3) {
		t.Errorf("glyph advance = %v, want 3", tx)
	}
	tx, _ = gs.ShowGlyph(0.25, true, false)
	if !near(tx, 3.25) {
		t.Errorf("space advance = %v, want 3.25", tx)
	}
	if x, _ := gs.Position(); !near(x, 6.25) {
		t.Errorf("x = %v, want 6.25", x)
	}

	_, ty := gs.ShowGlyph(1, false, true)
	if !near(ty, -9) {
		t.Errorf("vertical advance = %v, want -9", ty)
	}
}

func TestKern(t *testing.T) {
	gs := NewGraphicsState()
	gs.SetFont("F1", 20)
	tx, _ := gs.Kern(-500, false)
	if !near(tx, 10) {
		t.Errorf("kern = %v, want 10", tx)
	}
}

func TestEffectiveFontSize(t *testing.T) {
	gs := NewGraphicsState()
	gs.SetFont("F1", 1)
	gs.SetTextMatrix(model.Matrix{11, 0, 0, 11, 0, 0})
	gs.Concat(model.Scale(2, 2))
	if got := gs.EffectiveFontSize(); !near(got, 22) {
		t.Errorf("EffectiveFontSize = %v, want 22", got)
	}
	if got := gs.ToDevice(3); !near(got, 66) {
		t.Errorf("ToDevice = %v, want 66", got)
	}
}
