// Package graphicsstate tracks the parts of the PDF graphics state that
// decide where text lands on a page: the current transformation matrix and
// the text state (font, spacing, scaling, rise and the text matrices).
//
//	gs := graphicsstate.NewGraphicsState()
//	gs.Save()                          // q
//	gs.Concat(model.Translate(0, 700)) // cm
//	gs.BeginText()                     // BT
//	gs.SetFont("F1", 12)               // Tf
//	x, y := gs.Position()
//	gs.Restore()                       // Q
//
// Glyph displacement follows the text-space formula
//
//	tx = (w0·Tfs + Tc + Tw) · Th
//
// where Tw applies only to single-byte code 32.
package graphicsstate
