// Package cmapfix repairs fonts that cannot be mapped back to Unicode.
//
// Composite fonts using the Identity-H encoding show glyph indices, not
// characters. Without a /ToUnicode CMap, text extraction has nothing to
// map them with. The [Patcher] finds such fonts in a page's resources,
// asks a [Locator] for a CMap under the key "to-unicode-<BaseFont>" (the
// subset tag removed), and installs it as a new Flate-compressed stream in
// the document:
//
//	res := cmapfix.NewResolver(cmapdata.FS(), searchRoot)
//	p := cmapfix.NewPatcher(doc, res)
//	outcomes, err := p.PatchPage(page)
//
// Patching mutates the font dictionary in place. Pages sharing a font
// object see the repair immediately, and a font that already has a
// ToUnicode entry is never touched again. Missing fonts, other encodings
// and missing CMap sources are reported as [Outcome] values, not errors.
// Only a failure while reading a CMap source is returned as an error.
package cmapfix
