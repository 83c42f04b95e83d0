// Package pages walks the PDF page tree and exposes page attributes.
//
// Pages are returned in document order. Inheritable attributes (Resources,
// MediaBox, CropBox, Rotate) are looked up on the page first and then on
// each ancestor Pages node in turn.
//
//	tree := pages.NewPageTree(pagesDict, resolver)
//	page, err := tree.Page(0)
//	res, err := page.Resources()
package pages
