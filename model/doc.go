// Package model holds the geometry shared by the page walker and the text
// extractor: points, rectangles and the 2D affine matrices PDF uses for its
// coordinate spaces.
//
// Matrices follow the PDF convention of row vectors, so a point p maps to
// p × M and m.Multiply(n) applies m first, then n.
package model
