package model

import "math"

// Point is a position in user space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle with its origin at the lower left.
type Rect struct {
	X, Y, Width, Height float64
}

// RectFromCorners returns the rectangle spanning two opposite corners.
func RectFromCorners(x1, y1, x2, y2 float64) Rect {
	return Rect{
		X:      math.Min(x1, x2),
		Y:      math.Min(y1, y2),
		Width:  math.Abs(x2 - x1),
		Height: math.Abs(y2 - y1),
	}
}

// Right returns the largest x coordinate.
func (r Rect) Right() float64 { return r.X + r.Width }

// Top returns the largest y coordinate.
func (r Rect) Top() float64 { return r.Y + r.Height }

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return RectFromCorners(
		math.Min(r.X, o.X), math.Min(r.Y, o.Y),
		math.Max(r.Right(), o.Right()), math.Max(r.Top(), o.Top()),
	)
}

// Matrix is the affine transform [a b c d e f].
type Matrix [6]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale returns a scaling by (sx, sy).
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a counter-clockwise rotation; angle is in radians.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Transform maps p through m.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply returns m × n: the transform that applies m and then n.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

// ScaleX returns the length of the transformed x unit vector.
func (m Matrix) ScaleX() float64 { return math.Hypot(m[0], m[1]) }

// ScaleY returns the length of the transformed y unit vector.
func (m Matrix) ScaleY() float64 { return math.Hypot(m[2], m[3]) }

// IsIdentity reports whether m is the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}
