// Package coord converts between viewer-pixel coordinates (origin
// top-left, y-down) and PDF user-space points (origin bottom-left,
// y-up). The core serializer never calls this package itself — page
// geometry comes from the extractor, and coordinate transforms between
// viewer pixels and PDF points are a concern of whatever drives the
// annotation API from screen input — but that caller needs exactly this
// conversion, so it ships here as a ready adapter.
package coord

import "math"

// Rotation is a page's /Rotate value, one of 0, 90, 180, 270 degrees
// clockwise.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Point is a 2D coordinate; its interpretation (screen or PDF) depends
// on which function produced or consumes it.
type Point struct {
	X, Y float64
}

// ScreenToPDF converts a point in viewer-pixel space (origin top-left,
// y-down, scaled by pixelsPerPoint relative to the unrotated page) into
// PDF user-space points for a page of the given unrotated width/height
// and rotation.
func ScreenToPDF(p Point, pageWidth, pageHeight, pixelsPerPoint float64, rotation Rotation) Point {
	x := p.X / pixelsPerPoint
	y := p.Y / pixelsPerPoint

	switch rotation {
	case Rotate90:
		return Point{X: y, Y: x}
	case Rotate180:
		return Point{X: pageWidth - x, Y: y}
	case Rotate270:
		return Point{X: pageWidth - y, Y: pageHeight - x}
	default:
		return Point{X: x, Y: pageHeight - y}
	}
}

// Rect mirrors pdfannot.Rect without importing it, so this package stays
// a dependency-free leaf.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// ScreenRectToPDF converts a screen-space rectangle (two corners, same
// convention as ScreenToPDF's input point) into a normalized PDF Rect.
func ScreenRectToPDF(x0, y0, x1, y1, pageWidth, pageHeight, pixelsPerPoint float64, rotation Rotation) Rect {
	a := ScreenToPDF(Point{X: x0, Y: y0}, pageWidth, pageHeight, pixelsPerPoint, rotation)
	b := ScreenToPDF(Point{X: x1, Y: y1}, pageWidth, pageHeight, pixelsPerPoint, rotation)
	r := Rect{X0: a.X, Y0: a.Y, X1: b.X, Y1: b.Y}
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// clampRotation normalizes an arbitrary /Rotate value (which may be
// negative or a non-multiple of 90 in malformed input) to one of the
// four canonical rotations.
func clampRotation(deg int) Rotation {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	deg = int(math.Round(float64(deg)/90)) * 90 % 360
	return Rotation(deg)
}

// NormalizeRotation exposes clampRotation for callers reading /Rotate
// directly off a page dictionary.
func NormalizeRotation(deg int) Rotation {
	return clampRotation(deg)
}
