package svgpath

import "math"

// Rect defines a bounding box, such as a viewport
// or a path extent.
type Rect struct{ X, Y, W, H float64 }

func rectFromCorners(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X: math.Min(x0, x1), Y: math.Min(y0, y1),
		W: math.Abs(x1 - x0), H: math.Abs(y1 - y0),
	}
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

func (r Rect) extend(x, y float64) Rect {
	return rectFromCorners(
		math.Min(r.X, x), math.Min(r.Y, y),
		math.Max(r.MaxX(), x), math.Max(r.MaxY(), y),
	)
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return rectFromCorners(
		math.Min(r.X, o.X), math.Min(r.Y, o.Y),
		math.Max(r.MaxX(), o.MaxX()), math.Max(r.MaxY(), o.MaxY()),
	)
}

// Intersect returns the common part of r and o, and false
// if they are disjoint. Touching rectangles yield a degenerate overlap.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	x0, y0 := math.Max(r.X, o.X), math.Max(r.Y, o.Y)
	x1, y1 := math.Min(r.MaxX(), o.MaxX()), math.Min(r.MaxY(), o.MaxY())
	if x1 < x0 || y1 < y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// Contains reports whether o lies inside r, with a small tolerance.
func (r Rect) Contains(o Rect) bool {
	const eps = 1e-9
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.MaxX() <= r.MaxX()+eps && o.MaxY() <= r.MaxY()+eps
}

// Outset grows the rectangle by d on every side.
func (r Rect) Outset(d float64) Rect {
	if d <= 0 {
		return r
	}
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// FlipY mirrors the rectangle vertically around a
// reference height h: y' = h - (y + height).
func (r Rect) FlipY(h float64) Rect {
	return Rect{X: r.X, Y: h - r.Y - r.H, W: r.W, H: r.H}
}

// finite replaces NaN and infinite values by zero,
// so that bounding boxes are always usable.
func (r Rect) finite() Rect {
	for _, v := range [4]*float64{&r.X, &r.Y, &r.W, &r.H} {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			*v = 0
		}
	}
	return r
}
