// Implements an abstract representation of
// svg paths, which can then be consumed
// by painting drivers.
package svgpath

import (
	"fmt"
	"strings"
)

// Point is a 2D point in user space.
type Point struct{ X, Y float64 }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Operation groups the different SVG commands
type Operation interface {
	// transform returns the operation with its points mapped by m
	transform(m Matrix2D) Operation
	// endPoint returns the last point of the operation; ok is false for Close
	endPoint() (p Point, ok bool)
}

// MoveTo starts a new sub path.
type MoveTo Point

// LineTo draws a straight segment.
type LineTo Point

// CubicTo draws a cubic bezier: two control points then the end point.
type CubicTo [3]Point

// Close joins the current point to the start of the sub path.
type Close struct{}

func tr(m Matrix2D, p Point) Point {
	x, y := m.Transform(p.X, p.Y)
	return Point{x, y}
}

func (op MoveTo) transform(m Matrix2D) Operation { return MoveTo(tr(m, Point(op))) }
func (op LineTo) transform(m Matrix2D) Operation { return LineTo(tr(m, Point(op))) }
func (op CubicTo) transform(m Matrix2D) Operation {
	return CubicTo{tr(m, op[0]), tr(m, op[1]), tr(m, op[2])}
}
func (op Close) transform(Matrix2D) Operation { return op }

func (op MoveTo) endPoint() (Point, bool)  { return Point(op), true }
func (op LineTo) endPoint() (Point, bool)  { return Point(op), true }
func (op CubicTo) endPoint() (Point, bool) { return op[2], true }
func (Close) endPoint() (Point, bool)      { return Point{}, false }

// Path describes a sequence of basic SVG operations.
// Higher-level shapes are reduced to a path.
type Path []Operation

// ToSVGPath returns a string representation of the path
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = fmt.Sprintf("M%4.3f,%4.3f", op.X, op.Y)
		case LineTo:
			chunks[i] = fmt.Sprintf("L%4.3f,%4.3f", op.X, op.Y)
		case CubicTo:
			chunks[i] = fmt.Sprintf("C%4.3f,%4.3f,%4.3f,%4.3f,%4.3f,%4.3f",
				op[0].X, op[0].Y, op[1].X, op[1].Y, op[2].X, op[2].Y)
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a Point) {
	*p = append(*p, MoveTo(a))
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b Point) {
	*p = append(*p, LineTo(b))
}

// QuadBezier adds a quadratic segment to the current curve,
// elevated to a cubic. The current point must be given since
// the elevation depends on it.
func (p *Path) QuadBezier(a, b, c Point) {
	c1 := Point{a.X + 2./3.*(b.X-a.X), a.Y + 2./3.*(b.Y-a.Y)}
	c2 := Point{c.X + 2./3.*(b.X-c.X), c.Y + 2./3.*(b.Y-c.Y)}
	*p = append(*p, CubicTo{c1, c2, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d Point) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// Transform returns a new path with every point mapped by m.
func (p Path) Transform(m Matrix2D) Path {
	if m.IsIdentity() {
		return p
	}
	out := make(Path, len(p))
	for i, op := range p {
		out[i] = op.transform(m)
	}
	return out
}

// Bounds returns the exact axis aligned bounds of the path,
// using the critical points of the bezier segments.
// An empty path has a zero bounding box.
func (p Path) Bounds() Rect {
	var (
		box     Rect
		started bool
		cur     Point
		start   Point
	)
	add := func(r Rect) {
		if !started {
			box, started = r, true
			return
		}
		box = box.Union(r)
	}
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			cur, start = Point(op), Point(op)
			add(Rect{X: op.X, Y: op.Y})
		case LineTo:
			add(rectFromCorners(cur.X, cur.Y, op.X, op.Y))
			cur = Point(op)
		case CubicTo:
			add(cubicBezier{cur, op[0], op[1], op[2]}.bounds())
			cur = op[2]
		case Close:
			cur = start
		}
	}
	return box.finite()
}

// IsEmpty reports whether the path draws nothing.
func (p Path) IsEmpty() bool {
	for _, op := range p {
		switch op.(type) {
		case LineTo, CubicTo:
			return false
		}
	}
	return true
}
