package svgpath

import (
	"errors"
	"math"
	"strings"
)

var errParamMismatch = errors.New("svgpath: param mismatch")

// Matrix2D represents an SVG style matrix
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity matrix
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Transform multiplies the input vector by matrix m and outputs the results vector
// components.
func (m Matrix2D) Transform(x1, y1 float64) (x2, y2 float64) {
	x2 = x1*m.A + y1*m.C + m.E
	y2 = x1*m.B + y1*m.D + m.F
	return
}

// TransformVector is a modidifed version of Transform that ignores the
// translation components.
func (m Matrix2D) TransformVector(x1, y1 float64) (x2, y2 float64) {
	x2 = x1*m.A + y1*m.C
	y2 = x1*m.B + y1*m.D
	return
}

// Mult returns a * b: b is applied first, then a.
// Composing an ancestor matrix with a local one is ancestor.Mult(local).
func (a Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F,
	}
}

// Det returns the matrix determinant
func (m Matrix2D) Det() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse matrix. A singular matrix
// inverts to the identity.
func (m Matrix2D) Invert() Matrix2D {
	det := m.Det()
	if det == 0 {
		return Identity
	}
	return Matrix2D{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}
}

// Scale multiplies the matrix by a scale matrix
func (a Matrix2D) Scale(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{A: x, D: y})
}

// Translate multiplies the matrix by a translation matrix
func (a Matrix2D) Translate(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{A: 1, D: 1, E: x, F: y})
}

// Rotate multiplies the matrix by a rotation matrix (theta in radians)
func (a Matrix2D) Rotate(theta float64) Matrix2D {
	sin, cos := math.Sincos(theta)
	return a.Mult(Matrix2D{A: cos, B: sin, C: -sin, D: cos})
}

// SkewX skews along the x axis (theta in radians)
func (a Matrix2D) SkewX(theta float64) Matrix2D {
	return a.Mult(Matrix2D{A: 1, C: math.Tan(theta), D: 1})
}

// SkewY skews along the y axis (theta in radians)
func (a Matrix2D) SkewY(theta float64) Matrix2D {
	return a.Mult(Matrix2D{A: 1, B: math.Tan(theta), D: 1})
}

// IsIdentity reports whether m is the identity matrix.
func (m Matrix2D) IsIdentity() bool { return m == Identity }

// TransformRect returns the axis aligned bounds of the
// rectangle r once transformed by m.
func (m Matrix2D) TransformRect(r Rect) Rect {
	if m.B == 0 && m.C == 0 { // fast path, no rotation or skew
		x0, y0 := m.Transform(r.X, r.Y)
		x1, y1 := m.Transform(r.X+r.W, r.Y+r.H)
		return rectFromCorners(x0, y0, x1, y1)
	}
	var out Rect
	for i, c := range [4][2]float64{
		{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X + r.W, r.Y + r.H}, {r.X, r.Y + r.H},
	} {
		x, y := m.Transform(c[0], c[1])
		if i == 0 {
			out = Rect{X: x, Y: y}
			continue
		}
		out = out.extend(x, y)
	}
	return out
}

func (m Matrix2D) readTransformAttr(k string, points []float64) (Matrix2D, error) {
	ln := len(points)
	switch k {
	case "rotate":
		if ln == 1 {
			m = m.Rotate(points[0] * math.Pi / 180)
		} else if ln == 3 {
			m = m.Translate(points[1], points[2]).
				Rotate(points[0]*math.Pi/180).
				Translate(-points[1], -points[2])
		} else {
			return m, errParamMismatch
		}
	case "translate":
		if ln == 1 {
			m = m.Translate(points[0], 0)
		} else if ln == 2 {
			m = m.Translate(points[0], points[1])
		} else {
			return m, errParamMismatch
		}
	case "skewx":
		if ln == 1 {
			m = m.SkewX(points[0] * math.Pi / 180)
		} else {
			return m, errParamMismatch
		}
	case "skewy":
		if ln == 1 {
			m = m.SkewY(points[0] * math.Pi / 180)
		} else {
			return m, errParamMismatch
		}
	case "scale":
		if ln == 1 {
			m = m.Scale(points[0], points[0])
		} else if ln == 2 {
			m = m.Scale(points[0], points[1])
		} else {
			return m, errParamMismatch
		}
	case "matrix":
		if ln == 6 {
			m = m.Mult(Matrix2D{
				A: points[0],
				B: points[1],
				C: points[2],
				D: points[3],
				E: points[4],
				F: points[5]})
		} else {
			return m, errParamMismatch
		}
	default:
		return m, errParamMismatch
	}
	return m, nil
}

// ParseTransform reads a transform list, such as
// "translate(10 20) rotate(45)". The transforms are composed
// left to right, so that the rightmost one is applied first to the
// geometry.
func ParseTransform(v string) (Matrix2D, error) {
	m := Identity
	for _, t := range strings.Split(v, ")") {
		t = strings.TrimSpace(t)
		t = strings.TrimLeft(t, ", \t\n")
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return m, errParamMismatch // badly formed transformation
		}
		points, err := ReadPoints(d[1])
		if err != nil {
			return m, err
		}
		m, err = m.readTransformAttr(strings.ToLower(strings.TrimSpace(d[0])), points)
		if err != nil {
			return m, err
		}
	}
	return m, nil
}
