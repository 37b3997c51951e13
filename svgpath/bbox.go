package svgpath

import "math"

// compute the bounding box of a cubic bezier curve, by
// evaluating the curve at its end points and at the roots
// of its derivative.

type cubicBezier [4]Point

// cubic polinomial
// x = At^3 + Bt^2 + Ct + D
// where A,B,C,D:
// A = p3 -3 * p2 + 3 * p1 - p0
// B = 3 * p2 - 6 * p1 +3 * p0
// C = 3 * p1 - 3 * p0
// D = p0
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		(p0)
}

// X' = (3*p3-9*p2+9*p1-3*p0)t^2 + (6*p2-12*p1+6*p0)t + (3*p1-3*p0)
// taken as aX^2 + bX + c  a,b and c are:
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

func quadraticRoots(a, b, c float64) []float64 {
	const eps = 1e-12
	if math.Abs(a) < eps {
		// simple line: bX + c = 0
		if math.Abs(b) < eps {
			return nil
		}
		return []float64{-c / b}
	}
	d := b*b - 4*a*c
	if d < 0 {
		return nil
	}
	if d == 0 {
		return []float64{-b / (2 * a)}
	}
	sq := math.Sqrt(d)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	aX, bX, cX := cubicDerivative(cu[0].X, cu[1].X, cu[2].X, cu[3].X)
	aY, bY, cY := cubicDerivative(cu[0].Y, cu[1].Y, cu[2].Y, cu[3].Y)
	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluate(t float64) (x, y float64) {
	return bezierSpline(cu[0].X, cu[1].X, cu[2].X, cu[3].X, t),
		bezierSpline(cu[0].Y, cu[1].Y, cu[2].Y, cu[3].Y, t)
}

func (cu cubicBezier) bounds() Rect {
	resX, resY := cu.criticalPoints()
	box := rectFromCorners(cu[0].X, cu[0].Y, cu[3].X, cu[3].Y)
	for _, t := range append(resX, resY...) {
		// filter invalid value
		if !(0 < t && t < 1) {
			continue
		}
		box = box.extend(cu.evaluate(t))
	}
	return box
}
