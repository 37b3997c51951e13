package svgpaint

import (
	"image/color"
	"math"

	"github.com/benoitkugler/svgtree/svgpath"
)

// Units is the type for gradient and pattern units
type Units uint8

// SVG bounds paremater constants
const (
	ObjectBoundingBox Units = iota
	UserSpaceOnUse
)

// SpreadMethod is the type for spread parameters
type SpreadMethod uint8

// SVG spread parameter constants
const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

// GradientKind is either linear or radial
type GradientKind uint8

const (
	LinearGradient GradientKind = iota
	RadialGradient
)

// Linear is the direction of a linear gradient: from (X1, Y1) to (X2, Y2).
type Linear struct{ X1, Y1, X2, Y2 float64 }

// Radial is the geometry of a radial gradient: the end circle (CX, CY, R)
// and the focal circle (FX, FY, FR).
type Radial struct{ CX, CY, FX, FY, R, FR float64 }

// GradStop represents a stop in the SVG 2.0 gradient specification
type GradStop struct {
	Offset  float64
	Color   color.NRGBA
	Opacity float64
}

// Gradient holds a description of an SVG 2.0 gradient
type Gradient struct {
	ID     string
	Kind   GradientKind
	Linear Linear // valid for LinearGradient
	Radial Radial // valid for RadialGradient
	Stops  []GradStop
	Spread SpreadMethod
	Units  Units
	Matrix svgpath.Matrix2D // gradientTransform
}

// DefaultLinear is the direction used when no coordinates are given.
var DefaultLinear = Linear{0, 0, 1, 0}

// DefaultRadial is the geometry used when no coordinates are given.
var DefaultRadial = Radial{0.5, 0.5, 0.5, 0.5, 0.5, 0}

// NormalizeStops returns a copy of the stops whose offsets are clamped into [0,1]
// and monotonically non-decreasing: a stop whose offset is lower than
// its predecessor takes the predecessor offset.
func NormalizeStops(stops []GradStop) []GradStop {
	out := make([]GradStop, len(stops))
	last := 0.
	for i, stop := range stops {
		stop.Offset = math.Max(0, math.Min(1, stop.Offset))
		if i > 0 && stop.Offset < last {
			stop.Offset = last
		}
		last = stop.Offset
		out[i] = stop
	}
	return out
}

// Simplify returns the paint equivalent to the gradient:
// None when it has no stops, a Solid color for one stop,
// or the gradient itself, with normalized stops.
func (g *Gradient) Simplify() Paint {
	switch len(g.Stops) {
	case 0:
		return None{}
	case 1:
		return Solid{Color: ApplyOpacity(g.Stops[0].Color, g.Stops[0].Opacity)}
	}
	out := *g
	out.Stops = NormalizeStops(g.Stops)
	return &out
}

// LinearFromAngle returns the direction of a linear gradient
// spanning the unit square (objectBoundingBox units) at the given angle, in degrees.
// 0° goes left to right, and the angle increases clockwise (in y-down space).
func LinearFromAngle(deg float64) Linear {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	// half length of the projection of the square on the direction
	l := (math.Abs(cos) + math.Abs(sin)) / 2
	return Linear{
		X1: 0.5 - cos*l, Y1: 0.5 - sin*l,
		X2: 0.5 + cos*l, Y2: 0.5 + sin*l,
	}
}

// Resolve maps a gradient expressed in objectBoundingBox units onto
// the bounding box of a shape. The returned gradient is in
// userSpaceOnUse units. Other gradients are returned unchanged.
func (g *Gradient) Resolve(bbox svgpath.Rect) *Gradient {
	if g.Units != ObjectBoundingBox {
		return g
	}
	out := *g
	out.Units = UserSpaceOnUse
	out.Matrix = svgpath.Identity.Translate(bbox.X, bbox.Y).Scale(bbox.W, bbox.H).Mult(g.Matrix)
	return &out
}

// ColorAt returns the color at the parameter t of the gradient,
// applying the spread method outside of [0,1].
func (g *Gradient) ColorAt(t float64) color.NRGBA {
	if len(g.Stops) == 0 {
		return color.NRGBA{}
	}
	switch g.Spread {
	case RepeatSpread:
		t -= math.Floor(t)
	case ReflectSpread:
		t = math.Mod(math.Abs(t), 2)
		if t > 1 {
			t = 2 - t
		}
	}
	first, last := g.Stops[0], g.Stops[len(g.Stops)-1]
	if t <= first.Offset {
		return ApplyOpacity(first.Color, first.Opacity)
	}
	if t >= last.Offset {
		return ApplyOpacity(last.Color, last.Opacity)
	}
	for i := 1; i < len(g.Stops); i++ {
		s0, s1 := g.Stops[i-1], g.Stops[i]
		if t > s1.Offset {
			continue
		}
		d := s1.Offset - s0.Offset
		if d <= 0 {
			return ApplyOpacity(s1.Color, s1.Opacity)
		}
		return blend(ApplyOpacity(s0.Color, s0.Opacity), ApplyOpacity(s1.Color, s1.Opacity), (t-s0.Offset)/d)
	}
	return ApplyOpacity(last.Color, last.Opacity)
}

func blend(a, b color.NRGBA, u float64) color.NRGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-u) + float64(y)*u + 0.5)
	}
	return color.NRGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), lerp(a.A, b.A)}
}
