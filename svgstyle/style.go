// Package svgstyle resolves the style cascade of a parsed document:
// inheritance, paint references, and global color overrides.
package svgstyle

import (
	"image/color"

	"github.com/benoitkugler/svgtree/svgdoc"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

// JoinMode type to specify how segments join.
type JoinMode uint8

// JoinMode constants determine how stroke segments bridge the gap at a join
// ArcClip mode is like MiterClip applied to arcs, and is not part of the SVG2.0
// standard.
const (
	Arc JoinMode = iota // New in SVG2
	Round
	Bevel
	Miter
	MiterClip // New in SVG2
	ArcClip   // Like MiterClip applied to arcs, and is not part of the SVG2.0 standard.
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	case MiterClip:
		return "MiterClip"
	case Arc:
		return "Arc"
	case ArcClip:
		return "ArcClip"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	NilCap CapMode = iota // default value
	ButtCap
	SquareCap
	RoundCap
	CubicCap     // Not part of the SVG2.0 standard.
	QuadraticCap // Not part of the SVG2.0 standard.
)

func (c CapMode) String() string {
	switch c {
	case NilCap:
		return "NilCap"
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	case CubicCap:
		return "CubicCap"
	case QuadraticCap:
		return "QuadraticCap"
	default:
		return "<unknown CapMode>"
	}
}

// GapMode defines how to bridge gaps when the miter limit is exceeded,
// and is not part of the SVG2.0 standard.
type GapMode uint8

const (
	NilGap GapMode = iota
	FlatGap
	RoundGap
	CubicGap
	QuadraticGap
)

func (g GapMode) String() string {
	switch g {
	case NilGap:
		return "NilGap"
	case FlatGap:
		return "FlatGap"
	case RoundGap:
		return "RoundGap"
	case CubicGap:
		return "CubicGap"
	case QuadraticGap:
		return "QuadraticGap"
	default:
		return "<unknown GapMode>"
	}
}

type DashOptions struct {
	Dash       []float64 // values for the dash pattern (nil or an empty slice for no dashes)
	DashOffset float64   // starting offset into the dash array
}

type JoinOptions struct {
	MiterLimit   float64  // the miter cutoff value for miter, arc, miterclip and arcClip joinModes
	LineJoin     JoinMode // JoinMode for curve segments
	TrailLineCap CapMode  // capping functions for leading and trailing line ends. If one is nil, the other function is used at both ends.

	LeadLineCap CapMode // not part of the standard specification
	LineGap     GapMode // not part of the standard specification. determines how a gap on the convex side of two lines joining is filled
}

// StrokeOptions groups the parameters of a stroke operation.
type StrokeOptions struct {
	LineWidth float64
	Join      JoinOptions
	Dash      DashOptions
}

// Style is the resolved style of a node.
type Style struct {
	// Fill and Stroke are the effective paints, after the
	// global overrides. BaseFill and BaseStroke are the document values.
	Fill, Stroke         svgpaint.Paint
	BaseFill, BaseStroke svgpaint.Paint

	FillOpacity, StrokeOpacity float64
	Opacity                    float64 // group opacity, not inherited
	StrokeWidth                float64
	Join                       JoinOptions
	Dash                       DashOptions
	UseNonZeroWinding          bool

	ClipPath *svgdoc.Node // resolved clipPath element, not inherited
	Mask     *svgdoc.Node // resolved mask element, not inherited

	Local     svgpath.Matrix2D // the node own transform
	Transform svgpath.Matrix2D // ancestors transforms times Local

	FontSize     float64
	FontFamily   string
	CurrentColor color.NRGBA // the "color" property

	DisplayNone bool // display:none, the subtree is not rendered
	Visible     bool // visibility property, inherited
}

// DefaultStyle is the initial style of the root element:
// black fill, no stroke, full opacity, nonzero winding,
// butt caps and miter joins.
var DefaultStyle = Style{
	Fill:              svgpaint.Solid{Color: color.NRGBA{0, 0, 0, 0xff}},
	Stroke:            svgpaint.None{},
	BaseFill:          svgpaint.Solid{Color: color.NRGBA{0, 0, 0, 0xff}},
	BaseStroke:        svgpaint.None{},
	FillOpacity:       1,
	StrokeOpacity:     1,
	Opacity:           1,
	StrokeWidth:       1,
	UseNonZeroWinding: true,
	Join: JoinOptions{
		MiterLimit:   4,
		LineJoin:     Miter,
		TrailLineCap: ButtCap,
	},
	Local:        svgpath.Identity,
	Transform:    svgpath.Identity,
	FontSize:     16,
	FontFamily:   "sans-serif",
	CurrentColor: color.NRGBA{0, 0, 0, 0xff},
	Visible:      true,
}

// StrokeOptions returns the stroke parameters, with the
// caps and gap defaults filled in.
func (s Style) StrokeOptions() StrokeOptions {
	join := s.Join
	if join.TrailLineCap == NilCap {
		join.TrailLineCap = DefaultStyle.Join.TrailLineCap
	}
	if join.LeadLineCap == NilCap {
		join.LeadLineCap = join.TrailLineCap
	}
	if join.LineGap == NilGap {
		join.LineGap = FlatGap
	}
	return StrokeOptions{LineWidth: s.StrokeWidth, Join: join, Dash: s.Dash}
}

// HasVisibleFill reports whether the fill paints something.
func (s Style) HasVisibleFill() bool {
	return !svgpaint.IsNone(s.Fill) && s.FillOpacity > 0
}

// HasVisibleStroke reports whether the stroke paints something.
func (s Style) HasVisibleStroke() bool {
	return !svgpaint.IsNone(s.Stroke) && s.StrokeOpacity > 0 && s.StrokeWidth > 0
}

// ApplyOverride returns the paint to use when a global override color
// is set: every paint is replaced, except the ones painting nothing.
func ApplyOverride(p svgpaint.Paint, override *color.NRGBA) svgpaint.Paint {
	if override == nil || svgpaint.IsNone(p) {
		return p
	}
	return svgpaint.Solid{Color: *override}
}
