package svgstyle

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgdoc"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

// Options are the document wide settings of the cascade.
type Options struct {
	// FillOverride and StrokeOverride, when not nil, replace
	// every fill (resp. stroke) color, except "none".
	FillOverride, StrokeOverride *color.NRGBA
}

// Warning is a non fatal resolution problem, such as a reference
// to a missing id, or a reference cycle. The affected paint,
// clip or mask is ignored.
type Warning struct {
	NodeID string // the id of the node holding the reference, if any
	Attr   string // the attribute holding the reference
	Ref    string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("node %q, attribute %s: reference %q %s", w.NodeID, w.Attr, w.Ref, w.Reason)
}

const (
	reasonMissing   = "not found"
	reasonCycle     = "is cyclic"
	reasonWrongKind = "has an unexpected element type"
	reasonInvalid   = "is invalid"
)

// Resolver computes the style of the nodes of one document.
// It is not safe for concurrent use.
type Resolver struct {
	doc  *svgdoc.Document
	opts Options

	warnings []Warning
	visiting map[string]bool

	gradients      map[*svgdoc.Node]*svgpaint.Gradient
	patterns       map[*svgdoc.Node]*svgpaint.Pattern
	patternContent map[*svgpaint.Pattern]*svgdoc.Node
}

// NewResolver returns a resolver for the given document.
func NewResolver(doc *svgdoc.Document, opts Options) *Resolver {
	return &Resolver{
		doc:            doc,
		opts:           opts,
		visiting:       make(map[string]bool),
		gradients:      make(map[*svgdoc.Node]*svgpaint.Gradient),
		patterns:       make(map[*svgdoc.Node]*svgpaint.Pattern),
		patternContent: make(map[*svgpaint.Pattern]*svgdoc.Node),
	}
}

// Document returns the document being resolved.
func (r *Resolver) Document() *svgdoc.Document { return r.doc }

// Options returns the cascade options.
func (r *Resolver) Options() Options { return r.opts }

// Warnings returns the warnings collected so far.
func (r *Resolver) Warnings() []Warning { return r.warnings }

// Warn records a resolution warning for the node.
func (r *Resolver) Warn(n *svgdoc.Node, attr, ref, reason string) {
	w := Warning{Attr: attr, Ref: ref, Reason: reason}
	if n != nil {
		w.NodeID = n.ID
	}
	r.warnings = append(r.warnings, w)
	logx.Logger().Warn("svg reference not resolved", "node", w.NodeID, "attr", attr, "ref", ref, "reason", reason)
}

// Enter marks the element with the given id as being expanded.
// It returns false if the element is already being expanded, that is
// if a reference cycle is found.
func (r *Resolver) Enter(id string) bool {
	if r.visiting[id] {
		return false
	}
	r.visiting[id] = true
	return true
}

// Leave is the counterpart of Enter.
func (r *Resolver) Leave(id string) { delete(r.visiting, id) }

// the order matters: "color" and "font-size" are used by other properties
var properties = [...]string{
	"color", "font-size", "font-family",
	"fill", "fill-opacity", "fill-rule",
	"stroke", "stroke-opacity", "stroke-width",
	"stroke-linecap", "stroke-leadlinecap", "stroke-linegap", "stroke-linejoin",
	"stroke-miterlimit", "stroke-dasharray", "stroke-dashoffset",
	"opacity", "clip-path", "mask", "transform", "display", "visibility",
}

// Resolve returns the style of n, given the style of its parent
// (DefaultStyle for the root). Inheritable properties not set
// on n are taken from the parent; the transform is composed.
func (r *Resolver) Resolve(n *svgdoc.Node, parent Style) Style {
	s := parent
	s.Opacity = 1
	s.ClipPath, s.Mask = nil, nil
	s.Local = svgpath.Identity
	s.DisplayNone = false
	for _, prop := range properties {
		v, ok := n.Attr(prop)
		if !ok || v == "" || v == "inherit" {
			continue
		}
		if err := r.readProperty(n, &s, prop, v); err != nil {
			r.Warn(n, prop, v, fmt.Sprintf("%s: %s", reasonInvalid, err))
		}
	}
	s.Transform = parent.Transform.Mult(s.Local)
	s.Fill = ApplyOverride(s.BaseFill, r.opts.FillOverride)
	s.Stroke = ApplyOverride(s.BaseStroke, r.opts.StrokeOverride)
	return s
}

func (r *Resolver) readProperty(n *svgdoc.Node, s *Style, k, v string) error {
	switch k {
	case "color":
		c, err := svgpaint.ParseColor(v)
		if err != nil {
			return err
		}
		if c.Keyword == svgpaint.NoKeyword {
			s.CurrentColor = c.Color
		}
	case "fill":
		p, err := r.readPaint(n, k, v, s.CurrentColor)
		if err != nil {
			return err
		}
		s.BaseFill = p
	case "stroke":
		p, err := r.readPaint(n, k, v, s.CurrentColor)
		if err != nil {
			return err
		}
		s.BaseStroke = p
	case "fill-opacity", "stroke-opacity", "opacity":
		op, err := svgdoc.ReadFraction(v)
		if err != nil {
			return err
		}
		op = math.Max(0, math.Min(1, op))
		switch k {
		case "fill-opacity":
			s.FillOpacity = op
		case "stroke-opacity":
			s.StrokeOpacity = op
		default:
			s.Opacity = op
		}
	case "fill-rule":
		s.UseNonZeroWinding = v != "evenodd"
	case "stroke-width":
		l, err := svgdoc.ParseLength(v)
		if err != nil {
			return err
		}
		vb := r.doc.ViewBox()
		s.StrokeWidth = math.Max(0, l.Resolve(vb.W, vb.H, svgdoc.RefDiag))
	case "stroke-linegap":
		switch v {
		case "flat":
			s.Join.LineGap = FlatGap
		case "round":
			s.Join.LineGap = RoundGap
		case "cubic":
			s.Join.LineGap = CubicGap
		case "quadratic":
			s.Join.LineGap = QuadraticGap
		}
	case "stroke-leadlinecap":
		s.Join.LeadLineCap = readCap(v, s.Join.LeadLineCap)
	case "stroke-linecap":
		s.Join.TrailLineCap = readCap(v, s.Join.TrailLineCap)
	case "stroke-linejoin":
		switch v {
		case "miter":
			s.Join.LineJoin = Miter
		case "miter-clip":
			s.Join.LineJoin = MiterClip
		case "arc-clip":
			s.Join.LineJoin = ArcClip
		case "round":
			s.Join.LineJoin = Round
		case "arc":
			s.Join.LineJoin = Arc
		case "bevel":
			s.Join.LineJoin = Bevel
		}
	case "stroke-miterlimit":
		mLimit, err := parseFloat(v)
		if err != nil {
			return err
		}
		s.Join.MiterLimit = mLimit
	case "stroke-dashoffset":
		l, err := svgdoc.ParseLength(v)
		if err != nil {
			return err
		}
		vb := r.doc.ViewBox()
		s.Dash.DashOffset = l.Resolve(vb.W, vb.H, svgdoc.RefDiag)
	case "stroke-dasharray":
		dashes, err := r.readDashes(v)
		if err != nil {
			return err
		}
		s.Dash.Dash = dashes
	case "clip-path":
		s.ClipPath = r.readReference(n, k, v, svgdoc.KindClipPath)
	case "mask":
		s.Mask = r.readReference(n, k, v, svgdoc.KindMask)
	case "transform":
		m, err := svgpath.ParseTransform(v)
		if err != nil {
			return err
		}
		s.Local = m
	case "font-size":
		l, err := svgdoc.ParseLength(v)
		if err != nil {
			return err
		}
		switch l.Unit {
		case svgdoc.UnitEm:
			s.FontSize *= l.Value
		case svgdoc.UnitPercent:
			s.FontSize *= l.Value / 100
		default:
			s.FontSize = l.Resolve(0, 0, svgdoc.RefDiag)
		}
	case "font-family":
		s.FontFamily = strings.Trim(v, `'"`)
	case "display":
		s.DisplayNone = v == "none"
	case "visibility":
		s.Visible = v == "visible"
	}
	return nil
}

func readCap(v string, def CapMode) CapMode {
	switch v {
	case "butt":
		return ButtCap
	case "round":
		return RoundCap
	case "square":
		return SquareCap
	case "cubic":
		return CubicCap
	case "quadratic":
		return QuadraticCap
	}
	return def
}

func (r *Resolver) readDashes(v string) ([]float64, error) {
	if v == "none" {
		return nil, nil
	}
	vb := r.doc.ViewBox()
	var (
		dList []float64
		total float64
	)
	for _, dstr := range splitOnCommaOrSpace(v) {
		l, err := svgdoc.ParseLength(dstr)
		if err != nil {
			return nil, err
		}
		d := l.Resolve(vb.W, vb.H, svgdoc.RefDiag)
		if d < 0 {
			return nil, fmt.Errorf("negative dash length %g", d)
		}
		total += d
		dList = append(dList, d)
	}
	if total == 0 { // rendered as a solid line
		return nil, nil
	}
	if len(dList)%2 != 0 { // the list is repeated to yield an even number of values
		dList = append(dList, dList...)
	}
	return dList, nil
}

// readReference resolves a clip-path or mask reference.
func (r *Resolver) readReference(n *svgdoc.Node, attr, v string, kind svgdoc.Kind) *svgdoc.Node {
	if v == "none" {
		return nil
	}
	id := svgdoc.RefID(v)
	target, ok := r.doc.Defs[id]
	switch {
	case !ok:
		r.Warn(n, attr, v, reasonMissing)
		return nil
	case target.Kind != kind:
		r.Warn(n, attr, v, reasonWrongKind)
		return nil
	case r.visiting[id]:
		r.Warn(n, attr, v, reasonCycle)
		return nil
	}
	return target
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || r == ' '
		})
}
