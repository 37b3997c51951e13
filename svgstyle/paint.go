package svgstyle

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/svgtree/svgdoc"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", v, svgdoc.ErrInvalidAttr)
	}
	return f, nil
}

// readPaint parses a fill or stroke value: a color, a keyword, or a
// reference to a paint server with an optional fallback color.
// An unresolved reference degrades to the fallback (or none), with a warning.
func (r *Resolver) readPaint(n *svgdoc.Node, attr, v string, current color.NRGBA) (svgpaint.Paint, error) {
	if !strings.HasPrefix(v, "url(") {
		c, err := svgpaint.ParseColor(v)
		if err != nil {
			return nil, err
		}
		return c.AsPaint(current), nil
	}
	ref, fallback := v, ""
	if i := strings.IndexByte(v, ')'); i != -1 {
		ref, fallback = v[:i+1], strings.TrimSpace(v[i+1:])
	}
	if p, ok := r.paintServer(n, attr, ref); ok {
		return p, nil
	}
	if fallback == "" {
		return svgpaint.None{}, nil
	}
	c, err := svgpaint.ParseColor(fallback)
	if err != nil {
		return nil, err
	}
	return c.AsPaint(current), nil
}

func (r *Resolver) paintServer(n *svgdoc.Node, attr, ref string) (svgpaint.Paint, bool) {
	id := svgdoc.RefID(ref)
	target, ok := r.doc.Defs[id]
	if !ok {
		r.Warn(n, attr, ref, reasonMissing)
		return nil, false
	}
	switch target.Kind {
	case svgdoc.KindLinearGradient, svgdoc.KindRadialGradient:
		g := r.gradient(target)
		if g == nil { // the href chain is cyclic
			r.Warn(n, attr, ref, reasonCycle)
			return nil, false
		}
		return g.Simplify(), true
	case svgdoc.KindPattern:
		if r.visiting[id] {
			r.Warn(n, attr, ref, reasonCycle)
			return nil, false
		}
		p := r.pattern(target)
		if p == nil {
			return svgpaint.None{}, true
		}
		return p, true
	default:
		r.Warn(n, attr, ref, reasonWrongKind)
		return nil, false
	}
}

// hrefChain returns n followed by the elements it inherits from,
// through href attributes. The chain stops on the first element
// not accepted by keep. It returns false on a cycle.
func (r *Resolver) hrefChain(n *svgdoc.Node, keep func(svgdoc.Kind) bool) ([]*svgdoc.Node, bool) {
	chain := []*svgdoc.Node{n}
	seen := map[*svgdoc.Node]bool{n: true}
	for cur := n; cur.Href() != ""; {
		next, ok := r.doc.Defs[cur.Href()]
		if !ok {
			r.Warn(cur, "href", "#"+cur.Href(), reasonMissing)
			break
		}
		if !keep(next.Kind) {
			r.Warn(cur, "href", "#"+cur.Href(), reasonWrongKind)
			break
		}
		if seen[next] {
			r.Warn(cur, "href", "#"+cur.Href(), reasonCycle)
			return nil, false
		}
		seen[next] = true
		chain = append(chain, next)
		cur = next
	}
	return chain, true
}

// lookupChain returns the first value of attr found along the chain.
func lookupChain(chain []*svgdoc.Node, attr string) (string, bool) {
	for _, n := range chain {
		if v, ok := n.Attr(attr); ok {
			return v, true
		}
	}
	return "", false
}

func isGradient(k svgdoc.Kind) bool {
	return k == svgdoc.KindLinearGradient || k == svgdoc.KindRadialGradient
}

// gradient builds (and caches) the gradient defined by n.
// It returns nil if the gradient can't be used.
func (r *Resolver) gradient(n *svgdoc.Node) *svgpaint.Gradient {
	if g, ok := r.gradients[n]; ok {
		return g
	}
	r.gradients[n] = nil // cycle guard
	chain, ok := r.hrefChain(n, isGradient)
	if !ok {
		return nil
	}
	g := &svgpaint.Gradient{ID: n.ID, Matrix: svgpath.Identity}
	if v, _ := lookupChain(chain, "gradientUnits"); v == "userSpaceOnUse" {
		g.Units = svgpaint.UserSpaceOnUse
	}
	switch v, _ := lookupChain(chain, "spreadMethod"); v {
	case "reflect":
		g.Spread = svgpaint.ReflectSpread
	case "repeat":
		g.Spread = svgpaint.RepeatSpread
	}
	if v, ok := lookupChain(chain, "gradientTransform"); ok {
		m, err := svgpath.ParseTransform(v)
		if err != nil {
			r.Warn(n, "gradientTransform", v, fmt.Sprintf("%s: %s", reasonInvalid, err))
		} else {
			g.Matrix = m
		}
	}

	vb := r.doc.ViewBox()
	coord := func(attr string, ref svgdoc.Reference, def float64) float64 {
		v, ok := lookupChain(chain, attr)
		if !ok {
			return def
		}
		var (
			f   float64
			err error
		)
		if g.Units == svgpaint.ObjectBoundingBox {
			f, err = svgdoc.ReadFraction(v)
		} else {
			var l svgdoc.Length
			l, err = svgdoc.ParseLength(v)
			f = l.Resolve(vb.W, vb.H, ref)
		}
		if err != nil {
			r.Warn(n, attr, v, fmt.Sprintf("%s: %s", reasonInvalid, err))
			return def
		}
		return f
	}
	// defaults expressed in user space are fractions of the viewBox
	def := func(f float64, ref svgdoc.Reference) float64 {
		if g.Units == svgpaint.ObjectBoundingBox {
			return f
		}
		return svgdoc.Length{Value: f * 100, Unit: svgdoc.UnitPercent}.Resolve(vb.W, vb.H, ref)
	}

	if n.Kind == svgdoc.KindRadialGradient {
		g.Kind = svgpaint.RadialGradient
		d := svgpaint.DefaultRadial
		g.Radial.CX = coord("cx", svgdoc.RefWidth, def(d.CX, svgdoc.RefWidth))
		g.Radial.CY = coord("cy", svgdoc.RefHeight, def(d.CY, svgdoc.RefHeight))
		g.Radial.R = coord("r", svgdoc.RefDiag, def(d.R, svgdoc.RefDiag))
		g.Radial.FX = coord("fx", svgdoc.RefWidth, g.Radial.CX)
		g.Radial.FY = coord("fy", svgdoc.RefHeight, g.Radial.CY)
		g.Radial.FR = coord("fr", svgdoc.RefDiag, def(d.FR, svgdoc.RefDiag))
	} else {
		g.Kind = svgpaint.LinearGradient
		_, hasCoords := lookupChain(chain, "x1")
		for _, a := range [...]string{"y1", "x2", "y2"} {
			if _, ok := lookupChain(chain, a); ok {
				hasCoords = true
			}
		}
		angle, hasAngle := lookupChain(chain, "angle")
		if hasAngle && !hasCoords {
			deg, err := parseFloat(angle)
			if err != nil {
				r.Warn(n, "angle", angle, fmt.Sprintf("%s: %s", reasonInvalid, err))
				deg = 0
			}
			// angles are always relative to the bounding box
			g.Units = svgpaint.ObjectBoundingBox
			g.Linear = svgpaint.LinearFromAngle(deg)
		} else {
			d := svgpaint.DefaultLinear
			g.Linear.X1 = coord("x1", svgdoc.RefWidth, def(d.X1, svgdoc.RefWidth))
			g.Linear.Y1 = coord("y1", svgdoc.RefHeight, def(d.Y1, svgdoc.RefHeight))
			g.Linear.X2 = coord("x2", svgdoc.RefWidth, def(d.X2, svgdoc.RefWidth))
			g.Linear.Y2 = coord("y2", svgdoc.RefHeight, def(d.Y2, svgdoc.RefHeight))
		}
	}

	for _, cn := range chain {
		if stops := r.readStops(cn); len(stops) > 0 {
			g.Stops = stops
			break
		}
	}
	r.gradients[n] = g
	return g
}

func (r *Resolver) readStops(n *svgdoc.Node) []svgpaint.GradStop {
	var stops []svgpaint.GradStop
	for _, c := range n.Children {
		if c.Kind != svgdoc.KindStop {
			continue
		}
		stop := svgpaint.GradStop{Opacity: 1, Color: DefaultStyle.CurrentColor}
		if v, ok := c.Attr("offset"); ok {
			off, err := svgdoc.ReadFraction(v)
			if err != nil {
				r.Warn(c, "offset", v, fmt.Sprintf("%s: %s", reasonInvalid, err))
			}
			stop.Offset = off
		}
		current := DefaultStyle.CurrentColor
		if v, ok := c.Attr("color"); ok {
			if cc, err := svgpaint.ParseColor(v); err == nil && cc.Keyword == svgpaint.NoKeyword {
				current = cc.Color
			}
		}
		if v, ok := c.Attr("stop-color"); ok {
			cc, err := svgpaint.ParseColor(v)
			switch {
			case err != nil:
				r.Warn(c, "stop-color", v, fmt.Sprintf("%s: %s", reasonInvalid, err))
			case cc.Keyword == svgpaint.KeywordCurrentColor:
				stop.Color = current
			case cc.Keyword == svgpaint.KeywordNone:
				stop.Color.A = 0
			default:
				stop.Color = cc.Color
			}
		}
		if v, ok := c.Attr("stop-opacity"); ok {
			op, err := svgdoc.ReadFraction(v)
			if err != nil {
				r.Warn(c, "stop-opacity", v, fmt.Sprintf("%s: %s", reasonInvalid, err))
			} else {
				stop.Opacity = math.Max(0, math.Min(1, op))
			}
		}
		stops = append(stops, stop)
	}
	return stops
}

// pattern builds (and caches) the pattern defined by n.
// It returns nil for an empty tile, which paints nothing.
func (r *Resolver) pattern(n *svgdoc.Node) *svgpaint.Pattern {
	if p, ok := r.patterns[n]; ok {
		return p
	}
	r.patterns[n] = nil
	chain, ok := r.hrefChain(n, func(k svgdoc.Kind) bool { return k == svgdoc.KindPattern })
	if !ok {
		return nil
	}
	p := &svgpaint.Pattern{ID: n.ID, ContentUnits: svgpaint.UserSpaceOnUse, Matrix: svgpath.Identity}
	if v, _ := lookupChain(chain, "patternUnits"); v == "userSpaceOnUse" {
		p.Units = svgpaint.UserSpaceOnUse
	}
	if v, _ := lookupChain(chain, "patternContentUnits"); v == "objectBoundingBox" {
		p.ContentUnits = svgpaint.ObjectBoundingBox
	}
	if v, ok := lookupChain(chain, "patternTransform"); ok {
		m, err := svgpath.ParseTransform(v)
		if err != nil {
			r.Warn(n, "patternTransform", v, fmt.Sprintf("%s: %s", reasonInvalid, err))
		} else {
			p.Matrix = m
		}
	}
	if v, ok := lookupChain(chain, "viewBox"); ok {
		vb, err := svgdoc.ParseViewBox(v)
		if err != nil {
			r.Warn(n, "viewBox", v, fmt.Sprintf("%s: %s", reasonInvalid, err))
		} else {
			p.ViewBox = &vb
		}
	}
	vb := r.doc.ViewBox()
	dims := [4]*float64{&p.Tile.X, &p.Tile.Y, &p.Tile.W, &p.Tile.H}
	for i, attr := range [...]string{"x", "y", "width", "height"} {
		v, ok := lookupChain(chain, attr)
		if !ok {
			continue
		}
		var (
			f   float64
			err error
		)
		if p.Units == svgpaint.ObjectBoundingBox {
			f, err = svgdoc.ReadFraction(v)
		} else {
			var l svgdoc.Length
			l, err = svgdoc.ParseLength(v)
			ref := svgdoc.RefWidth
			if i%2 == 1 {
				ref = svgdoc.RefHeight
			}
			f = l.Resolve(vb.W, vb.H, ref)
		}
		if err != nil {
			r.Warn(n, attr, v, fmt.Sprintf("%s: %s", reasonInvalid, err))
			continue
		}
		*dims[i] = f
	}
	if p.Tile.IsEmpty() {
		return nil
	}
	for _, cn := range chain {
		if len(cn.Children) > 0 {
			r.patternContent[p] = cn
			break
		}
	}
	r.patterns[n] = p
	return p
}

// PatternContent returns the element whose children are
// the content of the tile, or nil for an empty pattern.
func (r *Resolver) PatternContent(p *svgpaint.Pattern) *svgdoc.Node {
	return r.patternContent[p]
}
