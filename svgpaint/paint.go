package svgpaint

import "image/color"

// Paint is the content used to fill or stroke a shape.
// It is one of None, Solid, *Gradient or *Pattern.
type Paint interface {
	isPaint()
}

// None disables the painting operation.
type None struct{}

// Solid is a plain color.
type Solid struct {
	Color color.NRGBA
}

func (None) isPaint()      {}
func (Solid) isPaint()     {}
func (*Gradient) isPaint() {}
func (*Pattern) isPaint()  {}

// IsNone reports whether painting with p has no visible effect:
// nil, None, a fully transparent color or a gradient without stops.
func IsNone(p Paint) bool {
	switch p := p.(type) {
	case nil, None:
		return true
	case Solid:
		return p.Color.A == 0
	case *Gradient:
		return p == nil || len(p.Stops) == 0
	case *Pattern:
		return p == nil
	}
	return false
}

// Colors returns the distinct colors used by the given paints,
// in order of first appearance. Gradients contribute their stop colors.
func Colors(paints ...Paint) []color.NRGBA {
	var (
		out  []color.NRGBA
		seen = map[color.NRGBA]bool{}
	)
	add := func(c color.NRGBA) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, p := range paints {
		switch p := p.(type) {
		case Solid:
			add(p.Color)
		case *Gradient:
			if p == nil {
				continue
			}
			for _, stop := range p.Stops {
				add(stop.Color)
			}
		}
	}
	return out
}
