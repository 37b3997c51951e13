package svgdoc

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/svgtree/svgpath"
)

// Align is the alignment part of preserveAspectRatio.
type Align uint8

const (
	AlignXMidYMid Align = iota // default
	AlignNone
	AlignXMinYMin
	AlignXMidYMin
	AlignXMaxYMin
	AlignXMinYMid
	AlignXMaxYMid
	AlignXMinYMax
	AlignXMidYMax
	AlignXMaxYMax
)

var alignNames = map[string]Align{
	"none":     AlignNone,
	"xminymin": AlignXMinYMin,
	"xmidymin": AlignXMidYMin,
	"xmaxymin": AlignXMaxYMin,
	"xminymid": AlignXMinYMid,
	"xmidymid": AlignXMidYMid,
	"xmaxymid": AlignXMaxYMid,
	"xminymax": AlignXMinYMax,
	"xmidymax": AlignXMidYMax,
	"xmaxymax": AlignXMaxYMax,
}

// Fractions returns the relative position of the alignment
// point on each axis: 0 for min, 0.5 for mid, 1 for max.
func (a Align) Fractions() (fx, fy float64) {
	switch a {
	case AlignXMinYMin:
		return 0, 0
	case AlignXMidYMin:
		return 0.5, 0
	case AlignXMaxYMin:
		return 1, 0
	case AlignXMinYMid:
		return 0, 0.5
	case AlignXMaxYMid:
		return 1, 0.5
	case AlignXMinYMax:
		return 0, 1
	case AlignXMidYMax:
		return 0.5, 1
	case AlignXMaxYMax:
		return 1, 1
	}
	return 0.5, 0.5
}

// PreserveAspectRatio is the aspect ratio policy of a viewport.
type PreserveAspectRatio struct {
	Align Align
	Slice bool // true for "slice", false for "meet"
}

// ParsePreserveAspectRatio parses values like "xMinYMax slice".
func ParsePreserveAspectRatio(v string) (PreserveAspectRatio, error) {
	var out PreserveAspectRatio
	fields := strings.Fields(strings.ToLower(v))
	if len(fields) > 0 && fields[0] == "defer" {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return out, nil
	}
	align, ok := alignNames[fields[0]]
	if !ok {
		return out, fmt.Errorf("unknown alignment %q: %w", fields[0], ErrInvalidAttr)
	}
	out.Align = align
	if len(fields) > 1 {
		switch fields[1] {
		case "meet":
		case "slice":
			out.Slice = true
		default:
			return out, fmt.Errorf("unknown aspect ratio policy %q: %w", fields[1], ErrInvalidAttr)
		}
	}
	return out, nil
}

// Viewport is the coordinate system established by a root or nested svg element.
type Viewport struct {
	X, Y, Width, Height float64 // position and size in the parent coordinates
	// ViewBox defaults to (0, 0, Width, Height) when
	// the element has no viewBox attribute
	ViewBox             svgpath.Rect
	PreserveAspectRatio PreserveAspectRatio
	// Sizeless is true when the element declares neither a viewBox
	// nor a width or height.
	Sizeless bool
}

// ParseViewBox reads a viewBox attribute. Negative sizes are an error.
func ParseViewBox(v string) (svgpath.Rect, error) {
	points, err := svgpath.ReadPoints(v)
	if err != nil {
		return svgpath.Rect{}, fmt.Errorf("%s: %w", err, ErrInvalidAttr)
	}
	if len(points) != 4 {
		return svgpath.Rect{}, fmt.Errorf("viewBox expects 4 numbers, got %d: %w", len(points), ErrInvalidAttr)
	}
	if points[2] < 0 || points[3] < 0 {
		return svgpath.Rect{}, fmt.Errorf("negative viewBox size: %w", ErrNegativeSize)
	}
	return svgpath.Rect{X: points[0], Y: points[1], W: points[2], H: points[3]}, nil
}

// ReadViewport reads the viewport attributes of an svg element.
// Percentages are resolved against the parent viewport size (pw, ph).
func ReadViewport(n *Node, pw, ph float64) (Viewport, error) {
	var (
		vp         Viewport
		hasViewBox bool
		hasW, hasH bool
		err        error
	)
	for _, attr := range [...]struct {
		name string
		ref  Reference
		dst  *float64
		set  *bool
	}{
		{"x", RefWidth, &vp.X, nil},
		{"y", RefHeight, &vp.Y, nil},
		{"width", RefWidth, &vp.Width, &hasW},
		{"height", RefHeight, &vp.Height, &hasH},
	} {
		v, ok := n.Attr(attr.name)
		if !ok || v == "" || v == "auto" {
			continue
		}
		l, err := ParseLength(v)
		if err != nil {
			return vp, attrError(n, attr.name, err)
		}
		*attr.dst = l.Resolve(pw, ph, attr.ref)
		if attr.set != nil {
			*attr.set = true
		}
	}
	if vp.Width < 0 || vp.Height < 0 {
		return vp, attrError(n, "width", ErrNegativeSize)
	}
	if v, ok := n.Attr("viewBox"); ok {
		vp.ViewBox, err = ParseViewBox(v)
		if err != nil {
			return vp, attrError(n, "viewBox", err)
		}
		hasViewBox = true
	}
	if v, ok := n.Attr("preserveAspectRatio"); ok {
		vp.PreserveAspectRatio, err = ParsePreserveAspectRatio(v)
		if err != nil {
			return vp, attrError(n, "preserveAspectRatio", err)
		}
	}
	switch {
	case !hasViewBox:
		vp.Sizeless = !hasW && !hasH
		if !hasW {
			vp.Width = pw
		}
		if !hasH {
			vp.Height = ph
		}
		vp.ViewBox = svgpath.Rect{W: vp.Width, H: vp.Height}
	default:
		// a missing size defaults to the viewBox one
		if !hasW {
			vp.Width = vp.ViewBox.W
		}
		if !hasH {
			vp.Height = vp.ViewBox.H
		}
	}
	return vp, nil
}
