// Package svglayer assembles a resolved document into a render tree,
// computes its bounding boxes and walks it onto a drawing surface.
package svglayer

import (
	"image/color"
	"sync"

	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
	"github.com/benoitkugler/svgtree/svgstyle"
)

// Kind is the type of a layer.
type Kind uint8

const (
	KindGroup Kind = iota
	KindShape
	KindSubDocument
)

// Layer is a node of the render tree.
// Group and sub-document layers own their children; shape layers
// own their geometry.
type Layer struct {
	Kind Kind
	ID   string

	// Fill and Stroke are the effective paints. BaseFill and BaseStroke
	// are the document values, used to revert overrides.
	Fill, Stroke         svgpaint.Paint
	BaseFill, BaseStroke svgpaint.Paint

	FillOpacity, StrokeOpacity float64
	StrokeOptions              svgstyle.StrokeOptions
	NonZero                    bool // fill rule

	Opacity float64 // group opacity
	Hidden  bool    // visibility:hidden, still counted in inclusive bounds

	// Clip and Mask are group layers whose content is expressed
	// in the coordinate system of the children.
	Clip, Mask *Layer
	// ClipRect restricts sub-document content to its viewport,
	// in the coordinate system of the children.
	ClipRect *svgpath.Rect

	Children []*Layer

	geometry  svgpath.Path
	transform svgpath.Matrix2D // relative to the parent layer
	parent    *Layer

	mu   sync.Mutex    // guards memo and gen
	memo [2]boundsMemo // indexed by Visibility
	gen  uint64        // incremented by each invalidation
}

type boundsMemo struct {
	box   svgpath.Rect
	ok    bool // false when nothing contributes
	valid bool
}

func newLayer(kind Kind, id string) *Layer {
	return &Layer{
		Kind:          kind,
		ID:            id,
		Fill:          svgpaint.None{},
		Stroke:        svgpaint.None{},
		BaseFill:      svgpaint.None{},
		BaseStroke:    svgpaint.None{},
		FillOpacity:   1,
		StrokeOpacity: 1,
		Opacity:       1,
		NonZero:       true,
		transform:     svgpath.Identity,
	}
}

// Parent returns the parent layer, or nil for the root.
func (l *Layer) Parent() *Layer { return l.parent }

// Geometry returns the path of a shape layer, in local coordinates.
func (l *Layer) Geometry() svgpath.Path { return l.geometry }

// Transform returns the layer transform, relative to its parent.
func (l *Layer) Transform() svgpath.Matrix2D { return l.transform }

// CTM returns the product of the transforms from the root to l.
func (l *Layer) CTM() svgpath.Matrix2D {
	m := l.transform
	for p := l.parent; p != nil; p = p.parent {
		m = p.transform.Mult(m)
	}
	return m
}

// SetGeometry replaces the path and invalidates the cached bounds.
func (l *Layer) SetGeometry(p svgpath.Path) {
	l.geometry = p
	l.invalidate()
}

// SetTransform replaces the transform and invalidates the cached bounds.
func (l *Layer) SetTransform(m svgpath.Matrix2D) {
	l.transform = m
	l.invalidate()
}

// invalidate marks l and its ancestors dirty.
func (l *Layer) invalidate() {
	for cur := l; cur != nil; cur = cur.parent {
		cur.resetMemo()
	}
}

func (l *Layer) resetMemo() {
	l.mu.Lock()
	l.memo = [2]boundsMemo{}
	l.gen++
	l.mu.Unlock()
}

func (l *Layer) appendChild(c *Layer) {
	c.parent = l
	l.Children = append(l.Children, c)
}

// Walk calls fn on l and its descendants, in pre-order.
// Clip, mask and pattern content are not visited.
func (l *Layer) Walk(fn func(*Layer)) {
	fn(l)
	for _, c := range l.Children {
		c.Walk(fn)
	}
}

// applyOverride replaces the paints of l and its children,
// including the content of pattern tiles.
func (l *Layer) applyOverride(fill, stroke *color.NRGBA, seen map[*svgpaint.Pattern]bool) {
	l.Walk(func(cur *Layer) {
		cur.Fill = svgstyle.ApplyOverride(cur.BaseFill, fill)
		cur.Stroke = svgstyle.ApplyOverride(cur.BaseStroke, stroke)
		cur.resetMemo()
		for _, p := range [2]svgpaint.Paint{cur.BaseFill, cur.BaseStroke} {
			if pat, ok := p.(*svgpaint.Pattern); ok && !seen[pat] {
				seen[pat] = true
				if content, _ := pat.Content.(*Layer); content != nil {
					content.applyOverride(fill, stroke, seen)
				}
			}
		}
	})
}
