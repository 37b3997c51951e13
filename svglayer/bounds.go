package svglayer

import (
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
)

// Visibility selects which layers contribute to a bounding box.
type Visibility uint8

const (
	// Visible only counts layers painting something.
	Visible Visibility = iota
	// Inclusive counts every geometry, regardless of its paint.
	Inclusive
)

// Space selects the coordinate convention of a bounding box.
type Space uint8

const (
	// Raw is the document space, y axis pointing down.
	Raw Space = iota
	// Flipped mirrors the vertical axis around the viewBox.
	Flipped
)

// Bounds returns the bounding box of l, in the coordinate system of its
// parent, and false if no geometry contributes to it.
// The result is cached until the geometry or the transform of l,
// or of one of its descendants, changes.
// It is safe to call concurrently; the memo is not stored if an
// invalidation happens while it is computed.
func (l *Layer) Bounds(v Visibility) (svgpath.Rect, bool) {
	l.mu.Lock()
	m, gen := l.memo[v], l.gen
	l.mu.Unlock()
	if m.valid {
		return m.box, m.ok
	}

	box, ok := l.computeBounds(v)

	l.mu.Lock()
	if l.gen == gen {
		l.memo[v] = boundsMemo{box: box, ok: ok, valid: true}
	}
	l.mu.Unlock()
	return box, ok
}

func (l *Layer) computeBounds(v Visibility) (svgpath.Rect, bool) {
	box, ok := l.localBounds(v)
	if !ok {
		return svgpath.Rect{}, false
	}
	return l.transform.TransformRect(box), true
}

// localBounds returns the bounds in the coordinate system of the layer content.
func (l *Layer) localBounds(v Visibility) (box svgpath.Rect, ok bool) {
	if v == Visible && l.Opacity <= 0 {
		return box, false
	}
	switch l.Kind {
	case KindShape:
		box, ok = l.shapeBounds(v)
	default:
		for _, c := range l.Children {
			cb, cok := c.Bounds(v)
			if !cok {
				continue
			}
			if !ok {
				box, ok = cb, true
			} else {
				box = box.Union(cb)
			}
		}
	}
	if !ok {
		return box, false
	}
	if l.ClipRect != nil {
		if box, ok = box.Intersect(*l.ClipRect); !ok {
			return box, false
		}
	}
	if l.Clip != nil {
		cb, cok := l.Clip.Bounds(Inclusive)
		if !cok {
			return svgpath.Rect{}, false // an empty clip hides everything
		}
		box, ok = box.Intersect(cb)
	}
	return box, ok
}

// The stroke is approximated by padding the geometry bounds
// with half the stroke width on every side.
func (l *Layer) shapeBounds(v Visibility) (svgpath.Rect, bool) {
	if l.geometry.IsEmpty() {
		return svgpath.Rect{}, false
	}
	var fill, stroke bool
	if v == Visible {
		if l.Hidden {
			return svgpath.Rect{}, false
		}
		fill = !svgpaint.IsNone(l.Fill) && l.FillOpacity > 0
		stroke = !svgpaint.IsNone(l.Stroke) && l.StrokeOpacity > 0 && l.StrokeOptions.LineWidth > 0
		if !fill && !stroke {
			return svgpath.Rect{}, false
		}
	} else {
		_, noStroke := l.Stroke.(svgpaint.None)
		stroke = l.Stroke != nil && !noStroke && l.StrokeOptions.LineWidth > 0
	}
	box := l.geometry.Bounds()
	if stroke {
		box = box.Outset(l.StrokeOptions.LineWidth / 2)
	}
	return box, true
}

// Bounds returns the bounding box of the whole tree, in the viewBox
// coordinates. Degenerate content yields a zero rectangle.
func (t *Tree) Bounds(v Visibility, s Space) svgpath.Rect {
	box, ok := t.Root.Bounds(v)
	if !ok {
		return svgpath.Rect{}
	}
	if s == Flipped {
		box = box.FlipY(t.ViewBox.Y + t.ViewBox.MaxY())
	}
	return box
}
