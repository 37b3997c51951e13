package svglayer

import (
	"image/color"
	"math"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
	"github.com/benoitkugler/svgtree/svgstyle"
)

// Surface receives the drawing operations of a render tree walk.
// Paths are given in the coordinate system set by the last SetTransform call.
type Surface interface {
	SetTransform(m svgpath.Matrix2D)
	// PushClip intersects the clip region with the given path.
	PushClip(p svgpath.Path, nonZero bool)
	PopClip()
	// Fill paints the path. Gradients are expressed in the path coordinates.
	Fill(p svgpath.Path, paint svgpaint.Paint, opacity float64, nonZero bool)
	Stroke(p svgpath.Path, paint svgpaint.Paint, opacity float64, opts svgstyle.StrokeOptions)
	// BeginLayer starts an offscreen group, composited with the given
	// opacity by the matching EndLayer. When BeginMask is called in between,
	// the following operations draw the mask, whose luminance modulates
	// the group.
	BeginLayer(opacity float64)
	BeginMask()
	EndLayer()
}

// BackingScale is implemented by devices with a pixel density
// different from their logical coordinates.
type BackingScale interface {
	BackingScale() float64
}

// DrawOptions configures a draw walk.
type DrawOptions struct {
	Rect svgpath.Rect // destination, where the viewBox is fitted
	// Backing is optional. It is queried once per draw.
	Backing BackingScale
	// Debug outlines the shapes which paint nothing.
	Debug bool
	// FlipY mirrors the destination vertically, for surfaces
	// whose y axis points up.
	FlipY bool
}

// DebugColor is the color of the outlines drawn in debug mode.
var DebugColor = color.NRGBA{0xff, 0, 0xff, 0xff}

// maxTiles bounds the number of pattern tiles drawn for one shape
const maxTiles = 4096

type drawer struct {
	surface Surface
	opts    DrawOptions
}

// Draw walks the tree onto the surface, fitting the viewBox
// into opts.Rect according to the document aspect ratio policy.
func (t *Tree) Draw(s Surface, opts DrawOptions) {
	scale := 1.
	if opts.Backing != nil {
		if bs := opts.Backing.BackingScale(); bs > 0 {
			scale = bs
		}
	}
	device := svgpath.Identity.Scale(scale, scale).Translate(opts.Rect.X, opts.Rect.Y)
	if opts.FlipY {
		device = device.Translate(0, opts.Rect.H).Scale(1, -1)
	}
	fit := FitTransform(t.ViewBox, t.Viewport.PreserveAspectRatio, opts.Rect.W, opts.Rect.H)
	if fit.Det() == 0 {
		return
	}
	d := drawer{surface: s, opts: opts}
	d.layer(t.Root, device.Mult(fit))
}

func (d *drawer) layer(l *Layer, parent svgpath.Matrix2D) {
	if l.Opacity <= 0 {
		return
	}
	m := parent.Mult(l.transform)
	offscreen := l.Opacity < 1 || l.Mask != nil
	if offscreen {
		d.surface.SetTransform(m)
		d.surface.BeginLayer(l.Opacity)
	}
	clips := 0
	if l.ClipRect != nil {
		var r svgpath.Path
		r.AddRect(l.ClipRect.X, l.ClipRect.Y, l.ClipRect.W, l.ClipRect.H)
		d.surface.SetTransform(m)
		d.surface.PushClip(r, true)
		clips++
	}
	if l.Clip != nil {
		d.pushClip(l.Clip, m)
		clips++
	}

	if l.Kind == KindShape {
		d.shape(l, m)
	} else {
		for _, c := range l.Children {
			d.layer(c, m)
		}
	}

	for ; clips > 0; clips-- {
		d.surface.PopClip()
	}
	if l.Mask != nil {
		d.surface.BeginMask()
		d.layer(l.Mask, m)
	}
	if offscreen {
		d.surface.EndLayer()
	}
}

// pushClip flattens the shapes of the clip content into
// one device space path.
func (d *drawer) pushClip(clip *Layer, parent svgpath.Matrix2D) {
	var (
		union   svgpath.Path
		nonZero = true
		first   = true
	)
	var walk func(l *Layer, m svgpath.Matrix2D)
	walk = func(l *Layer, m svgpath.Matrix2D) {
		m = m.Mult(l.transform)
		if l.Kind == KindShape {
			if l.Hidden {
				return
			}
			if first {
				nonZero, first = l.NonZero, false
			}
			union = append(union, l.geometry.Transform(m)...)
			return
		}
		for _, c := range l.Children {
			walk(c, m)
		}
	}
	walk(clip, parent)
	d.surface.SetTransform(svgpath.Identity)
	d.surface.PushClip(union, nonZero)
}

func (d *drawer) shape(l *Layer, m svgpath.Matrix2D) {
	if len(l.geometry) == 0 {
		return
	}
	painted := false
	if !l.Hidden {
		if !svgpaint.IsNone(l.Fill) && l.FillOpacity > 0 {
			d.fill(l, l.Fill, m)
			painted = true
		}
		if !svgpaint.IsNone(l.Stroke) && l.StrokeOpacity > 0 && l.StrokeOptions.LineWidth > 0 {
			d.stroke(l, m)
			painted = true
		}
	}
	if det := math.Abs(m.Det()); !painted && d.opts.Debug && det > 0 {
		opts := svgstyle.DefaultStyle.StrokeOptions()
		opts.LineWidth = 1 / math.Sqrt(det) // one device pixel
		d.surface.SetTransform(m)
		d.surface.Stroke(l.geometry, svgpaint.Solid{Color: DebugColor}, 1, opts)
	}
}

func (d *drawer) fill(l *Layer, paint svgpaint.Paint, m svgpath.Matrix2D) {
	d.surface.SetTransform(m)
	switch paint := paint.(type) {
	case *svgpaint.Gradient:
		d.surface.Fill(l.geometry, paint.Resolve(l.geometry.Bounds()), l.FillOpacity, l.NonZero)
	case *svgpaint.Pattern:
		d.pattern(l, paint, m)
	default:
		d.surface.Fill(l.geometry, paint, l.FillOpacity, l.NonZero)
	}
}

func (d *drawer) stroke(l *Layer, m svgpath.Matrix2D) {
	paint := l.Stroke
	switch p := paint.(type) {
	case *svgpaint.Gradient:
		paint = p.Resolve(l.geometry.Bounds())
	case *svgpaint.Pattern:
		// strokes can't be expressed as clips: use the main tile color
		paint = svgpaint.None{}
		if content, _ := p.Content.(*Layer); content != nil {
			if colors := layerColors(content); len(colors) > 0 {
				paint = svgpaint.Solid{Color: colors[0]}
			}
		}
	}
	d.surface.SetTransform(m)
	d.surface.Stroke(l.geometry, paint, l.StrokeOpacity, l.StrokeOptions)
}

// pattern fills the shape by repeating the tile content,
// clipped by the shape geometry.
func (d *drawer) pattern(l *Layer, pat *svgpaint.Pattern, m svgpath.Matrix2D) {
	content, _ := pat.Content.(*Layer)
	if content == nil {
		return
	}
	bbox := l.geometry.Bounds()
	tile, contentM := pat.Resolve(bbox)
	if tile.IsEmpty() {
		return
	}
	pm := m.Mult(pat.Matrix)
	area := pat.Matrix.Invert().TransformRect(bbox)
	i0, i1 := math.Floor((area.X-tile.X)/tile.W), math.Ceil((area.MaxX()-tile.X)/tile.W)
	j0, j1 := math.Floor((area.Y-tile.Y)/tile.H), math.Ceil((area.MaxY()-tile.Y)/tile.H)
	if (i1-i0)*(j1-j0) > maxTiles {
		logx.Logger().Warn("too many pattern tiles, pattern truncated", "pattern", pat.ID, "tiles", (i1-i0)*(j1-j0))
		i1 = i0 + math.Min(i1-i0, math.Sqrt(maxTiles))
		j1 = j0 + math.Min(j1-j0, math.Sqrt(maxTiles))
	}

	d.surface.SetTransform(m)
	d.surface.PushClip(l.geometry, l.NonZero)
	if l.FillOpacity < 1 {
		d.surface.BeginLayer(l.FillOpacity)
	}
	var cell svgpath.Path
	cell.AddRect(0, 0, tile.W, tile.H)
	for j := j0; j < j1; j++ {
		for i := i0; i < i1; i++ {
			tm := pm.Translate(tile.X+i*tile.W, tile.Y+j*tile.H)
			d.surface.SetTransform(tm)
			d.surface.PushClip(cell, true)
			d.layer(content, tm.Mult(contentM))
			d.surface.PopClip()
		}
	}
	if l.FillOpacity < 1 {
		d.surface.EndLayer()
	}
	d.surface.PopClip()
}

// ApplyOverride replaces every fill (resp. stroke) color by the given
// one, except "none". A nil color restores the document values.
func (t *Tree) ApplyOverride(fill, stroke *color.NRGBA) {
	t.Root.applyOverride(fill, stroke, map[*svgpaint.Pattern]bool{})
}

// Colors returns the distinct colors painted by the tree, in order
// of first appearance. Fully transparent paints are skipped.
func (t *Tree) Colors() []color.NRGBA { return layerColors(t.Root) }

func layerColors(root *Layer) []color.NRGBA {
	var (
		paints []svgpaint.Paint
		seen   = map[*svgpaint.Pattern]bool{}
		walk   func(*Layer)
	)
	walk = func(root *Layer) {
		root.Walk(func(l *Layer) {
			if l.Kind != KindShape {
				return
			}
			for _, p := range [2]svgpaint.Paint{l.Fill, l.Stroke} {
				if svgpaint.IsNone(p) {
					continue
				}
				pat, ok := p.(*svgpaint.Pattern)
				if !ok {
					paints = append(paints, p)
					continue
				}
				if content, _ := pat.Content.(*Layer); content != nil && !seen[pat] {
					seen[pat] = true
					walk(content)
				}
			}
		})
	}
	walk(root)
	return svgpaint.Colors(paints...)
}
