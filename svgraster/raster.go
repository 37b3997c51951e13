// Implements a raster backend to render SVG images,
// by wrapping rasterx.
package svgraster

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgtree/svgicon"
	"github.com/benoitkugler/svgtree/svglayer"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
	"github.com/benoitkugler/svgtree/svgstyle"
)

var (
	_ svglayer.Surface      = (*Renderer)(nil) // assert interface conformance
	_ svglayer.BackingScale = (*Renderer)(nil)
)

// group is an offscreen layer, composited by EndLayer
type group struct {
	img     *image.RGBA
	opacity float64
	mask    *image.RGBA // set by BeginMask
}

// Renderer draws into an RGBA image. Every path is first rasterized
// in a scratch image, then composited through the current clip.
type Renderer struct {
	dst    *image.RGBA
	bounds image.Rectangle
	scale  float64

	scratch *image.RGBA
	scanner *rasterx.ScannerGV
	dasher  *rasterx.Dasher // to avoid shared state
	filler  *rasterx.Filler // we use separated instance

	transform svgpath.Matrix2D
	clips     []*image.Alpha // intersected clips, the last one is current
	groups    []*group
}

// NewRenderer returns a renderer drawing into dst.
// scale is the backing scale of the device, 1 if not positive.
func NewRenderer(dst *image.RGBA, scale float64) *Renderer {
	if scale <= 0 {
		scale = 1
	}
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	scratch := image.NewRGBA(b)
	scanner := rasterx.NewScannerGV(w, h, scratch, b)
	return &Renderer{
		dst:       dst,
		bounds:    b,
		scale:     scale,
		scratch:   scratch,
		scanner:   scanner,
		dasher:    rasterx.NewDasher(w, h, scanner),
		filler:    rasterx.NewFiller(w, h, scanner),
		transform: svgpath.Identity,
	}
}

// RasterSVGIconToImage renders the icon into an image of
// the size of its viewBox (times scale) and returns it.
// A nil configuration means svgicon.DefaultConfig.
func RasterSVGIconToImage(icon io.Reader, cfg *svgicon.Config, scale float64) (*image.RGBA, error) {
	c := svgicon.DefaultConfig
	if cfg != nil {
		c = *cfg
	}
	parsedIcon, err := svgicon.ReadIconStream(icon, c)
	if err != nil {
		return nil, err
	}
	if scale <= 0 {
		scale = 1
	}
	w, h := parsedIcon.ViewBoxSize()
	img := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(w*scale)), int(math.Ceil(h*scale))))
	parsedIcon.Draw(NewRenderer(img, scale), 0, 0, w, h)
	return img, nil
}

// BackingScale implements svglayer.BackingScale.
func (rd *Renderer) BackingScale() float64 { return rd.scale }

// Image returns the destination image.
func (rd *Renderer) Image() *image.RGBA { return rd.dst }

func (rd *Renderer) SetTransform(m svgpath.Matrix2D) { rd.transform = m }

// target is the image receiving the drawing operations
func (rd *Renderer) target() *image.RGBA {
	if n := len(rd.groups); n > 0 {
		g := rd.groups[n-1]
		if g.mask != nil {
			return g.mask
		}
		return g.img
	}
	return rd.dst
}

func (rd *Renderer) clip() *image.Alpha {
	if n := len(rd.clips); n > 0 {
		return rd.clips[n-1]
	}
	return nil
}

func toFixed(p svgpath.Point) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(math.Round(p.X * 64)), Y: fixed.Int26_6(math.Round(p.Y * 64))}
}

// addPath feeds the path, mapped to device space, to the adder.
func addPath(a rasterx.Adder, p svgpath.Path, m svgpath.Matrix2D) {
	var (
		started bool
		start   svgpath.Point // of the current sub path
	)
	ensure := func() {
		if !started {
			a.Start(toFixed(start))
			started = true
		}
	}
	for _, op := range p.Transform(m) {
		switch op := op.(type) {
		case svgpath.MoveTo:
			if started {
				a.Stop(false)
			}
			start = svgpath.Point(op)
			a.Start(toFixed(start))
			started = true
		case svgpath.LineTo:
			ensure()
			a.Line(toFixed(svgpath.Point(op)))
		case svgpath.CubicTo:
			ensure()
			a.CubeBezier(toFixed(op[0]), toFixed(op[1]), toFixed(op[2]))
		case svgpath.Close:
			if started {
				a.Stop(true)
				started = false
			}
		}
	}
	if started {
		a.Stop(false)
	}
}

// toRasterxGradient converts a gradient resolved in user space.
// Stop alpha is folded into the stop opacity, since rasterx expects
// opaque stop colors.
func toRasterxGradient(g *svgpaint.Gradient) rasterx.Gradient {
	var (
		points   [5]float64
		isRadial bool
	)
	switch g.Kind {
	case svgpaint.RadialGradient:
		r := g.Radial
		points = [5]float64{r.CX, r.CY, r.FX, r.FY, r.R}
		isRadial = true
	default:
		l := g.Linear
		points = [5]float64{l.X1, l.Y1, l.X2, l.Y2}
	}
	stops := make([]rasterx.GradStop, len(g.Stops))
	for i, s := range g.Stops {
		c := s.Color
		stops[i] = rasterx.GradStop{
			StopColor: color.NRGBA{c.R, c.G, c.B, 0xff},
			Offset:    s.Offset,
			Opacity:   s.Opacity * float64(c.A) / 0xff,
		}
	}
	return rasterx.Gradient{
		Points:   points,
		Stops:    stops,
		Matrix:   rasterx.Matrix2D(g.Matrix),
		Spread:   rasterx.SpreadMethod(g.Spread),
		Units:    rasterx.UserSpaceOnUse,
		IsRadial: isRadial,
	}
}

// setColor selects the paint of the next scan. It returns false
// if nothing should be drawn.
func (rd *Renderer) setColor(paint svgpaint.Paint, opacity float64) bool {
	switch paint := paint.(type) {
	case svgpaint.Solid:
		rd.scanner.SetColor(svgpaint.ApplyOpacity(paint.Color, opacity))
	case *svgpaint.Gradient:
		if svgpaint.IsNone(paint) {
			return false
		}
		grad := toRasterxGradient(paint)
		rd.scanner.SetColor(grad.GetColorFunctionUS(opacity, rasterx.Matrix2D(rd.transform)))
	default: // patterns are expanded by the caller
		return false
	}
	return true
}

// composite draws the scratch image onto the target, through the clip.
func (rd *Renderer) composite() {
	if c := rd.clip(); c != nil {
		draw.DrawMask(rd.target(), rd.bounds, rd.scratch, rd.bounds.Min, c, rd.bounds.Min, draw.Over)
	} else {
		draw.Draw(rd.target(), rd.bounds, rd.scratch, rd.bounds.Min, draw.Over)
	}
	clear(rd.scratch.Pix)
}

func (rd *Renderer) Fill(p svgpath.Path, paint svgpaint.Paint, opacity float64, nonZero bool) {
	if !rd.setColor(paint, opacity) {
		return
	}
	rd.filler.Clear()
	rd.filler.SetWinding(nonZero)
	addPath(rd.filler, p, rd.transform)
	rd.filler.Draw()
	rd.composite()
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgstyle.Round:     rasterx.Round,
		svgstyle.Bevel:     rasterx.Bevel,
		svgstyle.Miter:     rasterx.Miter,
		svgstyle.MiterClip: rasterx.MiterClip,
		svgstyle.Arc:       rasterx.Arc,
		svgstyle.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgstyle.NilCap:       nil,
		svgstyle.ButtCap:      rasterx.ButtCap,
		svgstyle.SquareCap:    rasterx.SquareCap,
		svgstyle.RoundCap:     rasterx.RoundCap,
		svgstyle.CubicCap:     rasterx.CubicCap,
		svgstyle.QuadraticCap: rasterx.QuadraticCap,
	}

	gapToFunc = [...]rasterx.GapFunc{
		svgstyle.NilGap:       rasterx.FlatGap,
		svgstyle.FlatGap:      rasterx.FlatGap,
		svgstyle.RoundGap:     rasterx.RoundGap,
		svgstyle.CubicGap:     rasterx.CubicGap,
		svgstyle.QuadraticGap: rasterx.QuadraticGap,
	}
)

// setStrokeOptions scales the stroke parameters to device space,
// since the path is stroked after its transformation.
func (rd *Renderer) setStrokeOptions(options svgstyle.StrokeOptions) {
	s := math.Sqrt(math.Abs(rd.transform.Det()))
	var dashes []float64
	if len(options.Dash.Dash) != 0 {
		dashes = make([]float64, len(options.Dash.Dash))
		for i, d := range options.Dash.Dash {
			dashes[i] = d * s
		}
	}
	capL, capT := capToFunc[options.Join.LeadLineCap], capToFunc[options.Join.TrailLineCap]
	if capL == nil && capT == nil {
		capL = rasterx.ButtCap
	}
	rd.dasher.SetStroke(
		fixed.Int26_6(options.LineWidth*s*64), fixed.Int26_6(options.Join.MiterLimit*64),
		capL, capT, gapToFunc[options.Join.LineGap],
		joinToJoin[options.Join.LineJoin], dashes, options.Dash.DashOffset*s,
	)
}

func (rd *Renderer) Stroke(p svgpath.Path, paint svgpaint.Paint, opacity float64, opts svgstyle.StrokeOptions) {
	if opts.LineWidth <= 0 || !rd.setColor(paint, opacity) {
		return
	}
	rd.dasher.Clear()
	rd.dasher.SetWinding(true)
	rd.setStrokeOptions(opts)
	addPath(rd.dasher, p, rd.transform)
	rd.dasher.Draw()
	rd.composite()
}

// PushClip rasterizes the path and intersects it with the current clip.
func (rd *Renderer) PushClip(p svgpath.Path, nonZero bool) {
	rd.scanner.SetColor(color.White)
	rd.filler.Clear()
	rd.filler.SetWinding(nonZero)
	addPath(rd.filler, p, rd.transform)
	rd.filler.Draw()

	mask := image.NewAlpha(rd.bounds)
	parent := rd.clip()
	for i := range mask.Pix {
		a := rd.scratch.Pix[4*i+3]
		if parent != nil {
			a = uint8(uint16(a) * uint16(parent.Pix[i]) / 0xff)
		}
		mask.Pix[i] = a
	}
	clear(rd.scratch.Pix)
	rd.clips = append(rd.clips, mask)
}

func (rd *Renderer) PopClip() {
	if n := len(rd.clips); n > 0 {
		rd.clips = rd.clips[:n-1]
	}
}

func (rd *Renderer) BeginLayer(opacity float64) {
	rd.groups = append(rd.groups, &group{img: image.NewRGBA(rd.bounds), opacity: opacity})
}

func (rd *Renderer) BeginMask() {
	if n := len(rd.groups); n > 0 {
		rd.groups[n-1].mask = image.NewRGBA(rd.bounds)
	}
}

// EndLayer composites the current group onto its parent, modulated
// by the group opacity and the luminance of the mask, if any.
func (rd *Renderer) EndLayer() {
	n := len(rd.groups)
	if n == 0 {
		return
	}
	g := rd.groups[n-1]
	rd.groups = rd.groups[:n-1]

	var mask image.Image
	if g.mask != nil {
		mask = luminanceMask(g.mask, g.opacity)
	} else {
		mask = image.NewUniform(color.Alpha{A: uint8(math.Round(math.Max(0, math.Min(1, g.opacity)) * 0xff))})
	}
	draw.DrawMask(rd.target(), rd.bounds, g.img, rd.bounds.Min, mask, rd.bounds.Min, draw.Over)
}

// luminanceMask converts the premultiplied colors of img to
// an alpha mask, scaled by opacity.
func luminanceMask(img *image.RGBA, opacity float64) *image.Alpha {
	out := image.NewAlpha(img.Bounds())
	for i := range out.Pix {
		px := img.Pix[4*i : 4*i+4 : 4*i+4]
		l := 0.2125*float64(px[0]) + 0.7154*float64(px[1]) + 0.0721*float64(px[2])
		out.Pix[i] = uint8(math.Round(math.Min(0xff, l*opacity)))
	}
	return out
}
