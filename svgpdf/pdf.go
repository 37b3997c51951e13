// Implements a PDF backend to render SVG images,
// by wrapping github.com/jung-kurt/gofpdf.
package svgpdf

import (
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgicon"
	"github.com/benoitkugler/svgtree/svglayer"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
	"github.com/benoitkugler/svgtree/svgstyle"
)

var _ svglayer.Surface = (*Renderer)(nil) // assert interface conformance

// Renderer writes the drawing operations to the current page of a PDF.
// Coordinates are given in the unit of the document.
//
// Groups are not isolated: their opacity is multiplied into the
// opacity of their content. Masks are not supported, and their
// content is skipped.
type Renderer struct {
	pdf *gofpdf.Fpdf

	transform svgpath.Matrix2D
	clips     int       // graphic states saved by PushClip
	opacities []float64 // group opacities, cumulated
	masking   []bool    // true when drawing a mask
}

// NewRenderer return a renderer which will
// write to the given `pdf`.
func NewRenderer(pdf *gofpdf.Fpdf) *Renderer {
	return &Renderer{pdf: pdf, transform: svgpath.Identity}
}

func (r *Renderer) SetTransform(m svgpath.Matrix2D) { r.transform = m }

// opacity returns the cumulated opacity of the enclosing groups
func (r *Renderer) opacity() float64 {
	if n := len(r.opacities); n > 0 {
		return r.opacities[n-1]
	}
	return 1
}

func (r *Renderer) skipped() bool {
	n := len(r.masking)
	return n > 0 && r.masking[n-1]
}

// path writes the path, mapped by the current transform.
func (r *Renderer) path(p svgpath.Path) {
	for _, op := range p.Transform(r.transform) {
		switch op := op.(type) {
		case svgpath.MoveTo:
			r.pdf.MoveTo(op.X, op.Y)
		case svgpath.LineTo:
			r.pdf.LineTo(op.X, op.Y)
		case svgpath.CubicTo:
			r.pdf.CurveBezierCubicTo(op[0].X, op[0].Y, op[1].X, op[1].Y, op[2].X, op[2].Y)
		case svgpath.Close:
			r.pdf.ClosePath()
		}
	}
}

func (r *Renderer) setAlpha(opacity float64) {
	r.pdf.SetAlpha(math.Max(0, math.Min(1, opacity*r.opacity())), "Normal")
}

func (r *Renderer) Fill(p svgpath.Path, paint svgpaint.Paint, opacity float64, nonZero bool) {
	if r.skipped() || svgpaint.IsNone(paint) {
		return
	}
	switch paint := paint.(type) {
	case svgpaint.Solid:
		c := paint.Color
		r.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		r.setAlpha(opacity * float64(c.A) / 0xff)
		r.path(p)
		if nonZero {
			r.pdf.DrawPath("f")
		} else {
			r.pdf.DrawPath("f*")
		}
	case *svgpaint.Gradient:
		r.gradient(p, paint, opacity, nonZero)
	}
}

// gradient fills the path with a two colors shading, using the
// first and last stops, on the device bounding box of the path.
func (r *Renderer) gradient(p svgpath.Path, g *svgpaint.Gradient, opacity float64, nonZero bool) {
	box := p.Transform(r.transform).Bounds()
	if box.IsEmpty() {
		return
	}
	if len(g.Stops) > 2 {
		logx.Logger().Debug("pdf gradient reduced to its end stops", "gradient", g.ID, "stops", len(g.Stops))
	}
	s1, s2 := g.Stops[0], g.Stops[len(g.Stops)-1]
	c1, c2 := svgpaint.ApplyOpacity(s1.Color, s1.Opacity), svgpaint.ApplyOpacity(s2.Color, s2.Opacity)
	r.setAlpha(opacity * (float64(c1.A) + float64(c2.A)) / (2 * 0xff))

	// from gradient space to the normalized box space, whose origin
	// is the lower left corner
	toBox := svgpath.Identity.Translate(0, 1).Scale(1/box.W, -1/box.H).Translate(-box.X, -box.Y).
		Mult(r.transform).Mult(g.Matrix)

	r.pushPath(p, nonZero)
	switch g.Kind {
	case svgpaint.RadialGradient:
		rad := g.Radial
		fx, fy := toBox.Transform(rad.FX, rad.FY)
		cx, cy := toBox.Transform(rad.CX, rad.CY)
		rx, ry := toBox.TransformVector(rad.R, 0)
		radius := math.Hypot(rx, ry)
		r.pdf.RadialGradient(box.X, box.Y, box.W, box.H,
			int(c1.R), int(c1.G), int(c1.B),
			int(c2.R), int(c2.G), int(c2.B), fx, fy, cx, cy, radius)
	default:
		lin := g.Linear
		x1, y1 := toBox.Transform(lin.X1, lin.Y1)
		x2, y2 := toBox.Transform(lin.X2, lin.Y2)
		r.pdf.LinearGradient(box.X, box.Y, box.W, box.H,
			int(c1.R), int(c1.G), int(c1.B),
			int(c2.R), int(c2.G), int(c2.B), x1, y1, x2, y2)
	}
	r.popState()
}

var (
	capNames  = [...]string{svgstyle.ButtCap: "butt", svgstyle.SquareCap: "square", svgstyle.RoundCap: "round"}
	joinNames = [...]string{svgstyle.Round: "round", svgstyle.Bevel: "bevel", svgstyle.Miter: "miter"}
)

// capName returns the PDF name of the first supported cap.
func capName(caps ...svgstyle.CapMode) string {
	for _, c := range caps {
		if int(c) < len(capNames) && capNames[c] != "" {
			return capNames[c]
		}
	}
	return "butt"
}

func (r *Renderer) Stroke(p svgpath.Path, paint svgpaint.Paint, opacity float64, opts svgstyle.StrokeOptions) {
	if r.skipped() || opts.LineWidth <= 0 {
		return
	}
	var c svgpaint.Solid
	switch paint := paint.(type) {
	case svgpaint.Solid:
		c = paint
	case *svgpaint.Gradient: // strokes use the average color
		if len(paint.Stops) == 0 {
			return
		}
		c.Color = paint.ColorAt(0.5)
	default:
		return
	}
	r.pdf.SetDrawColor(int(c.Color.R), int(c.Color.G), int(c.Color.B))
	r.setAlpha(opacity * float64(c.Color.A) / 0xff)

	s := math.Sqrt(math.Abs(r.transform.Det()))
	r.pdf.SetLineWidth(opts.LineWidth * s)
	r.pdf.SetLineCapStyle(capName(opts.Join.TrailLineCap, opts.Join.LeadLineCap))
	if int(opts.Join.LineJoin) < len(joinNames) && joinNames[opts.Join.LineJoin] != "" {
		r.pdf.SetLineJoinStyle(joinNames[opts.Join.LineJoin])
	} else {
		r.pdf.SetLineJoinStyle("miter")
	}
	dashes := make([]float64, len(opts.Dash.Dash))
	for i, d := range opts.Dash.Dash {
		dashes[i] = d * s
	}
	r.pdf.SetDashPattern(dashes, opts.Dash.DashOffset*s)

	r.path(p)
	r.pdf.DrawPath("S")
}

// pushPath saves the graphic state and intersects the clip with the path.
func (r *Renderer) pushPath(p svgpath.Path, nonZero bool) {
	r.pdf.RawWriteStr("q")
	r.path(p)
	if nonZero {
		r.pdf.RawWriteStr("W n")
	} else {
		r.pdf.RawWriteStr("W* n")
	}
}

func (r *Renderer) popState() { r.pdf.RawWriteStr("Q") }

func (r *Renderer) PushClip(p svgpath.Path, nonZero bool) {
	r.clips++
	r.pushPath(p, nonZero)
}

func (r *Renderer) PopClip() {
	if r.clips == 0 {
		return
	}
	r.clips--
	r.popState()
}

func (r *Renderer) BeginLayer(opacity float64) {
	r.opacities = append(r.opacities, r.opacity()*opacity)
	r.masking = append(r.masking, r.skipped())
}

func (r *Renderer) BeginMask() {
	if n := len(r.masking); n > 0 {
		r.masking[n-1] = true
	}
}

func (r *Renderer) EndLayer() {
	if n := len(r.opacities); n > 0 {
		r.opacities = r.opacities[:n-1]
		r.masking = r.masking[:n-1]
	}
}

// DrawIcon renders the icon on a new page of the size of its
// viewBox, in the unit of the document.
func DrawIcon(pdf *gofpdf.Fpdf, icon *svgicon.SvgIcon) {
	w, h := icon.ViewBoxSize()
	// "P" keeps the width and height as given
	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
	icon.Draw(NewRenderer(pdf), 0, 0, w, h)
}

// WriteIcon reads the icons and writes a PDF file with
// one page per icon to out. The document unit is the point.
func WriteIcon(out io.Writer, cfg svgicon.Config, icons ...io.Reader) error {
	pdf := gofpdf.New("", "pt", "", "")
	for i, src := range icons {
		icon, err := svgicon.ReadIconStream(src, cfg)
		if err != nil {
			return fmt.Errorf("svgpdf: icon %d: %w", i, err)
		}
		DrawIcon(pdf, icon)
	}
	return pdf.Output(out)
}
