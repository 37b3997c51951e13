package svglayer

import (
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgtree/svgpath"
)

var (
	goRegularOnce sync.Once
	goRegularFont *sfnt.Font
	goRegularErr  error
)

// defaultFont returns the Go Regular font, parsed once.
func defaultFont() (*sfnt.Font, error) {
	goRegularOnce.Do(func() {
		goRegularFont, goRegularErr = sfnt.Parse(goregular.TTF)
	})
	return goRegularFont, goRegularErr
}

// collapseSpaces applies the default xml:space handling.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// glyphWriter converts runs of text into glyph outlines,
// laid out by advance along the baseline.
type glyphWriter struct {
	font *sfnt.Font
	buf  sfnt.Buffer
}

// appendText appends the outlines of s to p, starting at the pen
// position (x, y) on the baseline, and returns the pen position after the run.
func (w *glyphWriter) appendText(p *svgpath.Path, s string, size, x, y float64) (float64, error) {
	ppem := fixed.Int26_6(size * 64)
	var prev sfnt.GlyphIndex
	for i, r := range s {
		gid, err := w.font.GlyphIndex(&w.buf, r)
		if err != nil {
			return x, err
		}
		if i > 0 {
			if kern, err := w.font.Kern(&w.buf, prev, gid, ppem, font.HintingNone); err == nil {
				x += float64(kern) / 64
			}
		}
		prev = gid

		segments, err := w.font.LoadGlyph(&w.buf, gid, ppem, nil)
		if err != nil {
			return x, err
		}
		// segments are y-down, with the origin on the baseline
		pt := func(q fixed.Point26_6) svgpath.Point {
			return svgpath.Point{X: x + float64(q.X)/64, Y: y + float64(q.Y)/64}
		}
		var cur svgpath.Point
		for i, seg := range segments {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				if i > 0 {
					p.Stop(true)
				}
				cur = pt(seg.Args[0])
				p.Start(cur)
			case sfnt.SegmentOpLineTo:
				cur = pt(seg.Args[0])
				p.Line(cur)
			case sfnt.SegmentOpQuadTo:
				end := pt(seg.Args[1])
				p.QuadBezier(cur, pt(seg.Args[0]), end)
				cur = end
			case sfnt.SegmentOpCubeTo:
				cur = pt(seg.Args[2])
				p.CubeBezier(pt(seg.Args[0]), pt(seg.Args[1]), cur)
			}
		}
		if len(segments) > 0 {
			p.Stop(true)
		}

		adv, err := w.font.GlyphAdvance(&w.buf, gid, ppem, font.HintingNone)
		if err != nil {
			return x, err
		}
		x += float64(adv) / 64
	}
	return x, nil
}
