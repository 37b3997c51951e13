package svglayer

import (
	"math"

	"github.com/benoitkugler/svgtree/svgdoc"
	"github.com/benoitkugler/svgtree/svgpath"
)

// FitTransform returns the transform mapping the viewBox onto a viewport
// of size (w, h) placed at the origin, following the aspect ratio policy:
// "meet" fits the whole viewBox, "slice" fills the viewport and may
// overflow, and the "none" alignment scales each axis independently.
// An empty viewBox or viewport collapses everything to the origin.
func FitTransform(vb svgpath.Rect, par svgdoc.PreserveAspectRatio, w, h float64) svgpath.Matrix2D {
	if vb.IsEmpty() || w <= 0 || h <= 0 {
		return svgpath.Matrix2D{}
	}
	sx, sy := w/vb.W, h/vb.H
	if par.Align == svgdoc.AlignNone {
		return svgpath.Identity.Scale(sx, sy).Translate(-vb.X, -vb.Y)
	}
	s := math.Min(sx, sy)
	if par.Slice {
		s = math.Max(sx, sy)
	}
	fx, fy := par.Align.Fractions()
	tx, ty := (w-vb.W*s)*fx, (h-vb.H*s)*fy
	return svgpath.Identity.Translate(tx, ty).Scale(s, s).Translate(-vb.X, -vb.Y)
}
