package svgpaint

import "github.com/benoitkugler/svgtree/svgpath"

// Pattern describes a tile repeated to fill or stroke a shape.
type Pattern struct {
	ID           string
	Tile         svgpath.Rect // x, y, width, height
	Units        Units        // patternUnits, defaults to ObjectBoundingBox
	ContentUnits Units        // patternContentUnits, defaults to UserSpaceOnUse
	ViewBox      *svgpath.Rect
	Matrix       svgpath.Matrix2D // patternTransform

	// Content is the tile content, assembled
	// and owned by the render tree.
	Content any
}

// Resolve returns the tile rectangle in the pattern space and the
// transform to apply to the tile content, relative to the tile origin,
// for a shape with the given bounding box.
func (p *Pattern) Resolve(bbox svgpath.Rect) (tile svgpath.Rect, content svgpath.Matrix2D) {
	tile = p.Tile
	if p.Units == ObjectBoundingBox {
		tile = svgpath.Rect{
			X: bbox.X + tile.X*bbox.W, Y: bbox.Y + tile.Y*bbox.H,
			W: tile.W * bbox.W, H: tile.H * bbox.H,
		}
	}
	content = svgpath.Identity
	switch {
	case p.ViewBox != nil && !p.ViewBox.IsEmpty():
		vb := *p.ViewBox
		content = content.Scale(tile.W/vb.W, tile.H/vb.H).Translate(-vb.X, -vb.Y)
	case p.ContentUnits == ObjectBoundingBox:
		content = content.Scale(bbox.W, bbox.H)
	}
	return tile, content
}
