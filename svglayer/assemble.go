package svglayer

import (
	"fmt"

	"golang.org/x/image/font/sfnt"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgdoc"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
	"github.com/benoitkugler/svgtree/svgstyle"
)

// ContentHandler is implemented by hosts interpreting foreign content,
// such as foreignObject elements. It is called synchronously during assembly.
type ContentHandler interface {
	// WillHandle reports whether the handler takes ownership of the node.
	WillHandle(n *svgdoc.Node, doc *svgdoc.Document) bool
	// Handle receives a node accepted by WillHandle. The node
	// is then excluded from the render tree.
	Handle(n *svgdoc.Node, doc *svgdoc.Document)
}

// Tree is the render tree of a document.
// Its coordinates are expressed in the viewBox space.
type Tree struct {
	Root     *Layer
	ViewBox  svgpath.Rect
	Viewport svgdoc.Viewport
	// Warnings collects the references which could not be resolved.
	Warnings []svgstyle.Warning
}

// Lookup returns the first layer with the given id, in pre-order.
func (t *Tree) Lookup(id string) *Layer {
	var out *Layer
	t.Root.Walk(func(l *Layer) {
		if out == nil && l.ID == id {
			out = l
		}
	})
	return out
}

// Assembler builds render trees.
type Assembler struct {
	Options svgstyle.Options
	// Handler is optional. Without handler, foreign nodes
	// produce no geometry but their children are traversed.
	Handler ContentHandler
	// Font is used for text elements. It defaults to Go Regular.
	Font *sfnt.Font
}

// composite is a clip or mask attachment, done after the traversal
type composite struct {
	layer *Layer
	clip  *svgdoc.Node
	mask  *svgdoc.Node
}

type builder struct {
	Assembler
	doc *svgdoc.Document
	res *svgstyle.Resolver

	viewport svgpath.Rect // for percentages
	styles   map[*svgdoc.Node]svgstyle.Style
	pending  []composite
	glyphs   *glyphWriter
}

// Build assembles the render tree of the document.
// Unresolved references are not errors: they are reported in Tree.Warnings.
func (a Assembler) Build(doc *svgdoc.Document) (*Tree, error) {
	b := &builder{
		Assembler: a,
		doc:       doc,
		res:       svgstyle.NewResolver(doc, a.Options),
		viewport:  doc.ViewBox(),
		styles:    make(map[*svgdoc.Node]svgstyle.Style),
	}
	tree := &Tree{ViewBox: doc.ViewBox(), Viewport: doc.Viewport}

	s := b.resolve(doc.Root, svgstyle.DefaultStyle)
	tree.Root = b.groupLayer(KindSubDocument, doc.Root, s)
	// a zero area viewBox renders nothing
	if (!tree.ViewBox.IsEmpty() || doc.Viewport.Sizeless) && !s.DisplayNone {
		if err := b.children(doc.Root, s, tree.Root); err != nil {
			return nil, err
		}
		if err := b.flushPending(0); err != nil {
			return nil, err
		}
	}
	if doc.Viewport.Sizeless {
		tree.fitContent()
	}
	tree.Warnings = b.res.Warnings()
	logx.Logger().Debug("svg render tree built", "layers", countLayers(tree.Root), "warnings", len(tree.Warnings))
	return tree, nil
}

// fitContent uses the bounds of every geometry as the viewBox
// and the size of a document which declares neither.
func (t *Tree) fitContent() {
	box, ok := t.Root.Bounds(Inclusive)
	if !ok {
		return
	}
	t.ViewBox = box
	t.Viewport.ViewBox = box
	t.Viewport.Width, t.Viewport.Height = box.W, box.H
}

func countLayers(l *Layer) int {
	n := 0
	l.Walk(func(*Layer) { n++ })
	return n
}

func (b *builder) resolve(n *svgdoc.Node, parent svgstyle.Style) svgstyle.Style {
	s := b.res.Resolve(n, parent)
	b.styles[n] = s
	return s
}

// styleOf returns the style of a node outside the rendered tree,
// such as the content of a clip path.
func (b *builder) styleOf(n *svgdoc.Node) svgstyle.Style {
	if s, ok := b.styles[n]; ok {
		return s
	}
	parent := svgstyle.DefaultStyle
	if p := n.Parent(); p != nil {
		parent = b.styleOf(p)
	}
	return b.resolve(n, parent)
}

func (b *builder) children(n *svgdoc.Node, s svgstyle.Style, into *Layer) error {
	for _, c := range n.Children {
		if err := b.node(c, s, into); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) node(n *svgdoc.Node, parent svgstyle.Style, into *Layer) error {
	if n.Kind.IsDefinition() {
		return nil
	}
	if n.Kind == svgdoc.KindForeign && b.Handler != nil && b.Handler.WillHandle(n, b.doc) {
		b.Handler.Handle(n, b.doc)
		return nil
	}
	s := b.resolve(n, parent)
	if s.DisplayNone {
		return nil
	}
	switch n.Kind {
	case svgdoc.KindForeign:
		// transparent: only the children are rendered
		return b.children(n, s, into)
	case svgdoc.KindGroup:
		l := b.groupLayer(KindGroup, n, s)
		into.appendChild(l)
		return b.children(n, s, l)
	case svgdoc.KindSubDocument:
		return b.subDocument(n, s, into, nil)
	case svgdoc.KindUse:
		return b.use(n, s, into)
	case svgdoc.KindText:
		l := b.groupLayer(KindGroup, n, s)
		into.appendChild(l)
		var pen svgpath.Point
		return b.text(n, s, l, &pen)
	default:
		if n.Kind.IsShape() {
			l := b.groupLayer(KindShape, n, s)
			b.setPaint(l, s)
			l.geometry = b.geometry(n)
			into.appendChild(l)
		}
	}
	return nil
}

// groupLayer returns a layer with the transform, opacity, clip and mask of s.
func (b *builder) groupLayer(kind Kind, n *svgdoc.Node, s svgstyle.Style) *Layer {
	l := newLayer(kind, n.ID)
	l.transform = s.Local
	l.Opacity = s.Opacity
	if s.ClipPath != nil || s.Mask != nil {
		b.pending = append(b.pending, composite{layer: l, clip: s.ClipPath, mask: s.Mask})
	}
	return l
}

// setPaint copies the paint properties of s, and assembles
// the content of the pattern paints.
func (b *builder) setPaint(l *Layer, s svgstyle.Style) {
	l.Fill, l.Stroke = s.Fill, s.Stroke
	l.BaseFill, l.BaseStroke = s.BaseFill, s.BaseStroke
	l.FillOpacity, l.StrokeOpacity = s.FillOpacity, s.StrokeOpacity
	l.StrokeOptions = s.StrokeOptions()
	l.NonZero = s.UseNonZeroWinding
	l.Hidden = !s.Visible
	b.patternContent(s.BaseFill)
	b.patternContent(s.BaseStroke)
}

func (b *builder) length(n *svgdoc.Node, attr string, ref svgdoc.Reference) float64 {
	v, ok := n.Attr(attr)
	if !ok || v == "" {
		return 0
	}
	l, err := svgdoc.ParseLength(v)
	if err != nil {
		b.res.Warn(n, attr, v, "is invalid")
		return 0
	}
	return l.Resolve(b.viewport.W, b.viewport.H, ref)
}

// geometry builds the path of a shape, in its local coordinates.
// Zero sized shapes have no geometry.
func (b *builder) geometry(n *svgdoc.Node) svgpath.Path {
	var p svgpath.Path
	switch n.Kind {
	case svgdoc.KindRect:
		x, y := b.length(n, "x", svgdoc.RefWidth), b.length(n, "y", svgdoc.RefHeight)
		w, h := b.length(n, "width", svgdoc.RefWidth), b.length(n, "height", svgdoc.RefHeight)
		if w <= 0 || h <= 0 {
			return nil
		}
		rx, ry := b.length(n, "rx", svgdoc.RefWidth), b.length(n, "ry", svgdoc.RefHeight)
		p.AddRoundRect(x, y, w, h, rx, ry)
	case svgdoc.KindCircle:
		cx, cy := b.length(n, "cx", svgdoc.RefWidth), b.length(n, "cy", svgdoc.RefHeight)
		r := b.length(n, "r", svgdoc.RefDiag)
		if r <= 0 {
			return nil
		}
		p.AddEllipse(cx, cy, r, r)
	case svgdoc.KindEllipse:
		cx, cy := b.length(n, "cx", svgdoc.RefWidth), b.length(n, "cy", svgdoc.RefHeight)
		rx, ry := b.length(n, "rx", svgdoc.RefWidth), b.length(n, "ry", svgdoc.RefHeight)
		if rx <= 0 || ry <= 0 {
			return nil
		}
		p.AddEllipse(cx, cy, rx, ry)
	case svgdoc.KindLine:
		p.AddLine(
			svgpath.Point{X: b.length(n, "x1", svgdoc.RefWidth), Y: b.length(n, "y1", svgdoc.RefHeight)},
			svgpath.Point{X: b.length(n, "x2", svgdoc.RefWidth), Y: b.length(n, "y2", svgdoc.RefHeight)},
		)
	case svgdoc.KindPolygon, svgdoc.KindPolyline:
		v, _ := n.Attr("points")
		coords, err := svgpath.ReadPoints(v)
		if err != nil || len(coords)%2 != 0 {
			b.res.Warn(n, "points", v, "is invalid")
			return nil
		}
		points := make([]svgpath.Point, len(coords)/2)
		for i := range points {
			points[i] = svgpath.Point{X: coords[2*i], Y: coords[2*i+1]}
		}
		p.AddPolyline(points, n.Kind == svgdoc.KindPolygon)
	case svgdoc.KindPath:
		v, _ := n.Attr("d")
		var err error
		p, err = svgpath.ParsePathData(v)
		if err != nil {
			b.res.Warn(n, "d", v, "is invalid")
			return nil
		}
	}
	return p
}

// subDocument assembles a nested svg element, or a symbol instantiated
// by a use element. The use element may override the viewport size.
func (b *builder) subDocument(n *svgdoc.Node, s svgstyle.Style, into *Layer, use *svgdoc.Node) error {
	vp, err := svgdoc.ReadViewport(n, b.viewport.W, b.viewport.H)
	if err != nil {
		return err
	}
	if use != nil {
		if _, ok := use.Attr("width"); ok {
			vp.Width = b.length(use, "width", svgdoc.RefWidth)
		}
		if _, ok := use.Attr("height"); ok {
			vp.Height = b.length(use, "height", svgdoc.RefHeight)
		}
		if _, ok := n.Attr("viewBox"); !ok && n.Kind == svgdoc.KindSymbol {
			vp.ViewBox = svgpath.Rect{W: vp.Width, H: vp.Height}
		}
	}
	l := b.groupLayer(KindSubDocument, n, s)
	into.appendChild(l)

	fit := FitTransform(vp.ViewBox, vp.PreserveAspectRatio, vp.Width, vp.Height)
	if fit.Det() == 0 { // nothing to render
		return nil
	}
	l.transform = l.transform.Translate(vp.X, vp.Y).Mult(fit)
	clip := fit.Invert().TransformRect(svgpath.Rect{W: vp.Width, H: vp.Height})
	l.ClipRect = &clip

	saved := b.viewport
	b.viewport = vp.ViewBox
	defer func() { b.viewport = saved }()
	return b.children(n, s, l)
}

// use instantiates the referenced element under a group
// translated by (x, y). The element inherits the style of the use element.
func (b *builder) use(n *svgdoc.Node, s svgstyle.Style, into *Layer) error {
	ref := n.Href()
	target, ok := b.doc.Defs[ref]
	if !ok {
		b.res.Warn(n, "href", "#"+ref, "not found")
		return nil
	}
	if !b.res.Enter(ref) {
		b.res.Warn(n, "href", "#"+ref, "is cyclic")
		return nil
	}
	defer b.res.Leave(ref)

	l := b.groupLayer(KindGroup, n, s)
	l.transform = l.transform.Translate(b.length(n, "x", svgdoc.RefWidth), b.length(n, "y", svgdoc.RefHeight))
	into.appendChild(l)

	switch target.Kind {
	case svgdoc.KindSymbol, svgdoc.KindSubDocument:
		ts := b.resolve(target, s)
		if ts.DisplayNone {
			return nil
		}
		return b.subDocument(target, ts, l, n)
	case svgdoc.KindSVG, svgdoc.KindStop, svgdoc.KindLinearGradient, svgdoc.KindRadialGradient,
		svgdoc.KindPattern, svgdoc.KindClipPath, svgdoc.KindMask, svgdoc.KindDefs:
		b.res.Warn(n, "href", "#"+ref, "has an unexpected element type")
		return nil
	}
	return b.node(target, s, l)
}

// text lays out the text of n and of its tspan children,
// starting at the given pen position.
func (b *builder) text(n *svgdoc.Node, s svgstyle.Style, into *Layer, pen *svgpath.Point) error {
	if _, ok := n.Attr("x"); ok {
		pen.X = b.firstCoord(n, "x", svgdoc.RefWidth)
	}
	if _, ok := n.Attr("y"); ok {
		pen.Y = b.firstCoord(n, "y", svgdoc.RefHeight)
	}
	pen.X += b.firstCoord(n, "dx", svgdoc.RefWidth)
	pen.Y += b.firstCoord(n, "dy", svgdoc.RefHeight)

	if content := collapseSpaces(n.Text); content != "" {
		w, err := b.writer()
		if err != nil {
			return err
		}
		var p svgpath.Path
		pen.X, err = w.appendText(&p, content, s.FontSize, pen.X, pen.Y)
		if err != nil {
			return fmt.Errorf("svglayer: text outlines: %w", err)
		}
		glyphs := newLayer(KindShape, "")
		b.setPaint(glyphs, s)
		glyphs.geometry = p
		into.appendChild(glyphs)
	}
	for _, c := range n.Children {
		if c.Kind != svgdoc.KindText {
			continue
		}
		cs := b.resolve(c, s)
		if cs.DisplayNone {
			continue
		}
		l := b.groupLayer(KindGroup, c, cs)
		into.appendChild(l)
		if err := b.text(c, cs, l, pen); err != nil {
			return err
		}
	}
	return nil
}

// firstCoord reads the first value of a coordinate list attribute
func (b *builder) firstCoord(n *svgdoc.Node, attr string, ref svgdoc.Reference) float64 {
	v, ok := n.Attr(attr)
	if !ok {
		return 0
	}
	fields := splitCoords(v)
	if len(fields) == 0 {
		return 0
	}
	l, err := svgdoc.ParseLength(fields[0])
	if err != nil {
		b.res.Warn(n, attr, v, "is invalid")
		return 0
	}
	return l.Resolve(b.viewport.W, b.viewport.H, ref)
}

func splitCoords(s string) []string {
	var out []string
	start := -1
	for i := 0; i <= len(s); i++ {
		sep := i == len(s) || s[i] == ',' || s[i] == ' ' || s[i] == '\t' || s[i] == '\n'
		if sep && start >= 0 {
			out = append(out, s[start:i])
			start = -1
		} else if !sep && start < 0 {
			start = i
		}
	}
	return out
}

func (b *builder) writer() (*glyphWriter, error) {
	if b.glyphs != nil {
		return b.glyphs, nil
	}
	f := b.Font
	if f == nil {
		var err error
		if f, err = defaultFont(); err != nil {
			return nil, fmt.Errorf("svglayer: loading default font: %w", err)
		}
	}
	b.glyphs = &glyphWriter{font: f}
	return b.glyphs, nil
}

// patternContent assembles the tile content of a pattern paint, once.
func (b *builder) patternContent(p svgpaint.Paint) {
	pat, ok := p.(*svgpaint.Pattern)
	if !ok || pat.Content != nil {
		return
	}
	root := newLayer(KindGroup, pat.ID)
	pat.Content = root
	node := b.res.PatternContent(pat)
	if node == nil || !b.res.Enter(node.ID) {
		return
	}
	defer b.res.Leave(node.ID)
	s := b.styleOf(node)
	start := len(b.pending)
	if err := b.children(node, s, root); err != nil {
		logx.Logger().Warn("pattern content not assembled", "pattern", pat.ID, "err", err)
	}
	if err := b.flushPending(start); err != nil {
		logx.Logger().Warn("pattern content not assembled", "pattern", pat.ID, "err", err)
	}
}

// flushPending attaches the clips and masks registered since index from.
func (b *builder) flushPending(from int) error {
	for i := from; i < len(b.pending); i++ {
		p := b.pending[i]
		if p.clip != nil {
			c, err := b.composite(p.layer, p.clip, "clipPathUnits")
			if err != nil {
				return err
			}
			p.layer.Clip = c
		}
		if p.mask != nil {
			m, err := b.composite(p.layer, p.mask, "maskContentUnits")
			if err != nil {
				return err
			}
			p.layer.Mask = m
		}
		p.layer.invalidate()
	}
	b.pending = b.pending[:from]
	return nil
}

// composite assembles the content of a clipPath or mask element,
// applied to owner. Nested clips and masks are attached before returning,
// so that the element is still marked as visited.
func (b *builder) composite(owner *Layer, n *svgdoc.Node, unitsAttr string) (*Layer, error) {
	if !b.res.Enter(n.ID) {
		b.res.Warn(n, unitsAttr, "#"+n.ID, "is cyclic")
		return nil, nil
	}
	defer b.res.Leave(n.ID)

	s := b.styleOf(n)
	l := newLayer(KindGroup, n.ID)
	l.transform = s.Local
	start := len(b.pending)
	if err := b.children(n, s, l); err != nil {
		return nil, err
	}
	if err := b.flushPending(start); err != nil {
		return nil, err
	}
	if units, _ := n.Attr(unitsAttr); units == "objectBoundingBox" {
		bbox, _ := owner.contentBounds()
		l.transform = svgpath.Identity.Translate(bbox.X, bbox.Y).Scale(bbox.W, bbox.H).Mult(l.transform)
	}
	return l, nil
}

// contentBounds returns the bounds of the geometry of l, without its
// own transform, clip or paint considerations.
func (l *Layer) contentBounds() (svgpath.Rect, bool) {
	if l.Kind == KindShape {
		return l.geometry.Bounds(), !l.geometry.IsEmpty()
	}
	var (
		box svgpath.Rect
		ok  bool
	)
	for _, c := range l.Children {
		cb, cok := c.Bounds(Inclusive)
		if !cok {
			continue
		}
		if !ok {
			box, ok = cb, true
		} else {
			box = box.Union(cb)
		}
	}
	return box, ok
}
