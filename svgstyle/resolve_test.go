package svgstyle

import (
	"image/color"
	"strings"
	"testing"

	"github.com/benoitkugler/svgtree/svgdoc"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, s string) *svgdoc.Document {
	t.Helper()
	doc, err := svgdoc.Parse(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

// resolvePath returns the style of the node with the given id,
// cascading from the root.
func resolvePath(r *Resolver, id string) Style {
	n := r.Document().Defs[id]
	var chain []*svgdoc.Node
	for ; n != nil; n = n.Parent() {
		chain = append([]*svgdoc.Node{n}, chain...)
	}
	s := DefaultStyle
	for _, n := range chain {
		s = r.Resolve(n, s)
	}
	return s
}

var (
	red   = color.NRGBA{0xff, 0, 0, 0xff}
	blue  = color.NRGBA{0, 0, 0xff, 0xff}
	green = color.NRGBA{0, 0x80, 0, 0xff}
)

func TestInheritance(t *testing.T) {
	doc := parse(t, `<svg viewBox="0 0 100 100">
		<g id="g" fill="red" stroke="blue" opacity="0.5" transform="translate(10 0)" stroke-width="3">
			<rect id="r" width="10" height="10" transform="scale(2)" fill-opacity="50%"/>
			<rect id="i" width="10" height="10" fill="inherit" stroke="none"/>
		</g>
	</svg>`)
	r := NewResolver(doc, Options{})

	g := resolvePath(r, "g")
	assert.Equal(t, 0.5, g.Opacity)

	s := resolvePath(r, "r")
	assert.Equal(t, svgpaint.Solid{Color: red}, s.Fill)
	assert.Equal(t, svgpaint.Solid{Color: blue}, s.Stroke)
	assert.Equal(t, 1., s.Opacity) // not inherited
	assert.Equal(t, 0.5, s.FillOpacity)
	assert.Equal(t, 3., s.StrokeWidth)
	assert.Equal(t, svgpath.Identity.Scale(2, 2), s.Local)
	assert.Equal(t, svgpath.Identity.Translate(10, 0).Scale(2, 2), s.Transform)

	i := resolvePath(r, "i")
	assert.Equal(t, svgpaint.Solid{Color: red}, i.Fill)
	assert.True(t, svgpaint.IsNone(i.Stroke))
	assert.False(t, i.HasVisibleStroke())
	assert.Empty(t, r.Warnings())
}

func TestCurrentColor(t *testing.T) {
	doc := parse(t, `<svg color="green"><g color="blue"><rect id="r" width="1" height="1" fill="currentColor"/></g><rect id="s" width="1" height="1" stroke="currentColor"/></svg>`)
	r := NewResolver(doc, Options{})
	assert.Equal(t, svgpaint.Solid{Color: blue}, resolvePath(r, "r").Fill)
	assert.Equal(t, svgpaint.Solid{Color: green}, resolvePath(r, "s").Stroke)
}

func TestStrokeProperties(t *testing.T) {
	doc := parse(t, `<svg viewBox="0 0 100 100"><path id="p" d="M0 0L1 1"
		stroke="black" stroke-linecap="round" stroke-linejoin="bevel" stroke-miterlimit="2"
		stroke-dasharray="5, 2 1" stroke-dashoffset="1" stroke-width="10%" fill-rule="evenodd"
		stroke-linegap="round" stroke-leadlinecap="square"/></svg>`)
	r := NewResolver(doc, Options{})
	s := resolvePath(r, "p")
	assert.Equal(t, RoundCap, s.Join.TrailLineCap)
	assert.Equal(t, SquareCap, s.Join.LeadLineCap)
	assert.Equal(t, Bevel, s.Join.LineJoin)
	assert.Equal(t, RoundGap, s.Join.LineGap)
	assert.Equal(t, 2., s.Join.MiterLimit)
	assert.Equal(t, []float64{5, 2, 1, 5, 2, 1}, s.Dash.Dash)
	assert.Equal(t, 1., s.Dash.DashOffset)
	assert.InDelta(t, 10., s.StrokeWidth, 1e-9)
	assert.False(t, s.UseNonZeroWinding)

	opts := s.StrokeOptions()
	assert.Equal(t, SquareCap, opts.Join.LeadLineCap)

	opts = DefaultStyle.StrokeOptions()
	assert.Equal(t, ButtCap, opts.Join.LeadLineCap)
	assert.Equal(t, FlatGap, opts.Join.LineGap)
}

func TestInvalidValueKeepsInherited(t *testing.T) {
	doc := parse(t, `<svg><g id="g" fill="red"><rect id="r" width="1" height="1" fill="notacolor" stroke-dasharray="1 -2" opacity="x"/></g></svg>`)
	r := NewResolver(doc, Options{})
	s := resolvePath(r, "r")
	assert.Equal(t, svgpaint.Solid{Color: red}, s.Fill)
	assert.Nil(t, s.Dash.Dash)
	assert.Equal(t, 1., s.Opacity)
	require.Len(t, r.Warnings(), 3)
	assert.Equal(t, "r", r.Warnings()[0].NodeID)
}

func TestFontSize(t *testing.T) {
	doc := parse(t, `<svg><g font-size="20"><text id="a" font-size="1.5em">x</text><text id="b" font-size="50%" font-family="'Go'">x</text></g></svg>`)
	r := NewResolver(doc, Options{})
	assert.Equal(t, 30., resolvePath(r, "a").FontSize)
	b := resolvePath(r, "b")
	assert.Equal(t, 10., b.FontSize)
	assert.Equal(t, "Go", b.FontFamily)
}

func TestDisplayVisibility(t *testing.T) {
	doc := parse(t, `<svg><g id="g" visibility="hidden" display="none"><rect id="r" width="1" height="1"/><rect id="v" visibility="visible" width="1" height="1"/></g></svg>`)
	r := NewResolver(doc, Options{})
	g := resolvePath(r, "g")
	assert.True(t, g.DisplayNone)
	assert.False(t, g.Visible)

	s := resolvePath(r, "r")
	assert.False(t, s.DisplayNone) // not inherited, the assembler skips the subtree
	assert.False(t, s.Visible)
	assert.True(t, resolvePath(r, "v").Visible)
}

func TestClipAndMaskReferences(t *testing.T) {
	doc := parse(t, `<svg>
		<clipPath id="c"><rect width="1" height="1"/></clipPath>
		<mask id="m"><rect width="1" height="1" fill="white"/></mask>
		<rect id="ok" width="1" height="1" clip-path="url(#c)" mask="url(#m)"/>
		<rect id="missing" width="1" height="1" clip-path="url(#nope)"/>
		<rect id="wrong" width="1" height="1" mask="url(#c)"/>
	</svg>`)
	r := NewResolver(doc, Options{})

	s := resolvePath(r, "ok")
	assert.Same(t, doc.Defs["c"], s.ClipPath)
	assert.Same(t, doc.Defs["m"], s.Mask)

	s = resolvePath(r, "missing")
	assert.Nil(t, s.ClipPath)
	require.Len(t, r.Warnings(), 1)
	assert.Equal(t, Warning{NodeID: "missing", Attr: "clip-path", Ref: "url(#nope)", Reason: reasonMissing}, r.Warnings()[0])

	s = resolvePath(r, "wrong")
	assert.Nil(t, s.Mask)
	require.Len(t, r.Warnings(), 2)
	assert.Equal(t, reasonWrongKind, r.Warnings()[1].Reason)

	// while the clip is being expanded, a reference to it is a cycle
	require.True(t, r.Enter("c"))
	assert.False(t, r.Enter("c"))
	s = resolvePath(r, "ok")
	assert.Nil(t, s.ClipPath)
	assert.Equal(t, reasonCycle, r.Warnings()[2].Reason)
	r.Leave("c")
	assert.NotNil(t, resolvePath(r, "ok").ClipPath)
}

func TestOverrides(t *testing.T) {
	doc := parse(t, `<svg><rect id="r" width="1" height="1" fill="red" stroke="none"/><rect id="s" width="1" height="1" fill="none" stroke="blue"/></svg>`)
	over := color.NRGBA{1, 2, 3, 4}
	r := NewResolver(doc, Options{FillOverride: &over, StrokeOverride: &over})

	s := resolvePath(r, "r")
	assert.Equal(t, svgpaint.Solid{Color: over}, s.Fill)
	assert.Equal(t, svgpaint.Solid{Color: red}, s.BaseFill)
	assert.True(t, svgpaint.IsNone(s.Stroke))

	s = resolvePath(r, "s")
	assert.True(t, svgpaint.IsNone(s.Fill))
	assert.Equal(t, svgpaint.Solid{Color: over}, s.Stroke)
}

func TestApplyOverride(t *testing.T) {
	over := color.NRGBA{9, 9, 9, 9}
	for _, test := range []struct {
		in       svgpaint.Paint
		override *color.NRGBA
		out      svgpaint.Paint
	}{
		{svgpaint.Solid{Color: red}, nil, svgpaint.Solid{Color: red}},
		{svgpaint.Solid{Color: red}, &over, svgpaint.Solid{Color: over}},
		{svgpaint.None{}, &over, svgpaint.None{}},
		{&svgpaint.Gradient{Stops: make([]svgpaint.GradStop, 2)}, &over, svgpaint.Solid{Color: over}},
	} {
		assert.Equal(t, test.out, ApplyOverride(test.in, test.override))
	}
}
