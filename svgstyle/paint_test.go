package svgstyle

import (
	"image/color"
	"math"
	"testing"

	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradientInheritance(t *testing.T) {
	doc := parse(t, `<svg viewBox="0 0 200 100">
		<linearGradient id="base" x2="0" y2="1" spreadMethod="reflect">
			<stop offset="0" stop-color="red"/>
			<stop offset="50%" stop-color="blue" stop-opacity="0.5"/>
			<stop offset="0.2" stop-color="currentColor" color="green"/>
		</linearGradient>
		<linearGradient id="child" href="#base" gradientTransform="rotate(90)"/>
		<rect id="r" width="1" height="1" fill="url(#child)"/>
	</svg>`)
	r := NewResolver(doc, Options{})
	s := resolvePath(r, "r")
	g, ok := s.Fill.(*svgpaint.Gradient)
	require.True(t, ok)
	assert.Equal(t, "child", g.ID)
	assert.Equal(t, svgpaint.LinearGradient, g.Kind)
	assert.Equal(t, svgpaint.ObjectBoundingBox, g.Units)
	assert.Equal(t, svgpaint.ReflectSpread, g.Spread)
	assert.Equal(t, svgpaint.Linear{X1: 0, Y1: 0, X2: 0, Y2: 1}, g.Linear)
	deg := 90.
	assert.Equal(t, svgpath.Identity.Rotate(deg*math.Pi/180), g.Matrix)
	assert.Equal(t, []svgpaint.GradStop{
		{Offset: 0, Color: red, Opacity: 1},
		{Offset: 0.5, Color: blue, Opacity: 0.5},
		{Offset: 0.5, Color: green, Opacity: 1}, // clamped to the previous offset
	}, g.Stops)
	assert.Empty(t, r.Warnings())

	// memoized
	s2 := resolvePath(r, "r")
	assert.Equal(t, s.Fill, s2.Fill)
}

func TestGradientUserSpace(t *testing.T) {
	doc := parse(t, `<svg viewBox="0 0 200 100">
		<radialGradient id="g" gradientUnits="userSpaceOnUse" cx="25%" r="10">
			<stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/>
		</radialGradient>
		<rect id="r" width="1" height="1" stroke="url(#g)"/>
	</svg>`)
	r := NewResolver(doc, Options{})
	g, ok := resolvePath(r, "r").Stroke.(*svgpaint.Gradient)
	require.True(t, ok)
	assert.Equal(t, svgpaint.UserSpaceOnUse, g.Units)
	assert.Equal(t, svgpaint.Radial{CX: 50, CY: 50, FX: 50, FY: 50, R: 10, FR: 0}, g.Radial)
}

func TestGradientAngle(t *testing.T) {
	doc := parse(t, `<svg>
		<linearGradient id="g" angle="90" gradientUnits="userSpaceOnUse">
			<stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/>
		</linearGradient>
		<rect id="r" width="1" height="1" fill="url(#g)"/>
	</svg>`)
	r := NewResolver(doc, Options{})
	g := resolvePath(r, "r").Fill.(*svgpaint.Gradient)
	assert.Equal(t, svgpaint.ObjectBoundingBox, g.Units)
	assert.InDelta(t, 0.5, g.Linear.X1, 1e-9)
	assert.InDelta(t, 0., g.Linear.Y1, 1e-9)
	assert.InDelta(t, 1., g.Linear.Y2, 1e-9)
}

func TestGradientDegenerate(t *testing.T) {
	doc := parse(t, `<svg>
		<linearGradient id="empty"/>
		<linearGradient id="one"><stop offset="0.3" stop-color="red" stop-opacity="0"/></linearGradient>
		<linearGradient id="a" href="#b"/>
		<linearGradient id="b" href="#a"/>
		<rect id="r1" width="1" height="1" fill="url(#empty)"/>
		<rect id="r2" width="1" height="1" fill="url(#one)"/>
		<rect id="r3" width="1" height="1" fill="url(#a) blue"/>
		<rect id="r4" width="1" height="1" fill="url(#missing)"/>
		<rect id="r5" width="1" height="1" fill="url(#r1) red"/>
	</svg>`)
	r := NewResolver(doc, Options{})

	assert.Equal(t, svgpaint.None{}, resolvePath(r, "r1").Fill)
	assert.Equal(t, svgpaint.Solid{Color: color.NRGBA{0xff, 0, 0, 0}}, resolvePath(r, "r2").Fill)
	assert.Empty(t, r.Warnings())

	// the cyclic href, then the reference to it
	assert.Equal(t, svgpaint.Solid{Color: blue}, resolvePath(r, "r3").Fill)
	require.Len(t, r.Warnings(), 2)
	assert.Equal(t, reasonCycle, r.Warnings()[0].Reason)
	assert.Equal(t, "href", r.Warnings()[0].Attr)
	assert.Equal(t, Warning{NodeID: "r3", Attr: "fill", Ref: "url(#a)", Reason: reasonCycle}, r.Warnings()[1])

	assert.Equal(t, svgpaint.None{}, resolvePath(r, "r4").Fill)
	require.Len(t, r.Warnings(), 3)
	assert.Equal(t, reasonMissing, r.Warnings()[2].Reason)

	assert.Equal(t, svgpaint.Solid{Color: red}, resolvePath(r, "r5").Fill)
	require.Len(t, r.Warnings(), 4)
	assert.Equal(t, reasonWrongKind, r.Warnings()[3].Reason)
}

func TestCyclicGradientWarnsEachUse(t *testing.T) {
	doc := parse(t, `<svg>
		<linearGradient id="g" href="#g"/>
		<rect id="a" width="1" height="1" fill="url(#g)"/>
		<rect id="b" width="1" height="1" stroke="url(#g)"/>
	</svg>`)
	r := NewResolver(doc, Options{})
	assert.Equal(t, svgpaint.None{}, resolvePath(r, "a").Fill)
	assert.Equal(t, svgpaint.None{}, resolvePath(r, "b").Stroke)

	var uses []Warning
	for _, w := range r.Warnings() {
		if w.Attr != "href" {
			uses = append(uses, w)
		}
	}
	assert.Equal(t, []Warning{
		{NodeID: "a", Attr: "fill", Ref: "url(#g)", Reason: reasonCycle},
		{NodeID: "b", Attr: "stroke", Ref: "url(#g)", Reason: reasonCycle},
	}, uses)
}

func TestPatternPaint(t *testing.T) {
	doc := parse(t, `<svg viewBox="0 0 100 100">
		<pattern id="p" width="0.25" height="0.5" patternContentUnits="objectBoundingBox" viewBox="0 0 10 10">
			<rect width="5" height="5" fill="red"/>
		</pattern>
		<pattern id="q" href="#p" patternUnits="userSpaceOnUse" width="10" height="50%"/>
		<pattern id="empty" width="0" height="1"><rect width="1" height="1"/></pattern>
		<rect id="r" width="10" height="10" fill="url(#q)"/>
		<rect id="e" width="10" height="10" fill="url(#empty)"/>
	</svg>`)
	r := NewResolver(doc, Options{})
	p, ok := resolvePath(r, "r").Fill.(*svgpaint.Pattern)
	require.True(t, ok)
	assert.Equal(t, svgpaint.UserSpaceOnUse, p.Units)
	assert.Equal(t, svgpaint.ObjectBoundingBox, p.ContentUnits)
	assert.Equal(t, svgpath.Rect{W: 10, H: 50}, p.Tile)
	require.NotNil(t, p.ViewBox)
	assert.Equal(t, svgpath.Rect{W: 10, H: 10}, *p.ViewBox)
	assert.Same(t, doc.Defs["p"], r.PatternContent(p))

	assert.True(t, svgpaint.IsNone(resolvePath(r, "e").Fill))
	assert.Empty(t, r.Warnings())
}
