package svgpaint

import (
	"image/color"
	"testing"

	"github.com/benoitkugler/svgtree/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		in       string
		expected OptionalColor
	}{
		{"red", OptionalColor{Color: color.NRGBA{255, 0, 0, 255}}},
		{" SteelBlue ", OptionalColor{Color: color.NRGBA{70, 130, 180, 255}}},
		{"#f00", OptionalColor{Color: color.NRGBA{255, 0, 0, 255}}},
		{"#f008", OptionalColor{Color: color.NRGBA{255, 0, 0, 0x88}}},
		{"#102030", OptionalColor{Color: color.NRGBA{0x10, 0x20, 0x30, 255}}},
		{"#10203040", OptionalColor{Color: color.NRGBA{0x10, 0x20, 0x30, 0x40}}},
		{"rgb(1, 2, 3)", OptionalColor{Color: color.NRGBA{1, 2, 3, 255}}},
		{"rgb(100%,0%,300)", OptionalColor{Color: color.NRGBA{255, 0, 255, 255}}},
		{"rgba(1,2,3,0.5)", OptionalColor{Color: color.NRGBA{1, 2, 3, 128}}},
		{"none", OptionalColor{Keyword: KeywordNone}},
		{"currentColor", OptionalColor{Keyword: KeywordCurrentColor}},
		{"transparent", OptionalColor{}},
	} {
		got, err := ParseColor(test.in)
		require.NoError(t, err, test.in)
		assert.Equal(t, test.expected, got, test.in)
	}

	for _, bad := range []string{"", "#12", "#ggg", "rgb(1,2)", "notacolor", "rgb(a,b,c)"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestAsPaint(t *testing.T) {
	current := color.NRGBA{1, 2, 3, 255}
	assert.Equal(t, None{}, OptionalColor{Keyword: KeywordNone}.AsPaint(current))
	assert.Equal(t, Solid{Color: current}, OptionalColor{Keyword: KeywordCurrentColor}.AsPaint(current))
	assert.True(t, IsNone(OptionalColor{}.AsPaint(current)))
}

func TestNormalizeStops(t *testing.T) {
	stops := []GradStop{{Offset: 0.5}, {Offset: 0.2}, {Offset: 0.8}}
	got := NormalizeStops(stops)
	assert.Equal(t, []float64{0.5, 0.5, 0.8}, offsets(got))
	// the input is not modified
	assert.Equal(t, []float64{0.5, 0.2, 0.8}, offsets(stops))

	got = NormalizeStops([]GradStop{{Offset: -1}, {Offset: 2}, {Offset: 0.3}})
	assert.Equal(t, []float64{0, 1, 1}, offsets(got))
}

func offsets(stops []GradStop) []float64 {
	out := make([]float64, len(stops))
	for i, s := range stops {
		out[i] = s.Offset
	}
	return out
}

func TestSimplify(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	g := &Gradient{}
	assert.Equal(t, None{}, g.Simplify())

	g.Stops = []GradStop{{Offset: 0.3, Color: red, Opacity: 0.5}}
	assert.Equal(t, Solid{Color: color.NRGBA{255, 0, 0, 128}}, g.Simplify())

	g.Stops = append(g.Stops, GradStop{Offset: 0.1, Color: red, Opacity: 1})
	simple, ok := g.Simplify().(*Gradient)
	require.True(t, ok)
	assert.Equal(t, []float64{0.3, 0.3}, offsets(simple.Stops))
}

func TestLinearFromAngle(t *testing.T) {
	for _, test := range []struct {
		deg      float64
		expected Linear
	}{
		{0, Linear{0, 0.5, 1, 0.5}},
		{90, Linear{0.5, 0, 0.5, 1}},
		{180, Linear{1, 0.5, 0, 0.5}},
		{45, Linear{0, 0, 1, 1}},
	} {
		got := LinearFromAngle(test.deg)
		assert.InDelta(t, test.expected.X1, got.X1, 1e-9, "angle %v", test.deg)
		assert.InDelta(t, test.expected.Y1, got.Y1, 1e-9, "angle %v", test.deg)
		assert.InDelta(t, test.expected.X2, got.X2, 1e-9, "angle %v", test.deg)
		assert.InDelta(t, test.expected.Y2, got.Y2, 1e-9, "angle %v", test.deg)
	}
}

func TestGradientColorAt(t *testing.T) {
	black, white := color.NRGBA{0, 0, 0, 255}, color.NRGBA{255, 255, 255, 255}
	g := &Gradient{
		Linear: DefaultLinear,
		Stops:  []GradStop{{0, black, 1}, {1, white, 1}},
		Matrix: svgpath.Identity,
	}
	assert.Equal(t, black, g.ColorAt(-1))
	assert.Equal(t, white, g.ColorAt(2))
	assert.Equal(t, color.NRGBA{128, 128, 128, 255}, g.ColorAt(0.5))

	g.Spread = RepeatSpread
	assert.Equal(t, g.ColorAt(0.25), g.ColorAt(1.25))
	g.Spread = ReflectSpread
	assert.Equal(t, g.ColorAt(0.75), g.ColorAt(1.25))
}

func TestGradientResolve(t *testing.T) {
	g := &Gradient{Linear: DefaultLinear, Matrix: svgpath.Identity, Units: ObjectBoundingBox,
		Stops: []GradStop{{0, color.NRGBA{A: 255}, 1}, {1, color.NRGBA{R: 255, A: 255}, 1}}}
	r := g.Resolve(svgpath.Rect{X: 16, Y: 16, W: 64, H: 32})
	assert.Equal(t, UserSpaceOnUse, r.Units)
	// the gradient vector spans the box
	x1, y1 := r.Matrix.Transform(r.Linear.X1, r.Linear.Y1)
	x2, y2 := r.Matrix.Transform(r.Linear.X2, r.Linear.Y2)
	assert.Equal(t, [4]float64{16, 16, 80, 16}, [4]float64{x1, y1, x2, y2})
	assert.Equal(t, svgpath.Identity, g.Matrix)

	us := &Gradient{Units: UserSpaceOnUse}
	assert.Same(t, us, us.Resolve(svgpath.Rect{W: 1, H: 1}))
}

func TestColors(t *testing.T) {
	red, blue := color.NRGBA{255, 0, 0, 255}, color.NRGBA{0, 0, 255, 255}
	g := &Gradient{Stops: []GradStop{{0, blue, 1}, {1, red, 1}}}
	got := Colors(Solid{Color: red}, None{}, g, Solid{Color: red})
	assert.Equal(t, []color.NRGBA{red, blue}, got)
}

func TestPatternResolve(t *testing.T) {
	p := &Pattern{Tile: svgpath.Rect{W: 0.5, H: 0.25}, Units: ObjectBoundingBox, ContentUnits: UserSpaceOnUse}
	tile, content := p.Resolve(svgpath.Rect{X: 10, Y: 20, W: 100, H: 40})
	assert.Equal(t, svgpath.Rect{X: 10, Y: 20, W: 50, H: 10}, tile)
	assert.True(t, content.IsIdentity())

	p.ContentUnits = ObjectBoundingBox
	_, content = p.Resolve(svgpath.Rect{W: 100, H: 40})
	x, y := content.Transform(1, 1)
	assert.Equal(t, 100., x)
	assert.Equal(t, 40., y)

	p = &Pattern{Tile: svgpath.Rect{W: 20, H: 20}, Units: UserSpaceOnUse, ViewBox: &svgpath.Rect{W: 10, H: 10}}
	_, content = p.Resolve(svgpath.Rect{})
	x, _ = content.Transform(10, 0)
	assert.Equal(t, 20., x)
}
