package svgdoc

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/benoitkugler/svgtree/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestParseTree(t *testing.T) {
	doc := parseString(t, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 100 50">
		<title>An icon</title>
		<defs>
			<linearGradient id="grad"><stop offset="0" stop-color="red"/></linearGradient>
		</defs>
		<g id="layer" transform="translate(1 2)">
			<rect id="r" width="10" height="10"/>
			<use xlink:href="#r" x="20"/>
		</g>
	</svg>`)

	assert.Equal(t, KindSVG, doc.Root.Kind)
	assert.Equal(t, svgpath.Rect{W: 100, H: 50}, doc.ViewBox())
	assert.Equal(t, 100., doc.Viewport.Width)
	assert.Equal(t, []string{"An icon"}, doc.Titles)

	g, ok := doc.Lookup("layer")
	require.True(t, ok)
	assert.Equal(t, KindGroup, g.Kind)
	assert.Same(t, doc.Root, g.Parent())
	require.Len(t, g.Children, 2)
	assert.Equal(t, KindRect, g.Children[0].Kind)
	assert.Same(t, g, g.Children[0].Parent())

	use := g.Children[1]
	assert.Equal(t, KindUse, use.Kind)
	assert.Equal(t, "r", use.Href())

	grad, ok := doc.Lookup("url(#grad)")
	require.True(t, ok)
	assert.Equal(t, KindLinearGradient, grad.Kind)
	assert.Equal(t, KindStop, grad.Children[0].Kind)

	_, ok = doc.Lookup("url(#missing)")
	assert.False(t, ok)
}

func TestInlineStylePrecedence(t *testing.T) {
	doc := parseString(t, `<svg><rect id="r" width="1" height="1" fill="red" style="fill: blue; stroke:green"/></svg>`)
	r := doc.Defs["r"]
	assert.Equal(t, "red", r.Attrs["fill"])
	assert.Equal(t, "green", r.Attrs["stroke"])
	_, hasStyle := r.Attrs["style"]
	assert.False(t, hasStyle)
}

func TestStyleSheet(t *testing.T) {
	doc := parseString(t, `<svg>
		<style>
			rect { fill: blue; opacity: 0.5 }
			.outlined { stroke: black }
			#special { stroke: purple }
			g > rect { fill: yellow }
		</style>
		<rect id="a" class="outlined" fill="red" width="1" height="1"/>
		<rect id="special" class="outlined" width="1" height="1" style="opacity:1"/>
	</svg>`)
	a := doc.Defs["a"]
	assert.Equal(t, "red", a.Attrs["fill"])
	assert.Equal(t, "0.5", a.Attrs["opacity"])
	assert.Equal(t, "black", a.Attrs["stroke"])

	special := doc.Defs["special"]
	assert.Equal(t, "blue", special.Attrs["fill"])
	assert.Equal(t, "purple", special.Attrs["stroke"])
	assert.Equal(t, "1", special.Attrs["opacity"])
}

func TestParseErrors(t *testing.T) {
	for _, test := range []struct {
		svg  string
		err  error
		tag  string
		attr string
	}{
		{`<svg><rect height="1"/></svg>`, ErrMissingAttr, "rect", "width"},
		{`<svg><rect width="-1" height="1"/></svg>`, ErrNegativeSize, "rect", "width"},
		{`<svg><circle r="abc"/></svg>`, ErrInvalidAttr, "circle", "r"},
		{`<svg><ellipse rx="1"/></svg>`, ErrMissingAttr, "ellipse", "ry"},
		{`<svg><polygon points="1 2 3"/></svg>`, ErrInvalidAttr, "polygon", "points"},
		{`<svg><polyline/></svg>`, ErrMissingAttr, "polyline", "points"},
		{`<svg viewBox="0 0 -1 10"></svg>`, ErrNegativeSize, "svg", "viewBox"},
		{`<svg viewBox="0 0 10"></svg>`, ErrInvalidAttr, "svg", "viewBox"},
		{`<svg><svg width="-2"/></svg>`, ErrNegativeSize, "svg", "width"},
		{`<html></html>`, ErrNotSVG, "html", ""},
	} {
		doc, err := Parse(strings.NewReader(test.svg))
		assert.Nil(t, doc)
		var pe *ParseError
		require.ErrorAs(t, err, &pe, test.svg)
		assert.True(t, errors.Is(err, test.err), test.svg)
		assert.Equal(t, test.tag, pe.Tag, test.svg)
		assert.Equal(t, test.attr, pe.Attr, test.svg)
	}
}

func TestParseErrorLocation(t *testing.T) {
	_, err := Parse(strings.NewReader("<svg>\n\n<rect height=\"1\"/></svg>"))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
	assert.Contains(t, pe.Error(), "line 3")
	assert.Contains(t, pe.Error(), `<rect> attribute "width"`)

	// invalid path data
	_, err = Parse(strings.NewReader(`<svg><path d="M 0 0 L 10"/></svg>`))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "d", pe.Attr)
	var pathErr *svgpath.PathError
	assert.ErrorAs(t, err, &pathErr)

	// malformed XML
	_, err = Parse(strings.NewReader("<svg>\n<g></svg>"))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)

	_, err = Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNotSVG)
}

func TestForeignContent(t *testing.T) {
	doc := parseString(t, `<svg><foreignObject id="fo" width="10"><div xmlns="http://www.w3.org/1999/xhtml">hi</div></foreignObject><blink/></svg>`)
	fo := doc.Defs["fo"]
	assert.Equal(t, KindForeign, fo.Kind)
	assert.Equal(t, `<foreignObject id="fo" width="10"><div>hi</div></foreignObject>`, string(fo.Raw))
	require.Len(t, fo.Children, 1)
	assert.Equal(t, KindForeign, fo.Children[0].Kind)
	assert.Equal(t, "<div>hi</div>", string(fo.Children[0].Raw))

	// unknown tags are kept
	require.Len(t, doc.Root.Children, 2)
	assert.Equal(t, "blink", doc.Root.Children[1].Tag)
}

func TestNestedDocument(t *testing.T) {
	doc := parseString(t, `<svg width="200" height="100">
		<svg id="inner" x="10" y="50%" width="50%" height="20" viewBox="0 0 10 10" preserveAspectRatio="xMinYMax slice"/>
	</svg>`)
	assert.Equal(t, svgpath.Rect{W: 200, H: 100}, doc.ViewBox())

	inner := doc.Defs["inner"]
	assert.Equal(t, KindSubDocument, inner.Kind)
	vp, err := ReadViewport(inner, 200, 100)
	require.NoError(t, err)
	assert.Equal(t, Viewport{
		X: 10, Y: 50, Width: 100, Height: 20,
		ViewBox:             svgpath.Rect{W: 10, H: 10},
		PreserveAspectRatio: PreserveAspectRatio{Align: AlignXMinYMax, Slice: true},
	}, vp)
}

func TestSizelessViewport(t *testing.T) {
	for _, test := range []struct {
		src      string
		sizeless bool
	}{
		{`<svg/>`, true},
		{`<svg width="10"/>`, false},
		{`<svg viewBox="0 0 0 0"/>`, false},
	} {
		doc := parseString(t, test.src)
		assert.Equal(t, test.sizeless, doc.Viewport.Sizeless, test.src)
	}
}

func TestCharset(t *testing.T) {
	src := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><svg><title>caf\xe9</title></svg>")
	doc, err := Parse(bytes.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"café"}, doc.Titles)
}

func TestDuplicateIDs(t *testing.T) {
	doc := parseString(t, `<svg><g id="a" class="first"/><g id="a" class="second"/></svg>`)
	assert.Equal(t, []string{"first"}, doc.Defs["a"].Classes())
}

func TestDeterministicParse(t *testing.T) {
	const src = `<svg viewBox="0 0 10 10"><g fill="red"><path d="M0 0 L10 10"/><circle r="2"/></g></svg>`
	d1, d2 := parseString(t, src), parseString(t, src)
	assert.Equal(t, d1.Root.Children[0].Children[0].Attrs, d2.Root.Children[0].Children[0].Attrs)
	assert.Equal(t, len(d1.Defs), len(d2.Defs))
}
