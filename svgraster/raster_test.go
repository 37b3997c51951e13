package svgraster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toPngBytes(m image.Image) ([]byte, error) {
	var b bytes.Buffer
	err := png.Encode(&b, m)
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func render(t *testing.T, src string, scale float64) *image.RGBA {
	t.Helper()
	img, err := RasterSVGIconToImage(strings.NewReader(src), nil, scale)
	require.NoError(t, err)
	return img
}

var (
	opaqueRed  = color.RGBA{0xff, 0, 0, 0xff}
	opaqueBlue = color.RGBA{0, 0, 0xff, 0xff}
	empty      = color.RGBA{}
)

func TestRenderPixels(t *testing.T) {
	for _, test := range []struct {
		name   string
		src    string
		pixels map[image.Point]color.RGBA
	}{
		{
			"square",
			`<svg viewBox="0 0 10 10"><rect x="2" y="2" width="6" height="6" fill="red"/></svg>`,
			map[image.Point]color.RGBA{{5, 5}: opaqueRed, {0, 0}: empty, {9, 9}: empty},
		},
		{
			"clip",
			`<svg viewBox="0 0 10 10">
				<clipPath id="c"><rect width="5" height="10"/></clipPath>
				<rect width="10" height="10" fill="red" clip-path="url(#c)"/>
			</svg>`,
			map[image.Point]color.RGBA{{2, 5}: opaqueRed, {8, 5}: empty},
		},
		{
			"mask",
			`<svg viewBox="0 0 10 10">
				<mask id="m"><rect x="5" width="5" height="10" fill="white"/></mask>
				<rect width="10" height="10" fill="blue" mask="url(#m)"/>
			</svg>`,
			map[image.Point]color.RGBA{{2, 5}: empty, {8, 5}: opaqueBlue},
		},
		{
			"stroke",
			`<svg viewBox="0 0 10 10"><line x1="0" y1="5" x2="10" y2="5" stroke="blue" stroke-width="4"/></svg>`,
			map[image.Point]color.RGBA{{5, 4}: opaqueBlue, {5, 5}: opaqueBlue, {5, 1}: empty, {5, 8}: empty},
		},
		{
			"pattern",
			`<svg viewBox="0 0 10 10">
				<pattern id="p" patternUnits="userSpaceOnUse" width="4" height="10">
					<rect width="2" height="10" fill="red"/>
				</pattern>
				<rect width="10" height="10" fill="url(#p)"/>
			</svg>`,
			map[image.Point]color.RGBA{{1, 5}: opaqueRed, {3, 5}: empty, {5, 5}: opaqueRed, {7, 5}: empty},
		},
		{
			"nested viewport",
			`<svg viewBox="0 0 10 10"><svg width="5" height="5"><rect width="10" height="10" fill="red"/></svg></svg>`,
			map[image.Point]color.RGBA{{2, 2}: opaqueRed, {7, 7}: empty},
		},
	} {
		img := render(t, test.src, 1)
		for p, exp := range test.pixels {
			assert.Equal(t, exp, img.RGBAAt(p.X, p.Y), "%s at %v", test.name, p)
		}
	}
}

func TestGroupOpacity(t *testing.T) {
	img := render(t, `<svg viewBox="0 0 10 10"><g opacity="0.5"><rect width="10" height="10" fill="red"/></g></svg>`, 1)
	c := img.RGBAAt(5, 5)
	assert.InDelta(t, 0x80, int(c.A), 2)
	assert.InDelta(t, 0x80, int(c.R), 2)
	assert.Equal(t, uint8(0), c.G)
}

func TestGradient(t *testing.T) {
	img := render(t, `<svg viewBox="0 0 100 10">
		<linearGradient id="g"><stop stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
		<rect width="100" height="10" fill="url(#g)"/>
	</svg>`, 1)
	left, right := img.RGBAAt(2, 5), img.RGBAAt(97, 5)
	assert.Greater(t, left.R, left.B)
	assert.Greater(t, right.B, right.R)
	assert.Equal(t, uint8(0xff), left.A)
}

func TestGradientSpreadAndRadial(t *testing.T) {
	img := render(t, `<svg viewBox="0 0 100 10">
		<linearGradient id="g" x2="0.5" spreadMethod="reflect"><stop stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
		<rect width="100" height="10" fill="url(#g)"/>
	</svg>`, 1)
	mid, end := img.RGBAAt(50, 5), img.RGBAAt(98, 5)
	assert.Greater(t, mid.B, mid.R)
	assert.Greater(t, end.R, end.B)

	img = render(t, `<svg viewBox="0 0 100 100">
		<radialGradient id="r"><stop stop-color="red"/><stop offset="1" stop-color="blue" stop-opacity="0.5"/></radialGradient>
		<rect width="100" height="100" fill="url(#r)"/>
	</svg>`, 1)
	center, corner := img.RGBAAt(50, 50), img.RGBAAt(1, 1)
	assert.Greater(t, center.R, center.B)
	assert.Equal(t, uint8(0xff), center.A)
	assert.Greater(t, corner.B, corner.R)
	assert.InDelta(t, 0x80, int(corner.A), 2)
}

func TestBackingScale(t *testing.T) {
	img := render(t, `<svg viewBox="0 0 10 10"><rect x="5" y="5" width="5" height="5" fill="red"/></svg>`, 2)
	assert.Equal(t, image.Rect(0, 0, 20, 20), img.Bounds())
	assert.Equal(t, opaqueRed, img.RGBAAt(15, 15))
	assert.Equal(t, empty, img.RGBAAt(8, 8))
}

func TestRenderIcons(t *testing.T) {
	for _, name := range []string{"square", "shapes", "broken-ref"} {
		f, err := os.Open(filepath.Join("..", "svgicon", "testdata", name+".svg"))
		require.NoError(t, err)
		img, err := RasterSVGIconToImage(f, nil, 1)
		f.Close()
		require.NoError(t, err, name)

		painted := false
		for i := 3; i < len(img.Pix); i += 4 {
			if img.Pix[i] != 0 {
				painted = true
				break
			}
		}
		assert.True(t, painted, name)

		_, err = toPngBytes(img)
		assert.NoError(t, err)
	}
}

func TestRenderInvalid(t *testing.T) {
	_, err := RasterSVGIconToImage(strings.NewReader("<svg><rect/></svg>"), nil, 1)
	assert.Error(t, err)
}
