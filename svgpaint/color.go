// Package svgpaint resolves SVG color values and
// describes the paints (plain colors, gradients and patterns)
// used to fill or stroke shapes.
package svgpaint

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var errParamMismatch = errors.New("svgpaint: param mismatch")

// Keyword identifies the special color values which
// can't be expressed as a plain RGBA color.
type Keyword uint8

const (
	NoKeyword           Keyword = iota
	KeywordNone                 // "none" : disables painting
	KeywordCurrentColor         // "currentColor" : takes the inherited color property
)

// OptionalColor is the result of parsing a color attribute.
// When Keyword is not NoKeyword, Color is not meaningful.
type OptionalColor struct {
	Color   color.NRGBA
	Keyword Keyword
}

// AsPaint converts the color into a paint, using `current`
// for the currentColor keyword.
func (c OptionalColor) AsPaint(current color.NRGBA) Paint {
	switch c.Keyword {
	case KeywordNone:
		return None{}
	case KeywordCurrentColor:
		return Solid{Color: current}
	default:
		return Solid{Color: c.Color}
	}
}

// ParseColor parses an SVG color string in all forms
// including all SVG1.1 names, obtained from the colornames package,
// hexadecimal notations (#rgb, #rgba, #rrggbb, #rrggbbaa)
// and the rgb() and rgba() functions.
func ParseColor(colorStr string) (OptionalColor, error) {
	v := strings.ToLower(strings.TrimSpace(colorStr))
	switch v {
	case "":
		return OptionalColor{}, fmt.Errorf("svgpaint: empty color: %w", errParamMismatch)
	case "none":
		return OptionalColor{Keyword: KeywordNone}, nil
	case "transparent":
		return OptionalColor{}, nil
	case "currentcolor":
		return OptionalColor{Keyword: KeywordCurrentColor}, nil
	}
	if cn, ok := colornames.Map[v]; ok {
		return OptionalColor{Color: color.NRGBA{cn.R, cn.G, cn.B, cn.A}}, nil
	}
	if strings.HasPrefix(v, "#") {
		c, err := parseColorHex(v[1:])
		if err != nil {
			return OptionalColor{}, fmt.Errorf("svgpaint: invalid color %q: %w", colorStr, err)
		}
		return OptionalColor{Color: c}, nil
	}
	if strings.HasPrefix(v, "rgb") {
		c, err := parseColorFunc(v)
		if err != nil {
			return OptionalColor{}, fmt.Errorf("svgpaint: invalid color %q: %w", colorStr, err)
		}
		return OptionalColor{Color: c}, nil
	}
	return OptionalColor{}, fmt.Errorf("svgpaint: unknown color %q: %w", colorStr, errParamMismatch)
}

func parseColorHex(hex string) (color.NRGBA, error) {
	switch len(hex) {
	case 3, 4:
		// duplicate characters in case of short notation
		long := make([]byte, 0, 8)
		for i := 0; i < len(hex); i++ {
			long = append(long, hex[i], hex[i])
		}
		hex = string(long)
	case 6, 8:
	default:
		return color.NRGBA{}, errParamMismatch
	}
	out := [4]uint8{3: 0xFF}
	for i := 0; i < len(hex)/2; i++ {
		t, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, err
		}
		out[i] = uint8(t)
	}
	return color.NRGBA{out[0], out[1], out[2], out[3]}, nil
}

// parseColorFunc handles rgb(r, g, b) and rgba(r, g, b, a)
func parseColorFunc(v string) (color.NRGBA, error) {
	var args string
	if s := strings.TrimPrefix(v, "rgba("); s != v {
		args = s
	} else if s := strings.TrimPrefix(v, "rgb("); s != v {
		args = s
	} else {
		return color.NRGBA{}, errParamMismatch
	}
	args = strings.TrimSuffix(strings.TrimSpace(args), ")")
	vals := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(vals) != 3 && len(vals) != 4 {
		return color.NRGBA{}, errParamMismatch
	}
	var cvals [4]uint8
	cvals[3] = 0xFF
	for i, val := range vals[:3] {
		c, err := parseColorValue(val)
		if err != nil {
			return color.NRGBA{}, err
		}
		cvals[i] = c
	}
	if len(vals) == 4 {
		a, err := parseAlphaValue(vals[3])
		if err != nil {
			return color.NRGBA{}, err
		}
		cvals[3] = a
	}
	return color.NRGBA{cvals[0], cvals[1], cvals[2], cvals[3]}, nil
}

func clampUint8(f float64) uint8 {
	if f < 0 {
		return 0
	} else if f > 255 {
		return 255
	}
	return uint8(f + 0.5)
}

func parseColorValue(v string) (uint8, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		n, err := strconv.ParseFloat(v[:len(v)-1], 64)
		if err != nil {
			return 0, err
		}
		return clampUint8(n * 0xFF / 100), nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return clampUint8(n), nil
}

// alpha is either a fraction in [0,1] or a percentage
func parseAlphaValue(v string) (uint8, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		return parseColorValue(v)
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return clampUint8(n * 0xFF), nil
}

// ApplyOpacity scales the alpha channel of c by opacity, clamped to [0,1].
func ApplyOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity >= 1 {
		return c
	}
	if opacity < 0 {
		opacity = 0
	}
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}
