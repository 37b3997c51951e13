package svgdoc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit is the unit of a length attribute.
type Unit uint8

const (
	UnitUser Unit = iota // no unit, or px
	UnitPercent
	UnitPt
	UnitPc
	UnitMm
	UnitCm
	UnitIn
	UnitEm
	UnitEx
)

var unitSuffixes = [...]struct {
	suffix string
	unit   Unit
}{
	{"%", UnitPercent},
	{"px", UnitUser},
	{"pt", UnitPt},
	{"pc", UnitPc},
	{"mm", UnitMm},
	{"cm", UnitCm},
	{"in", UnitIn},
	{"em", UnitEm},
	{"ex", UnitEx},
}

// user units per unit, at 96 dpi
var unitFactors = [...]float64{
	UnitUser: 1,
	UnitPt:   96. / 72,
	UnitPc:   16,
	UnitMm:   96 / 25.4,
	UnitCm:   96 / 2.54,
	UnitIn:   96,
	UnitEm:   defaultFontSize,
	UnitEx:   defaultFontSize / 2,
}

const defaultFontSize = 16

// Reference selects the viewport dimension used to resolve percentages.
type Reference uint8

const (
	RefWidth Reference = iota
	RefHeight
	RefDiag // normalized diagonal, used for radii and stroke widths
)

// Length is a number with its unit.
type Length struct {
	Value float64
	Unit  Unit
}

// ParseLength parses a length attribute such as "12", "1.5mm" or "50%".
func ParseLength(v string) (Length, error) {
	v = strings.TrimSpace(v)
	unit := UnitUser
	for _, u := range unitSuffixes {
		if strings.HasSuffix(v, u.suffix) {
			unit = u.unit
			v = strings.TrimSpace(strings.TrimSuffix(v, u.suffix))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", v, ErrInvalidAttr)
	}
	return Length{Value: f, Unit: unit}, nil
}

// Resolve converts the length to user units, using the
// viewport size (w, h) for percentages.
func (l Length) Resolve(w, h float64, ref Reference) float64 {
	if l.Unit != UnitPercent {
		return l.Value * unitFactors[l.Unit]
	}
	var base float64
	switch ref {
	case RefWidth:
		base = w
	case RefHeight:
		base = h
	default:
		base = math.Sqrt(w*w+h*h) / math.Sqrt2
	}
	return l.Value / 100 * base
}

// ReadFraction parses a number or a percentage, returned as a fraction.
func ReadFraction(v string) (float64, error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", v, ErrInvalidAttr)
	}
	return f / d, nil
}
