package svgpath

import (
	"fmt"
	"strconv"
)

// This file implements the path data parser ("d" attribute).

// PathError is returned when path data is malformed.
type PathError struct {
	Offset int // byte offset in the path data
	Msg    string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("svgpath: invalid path data at offset %d: %s", e.Offset, e.Msg)
}

// argCounts is the number of arguments of each command.
var argCounts = map[byte]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1, 'C': 6, 'S': 4, 'Q': 4, 'T': 2, 'A': 7, 'Z': 0,
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// scanner reads numbers from a path or point list
type scanner struct {
	s   string
	pos int
}

func (sc *scanner) skipSeparators() {
	for sc.pos < len(sc.s) && (isSpace(sc.s[sc.pos]) || sc.s[sc.pos] == ',') {
		sc.pos++
	}
}

func (sc *scanner) done() bool {
	sc.skipSeparators()
	return sc.pos >= len(sc.s)
}

// startsNumber reports whether a number starts at the current position
func (sc *scanner) startsNumber() bool {
	sc.skipSeparators()
	if sc.pos >= len(sc.s) {
		return false
	}
	c := sc.s[sc.pos]
	return isDigit(c) || c == '.' || c == '-' || c == '+'
}

// number reads a float, supporting the compact forms
// "1.5.5" (two numbers) and "1-2".
func (sc *scanner) number() (float64, error) {
	sc.skipSeparators()
	start := sc.pos
	i := sc.pos
	if i < len(sc.s) && (sc.s[i] == '-' || sc.s[i] == '+') {
		i++
	}
	digits := false
	for i < len(sc.s) && isDigit(sc.s[i]) {
		i++
		digits = true
	}
	if i < len(sc.s) && sc.s[i] == '.' {
		i++
		for i < len(sc.s) && isDigit(sc.s[i]) {
			i++
			digits = true
		}
	}
	if !digits {
		return 0, &PathError{Offset: start, Msg: "expected number"}
	}
	if i < len(sc.s) && (sc.s[i] == 'e' || sc.s[i] == 'E') {
		j := i + 1
		if j < len(sc.s) && (sc.s[j] == '-' || sc.s[j] == '+') {
			j++
		}
		if j < len(sc.s) && isDigit(sc.s[j]) {
			for j < len(sc.s) && isDigit(sc.s[j]) {
				j++
			}
			i = j
		}
	}
	f, err := strconv.ParseFloat(sc.s[start:i], 64)
	if err != nil {
		return 0, &PathError{Offset: start, Msg: err.Error()}
	}
	sc.pos = i
	return f, nil
}

// flag reads an arc flag, which may not be separated
// from the following number.
func (sc *scanner) flag() (bool, error) {
	sc.skipSeparators()
	if sc.pos < len(sc.s) {
		switch sc.s[sc.pos] {
		case '0':
			sc.pos++
			return false, nil
		case '1':
			sc.pos++
			return true, nil
		}
	}
	return false, &PathError{Offset: sc.pos, Msg: "expected arc flag"}
}

// ReadPoints parses a list of numbers separated by
// spaces or commas, as found in viewBox, points or transform arguments.
func ReadPoints(v string) ([]float64, error) {
	sc := scanner{s: v}
	var out []float64
	for !sc.done() {
		f, err := sc.number()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// pathCursor holds the state needed while compiling path data
type pathCursor struct {
	path            Path
	cur, start      Point
	lastCtrl        Point // last control point, for smooth curves
	lastCmd         byte  // last absolute command letter
	sc              scanner
	hasCurrentPoint bool
}

// ParsePathData compiles the content of a "d" attribute.
// Uppercase commands are absolute, lowercase are relative; a command
// letter may be followed by several argument groups.
func ParsePathData(d string) (Path, error) {
	c := pathCursor{sc: scanner{s: d}}
	for !c.sc.done() {
		letter := c.sc.s[c.sc.pos]
		cmdOffset := c.sc.pos
		c.sc.pos++
		upper := letter &^ 0x20 // ASCII upper case
		n, ok := argCounts[upper]
		if !ok {
			return nil, &PathError{Offset: cmdOffset, Msg: fmt.Sprintf("unknown command %q", letter)}
		}
		if !c.hasCurrentPoint && upper != 'M' {
			return nil, &PathError{Offset: cmdOffset, Msg: "path must start with a moveto"}
		}
		relative := letter != upper
		if n == 0 {
			c.close()
			continue
		}
		first := true
		for first || c.sc.startsNumber() {
			if err := c.command(upper, relative, first); err != nil {
				return nil, err
			}
			first = false
		}
	}
	return c.path, nil
}

func (c *pathCursor) readArgs(n int) ([]float64, error) {
	args := make([]float64, n)
	for i := range args {
		var err error
		args[i], err = c.sc.number()
		if err != nil {
			return nil, err
		}
	}
	return args, nil
}

func (c *pathCursor) abs(x, y float64, relative bool) Point {
	if relative {
		return Point{c.cur.X + x, c.cur.Y + y}
	}
	return Point{x, y}
}

func (c *pathCursor) close() {
	if c.hasCurrentPoint {
		c.path.Stop(true)
		c.cur = c.start
	}
	c.lastCmd = 'Z'
}

func (c *pathCursor) command(cmd byte, relative, first bool) error {
	if cmd == 'A' {
		return c.arc(relative)
	}
	args, err := c.readArgs(argCounts[cmd])
	if err != nil {
		return err
	}
	switch cmd {
	case 'M':
		if !first { // implicit lineto after the first pair
			p := c.abs(args[0], args[1], relative)
			c.path.Line(p)
			c.cur = p
			c.lastCmd = 'L'
			return nil
		}
		p := c.abs(args[0], args[1], relative)
		c.path.Start(p)
		c.cur, c.start = p, p
		c.hasCurrentPoint = true
	case 'L':
		p := c.abs(args[0], args[1], relative)
		c.path.Line(p)
		c.cur = p
	case 'H':
		x := args[0]
		if relative {
			x += c.cur.X
		}
		c.cur = Point{x, c.cur.Y}
		c.path.Line(c.cur)
	case 'V':
		y := args[0]
		if relative {
			y += c.cur.Y
		}
		c.cur = Point{c.cur.X, y}
		c.path.Line(c.cur)
	case 'C':
		c1 := c.abs(args[0], args[1], relative)
		c2 := c.abs(args[2], args[3], relative)
		p := c.abs(args[4], args[5], relative)
		c.path.CubeBezier(c1, c2, p)
		c.lastCtrl, c.cur = c2, p
	case 'S':
		c1 := c.cur
		if c.lastCmd == 'C' || c.lastCmd == 'S' {
			c1 = c.cur.Add(c.cur.Sub(c.lastCtrl))
		}
		c2 := c.abs(args[0], args[1], relative)
		p := c.abs(args[2], args[3], relative)
		c.path.CubeBezier(c1, c2, p)
		c.lastCtrl, c.cur = c2, p
	case 'Q':
		ctrl := c.abs(args[0], args[1], relative)
		p := c.abs(args[2], args[3], relative)
		c.path.QuadBezier(c.cur, ctrl, p)
		c.lastCtrl, c.cur = ctrl, p
	case 'T':
		ctrl := c.cur
		if c.lastCmd == 'Q' || c.lastCmd == 'T' {
			ctrl = c.cur.Add(c.cur.Sub(c.lastCtrl))
		}
		p := c.abs(args[0], args[1], relative)
		c.path.QuadBezier(c.cur, ctrl, p)
		c.lastCtrl, c.cur = ctrl, p
	}
	c.lastCmd = cmd
	return nil
}

func (c *pathCursor) arc(relative bool) error {
	var (
		rx, ry, rot     float64
		largeArc, sweep bool
		err             error
	)
	if rx, err = c.sc.number(); err != nil {
		return err
	}
	if ry, err = c.sc.number(); err != nil {
		return err
	}
	if rot, err = c.sc.number(); err != nil {
		return err
	}
	if largeArc, err = c.sc.flag(); err != nil {
		return err
	}
	if sweep, err = c.sc.flag(); err != nil {
		return err
	}
	end, err := c.readArgs(2)
	if err != nil {
		return err
	}
	p := c.abs(end[0], end[1], relative)
	c.path.AddArc(c.cur, rx, ry, rot, largeArc, sweep, p)
	c.cur = p
	c.lastCmd = 'A'
	return nil
}
