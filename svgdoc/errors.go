package svgdoc

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSVG is returned when the input has no svg root element.
	ErrNotSVG = errors.New("invalid svg xml icon")
	// ErrMissingAttr is returned for a shape without a required attribute.
	ErrMissingAttr = errors.New("missing required attribute")
	// ErrInvalidAttr is returned for malformed attribute values.
	ErrInvalidAttr = errors.New("invalid attribute value")
	// ErrNegativeSize is returned for negative sizes or radii.
	ErrNegativeSize = errors.New("negative size")
)

// ParseError is returned when the markup is malformed.
// The document is never partially returned.
type ParseError struct {
	Line, Column int    // location hint, 0 when unknown
	Tag          string // element being parsed, if any
	Attr         string // faulty attribute, if any
	Err          error
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.Column > 0 {
		loc += fmt.Sprintf(", column %d", e.Column)
	}
	switch {
	case e.Tag != "" && e.Attr != "":
		return fmt.Sprintf("svgdoc: %s: <%s> attribute %q: %s", loc, e.Tag, e.Attr, e.Err)
	case e.Tag != "":
		return fmt.Sprintf("svgdoc: %s: <%s>: %s", loc, e.Tag, e.Err)
	default:
		return fmt.Sprintf("svgdoc: %s: %s", loc, e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

func attrError(n *Node, attr string, err error) *ParseError {
	return &ParseError{Line: n.Line, Column: n.Column, Tag: n.Tag, Attr: attr, Err: err}
}
