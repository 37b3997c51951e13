// Package svgdoc parses SVG markup into a tree of nodes,
// keeping the attributes raw. The style cascade is resolved by
// the svgstyle package.
package svgdoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgpath"
)

// Document is a parsed SVG document.
type Document struct {
	Root *Node
	// Defs maps every id to its node. The first definition wins.
	Defs         map[string]*Node
	Viewport     Viewport
	Titles       []string // Title elements collect here
	Descriptions []string // Description elements collect here
}

// ViewBox returns the viewBox of the root element.
func (doc *Document) ViewBox() svgpath.Rect { return doc.Viewport.ViewBox }

// Lookup resolves a reference, given as "id", "#id" or "url(#id)".
func (doc *Document) Lookup(ref string) (*Node, bool) {
	id := RefID(ref)
	if id == "" {
		return nil, false
	}
	n, ok := doc.Defs[id]
	return n, ok
}

// RefID extracts the id from "#id" or "url(#id)" forms.
func RefID(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "url(") {
		ref = strings.TrimSuffix(strings.TrimPrefix(ref, "url("), ")")
		ref = strings.Trim(strings.TrimSpace(ref), `'"`)
	}
	return strings.TrimPrefix(ref, "#")
}

// docCursor is used while parsing SVG files
type docCursor struct {
	decoder  *xml.Decoder
	doc      *Document
	stack    []*Node
	captures []*rawCapture
	sheets   []string
}

// rawCapture re-encodes the tokens of a foreign subtree
type rawCapture struct {
	node *Node
	buf  bytes.Buffer
	enc  *xml.Encoder
}

// Parse reads a document from the given stream.
// The character set declared by the XML header is honored.
// Any error is returned as a *ParseError and no document is returned.
func Parse(stream io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	c := &docCursor{
		decoder: decoder,
		doc:     &Document{Defs: make(map[string]*Node)},
	}
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, c.syntaxError(err)
		}
		c.capture(t)
		switch se := t.(type) {
		case xml.StartElement:
			if err := c.startElement(se); err != nil {
				return nil, err
			}
		case xml.EndElement:
			c.endElement()
		case xml.CharData:
			if len(c.stack) > 0 {
				top := c.stack[len(c.stack)-1]
				switch top.Kind {
				case KindText, KindTitle, KindDesc, KindStyle, KindForeign:
					top.Text += string(se)
				}
			}
		}
	}
	if c.doc.Root == nil {
		return nil, &ParseError{Err: ErrNotSVG}
	}
	for _, sheet := range c.sheets {
		applySheet(c.doc.Root, parseSheet(sheet))
	}
	for _, n := range c.doc.collect(KindTitle) {
		c.doc.Titles = append(c.doc.Titles, strings.TrimSpace(n.Text))
	}
	for _, n := range c.doc.collect(KindDesc) {
		c.doc.Descriptions = append(c.doc.Descriptions, strings.TrimSpace(n.Text))
	}

	vp, err := ReadViewport(c.doc.Root, 0, 0)
	if err != nil {
		return nil, err
	}
	c.doc.Viewport = vp
	if vp.Sizeless {
		logx.Logger().Warn("svg root has no viewBox nor size, falling back to the content bounds")
	}
	logx.Logger().Debug("svg document parsed", "ids", len(c.doc.Defs), "viewBox", vp.ViewBox)
	return c.doc, nil
}

func (doc *Document) collect(kind Kind) []*Node {
	var out []*Node
	doc.Root.Walk(func(n *Node) bool {
		if n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (c *docCursor) syntaxError(err error) *ParseError {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &ParseError{Line: se.Line, Err: se}
	}
	line, col := c.decoder.InputPos()
	return &ParseError{Line: line, Column: col, Err: err}
}

func (c *docCursor) startElement(se xml.StartElement) error {
	line, col := c.decoder.InputPos()
	n := &Node{
		Tag:    se.Name.Local,
		Attrs:  make(map[string]string, len(se.Attr)),
		Line:   line,
		Column: col,
	}
	if kind, ok := kinds[n.Tag]; ok {
		n.Kind = kind
	} else if n.Tag == "svg" {
		n.Kind = KindSubDocument
		if c.doc.Root == nil {
			n.Kind = KindSVG
		}
	}
	if c.doc.Root == nil {
		if n.Kind != KindSVG {
			return &ParseError{Line: line, Column: col, Tag: n.Tag, Err: ErrNotSVG}
		}
		c.doc.Root = n
	} else if len(c.stack) == 0 {
		return &ParseError{Line: line, Column: col, Tag: n.Tag, Err: errors.New("multiple root elements")}
	} else {
		c.stack[len(c.stack)-1].appendChild(n)
	}
	c.stack = append(c.stack, n)

	var inline map[string]string
	for _, attr := range se.Attr {
		if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
			continue
		}
		if attr.Name.Local == "style" {
			inline = splitStyle(attr.Value)
			continue
		}
		n.Attrs[attr.Name.Local] = attr.Value
	}
	// explicit attributes take precedence over the inline style
	for k, v := range inline {
		if _, has := n.Attrs[k]; !has {
			n.Attrs[k] = v
		}
	}
	if id, ok := n.Attr("id"); ok && id != "" {
		n.ID = id
		if _, dup := c.doc.Defs[id]; !dup {
			c.doc.Defs[id] = n
		} else {
			logx.Logger().Debug("duplicate id ignored", "id", id, "line", line)
		}
	}
	if n.Kind == KindForeign {
		capt := &rawCapture{node: n}
		capt.enc = xml.NewEncoder(&capt.buf)
		capt.encode(se)
		c.captures = append(c.captures, capt)
	}
	return validateShape(n)
}

func (c *docCursor) endElement() {
	if len(c.stack) == 0 {
		return
	}
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	if top.Kind == KindStyle {
		c.sheets = append(c.sheets, top.Text)
	}
	if k := len(c.captures); k > 0 && c.captures[k-1].node == top {
		capt := c.captures[k-1]
		_ = capt.enc.Flush()
		top.Raw = capt.buf.Bytes()
		c.captures = c.captures[:k-1]
	}
}

// capture forwards the token to the active foreign captures.
// The start element of a new capture is handled by startElement.
func (c *docCursor) capture(t xml.Token) {
	for _, capt := range c.captures {
		capt.encode(t)
	}
}

func (rc *rawCapture) encode(t xml.Token) {
	switch tok := t.(type) {
	case xml.StartElement:
		out := xml.StartElement{Name: xml.Name{Local: tok.Name.Local}}
		for _, attr := range tok.Attr {
			if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
				continue
			}
			out.Attr = append(out.Attr, xml.Attr{Name: xml.Name{Local: attr.Name.Local}, Value: attr.Value})
		}
		t = out
	case xml.EndElement:
		t = xml.EndElement{Name: xml.Name{Local: tok.Name.Local}}
	case xml.ProcInst, xml.Directive:
		return
	}
	if err := rc.enc.EncodeToken(t); err != nil {
		logx.Logger().Debug("foreign content not captured", "tag", rc.node.Tag, "err", err)
	}
}

// validateShape checks the attributes required to build the shape geometry.
func validateShape(n *Node) error {
	var required []string
	switch n.Kind {
	case KindRect:
		required = []string{"width", "height"}
	case KindCircle:
		required = []string{"r"}
	case KindEllipse:
		required = []string{"rx", "ry"}
	case KindPolygon, KindPolyline:
		v, ok := n.Attr("points")
		if !ok {
			return attrError(n, "points", ErrMissingAttr)
		}
		points, err := svgpath.ReadPoints(v)
		if err != nil {
			return attrError(n, "points", fmt.Errorf("%s: %w", err, ErrInvalidAttr))
		}
		if len(points)%2 != 0 {
			return attrError(n, "points", fmt.Errorf("odd number of coordinates: %w", ErrInvalidAttr))
		}
		return nil
	case KindSubDocument:
		_, err := ReadViewport(n, 0, 0)
		return err
	case KindPath:
		if v, ok := n.Attr("d"); ok {
			if _, err := svgpath.ParsePathData(v); err != nil {
				return attrError(n, "d", err)
			}
		}
		return nil
	default:
		return nil
	}
	for _, name := range required {
		v, ok := n.Attr(name)
		if !ok {
			return attrError(n, name, ErrMissingAttr)
		}
		l, err := ParseLength(v)
		if err != nil {
			return attrError(n, name, err)
		}
		if l.Value < 0 {
			return attrError(n, name, ErrNegativeSize)
		}
	}
	return nil
}
