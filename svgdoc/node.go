package svgdoc

import "strings"

// Kind is the type of a document node.
type Kind uint8

const (
	KindForeign     Kind = iota // unknown element, kept opaque
	KindSVG                     // root element
	KindSubDocument             // nested svg element
	KindGroup
	KindPath
	KindRect
	KindCircle
	KindEllipse
	KindLine
	KindPolygon
	KindPolyline
	KindText
	KindUse
	KindLinearGradient
	KindRadialGradient
	KindStop
	KindPattern
	KindClipPath
	KindMask
	KindDefs
	KindSymbol
	KindStyle
	KindTitle
	KindDesc
)

var kinds = map[string]Kind{
	"g":              KindGroup,
	"a":              KindGroup,
	"switch":         KindGroup,
	"path":           KindPath,
	"rect":           KindRect,
	"circle":         KindCircle,
	"ellipse":        KindEllipse,
	"line":           KindLine,
	"polygon":        KindPolygon,
	"polyline":       KindPolyline,
	"text":           KindText,
	"tspan":          KindText,
	"use":            KindUse,
	"linearGradient": KindLinearGradient,
	"radialGradient": KindRadialGradient,
	"stop":           KindStop,
	"pattern":        KindPattern,
	"clipPath":       KindClipPath,
	"mask":           KindMask,
	"defs":           KindDefs,
	"symbol":         KindSymbol,
	"style":          KindStyle,
	"title":          KindTitle,
	"desc":           KindDesc,
}

// IsShape reports whether the node kind produces geometry.
func (k Kind) IsShape() bool {
	switch k {
	case KindPath, KindRect, KindCircle, KindEllipse, KindLine, KindPolygon, KindPolyline, KindText:
		return true
	}
	return false
}

// IsDefinition reports whether the node is only drawn when referenced.
func (k Kind) IsDefinition() bool {
	switch k {
	case KindLinearGradient, KindRadialGradient, KindStop, KindPattern, KindClipPath,
		KindMask, KindDefs, KindSymbol, KindStyle, KindTitle, KindDesc:
		return true
	}
	return false
}

// Node is an element of the document tree.
// Attributes are stored raw: inheritance is resolved later, by svgstyle.
type Node struct {
	Kind     Kind
	Tag      string
	ID       string
	Attrs    map[string]string // explicit attributes, merged with the inline style
	Children []*Node
	Text     string // character data, for text, title, desc and style elements
	Raw      []byte // the XML source of the subtree, for foreign elements

	Line, Column int // position of the start tag

	parent *Node // not owning
}

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Attr returns the trimmed value of the given attribute.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return strings.TrimSpace(v), ok
}

// Href returns the id referenced by the href (or xlink:href) attribute,
// without the leading '#'.
func (n *Node) Href() string {
	v, _ := n.Attr("href")
	return strings.TrimPrefix(v, "#")
}

// Walk calls fn for n and its descendants, in pre-order,
// stopping the descent into a subtree when fn returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Classes returns the class names of the node.
func (n *Node) Classes() []string {
	v, _ := n.Attr("class")
	return strings.Fields(v)
}

func (n *Node) appendChild(c *Node) {
	c.parent = n
	n.Children = append(n.Children, c)
}
