// Provides parsing and rendering of SVG images.
// SVG files are parsed into a document, assembled into a render tree,
// which can then be consumed by painting drivers.
// See for example svgtree/svgraster or svgtree/svgpdf .
package svgicon

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgcache"
	"github.com/benoitkugler/svgtree/svgdoc"
	"github.com/benoitkugler/svgtree/svglayer"
	"github.com/benoitkugler/svgtree/svgpath"
)

var (
	// ErrInTransaction is returned when discarding the source
	// of an icon while a transaction is in progress on it.
	ErrInTransaction = errors.New("svgicon: transaction in progress")
	// ErrUnresolvedReference is returned in StrictErrorMode.
	ErrUnresolvedReference = errors.New("svgicon: unresolved reference")
)

// SetLogger sets the logger used by the svgtree packages.
// By default nothing is logged.
func SetLogger(l *slog.Logger) { logx.SetLogger(l) }

// SvgIcon holds data from parsed SVGs.
// See the `Draw` methods to use it.
type SvgIcon struct {
	ViewBox      svgpath.Rect
	Titles       []string // Title elements collect here
	Descriptions []string // Description elements collect here
	// Warnings lists the references which could not be resolved.
	Warnings []string

	Width, Height float64 // top level viewport size

	cfg  Config
	doc  *svgdoc.Document // nil once discarded
	tree *svglayer.Tree
	lock *svgcache.TxLock
}

// ReadIconStream reads the Icon from the given io.Reader.
func ReadIconStream(stream io.Reader, cfg Config) (*SvgIcon, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	doc, err := svgdoc.Parse(stream)
	if err != nil {
		return nil, err
	}
	tree, err := svglayer.Assembler{Options: opts, Handler: cfg.Handler}.Build(doc)
	if err != nil {
		return nil, err
	}
	icon := &SvgIcon{
		ViewBox:      tree.ViewBox,
		Titles:       doc.Titles,
		Descriptions: doc.Descriptions,
		Width:        tree.Viewport.Width,
		Height:       tree.Viewport.Height,
		cfg:          cfg,
		doc:          doc,
		tree:         tree,
		lock:         new(svgcache.TxLock),
	}
	switch cfg.ErrorMode {
	case StrictErrorMode:
		if len(tree.Warnings) != 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedReference, tree.Warnings[0])
		}
	case WarnErrorMode:
		for _, w := range tree.Warnings {
			icon.Warnings = append(icon.Warnings, w.String())
		}
	}
	return icon, nil
}

// ReadIcon reads the Icon from the named file.
func ReadIcon(iconFile string, cfg Config) (*SvgIcon, error) {
	fin, errf := os.Open(iconFile)
	if errf != nil {
		return nil, errf
	}
	defer fin.Close()
	return ReadIconStream(fin, cfg)
}

// ReadIconBytes reads the Icon from an in-memory source.
func ReadIconBytes(src []byte, cfg Config) (*SvgIcon, error) {
	return ReadIconStream(bytes.NewReader(src), cfg)
}

// Tree returns the render tree of the icon. It must not be
// mutated outside of a transaction if the icon is shared.
func (icon *SvgIcon) Tree() *svglayer.Tree { return icon.tree }

// Document returns the parsed source, or nil after DiscardSource.
func (icon *SvgIcon) Document() *svgdoc.Document { return icon.doc }

// ViewBoxSize returns the size of the viewBox.
func (icon *SvgIcon) ViewBoxSize() (w, h float64) { return icon.ViewBox.W, icon.ViewBox.H }

// Colors returns the distinct colors painted by the icon.
func (icon *SvgIcon) Colors() (out []color.NRGBA) {
	icon.lock.Read(func() { out = icon.tree.Colors() })
	return out
}

func (icon *SvgIcon) space() svglayer.Space {
	if icon.cfg.Flipped {
		return svglayer.Flipped
	}
	return svglayer.Raw
}

// VisualBoundingBox returns the bounds of what the icon paints,
// in the viewBox coordinates.
func (icon *SvgIcon) VisualBoundingBox() (box svgpath.Rect) {
	icon.lock.Read(func() { box = icon.tree.Bounds(svglayer.Visible, icon.space()) })
	return box
}

// BoundingBoxIncludingInvisibles returns the bounds of every
// geometry of the icon, whatever its paint.
func (icon *SvgIcon) BoundingBoxIncludingInvisibles() (box svgpath.Rect) {
	icon.lock.Read(func() { box = icon.tree.Bounds(svglayer.Inclusive, icon.space()) })
	return box
}

// Draw renders the icon in the rectangle (x, y, w, h) of the surface.
// If the surface implements svglayer.BackingScale, its scale is applied.
// It waits for the transaction in progress, if any, and must not be
// called from inside a transaction.
func (icon *SvgIcon) Draw(s svglayer.Surface, x, y, w, h float64) {
	opts := svglayer.DrawOptions{Rect: svgpath.Rect{X: x, Y: y, W: w, H: h}, Debug: icon.cfg.Debug}
	opts.Backing, _ = s.(svglayer.BackingScale)
	icon.lock.Read(func() { icon.tree.Draw(s, opts) })
}

// Transaction runs fn while holding the transaction lock of the icon,
// shared with the other icons of its Library. When exec is not nil,
// fn is run on its thread. Draw, Colors and the bounding box
// methods wait for the transaction to end.
func (icon *SvgIcon) Transaction(fn func(tree *svglayer.Tree) error, exec svgcache.Executor) error {
	return icon.lock.Do(icon, func() error { return fn(icon.tree) }, exec)
}

// SetOverrideColors replaces every fill (resp. stroke) color
// of the icon, except "none". A nil color restores the document colors.
func (icon *SvgIcon) SetOverrideColors(fill, stroke *color.NRGBA) error {
	return icon.Transaction(func(tree *svglayer.Tree) error {
		tree.ApplyOverride(fill, stroke)
		return nil
	}, nil)
}

// DiscardSource releases the parsed document, keeping only
// the render tree. It fails while a transaction is in progress on the icon.
func (icon *SvgIcon) DiscardSource() error {
	if icon.lock.InTransaction(icon) {
		return ErrInTransaction
	}
	icon.doc = nil
	return nil
}
