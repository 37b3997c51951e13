// Command svgtree reads an SVG file, reports its bounding boxes and
// colors, and optionally renders it to a PNG or PDF file.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/benoitkugler/svgtree/svgicon"
	"github.com/benoitkugler/svgtree/svgpdf"
	"github.com/benoitkugler/svgtree/svgraster"
)

var (
	source      = flag.String("in", "", "SVG source file")
	destination = flag.String("out", "", "Output file, .png or .pdf (optional)")
	configFile  = flag.String("config", "", "TOML configuration file (optional)")
	scale       = flag.Float64("scale", 1, "Backing scale of the PNG output")
	verbose     = flag.Bool("v", false, "Log the parsing and rendering details")
)

func main() {
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: svgtree -in icon.svg [-out icon.png] [-config cfg.toml]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *source == "" {
		flag.Usage()
		os.Exit(2)
	}

	if *verbose {
		svgicon.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := svgicon.DefaultConfig
	if *configFile != "" {
		var err error
		cfg, err = svgicon.LoadConfigFile(*configFile)
		if err != nil {
			log.Fatalf("invalid configuration: %s", err)
		}
	}

	icon, err := svgicon.ReadIcon(*source, cfg)
	if err != nil {
		log.Fatalf("reading %s: %s", *source, err)
	}
	report(icon)

	if *destination == "" {
		return
	}
	switch ext := strings.ToLower(filepath.Ext(*destination)); ext {
	case ".png":
		err = writePNG(icon, *destination, *scale)
	case ".pdf":
		err = writePDF(icon, *destination)
	default:
		err = fmt.Errorf("unsupported output format %q", ext)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func report(icon *svgicon.SvgIcon) {
	w, h := icon.ViewBoxSize()
	fmt.Printf("view box:     %g x %g\n", w, h)
	for _, t := range icon.Titles {
		fmt.Printf("title:        %s\n", t)
	}
	fmt.Printf("visual box:   %+v\n", icon.VisualBoundingBox())
	fmt.Printf("complete box: %+v\n", icon.BoundingBoxIncludingInvisibles())
	for _, c := range icon.Colors() {
		fmt.Printf("color:        #%02x%02x%02x%02x\n", c.R, c.G, c.B, c.A)
	}
	for _, msg := range icon.Warnings {
		fmt.Printf("warning:      %s\n", msg)
	}
}

func writePNG(icon *svgicon.SvgIcon, path string, scale float64) error {
	if scale <= 0 {
		scale = 1
	}
	w, h := icon.ViewBoxSize()
	img := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(w*scale)), int(math.Ceil(h*scale))))
	icon.Draw(svgraster.NewRenderer(img, scale), 0, 0, w, h)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePDF(icon *svgicon.SvgIcon, path string) error {
	pdf := gofpdf.New("P", "pt", "", "")
	svgpdf.DrawIcon(pdf, icon)
	return pdf.OutputFileAndClose(path)
}
