package svgicon

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/benoitkugler/svgtree/svglayer"
	"github.com/benoitkugler/svgtree/svgpaint"
	"github.com/benoitkugler/svgtree/svgstyle"
)

// ErrorMode determines how unresolved references
// (missing or cyclic paint servers, clips, masks, use targets)
// are reported.
type ErrorMode uint8

const (
	// WarnErrorMode collects the warnings in SvgIcon.Warnings.
	WarnErrorMode ErrorMode = iota
	// IgnoreErrorMode discards the warnings.
	IgnoreErrorMode
	// StrictErrorMode fails the build on the first warning.
	StrictErrorMode
)

var errorModeNames = [...]string{WarnErrorMode: "warn", IgnoreErrorMode: "ignore", StrictErrorMode: "strict"}

func (m ErrorMode) String() string {
	if int(m) < len(errorModeNames) {
		return errorModeNames[m]
	}
	return fmt.Sprintf("ErrorMode(%d)", m)
}

// MarshalText implements encoding.TextMarshaler.
func (m ErrorMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ErrorMode) UnmarshalText(text []byte) error {
	for i, name := range errorModeNames {
		if strings.EqualFold(string(text), name) {
			*m = ErrorMode(i)
			return nil
		}
	}
	return fmt.Errorf("svgicon: unknown error mode %q", text)
}

// Config holds the rendering settings of icons.
type Config struct {
	// Flipped selects the flipped coordinate space (y axis pointing up)
	// for the bounding boxes.
	Flipped bool `toml:"flipped"`
	// Debug outlines the shapes which paint nothing.
	Debug     bool      `toml:"debug"`
	ErrorMode ErrorMode `toml:"error_mode"`
	// FillOverride and StrokeOverride are optional colors replacing
	// every fill (resp. stroke) color, such as "#336699" or "teal".
	FillOverride   string `toml:"fill_override"`
	StrokeOverride string `toml:"stroke_override"`

	// Handler receives the foreign elements. It is optional.
	Handler svglayer.ContentHandler `toml:"-"`
}

// DefaultConfig uses the flipped space.
var DefaultConfig = Config{Flipped: true}

// LoadConfig reads a TOML configuration. Missing keys keep
// their DefaultConfig value.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("svgicon: invalid configuration: %s", strict.String())
		}
		return cfg, fmt.Errorf("svgicon: invalid configuration: %w", err)
	}
	if _, err := cfg.options(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadConfigFile reads the TOML configuration file at path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return DefaultConfig, err
	}
	defer f.Close()
	return LoadConfig(f)
}

// options returns the cascade options of the configuration.
func (cfg Config) options() (svgstyle.Options, error) {
	var (
		opts svgstyle.Options
		err  error
	)
	if opts.FillOverride, err = parseOverride(cfg.FillOverride); err != nil {
		return opts, fmt.Errorf("svgicon: fill_override: %w", err)
	}
	if opts.StrokeOverride, err = parseOverride(cfg.StrokeOverride); err != nil {
		return opts, fmt.Errorf("svgicon: stroke_override: %w", err)
	}
	return opts, nil
}

func parseOverride(v string) (*color.NRGBA, error) {
	if v == "" {
		return nil, nil
	}
	c, err := svgpaint.ParseColor(v)
	if err != nil {
		return nil, err
	}
	if c.Keyword != svgpaint.NoKeyword {
		return nil, fmt.Errorf("%q is not a plain color", v)
	}
	return &c.Color, nil
}
