// Package config loads the scratchview settings file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"scratchview/internal/render"
)

// Config is the contents of scratchview.toml.
type Config struct {
	FrontImage         string  `toml:"front_image"`
	BackImage          string  `toml:"back_image"`
	AssetDir           string  `toml:"asset_dir"`
	StrokeWidth        float32 `toml:"stroke_width"`
	Cap                string  `toml:"cap"`
	Join               string  `toml:"join"`
	MaxRetainedStrokes int     `toml:"max_retained_strokes"`
	LogLevel           string  `toml:"log_level"`
	Share              Share   `toml:"share"`
}

// Share configures LAN sharing of a surface.
type Share struct {
	Enabled   bool   `toml:"enabled"`
	Port      int    `toml:"port"`
	Advertise bool   `toml:"advertise"`
	Service   string `toml:"service"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		FrontImage:         "builtin:foil",
		BackImage:          "builtin:prize",
		AssetDir:           "assets",
		StrokeWidth:        render.DefaultStrokeWidth,
		Cap:                "round",
		Join:               "round",
		MaxRetainedStrokes: 32,
		LogLevel:           "info",
		Share: Share{
			Port:      8888,
			Advertise: true,
			Service:   "_scratchview._tcp",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := render.ParseCap(c.Cap); err != nil {
		return err
	}
	if _, err := render.ParseJoin(c.Join); err != nil {
		return err
	}
	if c.MaxRetainedStrokes < 0 {
		return fmt.Errorf("max_retained_strokes must not be negative, got %d", c.MaxRetainedStrokes)
	}
	if c.Share.Port < 0 || c.Share.Port > 65535 {
		return fmt.Errorf("share.port out of range: %d", c.Share.Port)
	}
	return nil
}

// Paint returns the stroke paint described by the config. Values are
// assumed to have passed Validate; bad styles fall back to round.
func (c Config) Paint() render.Paint {
	p := render.DefaultPaint().WithWidth(c.StrokeWidth)
	p.Cap, _ = render.ParseCap(c.Cap)
	p.Join, _ = render.ParseJoin(c.Join)
	return p
}

// WithPaint returns c with the stroke settings taken from p.
func (c Config) WithPaint(p render.Paint) Config {
	c.StrokeWidth = p.Width
	c.Cap = p.Cap.String()
	c.Join = p.Join.String()
	return c
}

// Save writes c to path as TOML.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
