// Package render rasterizes erase strokes and composites them over the
// front bitmap of a scratch surface.
package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Cap is the shape drawn at the open ends of a stroke.
type Cap int

const (
	CapRound Cap = iota
	CapSquare
	CapButt
)

func (c Cap) String() string {
	switch c {
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	case CapButt:
		return "butt"
	}
	return fmt.Sprintf("Cap(%d)", int(c))
}

// ParseCap parses "round", "square" or "butt".
func ParseCap(s string) (Cap, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "round", "":
		return CapRound, nil
	case "square":
		return CapSquare, nil
	case "butt":
		return CapButt, nil
	}
	return CapRound, fmt.Errorf("unknown cap style %q", s)
}

// Join is the shape drawn where two segments of a stroke meet.
type Join int

const (
	JoinRound Join = iota
	JoinMiter
	JoinBevel
)

func (j Join) String() string {
	switch j {
	case JoinRound:
		return "round"
	case JoinMiter:
		return "miter"
	case JoinBevel:
		return "bevel"
	}
	return fmt.Sprintf("Join(%d)", int(j))
}

// ParseJoin parses "round", "miter" or "bevel".
func ParseJoin(s string) (Join, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "round", "":
		return JoinRound, nil
	case "miter":
		return JoinMiter, nil
	case "bevel":
		return JoinBevel, nil
	}
	return JoinRound, fmt.Errorf("unknown join style %q", s)
}

const (
	// DefaultStrokeWidth is the erase width, in pixels, of a new surface.
	DefaultStrokeWidth float32 = 100
	// MinStrokeWidth is the smallest width that reaches the rasterizer.
	MinStrokeWidth float32 = 1
	// MaxStrokeWidth bounds the width so stroke outlines stay well inside
	// float32 range.
	MaxStrokeWidth float32 = 1 << 14
	// DefaultMiterLimit matches the usual canvas default.
	DefaultMiterLimit float32 = 4
)

// Paint configures how erase strokes are rasterized. The blend mode is
// always erase; Color is carried for completeness and has no effect.
type Paint struct {
	Width      float32
	Color      color.Color
	Cap        Cap
	Join       Join
	MiterLimit float32
}

// DefaultPaint returns a round-capped, round-joined paint at the default
// width.
func DefaultPaint() Paint {
	return Paint{
		Width:      DefaultStrokeWidth,
		Color:      color.Transparent,
		Cap:        CapRound,
		Join:       JoinRound,
		MiterLimit: DefaultMiterLimit,
	}
}

// ClampWidth limits w to [MinStrokeWidth, MaxStrokeWidth]. NaN yields the
// default width.
func ClampWidth(w float32) float32 {
	switch {
	case math.IsNaN(float64(w)):
		return DefaultStrokeWidth
	case w < MinStrokeWidth:
		return MinStrokeWidth
	case w > MaxStrokeWidth:
		return MaxStrokeWidth
	}
	return w
}

// WithWidth returns a copy of p using the clamped width w.
func (p Paint) WithWidth(w float32) Paint {
	p.Width = ClampWidth(w)
	return p
}

// maxMiterLimit caps the miter limit; longer miters are practically spikes.
const maxMiterLimit = 1000

func (p Paint) miterLimit() float64 {
	if p.MiterLimit < 1 || math.IsNaN(float64(p.MiterLimit)) {
		return float64(DefaultMiterLimit)
	}
	return min(float64(p.MiterLimit), maxMiterLimit)
}
