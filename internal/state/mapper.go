package state

import "math"

// ToPixel converts a logical-space point into the pixel space of a buffer
// sized pixel, for a surface laid out at logical. It reports false when the
// surface has no usable size yet or the result would not be finite; such
// points must be dropped.
func ToPixel(pt Point, logical, pixel Size) (Point, bool) {
	if !usable(logical.Width) || !usable(logical.Height) {
		return Point{}, false
	}
	x := float64(pt.X) * float64(pixel.Width) / float64(logical.Width)
	y := float64(pt.Y) * float64(pixel.Height) / float64(logical.Height)
	if !finite(x) || !finite(y) || math.Abs(x) > math.MaxFloat32 || math.Abs(y) > math.MaxFloat32 {
		return Point{}, false
	}
	return Point{X: float32(x), Y: float32(y)}, true
}

// Layout reports the current logical surface size and pixel buffer size.
type Layout func() (logical, pixel Size)

// Mapper converts logical points to pixel points.
type Mapper interface {
	ToPixel(Point) (Point, bool)
}

// MapperFunc adapts a function to the Mapper interface.
type MapperFunc func(Point) (Point, bool)

func (f MapperFunc) ToPixel(pt Point) (Point, bool) { return f(pt) }

// LayoutMapper maps through ToPixel using the sizes reported by layout at
// call time, so resizes are picked up without rebuilding the mapper.
func LayoutMapper(layout Layout) Mapper {
	return MapperFunc(func(pt Point) (Point, bool) {
		logical, pixel := layout()
		return ToPixel(pt, logical, pixel)
	})
}

func usable(v float32) bool {
	return v > 0 && finite(float64(v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
