package render

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"scratchview/internal/state"
)

// Frame is everything the compositor reads to produce one frame.
type Frame struct {
	// Front is the scratchable overlay, stretched over the destination.
	// Nil or empty leaves the destination as it was.
	Front image.Image
	// Erased holds strokes already baked into a mask. May be nil.
	Erased *Mask
	// Paths are the live erase paths in destination pixel space.
	Paths [][]state.Point
	Paint Paint
}

// Composite draws f into dst: the front bitmap scaled to dst's bounds, then
// every erase stroke cleared out of it. It reads f without modifying it.
func Composite(dst *image.RGBA, f Frame) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	if f.Front != nil && !f.Front.Bounds().Empty() {
		xdraw.ApproxBiLinear.Scale(dst, b, f.Front, f.Front.Bounds(), draw.Src, nil)
	}

	if len(f.Paths) == 0 && (f.Erased == nil || f.Erased.Bounds().Empty()) {
		return
	}
	cov := newMaskRect(b)
	cov.Merge(f.Erased)
	for _, p := range f.Paths {
		cov.Stroke(p, f.Paint)
	}
	clearCoverage(dst, cov.img)
}

// Render allocates a w×h frame and composites f into it.
func Render(w, h int, f Frame) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	Composite(dst, f)
	return dst
}

// clearCoverage scales every premultiplied pixel of dst by 1-coverage.
// image/draw has no destination-out operator, hence the loop.
func clearCoverage(dst *image.RGBA, cov *image.Alpha) {
	r := dst.Rect.Intersect(cov.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		c := cov.Pix[cov.PixOffset(r.Min.X, y):cov.PixOffset(r.Max.X, y)]
		d := dst.Pix[dst.PixOffset(r.Min.X, y):dst.PixOffset(r.Max.X, y)]
		for i, a := range c {
			switch a {
			case 0:
			case 0xff:
				clear(d[i*4 : i*4+4])
			default:
				keep := uint32(0xff - a)
				for j := i * 4; j < i*4+4; j++ {
					d[j] = uint8((uint32(d[j])*keep + 0x7f) / 0xff)
				}
			}
		}
	}
}
