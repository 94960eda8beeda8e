package render

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"
	xdraw "golang.org/x/image/draw"

	"scratchview/internal/state"
)

// Mask is an 8-bit erase coverage buffer in surface pixel space. Strokes
// are merged with a per-pixel maximum, so the result does not depend on the
// order they were added in.
type Mask struct {
	img *image.Alpha

	r   *vector.Rasterizer
	buf []uint8
}

// NewMask returns an empty mask of w×h pixels. Non-positive sizes give an
// empty mask that ignores strokes.
func NewMask(w, h int) *Mask {
	return newMaskRect(image.Rect(0, 0, max(w, 0), max(h, 0)))
}

func newMaskRect(r image.Rectangle) *Mask {
	return &Mask{img: image.NewAlpha(r)}
}

// Bounds returns the pixel rectangle covered by the mask.
func (m *Mask) Bounds() image.Rectangle { return m.img.Rect }

// At returns the coverage of pixel (x, y), 0 outside the mask.
func (m *Mask) At(x, y int) uint8 {
	if !(image.Point{x, y}.In(m.img.Rect)) {
		return 0
	}
	return m.img.Pix[m.img.PixOffset(x, y)]
}

// Empty reports whether no pixel has any coverage.
func (m *Mask) Empty() bool {
	for _, a := range m.img.Pix {
		if a != 0 {
			return false
		}
	}
	return true
}

// Stroke rasterizes path with p and merges its coverage into the mask.
// Parts of the path far outside the mask are clipped away first.
func (m *Mask) Stroke(path []state.Point, p Paint) {
	if len(path) < 2 || m.img.Rect.Empty() {
		return
	}
	p.Width = ClampWidth(p.Width)
	for _, sub := range clipPath(dedupe(path), m.img.Rect, p.reach()+2) {
		m.stroke(sub, p)
	}
}

func (m *Mask) stroke(pts []vec, p Paint) {
	bb := strokeBounds(pts, p).Intersect(m.img.Rect)
	if bb.Empty() {
		return
	}
	w, h := bb.Dx(), bb.Dy()
	if m.r == nil {
		m.r = vector.NewRasterizer(w, h)
	} else {
		m.r.Reset(w, h)
	}
	m.r.DrawOp = draw.Src

	o := outliner{r: m.r, origin: vec{float64(bb.Min.X), float64(bb.Min.Y)}}
	o.outline(pts, p)

	if cap(m.buf) < w*h {
		m.buf = make([]uint8, w*h)
	}
	scratch := &image.Alpha{Pix: m.buf[:w*h], Stride: w, Rect: bb}
	m.r.Draw(scratch, bb, image.Opaque, image.Point{})
	m.mergeAlpha(scratch)
}

// Merge folds the coverage of other into m. A mask of a different size is
// scaled to fit first.
func (m *Mask) Merge(other *Mask) {
	if other == nil || other.img.Rect.Empty() || m.img.Rect.Empty() {
		return
	}
	src := other.img
	if src.Rect != m.img.Rect {
		scaled := image.NewAlpha(m.img.Rect)
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Rect, src, src.Rect, draw.Src, nil)
		src = scaled
	}
	m.mergeAlpha(src)
}

func (m *Mask) mergeAlpha(src *image.Alpha) {
	r := src.Rect.Intersect(m.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		s := src.Pix[src.PixOffset(r.Min.X, y):src.PixOffset(r.Max.X, y)]
		d := m.img.Pix[m.img.PixOffset(r.Min.X, y):m.img.PixOffset(r.Max.X, y)]
		for i, a := range s {
			d[i] = max(d[i], a)
		}
	}
}
