package ui

import (
	"errors"
	"image"
	"image/draw"

	"fyne.io/fyne/v2"
	xdraw "golang.org/x/image/draw"

	"scratchview/internal/assets"
	"scratchview/internal/logx"
	"scratchview/internal/render"
	"scratchview/internal/state"
)

// DefaultMaxRetainedStrokes is how many released strokes stay in the live
// contact set before they are baked into the erase mask.
const DefaultMaxRetainedStrokes = 32

var errNoResolver = errors.New("no asset resolver configured")

// Surface is the scratch-off control without any widget attached: the
// contact set, the front bitmap, the back image handle and the erase paint.
// It is not safe for concurrent use; every call must come from the
// goroutine that paints it.
type Surface struct {
	tracker  *state.Tracker
	resolver assets.Resolver
	layout   state.Layout
	redraw   func()

	front       image.Image
	frontSource string
	back        fyne.Resource
	backSource  string
	onBack      func(fyne.Resource)

	paint       render.Paint
	erased      *render.Mask
	maxRetained int
	nextID      int64
}

// NewSurface returns an empty surface. layout reports the current logical
// and pixel sizes; redraw is called whenever the frame becomes stale.
func NewSurface(resolver assets.Resolver, layout state.Layout, redraw func()) *Surface {
	if redraw == nil {
		redraw = func() {}
	}
	s := &Surface{
		resolver:    resolver,
		layout:      layout,
		redraw:      redraw,
		paint:       render.DefaultPaint(),
		maxRetained: DefaultMaxRetainedStrokes,
	}
	s.tracker = state.NewTracker(state.LayoutMapper(layout), redraw)
	return s
}

// NewContactID returns an id no earlier call has returned. Input adapters
// use it so every press starts a fresh contact.
func (s *Surface) NewContactID() int64 {
	s.nextID++
	return s.nextID
}

// Handle feeds one touch event to the contact set.
func (s *Surface) Handle(ev state.TouchEvent) {
	if !s.tracker.Handle(ev) {
		return
	}
	if ev.Phase == state.Released && s.tracker.ReleasedCount() > s.maxRetained {
		s.bake()
	}
}

// bake moves released strokes out of the contact set into the erase mask.
func (s *Surface) bake() {
	_, pixel := s.layout()
	w, h := int(pixel.Width), int(pixel.Height)
	if w <= 0 || h <= 0 {
		return
	}
	if s.erased == nil || s.erased.Bounds() != image.Rect(0, 0, w, h) {
		m := render.NewMask(w, h)
		m.Merge(s.erased)
		s.erased = m
	}
	released := s.tracker.TakeReleased()
	for _, c := range released {
		s.erased.Stroke(c.Path, s.paint)
	}
	logx.Logger().Debug("baked released strokes", "count", len(released), "live", s.tracker.Len())
}

// Contacts exposes the live contact set for inspection.
func (s *Surface) Contacts() *state.Tracker { return s.tracker }

// Frame returns what the compositor needs for the current state.
func (s *Surface) Frame() render.Frame {
	return render.Frame{
		Front:  s.front,
		Erased: s.erased,
		Paths:  s.tracker.Paths(),
		Paint:  s.paint,
	}
}

// Paint composites the current state into a new w×h image.
func (s *Surface) Paint(w, h int) image.Image {
	return render.Render(w, h, s.Frame())
}

// Reset forgets every stroke, live or baked.
func (s *Surface) Reset() {
	s.tracker.Reset()
	s.erased = nil
	s.redraw()
}

// SetFrontImageSource decodes name and makes it the front bitmap. On
// failure the previous bitmap stays in place and the error is returned.
func (s *Surface) SetFrontImageSource(name string) error {
	s.frontSource = name
	if s.resolver == nil {
		return errNoResolver
	}
	img, err := s.resolver.Bitmap(name)
	if err != nil {
		logx.Logger().Warn("front image not loaded", "name", name, "err", err)
		return err
	}
	s.front = img
	s.redraw()
	return nil
}

// FrontImageSource returns the last name passed to SetFrontImageSource.
func (s *Surface) FrontImageSource() string { return s.frontSource }

// Front returns the current front bitmap, nil if none was ever loaded.
func (s *Surface) Front() image.Image { return s.front }

// SetBackImageSource resolves name into the back image handle and passes
// it to the back-image listener. On failure the previous handle is kept.
func (s *Surface) SetBackImageSource(name string) error {
	s.backSource = name
	if s.resolver == nil {
		return errNoResolver
	}
	res, err := s.resolver.Resource(name)
	if err != nil {
		logx.Logger().Warn("back image not loaded", "name", name, "err", err)
		return err
	}
	s.back = res
	if s.onBack != nil {
		s.onBack(res)
	}
	return nil
}

// BackImageSource returns the last name passed to SetBackImageSource.
func (s *Surface) BackImageSource() string { return s.backSource }

// Back returns the current back image handle.
func (s *Surface) Back() fyne.Resource { return s.back }

// OnBackChanged registers fn to be called with every new back image.
func (s *Surface) OnBackChanged(fn func(fyne.Resource)) {
	s.onBack = fn
}

// SetStrokeWidth sets the erase width, clamped to at least
// render.MinStrokeWidth. It applies to every live stroke on the next paint.
func (s *Surface) SetStrokeWidth(w float32) {
	clamped := render.ClampWidth(w)
	if clamped != w {
		logx.Logger().Debug("stroke width clamped", "requested", w, "used", clamped)
	}
	if clamped == s.paint.Width {
		return
	}
	s.paint.Width = clamped
	s.redraw()
}

// StrokeWidth returns the effective erase width.
func (s *Surface) StrokeWidth() float32 { return s.paint.Width }

// SetPaint replaces the whole stroke configuration. The width is clamped.
func (s *Surface) SetPaint(p render.Paint) {
	p.Width = render.ClampWidth(p.Width)
	s.paint = p
	s.redraw()
}

// StrokePaint returns the current stroke configuration.
func (s *Surface) StrokePaint() render.Paint { return s.paint }

// SetMaxRetainedStrokes sets how many released strokes are kept live before
// baking. Negative values mean zero.
func (s *Surface) SetMaxRetainedStrokes(n int) {
	s.maxRetained = max(n, 0)
}

// Snapshot renders the surface as it looks on screen at its current pixel
// size: the back image stretched underneath the scratched front layer.
func (s *Surface) Snapshot() image.Image {
	_, pixel := s.layout()
	w, h := int(pixel.Width), int(pixel.Height)
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	if s.back != nil {
		if img, err := assets.Decode(s.back.Name(), s.back.Content()); err == nil {
			xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		} else {
			logx.Logger().Warn("back image not decodable for snapshot", "err", err)
		}
	}
	top := s.Paint(w, h)
	draw.Draw(dst, dst.Bounds(), top, image.Point{}, draw.Over)
	return dst
}
