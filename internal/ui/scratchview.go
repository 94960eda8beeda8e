package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"scratchview/internal/assets"
	"scratchview/internal/render"
	"scratchview/internal/state"
)

// ScratchView is a Fyne widget showing a back image under a front image
// that pointer and touch drags scratch away.
type ScratchView struct {
	widget.BaseWidget

	surface   *Surface
	scheduler *Scheduler
	raster    *canvas.Raster
	back      *canvas.Image

	pixelSize state.Size
	mouseID   int64
	touchID   int64

	// OnTouch, when set, receives every local touch event together with
	// the logical size it was recorded at.
	OnTouch func(ev state.TouchEvent, logical state.Size)
}

var _ fyne.Widget = (*ScratchView)(nil)
var _ fyne.Draggable = (*ScratchView)(nil)
var _ desktop.Mouseable = (*ScratchView)(nil)
var _ mobile.Touchable = (*ScratchView)(nil)

// NewScratchView creates an empty view resolving image names with
// resolver.
func NewScratchView(resolver assets.Resolver) *ScratchView {
	v := &ScratchView{
		back: &canvas.Image{FillMode: canvas.ImageFillStretch},
	}
	v.raster = canvas.NewRaster(v.generate)
	v.scheduler = NewScheduler(fyne.Do, v.raster.Refresh)
	v.surface = NewSurface(resolver, v.layoutSizes, v.scheduler.RequestRedraw)
	v.surface.OnBackChanged(func(res fyne.Resource) {
		v.back.Resource = res
		v.back.Refresh()
	})
	v.ExtendBaseWidget(v)
	return v
}

// Surface returns the control state behind the widget.
func (v *ScratchView) Surface() *Surface { return v.surface }

// Scheduler returns the redraw scheduler driving the raster.
func (v *ScratchView) Scheduler() *Scheduler { return v.scheduler }

func (v *ScratchView) SetFrontImageSource(name string) error {
	return v.surface.SetFrontImageSource(name)
}

func (v *ScratchView) SetBackImageSource(name string) error {
	return v.surface.SetBackImageSource(name)
}

func (v *ScratchView) SetStrokeWidth(w float32) { v.surface.SetStrokeWidth(w) }

func (v *ScratchView) SetPaint(p render.Paint) { v.surface.SetPaint(p) }

// Reset removes every scratch mark.
func (v *ScratchView) Reset() { v.surface.Reset() }

// ApplyRemote feeds an event that did not originate from this widget's own
// input, such as one received from a peer. Must run on the UI goroutine.
func (v *ScratchView) ApplyRemote(ev state.TouchEvent) {
	v.surface.Handle(ev)
}

// NewContactID allocates an id for a contact fed through ApplyRemote.
func (v *ScratchView) NewContactID() int64 { return v.surface.NewContactID() }

// LogicalSize is the widget size in Fyne coordinates.
func (v *ScratchView) LogicalSize() state.Size {
	s := v.Size()
	return state.Size{Width: s.Width, Height: s.Height}
}

// generate is the raster paint callback. Fyne passes the pixel size of
// the area to fill.
func (v *ScratchView) generate(w, h int) image.Image {
	v.pixelSize = state.Size{Width: float32(w), Height: float32(h)}
	return v.surface.Paint(w, h)
}

// layoutSizes reports the widget size and the pixel size of the last
// frame. Before the first frame the two are taken to be equal.
func (v *ScratchView) layoutSizes() (logical, pixel state.Size) {
	logical = v.LogicalSize()
	if v.pixelSize.Width > 0 && v.pixelSize.Height > 0 {
		return logical, v.pixelSize
	}
	return logical, logical
}

func (v *ScratchView) emit(id int64, phase state.Phase, pos fyne.Position) {
	ev := state.TouchEvent{ID: id, Phase: phase, Location: state.Point{X: pos.X, Y: pos.Y}}
	v.surface.Handle(ev)
	if v.OnTouch != nil {
		v.OnTouch(ev, v.LogicalSize())
	}
}

func (v *ScratchView) press(slot *int64, pos fyne.Position) {
	if *slot != 0 {
		return
	}
	*slot = v.surface.NewContactID()
	v.emit(*slot, state.Pressed, pos)
}

func (v *ScratchView) finish(slot *int64, phase state.Phase, pos fyne.Position) {
	if *slot == 0 {
		return
	}
	id := *slot
	*slot = 0
	v.emit(id, phase, pos)
}

func (v *ScratchView) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		v.press(&v.mouseID, e.Position)
	}
}

func (v *ScratchView) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		v.finish(&v.mouseID, state.Released, e.Position)
	}
}

func (v *ScratchView) TouchDown(e *mobile.TouchEvent) {
	v.press(&v.touchID, e.Position)
}

func (v *ScratchView) TouchUp(e *mobile.TouchEvent) {
	v.finish(&v.touchID, state.Released, e.Position)
}

func (v *ScratchView) TouchCancel(e *mobile.TouchEvent) {
	v.finish(&v.touchID, state.Cancelled, e.Position)
}

func (v *ScratchView) Dragged(e *fyne.DragEvent) {
	switch {
	case v.mouseID != 0:
		v.emit(v.mouseID, state.Moved, e.Position)
	case v.touchID != 0:
		v.emit(v.touchID, state.Moved, e.Position)
	default:
		// Touch drivers may start dragging before TouchDown arrives.
		v.press(&v.touchID, e.Position.Subtract(e.Dragged))
		v.emit(v.touchID, state.Moved, e.Position)
	}
}

// DragEnd releases the dragging contact in case the matching button or
// touch-up is delivered elsewhere.
func (v *ScratchView) DragEnd() {
	v.finish(&v.mouseID, state.Released, fyne.Position{})
	v.finish(&v.touchID, state.Released, fyne.Position{})
}

func (v *ScratchView) CreateRenderer() fyne.WidgetRenderer {
	return &scratchRenderer{view: v}
}

type scratchRenderer struct {
	view *ScratchView
}

func (r *scratchRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.back, r.view.raster}
}

func (r *scratchRenderer) Layout(size fyne.Size) {
	r.view.back.Resize(size)
	r.view.raster.Resize(size)
}

func (r *scratchRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

func (r *scratchRenderer) Refresh() {
	r.view.back.Refresh()
	r.view.raster.Refresh()
}

func (r *scratchRenderer) Destroy() {}
