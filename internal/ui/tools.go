package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"scratchview/internal/logx"
	"scratchview/internal/render"
)

// widthPresets are the stroke widths offered as swatches.
var widthPresets = []float32{8, 24, 48, 100}

const sliderMax = 200

// --- Width swatch ---
type widthSwatch struct {
	widget.BaseWidget
	Width    float32
	OnTapped func(float32)
}

func newWidthSwatch(w float32, tapped func(float32)) *widthSwatch {
	s := &widthSwatch{Width: w, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *widthSwatch) CreateRenderer() fyne.WidgetRenderer {
	box := canvas.NewRectangle(color.Transparent)
	box.StrokeColor = color.Gray{Y: 150}
	box.StrokeWidth = 1
	box.SetMinSize(fyne.NewSize(32, 32))

	// Dot diameter grows with the width, capped to the swatch.
	d := min(4+s.Width/4, 28)
	dot := canvas.NewCircle(theme.Color(theme.ColorNameForeground))
	dot.Resize(fyne.NewSize(d, d))
	dot.Move(fyne.NewPos((32-d)/2, (32-d)/2))

	return widget.NewSimpleRenderer(container.NewStack(box, container.NewWithoutLayout(dot)))
}

func (s *widthSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Width)
	}
}

// ToolbarActions are the commands the toolbar triggers outside the view.
type ToolbarActions struct {
	Reset  func()
	Export func()
}

// toolbar holds the controls so tests can drive them.
type toolbar struct {
	view     *ScratchView
	actions  *widget.Toolbar
	swatches []*widthSwatch
	slider   *widget.Slider
	caps     *widget.Select
	joins    *widget.Select
}

// NewToolbar builds the controls for view.
func NewToolbar(view *ScratchView, acts ToolbarActions) fyne.CanvasObject {
	return newToolbar(view, acts).content()
}

func newToolbar(view *ScratchView, acts ToolbarActions) *toolbar {
	t := &toolbar{view: view}
	reset := acts.Reset
	if reset == nil {
		reset = view.Reset
	}
	items := []widget.ToolbarItem{
		widget.NewToolbarAction(theme.ContentClearIcon(), reset),
	}
	if acts.Export != nil {
		items = append(items, widget.NewToolbarAction(theme.DocumentSaveIcon(), acts.Export))
	}
	t.actions = widget.NewToolbar(items...)

	// --- Width ---
	t.slider = widget.NewSlider(float64(render.MinStrokeWidth), sliderMax)
	t.slider.SetValue(float64(view.Surface().StrokeWidth()))
	t.slider.OnChanged = func(val float64) {
		view.SetStrokeWidth(float32(val))
	}
	for _, w := range widthPresets {
		t.swatches = append(t.swatches, newWidthSwatch(w, t.setWidth))
	}

	// --- Cap and join ---
	paint := view.Surface().StrokePaint()
	t.caps = widget.NewSelect([]string{"round", "square", "butt"}, nil)
	t.caps.SetSelected(paint.Cap.String())
	t.caps.OnChanged = t.setCap
	t.joins = widget.NewSelect([]string{"round", "miter", "bevel"}, nil)
	t.joins.SetSelected(paint.Join.String())
	t.joins.OnChanged = t.setJoin
	return t
}

func (t *toolbar) setWidth(w float32) {
	t.view.SetStrokeWidth(w)
	t.slider.SetValue(float64(t.view.Surface().StrokeWidth()))
}

func (t *toolbar) setCap(name string) {
	c, err := render.ParseCap(name)
	if err != nil {
		logx.Logger().Warn("cap not applied", "err", err)
		return
	}
	p := t.view.Surface().StrokePaint()
	p.Cap = c
	t.view.SetPaint(p)
}

func (t *toolbar) setJoin(name string) {
	j, err := render.ParseJoin(name)
	if err != nil {
		logx.Logger().Warn("join not applied", "err", err)
		return
	}
	p := t.view.Surface().StrokePaint()
	p.Join = j
	t.view.SetPaint(p)
}

func (t *toolbar) content() fyne.CanvasObject {
	swatchBox := container.NewHBox()
	for _, s := range t.swatches {
		swatchBox.Add(s)
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.slider)

	return container.NewHBox(
		t.actions,
		widget.NewSeparator(),
		widget.NewLabel("Width:"),
		swatchBox,
		sliderContainer,
		widget.NewSeparator(),
		widget.NewLabel("Cap:"),
		t.caps,
		widget.NewLabel("Join:"),
		t.joins,
		layout.NewSpacer(),
	)
}
