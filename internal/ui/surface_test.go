package ui

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scratchview/internal/assets"
	"scratchview/internal/render"
	"scratchview/internal/state"
)

// stubResolver serves fixed images and fails for everything else.
type stubResolver struct {
	bitmaps   map[string]image.Image
	resources map[string]fyne.Resource
}

func (r stubResolver) Bitmap(name string) (image.Image, error) {
	if img, ok := r.bitmaps[name]; ok {
		return img, nil
	}
	if name == "corrupt.png" {
		return nil, assets.ErrDecode
	}
	return nil, assets.ErrNotFound
}

func (r stubResolver) Resource(name string) (fyne.Resource, error) {
	if res, ok := r.resources[name]; ok {
		return res, nil
	}
	return nil, assets.ErrNotFound
}

func fixedLayout(logical, pixel state.Size) state.Layout {
	return func() (state.Size, state.Size) { return logical, pixel }
}

func newTestSurface(t *testing.T) (*Surface, *int) {
	t.Helper()
	redraws := 0
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	res := stubResolver{
		bitmaps:   map[string]image.Image{"front.png": img},
		resources: map[string]fyne.Resource{"back.png": fyne.NewStaticResource("back.png", []byte("x"))},
	}
	s := NewSurface(res, fixedLayout(state.Size{Width: 100, Height: 100}, state.Size{Width: 200, Height: 200}), func() { redraws++ })
	return s, &redraws
}

func TestSurfaceFrontImage(t *testing.T) {
	s, redraws := newTestSurface(t)

	err := s.SetFrontImageSource("corrupt.png")
	assert.ErrorIs(t, err, assets.ErrDecode)
	assert.Nil(t, s.Front(), "first failed load leaves the empty bitmap")
	assert.Zero(t, *redraws)

	require.NoError(t, s.SetFrontImageSource("front.png"))
	loaded := s.Front()
	assert.NotNil(t, loaded)
	assert.Equal(t, 1, *redraws)

	err = s.SetFrontImageSource("missing.png")
	assert.ErrorIs(t, err, assets.ErrNotFound)
	assert.Same(t, loaded, s.Front(), "failed load keeps the prior bitmap")
	assert.Equal(t, "missing.png", s.FrontImageSource())

	assert.NotPanics(t, func() { s.Paint(50, 50) })
}

func TestSurfaceWithoutResolver(t *testing.T) {
	s := NewSurface(nil, fixedLayout(state.Size{}, state.Size{}), nil)
	assert.Error(t, s.SetFrontImageSource("a.png"))
	assert.Error(t, s.SetBackImageSource("b.png"))
	assert.NotPanics(t, func() { s.Paint(10, 10) })
}

func TestSurfaceBackImage(t *testing.T) {
	s, redraws := newTestSurface(t)
	var seen []fyne.Resource
	s.OnBackChanged(func(r fyne.Resource) { seen = append(seen, r) })

	require.NoError(t, s.SetBackImageSource("back.png"))
	require.Len(t, seen, 1)
	assert.Equal(t, "back.png", s.Back().Name())

	assert.Error(t, s.SetBackImageSource("gone.png"))
	assert.Len(t, seen, 1)
	assert.Equal(t, "back.png", s.Back().Name())
	assert.Equal(t, "gone.png", s.BackImageSource())
	assert.Zero(t, *redraws, "back image lives outside the raster")
}

func TestSurfaceStrokeWidthClamped(t *testing.T) {
	s, redraws := newTestSurface(t)
	assert.Equal(t, render.DefaultStrokeWidth, s.StrokeWidth())

	s.SetStrokeWidth(-5)
	assert.Equal(t, render.MinStrokeWidth, s.StrokeWidth())
	assert.Equal(t, render.MinStrokeWidth, s.Frame().Paint.Width)
	assert.Equal(t, 1, *redraws)

	s.SetStrokeWidth(0)
	assert.Equal(t, render.MinStrokeWidth, s.StrokeWidth())
	assert.Equal(t, 1, *redraws, "unchanged width does not redraw")

	s.SetStrokeWidth(30)
	assert.Equal(t, float32(30), s.StrokeWidth())

	s.SetPaint(render.Paint{Width: -1, Cap: render.CapButt})
	assert.Equal(t, render.MinStrokeWidth, s.StrokePaint().Width)
	assert.Equal(t, render.CapButt, s.StrokePaint().Cap)
}

func TestSurfaceTouchScenario(t *testing.T) {
	s, redraws := newTestSurface(t)
	s.Handle(state.TouchEvent{ID: 1, Phase: state.Pressed, Location: state.Point{X: 10, Y: 10}})
	s.Handle(state.TouchEvent{ID: 1, Phase: state.Moved, Location: state.Point{X: 20, Y: 10}})
	s.Handle(state.TouchEvent{ID: 1, Phase: state.Moved, Location: state.Point{X: 20, Y: 20}})

	c, ok := s.Contacts().Contact(1)
	require.True(t, ok)
	assert.Equal(t, []state.Point{{X: 20, Y: 20}, {X: 40, Y: 20}, {X: 40, Y: 40}}, c.Path)
	assert.Equal(t, 1, s.Contacts().Len())
	assert.Equal(t, 3, *redraws)

	s.Handle(state.TouchEvent{ID: 2, Phase: state.Pressed})
	s.Handle(state.TouchEvent{ID: 1, Phase: state.Cancelled})
	assert.Equal(t, 1, s.Contacts().Len())
	_, ok = s.Contacts().Contact(2)
	assert.True(t, ok)
}

func TestSurfaceBakesReleasedStrokes(t *testing.T) {
	s, _ := newTestSurface(t)
	require.NoError(t, s.SetFrontImageSource("front.png"))
	s.SetStrokeWidth(10)
	s.SetMaxRetainedStrokes(2)

	stroke := func(y float32) {
		id := s.NewContactID()
		s.Handle(state.TouchEvent{ID: id, Phase: state.Pressed, Location: state.Point{X: 5, Y: y}})
		s.Handle(state.TouchEvent{ID: id, Phase: state.Moved, Location: state.Point{X: 95, Y: y}})
		s.Handle(state.TouchEvent{ID: id, Phase: state.Released})
	}
	stroke(10)
	stroke(50)
	assert.Equal(t, 2, s.Contacts().Len())
	before := s.Paint(200, 200).(*image.RGBA)

	stroke(90)
	assert.Zero(t, s.Contacts().Len(), "third release bakes all released strokes")
	require.NotNil(t, s.Frame().Erased)

	after := s.Paint(200, 200).(*image.RGBA)
	assert.Zero(t, after.RGBAAt(100, 20).A)
	assert.Zero(t, after.RGBAAt(100, 100).A)
	assert.Zero(t, after.RGBAAt(100, 180).A)
	assert.Equal(t, before.RGBAAt(100, 20), after.RGBAAt(100, 20))
	assert.Equal(t, uint8(0xff), after.RGBAAt(100, 60).A)
}

func TestSurfaceKeepsActiveStrokesWhenBaking(t *testing.T) {
	s, _ := newTestSurface(t)
	s.SetMaxRetainedStrokes(0)

	s.Handle(state.TouchEvent{ID: 1, Phase: state.Pressed, Location: state.Point{X: 1, Y: 1}})
	s.Handle(state.TouchEvent{ID: 2, Phase: state.Pressed, Location: state.Point{X: 2, Y: 2}})
	s.Handle(state.TouchEvent{ID: 1, Phase: state.Released})

	_, ok := s.Contacts().Contact(2)
	assert.True(t, ok)
	_, ok = s.Contacts().Contact(1)
	assert.False(t, ok)
}

func TestSurfaceReset(t *testing.T) {
	s, redraws := newTestSurface(t)
	s.SetMaxRetainedStrokes(0)
	s.Handle(state.TouchEvent{ID: 1, Phase: state.Pressed, Location: state.Point{X: 1, Y: 1}})
	s.Handle(state.TouchEvent{ID: 1, Phase: state.Moved, Location: state.Point{X: 9, Y: 9}})
	s.Handle(state.TouchEvent{ID: 1, Phase: state.Released})
	s.Handle(state.TouchEvent{ID: 2, Phase: state.Pressed, Location: state.Point{X: 1, Y: 1}})
	require.NotNil(t, s.Frame().Erased)

	n := *redraws
	s.Reset()
	assert.Zero(t, s.Contacts().Len())
	assert.Nil(t, s.Frame().Erased)
	assert.Greater(t, *redraws, n)
}

func TestSurfaceContactIDsAreFresh(t *testing.T) {
	s, _ := newTestSurface(t)
	seen := map[int64]bool{}
	for i := 0; i < 100; i++ {
		id := s.NewContactID()
		assert.False(t, seen[id])
		assert.NotZero(t, id)
		seen[id] = true
	}
}

func TestSurfaceSnapshot(t *testing.T) {
	s, _ := newTestSurface(t)
	var b assets.Builtin
	s.resolver = assets.Chain{s.resolver, b}
	require.NoError(t, s.SetBackImageSource("builtin:prize"))
	require.NoError(t, s.SetFrontImageSource("front.png"))
	s.SetStrokeWidth(20)
	s.Handle(state.TouchEvent{ID: 1, Phase: state.Pressed, Location: state.Point{X: 0, Y: 50}})
	s.Handle(state.TouchEvent{ID: 1, Phase: state.Moved, Location: state.Point{X: 100, Y: 50}})

	img := s.Snapshot()
	assert.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())

	front := color.RGBAModel.Convert(img.At(100, 20)).(color.RGBA)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, front, "unscratched area shows the front")
	revealed := color.RGBAModel.Convert(img.At(100, 100)).(color.RGBA)
	assert.NotEqual(t, front, revealed, "scratched area shows the back")
	assert.Equal(t, uint8(0xff), revealed.A)
}

func TestSurfaceSnapshotBadBack(t *testing.T) {
	s, _ := newTestSurface(t)
	require.NoError(t, s.SetBackImageSource("back.png"))
	assert.NotPanics(t, func() { s.Snapshot() })
}
