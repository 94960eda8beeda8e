package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"strings"

	"fyne.io/fyne/v2"
)

// BuiltinPrefix marks names served by Builtin.
const BuiltinPrefix = "builtin:"

const builtinSize = 256

// Builtin synthesizes a few images so the surface works without any asset
// files: "builtin:foil" is a brushed silver overlay and "builtin:prize" a
// striped card to reveal.
type Builtin struct{}

var builtins = map[string]func() image.Image{
	"foil":  foil,
	"prize": prize,
}

func (Builtin) lookup(name string) (func() image.Image, error) {
	key, ok := strings.CutPrefix(name, BuiltinPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	gen, ok := builtins[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return gen, nil
}

func (b Builtin) Bitmap(name string) (image.Image, error) {
	gen, err := b.lookup(name)
	if err != nil {
		return nil, err
	}
	return gen(), nil
}

func (b Builtin) Resource(name string) (fyne.Resource, error) {
	gen, err := b.lookup(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, gen()); err != nil {
		return nil, fmt.Errorf("encode %q: %w", name, err)
	}
	return fyne.NewStaticResource(strings.TrimPrefix(name, BuiltinPrefix)+".png", buf.Bytes()), nil
}

func foil() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, builtinSize, builtinSize))
	rng := rand.New(rand.NewPCG(1, 2))
	for y := 0; y < builtinSize; y++ {
		for x := 0; x < builtinSize; x++ {
			v := 170 + (x+y)*40/(2*builtinSize) + rng.IntN(24)
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(v), G: uint8(v), B: uint8(v + 6), A: 0xff})
		}
	}
	return img
}

func prize() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, builtinSize, builtinSize))
	gold := color.NRGBA{R: 0xf2, G: 0xc1, B: 0x2e, A: 0xff}
	plum := color.NRGBA{R: 0x6a, G: 0x2c, B: 0x70, A: 0xff}
	for y := 0; y < builtinSize; y++ {
		for x := 0; x < builtinSize; x++ {
			c := plum
			if (x/32+y/32)%2 == 0 {
				c = gold
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
