// Package assets resolves image names into decoded front bitmaps and
// displayable back-image resources.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path"
	"strings"

	"fyne.io/fyne/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotFound is returned when no resolver knows the requested name.
	ErrNotFound = errors.New("asset not found")
	// ErrDecode is returned when an asset exists but is not a decodable
	// image.
	ErrDecode = errors.New("asset is not a decodable image")
)

// Resolver turns an asset name into the two forms a scratch surface needs.
type Resolver interface {
	// Bitmap returns the decoded pixels of the named image.
	Bitmap(name string) (image.Image, error)
	// Resource returns the named image as an opaque displayable resource.
	Resource(name string) (fyne.Resource, error)
}

// FS resolves names against a file system, such as an embed.FS.
type FS struct {
	fsys fs.FS
}

// NewFS returns a resolver reading from fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Dir returns a resolver reading from the directory dir.
func Dir(dir string) *FS {
	return NewFS(os.DirFS(dir))
}

func (r *FS) read(name string) ([]byte, error) {
	clean := path.Clean(strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/"))
	if name == "" || !fs.ValidPath(clean) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	data, err := fs.ReadFile(r.fsys, clean)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", name, err)
	}
	return data, nil
}

func (r *FS) Bitmap(name string) (image.Image, error) {
	data, err := r.read(name)
	if err != nil {
		return nil, err
	}
	return Decode(name, data)
}

func (r *FS) Resource(name string) (fyne.Resource, error) {
	data, err := r.read(name)
	if err != nil {
		return nil, err
	}
	return fyne.NewStaticResource(path.Base(name), data), nil
}

// Decode decodes data as any registered image format. Zero-sized images
// are rejected.
func Decode(name string, data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrDecode, name, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %q: empty %s image", ErrDecode, name, format)
	}
	return img, nil
}

// Chain tries each resolver in turn and returns the first result that is
// not ErrNotFound.
type Chain []Resolver

func (c Chain) Bitmap(name string) (image.Image, error) {
	for _, r := range c {
		img, err := r.Bitmap(name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return img, err
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func (c Chain) Resource(name string) (fyne.Resource, error) {
	for _, r := range c {
		res, err := r.Resource(name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return res, err
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}
