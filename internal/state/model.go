package state

import "fmt"

// Point is a position in either logical or pixel space, depending on use.
type Point struct{ X, Y float32 }

// Size is a width/height pair in either logical or pixel space.
type Size struct{ Width, Height float32 }

// Phase is the lifecycle stage carried by a touch event.
type Phase string

const (
	Pressed   Phase = "pressed"
	Moved     Phase = "moved"
	Released  Phase = "released"
	Cancelled Phase = "cancelled"
)

// Valid reports whether p is one of the four known phases.
func (p Phase) Valid() bool {
	switch p {
	case Pressed, Moved, Released, Cancelled:
		return true
	}
	return false
}

// TouchEvent is one normalized contact lifecycle event. Location is in the
// surface's logical coordinate space.
type TouchEvent struct {
	ID       int64
	Phase    Phase
	Location Point
}

func (e TouchEvent) String() string {
	return fmt.Sprintf("%s #%d (%.1f,%.1f)", e.Phase, e.ID, e.Location.X, e.Location.Y)
}

// Contact is one continuous touch and the erase path it has drawn so far.
// Path holds pixel-space points and always has at least one entry.
type Contact struct {
	ID       int64
	Path     []Point
	Released bool
}

func (c *Contact) clone() Contact {
	path := make([]Point, len(c.Path))
	copy(path, c.Path)
	return Contact{ID: c.ID, Path: path, Released: c.Released}
}
