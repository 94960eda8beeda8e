package state

import "scratchview/internal/logx"

// Tracker owns the active contact set: one open erase path per contact id.
// It is not safe for concurrent use; all calls must come from the goroutine
// that owns the surface.
type Tracker struct {
	contacts map[int64]*Contact
	mapper   Mapper
	redraw   func()
}

// NewTracker returns an empty tracker. redraw is invoked after every
// mutation of the contact set and may be nil.
func NewTracker(mapper Mapper, redraw func()) *Tracker {
	if redraw == nil {
		redraw = func() {}
	}
	return &Tracker{
		contacts: make(map[int64]*Contact),
		mapper:   mapper,
		redraw:   redraw,
	}
}

// Handle applies one touch event and reports whether the set changed.
// Events for unknown contacts, duplicate presses and unmappable points are
// ignored.
func (t *Tracker) Handle(ev TouchEvent) bool {
	c, ok := t.contacts[ev.ID]
	switch ev.Phase {
	case Pressed:
		if ok {
			return false
		}
		pt, mapped := t.mapper.ToPixel(ev.Location)
		if !mapped {
			logx.Logger().Debug("press dropped, surface not laid out", "id", ev.ID)
			return false
		}
		t.contacts[ev.ID] = &Contact{ID: ev.ID, Path: []Point{pt}}
	case Moved:
		if !ok {
			return false
		}
		pt, mapped := t.mapper.ToPixel(ev.Location)
		if !mapped {
			return false
		}
		c.Path = append(c.Path, pt)
	case Released:
		if !ok {
			return false
		}
		c.Released = true
	case Cancelled:
		if !ok {
			return false
		}
		delete(t.contacts, ev.ID)
	default:
		logx.Logger().Debug("unknown touch phase", "phase", ev.Phase, "id", ev.ID)
		return false
	}
	t.redraw()
	return true
}

// Len returns the number of contacts in the set.
func (t *Tracker) Len() int { return len(t.contacts) }

// Contact returns a copy of the contact with the given id.
func (t *Tracker) Contact(id int64) (Contact, bool) {
	c, ok := t.contacts[id]
	if !ok {
		return Contact{}, false
	}
	return c.clone(), true
}

// Paths returns the current path geometry of every contact. The slices
// share backing arrays with the tracker and must not be modified; they stay
// valid until the next call to Handle.
func (t *Tracker) Paths() [][]Point {
	paths := make([][]Point, 0, len(t.contacts))
	for _, c := range t.contacts {
		paths = append(paths, c.Path[:len(c.Path):len(c.Path)])
	}
	return paths
}

// ReleasedCount returns how many contacts in the set have been released.
func (t *Tracker) ReleasedCount() int {
	n := 0
	for _, c := range t.contacts {
		if c.Released {
			n++
		}
	}
	return n
}

// TakeReleased removes every released contact from the set and returns
// them. It does not request a redraw; the caller is expected to carry the
// returned geometry into whatever replaces it on screen.
func (t *Tracker) TakeReleased() []Contact {
	var out []Contact
	for id, c := range t.contacts {
		if c.Released {
			out = append(out, *c)
			delete(t.contacts, id)
		}
	}
	return out
}

// Reset drops every contact and requests a redraw.
func (t *Tracker) Reset() {
	if len(t.contacts) == 0 {
		return
	}
	clear(t.contacts)
	t.redraw()
}
