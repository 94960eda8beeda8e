package share

import "scratchview/internal/state"

type remoteKey struct {
	origin string
	id     int64
}

// ContactMap assigns local contact ids to contacts of remote peers, so ids
// chosen independently by different peers never collide on one surface.
// Not safe for concurrent use.
type ContactMap struct {
	next func() int64
	ids  map[remoteKey]int64
}

// NewContactMap allocates fresh local ids with next.
func NewContactMap(next func() int64) *ContactMap {
	return &ContactMap{next: next, ids: make(map[remoteKey]int64)}
}

// Resolve returns the local id for a remote touch. Presses allocate, the
// final phases forget the mapping. Events for contacts that were never
// pressed report false.
func (m *ContactMap) Resolve(origin string, t Touch) (int64, bool) {
	key := remoteKey{origin, t.ID}
	id, ok := m.ids[key]
	switch t.Phase {
	case state.Pressed:
		if !ok {
			id = m.next()
			m.ids[key] = id
		}
		return id, true
	case state.Released, state.Cancelled:
		delete(m.ids, key)
	}
	return id, ok
}

// Drop forgets every contact of origin and returns their local ids.
func (m *ContactMap) Drop(origin string) []int64 {
	var ids []int64
	for key, id := range m.ids {
		if key.origin == origin {
			ids = append(ids, id)
			delete(m.ids, key)
		}
	}
	return ids
}

// Len returns the number of open remote contacts.
func (m *ContactMap) Len() int { return len(m.ids) }
