// Package share mirrors scratch gestures between surfaces on a LAN: a host
// runs a websocket hub, peers join it, and every touch is relayed to all.
package share

import (
	"errors"
	"fmt"
	"math"

	"scratchview/internal/state"
)

// MessageType identifies a wire message.
type MessageType string

const (
	// TypeTouch carries one touch event.
	TypeTouch MessageType = "touch"
	// TypeReset clears every surface.
	TypeReset MessageType = "reset"
	// TypeLeave is sent on behalf of a peer whose connection dropped.
	TypeLeave MessageType = "leave"
)

// Message is the JSON document exchanged over the websocket.
type Message struct {
	Type   MessageType `json:"type"`
	Origin string      `json:"origin"`
	Touch  *Touch      `json:"touch,omitempty"`
}

// Touch is a touch event with its location normalized to [0,1] of the
// sender's surface, so surfaces of different sizes agree on where it is.
type Touch struct {
	ID    int64       `json:"id"`
	Phase state.Phase `json:"phase"`
	X     float32     `json:"x"`
	Y     float32     `json:"y"`
}

var unit = state.Size{Width: 1, Height: 1}

// overshoot is how far outside [0,1] a normalized coordinate may be. Drags
// can leave the surface; anything beyond this is clamped by senders and
// rejected by receivers.
const overshoot = 1

func clampUnit(v float32) float32 {
	return min(max(v, -overshoot), 1+overshoot)
}

func validUnit(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && f >= -overshoot && f <= 1+overshoot
}

// TouchMessage wraps a local event recorded on a surface of the given
// logical size. It reports false if the surface has no size yet.
func TouchMessage(origin string, ev state.TouchEvent, logical state.Size) (Message, bool) {
	norm, ok := state.ToPixel(ev.Location, logical, unit)
	if !ok {
		if ev.Phase == state.Pressed || ev.Phase == state.Moved {
			return Message{}, false
		}
		norm = state.Point{}
	}
	return Message{
		Type:   TypeTouch,
		Origin: origin,
		Touch:  &Touch{ID: ev.ID, Phase: ev.Phase, X: clampUnit(norm.X), Y: clampUnit(norm.Y)},
	}, true
}

// ResetMessage asks every peer to clear its surface.
func ResetMessage(origin string) Message {
	return Message{Type: TypeReset, Origin: origin}
}

// LeaveMessage announces that origin disconnected.
func LeaveMessage(origin string) Message {
	return Message{Type: TypeLeave, Origin: origin}
}

// Validate rejects messages a receiver cannot act on.
func (m Message) Validate() error {
	if m.Origin == "" {
		return errors.New("message without origin")
	}
	switch m.Type {
	case TypeReset, TypeLeave:
		return nil
	case TypeTouch:
		if m.Touch == nil {
			return errors.New("touch message without touch")
		}
		if !m.Touch.Phase.Valid() {
			return fmt.Errorf("unknown touch phase %q", m.Touch.Phase)
		}
		if !validUnit(m.Touch.X) || !validUnit(m.Touch.Y) {
			return fmt.Errorf("touch location (%g,%g) out of range", m.Touch.X, m.Touch.Y)
		}
		return nil
	}
	return fmt.Errorf("unknown message type %q", m.Type)
}

// Event converts t into a local event with the given id for a surface of
// the given logical size.
func (t Touch) Event(id int64, logical state.Size) state.TouchEvent {
	loc, ok := state.ToPixel(state.Point{X: t.X, Y: t.Y}, unit, logical)
	if !ok {
		loc = state.Point{}
	}
	return state.TouchEvent{ID: id, Phase: t.Phase, Location: loc}
}
