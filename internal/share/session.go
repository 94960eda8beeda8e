package share

import (
	"github.com/google/uuid"

	"scratchview/internal/logx"
	"scratchview/internal/state"
)

// Target is the surface a session mirrors into.
type Target interface {
	ApplyRemote(state.TouchEvent)
	Reset()
	LogicalSize() state.Size
	NewContactID() int64
}

// Session translates between one local surface and the wire.
type Session struct {
	ID       string
	target   Target
	send     func(Message)
	contacts *ContactMap
}

// NewSession returns a session with a fresh id. send transmits a message
// to the other peers.
func NewSession(target Target, send func(Message)) *Session {
	return &Session{
		ID:       uuid.NewString(),
		target:   target,
		send:     send,
		contacts: NewContactMap(target.NewContactID),
	}
}

// Local publishes a touch made on the local surface.
func (s *Session) Local(ev state.TouchEvent, logical state.Size) {
	msg, ok := TouchMessage(s.ID, ev, logical)
	if !ok {
		return
	}
	s.send(msg)
}

// LocalReset clears the local surface and asks the peers to do the same.
func (s *Session) LocalReset() {
	s.target.Reset()
	s.contacts = NewContactMap(s.target.NewContactID)
	s.send(ResetMessage(s.ID))
}

// Receive applies a message from another peer. It must run on the
// goroutine that owns the target.
func (s *Session) Receive(msg Message) {
	if msg.Origin == s.ID {
		return
	}
	if err := msg.Validate(); err != nil {
		logx.Logger().Debug("dropping message", "err", err)
		return
	}
	switch msg.Type {
	case TypeTouch:
		id, ok := s.contacts.Resolve(msg.Origin, *msg.Touch)
		if !ok {
			return
		}
		s.target.ApplyRemote(msg.Touch.Event(id, s.target.LogicalSize()))
	case TypeReset:
		s.target.Reset()
		s.contacts = NewContactMap(s.target.NewContactID)
	case TypeLeave:
		for _, id := range s.contacts.Drop(msg.Origin) {
			s.target.ApplyRemote(state.TouchEvent{ID: id, Phase: state.Released})
		}
	}
}
