package share

import (
	"context"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scratchview/internal/state"
)

func TestLink(t *testing.T) {
	link := Link("192.168.1.5", 8888)
	assert.Equal(t, "scratchview://192.168.1.5:8888", link)

	addr, err := ParseLink(link)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.5:8888", addr)

	addr, err = ParseLink(" scratchview://host:1/ ")
	require.NoError(t, err)
	assert.Equal(t, "host:1", addr)

	addr, err = ParseLink("10.0.0.2:9000")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2:9000", addr)

	for _, bad := range []string{"", "scratchview://host", "scratchview://:80", "host:http", "host:70000"} {
		_, err := ParseLink(bad)
		assert.Error(t, err, bad)
	}
}

func TestTouchMessageRoundTrip(t *testing.T) {
	ev := state.TouchEvent{ID: 4, Phase: state.Moved, Location: state.Point{X: 50, Y: 25}}
	msg, ok := TouchMessage("a", ev, state.Size{Width: 100, Height: 100})
	require.True(t, ok)
	require.NoError(t, msg.Validate())
	assert.Equal(t, TypeTouch, msg.Type)
	assert.Equal(t, Touch{ID: 4, Phase: state.Moved, X: 0.5, Y: 0.25}, *msg.Touch)

	local := msg.Touch.Event(9, state.Size{Width: 200, Height: 40})
	assert.Equal(t, state.TouchEvent{ID: 9, Phase: state.Moved, Location: state.Point{X: 100, Y: 10}}, local)
}

func TestTouchMessageWithoutSize(t *testing.T) {
	ev := state.TouchEvent{ID: 1, Phase: state.Pressed, Location: state.Point{X: 1, Y: 1}}
	_, ok := TouchMessage("a", ev, state.Size{})
	assert.False(t, ok)

	ev.Phase = state.Released
	msg, ok := TouchMessage("a", ev, state.Size{})
	assert.True(t, ok, "releases are forwarded so remote contacts end")
	assert.Equal(t, state.Released, msg.Touch.Phase)
}

func TestTouchMessageClampsOvershoot(t *testing.T) {
	ev := state.TouchEvent{ID: 1, Phase: state.Moved, Location: state.Point{X: 1e30, Y: -500}}
	msg, ok := TouchMessage("a", ev, state.Size{Width: 100, Height: 100})
	require.True(t, ok)
	require.NoError(t, msg.Validate())
	assert.Equal(t, float32(2), msg.Touch.X)
	assert.Equal(t, float32(-1), msg.Touch.Y)
}

func TestValidateRejectsFarLocations(t *testing.T) {
	touch := func(x, y float32) Message {
		return Message{Type: TypeTouch, Origin: "a", Touch: &Touch{ID: 1, Phase: state.Moved, X: x, Y: y}}
	}
	assert.NoError(t, touch(0.5, 0.5).Validate())
	assert.NoError(t, touch(-0.5, 1.5).Validate(), "drags past the edge")
	for _, m := range []Message{
		touch(1e17, 0.5),
		touch(0.5, -1e17),
		touch(float32(math.NaN()), 0.5),
		touch(0.5, float32(math.Inf(1))),
		touch(3, 0.5),
	} {
		assert.Error(t, m.Validate(), "%+v", *m.Touch)
	}
}

func TestSessionDropsFarLocations(t *testing.T) {
	target := &fakeTarget{}
	s := NewSession(target, func(Message) {})
	s.Receive(Message{Type: TypeTouch, Origin: "peer", Touch: &Touch{ID: 1, Phase: state.Pressed, X: 0.5, Y: 0.5}})
	s.Receive(Message{Type: TypeTouch, Origin: "peer", Touch: &Touch{ID: 1, Phase: state.Moved, X: 1e17, Y: 0.5}})
	require.Len(t, target.events, 1)
	assert.Equal(t, state.Pressed, target.events[0].Phase)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, ResetMessage("a").Validate())
	assert.NoError(t, LeaveMessage("a").Validate())
	assert.Error(t, Message{Type: TypeReset}.Validate())
	assert.Error(t, Message{Type: TypeTouch, Origin: "a"}.Validate())
	assert.Error(t, Message{Type: TypeTouch, Origin: "a", Touch: &Touch{Phase: "hover"}}.Validate())
	assert.Error(t, Message{Type: "draw", Origin: "a"}.Validate())
}

func TestContactMap(t *testing.T) {
	var next int64
	m := NewContactMap(func() int64 { next++; return next })

	a, ok := m.Resolve("p1", Touch{ID: 1, Phase: state.Pressed})
	require.True(t, ok)
	b, ok := m.Resolve("p2", Touch{ID: 1, Phase: state.Pressed})
	require.True(t, ok)
	assert.NotEqual(t, a, b, "same remote id from different peers")

	again, ok := m.Resolve("p1", Touch{ID: 1, Phase: state.Moved})
	require.True(t, ok)
	assert.Equal(t, a, again)

	_, ok = m.Resolve("p1", Touch{ID: 7, Phase: state.Moved})
	assert.False(t, ok)

	end, ok := m.Resolve("p1", Touch{ID: 1, Phase: state.Released})
	require.True(t, ok)
	assert.Equal(t, a, end)
	assert.Equal(t, 1, m.Len())

	assert.Equal(t, []int64{b}, m.Drop("p2"))
	assert.Zero(t, m.Len())
}

type fakeTarget struct {
	events []state.TouchEvent
	resets int
	next   int64
}

func (f *fakeTarget) ApplyRemote(ev state.TouchEvent) { f.events = append(f.events, ev) }
func (f *fakeTarget) Reset()                          { f.resets++ }
func (f *fakeTarget) LogicalSize() state.Size         { return state.Size{Width: 10, Height: 10} }
func (f *fakeTarget) NewContactID() int64             { f.next++; return f.next }

func TestSession(t *testing.T) {
	target := &fakeTarget{next: 100}
	var sent []Message
	s := NewSession(target, func(m Message) { sent = append(sent, m) })
	require.NotEmpty(t, s.ID)

	s.Local(state.TouchEvent{ID: 1, Phase: state.Pressed, Location: state.Point{X: 5, Y: 5}}, state.Size{Width: 10, Height: 10})
	require.Len(t, sent, 1)
	assert.Equal(t, s.ID, sent[0].Origin)

	// Own messages echoed back are ignored.
	s.Receive(sent[0])
	assert.Empty(t, target.events)

	s.Receive(Message{Type: TypeTouch, Origin: "peer", Touch: &Touch{ID: 1, Phase: state.Pressed, X: 0.2, Y: 0.4}})
	s.Receive(Message{Type: TypeTouch, Origin: "peer", Touch: &Touch{ID: 1, Phase: state.Moved, X: 0.3, Y: 0.4}})
	s.Receive(Message{Type: TypeTouch, Origin: "peer", Touch: &Touch{ID: 2, Phase: state.Moved, X: 0.3, Y: 0.4}})
	require.Len(t, target.events, 2)
	assert.Equal(t, int64(101), target.events[0].ID)
	assert.Equal(t, state.Point{X: 2, Y: 4}, target.events[0].Location)
	assert.Equal(t, state.Moved, target.events[1].Phase)

	s.Receive(LeaveMessage("peer"))
	require.Len(t, target.events, 3)
	assert.Equal(t, state.TouchEvent{ID: 101, Phase: state.Released}, target.events[2])

	s.Receive(ResetMessage("peer"))
	assert.Equal(t, 1, target.resets)

	s.LocalReset()
	assert.Equal(t, 2, target.resets)
	assert.Equal(t, TypeReset, sent[len(sent)-1].Type)
}

func TestHubRelay(t *testing.T) {
	delivered := make(chan Message, 16)
	hub := NewHub(func(m Message) { delivered <- m })
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	addr := strings.TrimPrefix(srv.URL, "http://")

	a, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer a.Close()
	b, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer b.Close()
	require.Eventually(t, func() bool { return hub.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	fromA := make(chan Message, 16)
	fromB := make(chan Message, 16)
	go a.Run(func(m Message) { fromA <- m })
	go b.Run(func(m Message) { fromB <- m })

	msg := Message{Type: TypeTouch, Origin: "a", Touch: &Touch{ID: 1, Phase: state.Pressed, X: 0.5, Y: 0.5}}
	a.Send(msg)

	select {
	case got := <-fromB:
		assert.Equal(t, msg, got)
	case <-ctx.Done():
		t.Fatal("message not relayed")
	}
	select {
	case got := <-delivered:
		assert.Equal(t, msg, got)
	case <-ctx.Done():
		t.Fatal("message not delivered to host")
	}

	hub.Broadcast(ResetMessage("host"))
	for _, ch := range []chan Message{fromA, fromB} {
		select {
		case got := <-ch:
			assert.Equal(t, TypeReset, got.Type)
		case <-ctx.Done():
			t.Fatal("broadcast not received")
		}
	}

	// A leaving peer releases its contacts everywhere else.
	a.Close()
	select {
	case got := <-fromB:
		assert.Equal(t, LeaveMessage("a"), got)
	case <-ctx.Done():
		t.Fatal("leave not relayed")
	}
	assert.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
}
