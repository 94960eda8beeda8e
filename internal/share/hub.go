package share

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"scratchview/internal/logx"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 256
)

// Peer is one websocket connection attached to the hub.
type Peer struct {
	conn   *websocket.Conn
	send   chan Message
	origin string
}

// Hub is run by the HOST. It accepts peers on /ws and relays every message
// a peer sends to all other peers and to the host's own surface.
type Hub struct {
	upgrader websocket.Upgrader
	deliver  func(Message)

	mu     sync.RWMutex
	peers  map[*Peer]struct{}
	closed bool
}

// NewHub returns a hub that hands every valid incoming message to deliver.
// deliver is called from connection goroutines.
func NewHub(deliver func(Message)) *Hub {
	if deliver == nil {
		deliver = func(Message) {}
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			// Peers are other instances on the LAN, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		deliver: deliver,
		peers:   make(map[*Peer]struct{}),
	}
}

// ServeHTTP upgrades the request and serves the peer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Logger().Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	p := &Peer{conn: conn, send: make(chan Message, sendBuffer)}
	if !h.add(p) {
		conn.Close()
		return
	}
	logx.Logger().Info("peer connected", "remote", r.RemoteAddr)

	go p.writeLoop()
	h.readLoop(p)

	h.remove(p)
	logx.Logger().Info("peer disconnected", "remote", r.RemoteAddr)
	if p.origin != "" {
		leave := LeaveMessage(p.origin)
		h.deliver(leave)
		h.relay(nil, leave)
	}
}

func (h *Hub) readLoop(p *Peer) {
	defer p.conn.Close()
	for {
		var msg Message
		if err := p.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logx.Logger().Debug("peer read failed", "err", err)
			}
			return
		}
		if err := msg.Validate(); err != nil {
			logx.Logger().Debug("dropping message", "err", err)
			continue
		}
		// The first valid message fixes the origin used for leave.
		if p.origin == "" {
			p.origin = msg.Origin
		}
		h.deliver(msg)
		h.relay(p, msg)
	}
}

func (p *Peer) writeLoop() {
	for msg := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.conn.WriteJSON(msg); err != nil {
			logx.Logger().Debug("peer write failed", "err", err)
			p.conn.Close()
			for range p.send {
			}
			return
		}
	}
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	p.conn.Close()
}

func (h *Hub) add(p *Peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.peers[p] = struct{}{}
	return true
}

func (h *Hub) remove(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[p]; ok {
		delete(h.peers, p)
		close(p.send)
	}
}

// relay queues msg for every peer except from. A peer whose queue is full
// misses the message rather than stalling the others.
func (h *Hub) relay(from *Peer, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers {
		if p == from {
			continue
		}
		select {
		case p.send <- msg:
		default:
			logx.Logger().Warn("peer too slow, message dropped", "type", msg.Type)
		}
	}
}

// Broadcast sends a message originating on the host to every peer.
func (h *Hub) Broadcast(msg Message) {
	h.relay(nil, msg)
}

// Count returns the number of connected peers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close disconnects every peer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for p := range h.peers {
		delete(h.peers, p)
		close(p.send)
	}
}
