package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-faceoverlay/internal/log"
)

// DefaultQueue is the size of the hub's broadcast queue and of every
// client's send queue.
const DefaultQueue = 64

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger. The hub name is attached to every record.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// WithReplay makes the hub remember the last broadcast and send it to
// clients as soon as they connect. The overlay stream uses it so a new
// viewer does not wait for the next frame.
func WithReplay() Option {
	return func(h *Hub) { h.replay = true }
}

// WithQueue overrides DefaultQueue.
func WithQueue(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.queue = n
		}
	}
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	name   string
	logger *slog.Logger
	replay bool
	queue  int

	// Owned by Run.
	clients map[*Client]struct{}
	last    *Message

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once

	count   atomic.Int64
	dropped atomic.Int64
	running atomic.Bool
}

// New creates a hub. Call Run in a goroutine before broadcasting.
func New(name string, opts ...Option) *Hub {
	h := &Hub{
		name:       name,
		queue:      DefaultQueue,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = log.Or(h.logger).With("hub", name)
	h.broadcast = make(chan Message, h.queue)
	return h
}

// Name returns the hub name.
func (h *Hub) Name() string {
	return h.name
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	if !h.running.CompareAndSwap(false, true) {
		return
	}
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			h.logger.Debug("client connected", "client", c.ID, "clients", len(h.clients))
			if h.last != nil {
				h.deliver(c, *h.last)
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
				h.logger.Debug("client disconnected", "client", c.ID, "clients", len(h.clients))
			}

		case m := <-h.broadcast:
			if h.replay {
				h.last = &m
			}
			for c := range h.clients {
				h.deliver(c, m)
			}

		case <-h.quit:
			for c := range h.clients {
				h.remove(c)
			}
			return
		}
	}
}

// deliver queues m for c, dropping the client if its queue is full.
func (h *Hub) deliver(c *Client, m Message) {
	select {
	case c.send <- m:
	default:
		h.remove(c)
		h.dropped.Add(1)
		h.logger.Warn("dropped slow client", "client", c.ID)
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
}

// Broadcast queues msg for every connected client. It never blocks; when
// the queue is full the message is dropped.
func (h *Hub) Broadcast(msg Message) {
	select {
	case <-h.quit:
		return
	default:
	}

	select {
	case h.broadcast <- msg:
	default:
		h.logger.Debug("broadcast queue full, dropping message", "type", msg.Type)
	}
}

// BroadcastJSON encodes v and broadcasts it as a text frame.
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(NewJSONMessage(data))
	return nil
}

// BroadcastBinary broadcasts data as a binary frame.
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(NewBinaryMessage(data))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Dropped returns how many clients were disconnected for being too slow.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// IsRunning reports whether Run is active.
func (h *Hub) IsRunning() bool {
	select {
	case <-h.done:
		return false
	default:
		return h.running.Load()
	}
}

// Stop disconnects every client and ends Run. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
	if h.running.Load() {
		<-h.done
	}
}
