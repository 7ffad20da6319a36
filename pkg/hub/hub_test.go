package hub

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-faceoverlay/internal/log"
)

type written struct {
	typ  int
	data []byte
}

// fakeConn blocks in ReadMessage until closed and records every write.
type fakeConn struct {
	mu     sync.Mutex
	closed chan struct{}
	once   sync.Once
	writes chan written
	block  chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		closed: make(chan struct{}),
		writes: make(chan written, 128),
	}
}

func (f *fakeConn) SetReadLimit(int64) {}
func (f *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}
func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) WriteMessage(typ int, data []byte) error {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	select {
	case <-f.closed:
		return errors.New("closed")
	case f.writes <- written{typ, data}:
		return nil
	}
}

func (f *fakeConn) next(t *testing.T) written {
	t.Helper()
	select {
	case w := <-f.writes:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for write")
		return written{}
	}
}

func startHub(t *testing.T, opts ...Option) *Hub {
	t.Helper()
	h := New("test", append([]Option{WithLogger(log.Discard())}, opts...)...)
	go h.Run()
	t.Cleanup(h.Stop)
	require.Eventually(t, h.IsRunning, time.Second, time.Millisecond)
	return h
}

func connect(h *Hub) *fakeConn {
	conn := newFakeConn()
	c := NewClient(h, conn)
	go c.Run()
	return conn
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	h := startHub(t)
	a, b := connect(h), connect(h)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, h.BroadcastJSON(map[string]int{"faces": 2}))
	h.BroadcastBinary([]byte{0xFF, 0xD8})

	for _, conn := range []*fakeConn{a, b} {
		w := conn.next(t)
		assert.Equal(t, websocket.TextMessage, w.typ)
		assert.JSONEq(t, `{"faces":2}`, string(w.data))

		w = conn.next(t)
		assert.Equal(t, websocket.BinaryMessage, w.typ)
		assert.Equal(t, []byte{0xFF, 0xD8}, w.data)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	h := startHub(t)
	conn := connect(h)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, time.Millisecond)
}

func TestHub_ReplaySendsLastMessageOnConnect(t *testing.T) {
	h := startHub(t, WithReplay())

	h.BroadcastBinary([]byte("first"))
	h.BroadcastBinary([]byte("latest"))
	// Let Run drain the queue before anyone connects.
	require.Eventually(t, func() bool { return len(h.broadcast) == 0 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	conn := connect(h)
	w := conn.next(t)
	assert.Equal(t, []byte("latest"), w.data)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := startHub(t, WithQueue(2))

	slow := newFakeConn()
	slow.block = make(chan struct{})
	defer close(slow.block)

	c := NewClient(h, slow)
	go c.Run()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	// One message sits in WriteMessage, two fill the queue, the next overflows.
	for i := 0; i < 10; i++ {
		h.BroadcastBinary([]byte{byte(i)})
		time.Sleep(time.Millisecond)
	}

	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, int64(1), h.Dropped())
}

func TestHub_StopClosesClients(t *testing.T) {
	h := New("stop", WithLogger(log.Discard()))
	go h.Run()
	require.Eventually(t, h.IsRunning, time.Second, time.Millisecond)

	conn := connect(h)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	h.Stop()
	assert.False(t, h.IsRunning())

	w := conn.next(t)
	assert.Equal(t, websocket.CloseMessage, w.typ)

	// After Stop nothing blocks.
	h.BroadcastBinary([]byte("late"))
	late := NewClient(h, newFakeConn())
	_, open := <-late.send
	assert.False(t, open)
	h.Stop()
}
