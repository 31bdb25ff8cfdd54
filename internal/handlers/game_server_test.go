// internal/handlers/game_server_test.go
package handlers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConn records frames and close codes in place of a real websocket
// connection. A non-nil block channel stalls every write until it is
// closed, which lets tests fill the outbox.
type stubConn struct {
	mu     sync.Mutex
	frames [][]byte
	closes []websocket.StatusCode
	block  chan struct{}
}

func (c *stubConn) Write(ctx context.Context, _ websocket.MessageType, data []byte) error {
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, append([]byte(nil), data...))
	return nil
}

func (c *stubConn) Close(code websocket.StatusCode, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes = append(c.closes, code)
	return nil
}

func (c *stubConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *stubConn) closeCodes() []websocket.StatusCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]websocket.StatusCode(nil), c.closes...)
}

func newTestServer() *GameServer {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewGameServer(logger)
}

func TestSendToUnknownSessionIsDropped(t *testing.T) {
	srv := newTestServer()
	// No connection registered; nothing to deliver to and nothing to
	// panic on.
	srv.Send("ghost", map[string]string{"event": "state"})
}

func TestSendDeliversInOrder(t *testing.T) {
	srv := newTestServer()
	conn := &stubConn{}
	pc := srv.register("s1", conn)
	defer srv.unregister("s1", pc)

	for i := 0; i < 3; i++ {
		srv.Send("s1", map[string]int{"seq": i})
	}

	require.Eventually(t, func() bool {
		return conn.frameCount() == 3
	}, time.Second, 10*time.Millisecond)

	conn.mu.Lock()
	defer conn.mu.Unlock()
	for i, frame := range conn.frames {
		assert.Equal(t, fmt.Sprintf(`{"seq":%d}`, i), string(frame))
	}
}

func TestSendDropsWhenOutboxOverflows(t *testing.T) {
	srv := newTestServer()
	conn := &stubConn{block: make(chan struct{})}
	pc := srv.register("s1", conn)
	defer srv.unregister("s1", pc)

	// The writer is stalled on its first frame, so the outbox can buffer
	// at most outboxSize more. Everything past that is dropped and no
	// Send call blocks.
	sent := outboxSize + 10
	done := make(chan struct{})
	go func() {
		for i := 0; i < sent; i++ {
			srv.Send("s1", map[string]int{"seq": i})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full outbox")
	}

	close(conn.block)
	require.Eventually(t, func() bool {
		return conn.frameCount() >= outboxSize
	}, time.Second, 10*time.Millisecond)
	// Depending on whether the writer had already taken a frame when the
	// burst hit, at most one frame beyond the buffer survives; the rest
	// of the burst was dropped.
	assert.LessOrEqual(t, conn.frameCount(), outboxSize+1)
	assert.Less(t, conn.frameCount(), sent)
}

func TestReconnectReplacesConnection(t *testing.T) {
	srv := newTestServer()
	first := &stubConn{}
	pc1 := srv.register("s1", first)

	second := &stubConn{}
	pc2 := srv.register("s1", second)
	defer srv.unregister("s1", pc2)

	// The displaced connection was closed with a policy violation.
	require.Eventually(t, func() bool {
		return len(first.closeCodes()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, websocket.StatusPolicyViolation, first.closeCodes()[0])

	srv.Send("s1", map[string]string{"event": "state"})
	require.Eventually(t, func() bool {
		return second.frameCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Zero(t, first.frameCount())

	// Unregistering the stale handle does not evict the replacement.
	srv.unregister("s1", pc1)
	srv.Send("s1", map[string]string{"event": "state"})
	require.Eventually(t, func() bool {
		return second.frameCount() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	srv := newTestServer()
	conn := &stubConn{}
	pc := srv.register("s1", conn)

	srv.unregister("s1", pc)
	srv.Send("s1", map[string]string{"event": "state"})

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, conn.frameCount())
}
