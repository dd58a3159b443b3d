package server

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/NicolasHaas/wirechat/pkg/model"
)

// writeTimeout bounds a single outbound line write so a wedged peer cannot
// pin the writer goroutine forever.
const writeTimeout = 10 * time.Second

// client couples one live connection with its session state, its bounded
// outbound queue, and its liveness supervisor.
//
// Two write paths exist on purpose. Replies to the connection's own commands
// are written synchronously from its read goroutine via reply. Traffic
// originating elsewhere (broadcasts, DMs, heartbeat PINGs) goes through the
// send channel and the writer goroutine, so a slow consumer never blocks the
// goroutine doing the fan-out. Both paths write whole lines in a single
// Write call, which keeps them from interleaving mid-line.
type client struct {
	sess     *model.Session
	conn     net.Conn
	send     chan string
	liveness *liveness

	closeOnce sync.Once
	closed    chan struct{}
}

func newClient(conn net.Conn, sendBuffer int, idleTimeout, heartbeatPeriod time.Duration) *client {
	c := &client{
		sess:   model.NewSession(),
		conn:   conn,
		send:   make(chan string, sendBuffer),
		closed: make(chan struct{}),
	}
	c.liveness = newLiveness(idleTimeout, heartbeatPeriod)
	return c
}

// deliver queues a line for the writer goroutine. It never blocks: if the
// outbound buffer is full or the client is closing, the client is detached
// and deliver reports false.
func (c *client) deliver(line string) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- line:
		return true
	default:
		slog.Warn("outbound buffer full, detaching slow client",
			"user", c.sess.Username, "remote", c.conn.RemoteAddr())
		c.close()
		return false
	}
}

// reply writes a line synchronously. Used for responses to the connection's
// own commands and for the final notice before a server-initiated close.
func (c *client) reply(line string) {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		slog.Debug("reply write failed", "user", c.sess.Username, "err", err)
	}
}

// writePump drains the send channel onto the socket until the client closes.
// Runs as the connection's single writer goroutine.
func (c *client) writePump() {
	for {
		select {
		case <-c.closed:
			return
		case line := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
				c.close()
				return
			}
		}
	}
}

// close tears the connection down exactly once: it stops the liveness
// supervisor and closes the socket, which unblocks the read loop and lets
// the connection goroutine run its cleanup. Safe to call from any goroutine
// and from any of the close triggers (peer close, transport error, idle
// timeout, slow-consumer detach, server shutdown).
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.liveness.stop()
		_ = c.conn.Close()
	})
}
