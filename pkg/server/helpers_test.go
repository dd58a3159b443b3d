package server

import (
	"bytes"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordConn is a net.Conn that records everything written to it.
type recordConn struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *recordConn) Read(_ []byte) (int, error) { return 0, io.EOF }

func (c *recordConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *recordConn) Close() error                       { return nil }
func (c *recordConn) LocalAddr() net.Addr                { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }
func (c *recordConn) RemoteAddr() net.Addr               { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }
func (c *recordConn) SetDeadline(_ time.Time) error      { return nil }
func (c *recordConn) SetReadDeadline(_ time.Time) error  { return nil }
func (c *recordConn) SetWriteDeadline(_ time.Time) error { return nil }

// Lines returns the complete lines written so far and resets the buffer.
func (c *recordConn) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.buf.String()
	c.buf.Reset()
	if out == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(out, "\n"), "\n")
}

// queued drains and returns everything sitting in the client's outbound
// queue without running a writer goroutine.
func queued(c *client) []string {
	var lines []string
	for {
		select {
		case line := <-c.send:
			lines = append(lines, line)
		default:
			return lines
		}
	}
}

func newTestRouter() (*Router, *Registry) {
	reg := NewRegistry()
	return NewRouter(reg, NewMetrics()), reg
}

// newTestClient creates a registered client backed by a recordConn. The
// writer goroutine is deliberately not started; fan-out traffic is inspected
// via queued and synchronous replies via the recordConn.
func newTestClient(reg *Registry) (*client, *recordConn) {
	rc := &recordConn{}
	c := newClient(rc, 16, time.Minute, 30*time.Second)
	reg.Add(c)
	return c, rc
}

// login authenticates a test client and discards the replies it produced.
func login(t *testing.T, rt *Router, c *client, rc *recordConn, name string) {
	t.Helper()
	rt.Dispatch(c, "LOGIN "+name)
	lines := rc.Lines()
	if len(lines) != 1 || lines[0] != "OK" {
		t.Fatalf("login %s: got %v, want [OK]", name, lines)
	}
}
