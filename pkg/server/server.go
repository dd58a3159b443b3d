// Package server implements the wirechat server: a line-oriented TCP chat
// protocol with username registration, broadcast and direct messages, a WHO
// listing, and per-connection idle/heartbeat liveness.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/NicolasHaas/wirechat/pkg/protocol"
)

// Server is the main wirechat server.
type Server struct {
	cfg      Config
	registry *Registry
	router   *Router
	metrics  *Metrics

	ln       net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	draining bool
	drainMu  sync.RWMutex
	wg       sync.WaitGroup
}

// New creates a new Server instance.
func New(cfg Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	registry := NewRegistry()
	metrics := NewMetrics()
	return &Server{
		cfg:      cfg,
		registry: registry,
		metrics:  metrics,
		router:   NewRouter(registry, metrics),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Registry returns the session registry.
func (s *Server) Registry() *Registry { return s.registry }

// Metrics returns the server metrics.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Addr returns the listener address, useful when bound to port 0.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start binds the listener and launches the accept loop. A bind failure
// (port in use, permission) is returned to the caller; it is the only error
// fatal to the process.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	slog.Info("chat server listening", "addr", ln.Addr())
	slog.Info("connect with: nc localhost <port> or telnet localhost <port>")

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				slog.Error("accept error", "err", err)
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn owns one connection for its whole life: framing, dispatch,
// liveness, and the exactly-once cleanup on the way out.
func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()

	c := newClient(conn, s.cfg.SendBuffer, s.cfg.IdleTimeout, s.cfg.HeartbeatPeriod)
	s.registry.Add(c)
	s.metrics.TotalConnections.Add(1)
	s.metrics.ActiveConnections.Add(1)
	slog.Debug("new connection", "remote", conn.RemoteAddr())

	defer s.cleanupConn(c)

	go c.writePump()
	go c.liveness.run(
		func() { // idle expiry
			s.metrics.IdleDisconnects.Add(1)
			c.reply(protocol.Info(noticeIdleDisconnect))
			c.close()
		},
		func() { // heartbeat tick
			s.metrics.HeartbeatsSent.Add(1)
			c.deliver(protocol.ReplyPing)
		},
	)

	if s.cfg.MOTD != "" {
		c.reply(protocol.Info(s.cfg.MOTD))
	}

	framer := protocol.NewFramer(s.cfg.MaxFrameBytes)
	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			frames, ferr := framer.Push(buf[:n])
			if len(frames) > 0 {
				// Any non-empty frame counts as activity, recognized or not.
				c.sess.Touch()
				c.liveness.touch()
			}
			for _, frame := range frames {
				s.router.Dispatch(c, frame)
			}
			if ferr != nil {
				s.metrics.LinesRejected.Add(1)
				slog.Warn("oversized line, dropping connection",
					"user", c.sess.Username, "remote", conn.RemoteAddr())
				c.reply(protocol.Err(protocol.ErrCodeLineTooLong))
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				slog.Debug("read error", "user", c.sess.Username, "err", err)
			}
			return
		}
	}
}

// cleanupConn runs exactly once per connection, whichever of peer close,
// transport error, idle timeout, oversized line, or server shutdown ended
// it. It removes the one registry entry, cancels the timers, and owes the
// disconnect broadcast only for authenticated sessions outside a drain.
func (s *Server) cleanupConn(c *client) {
	c.close()
	wasBound := s.registry.Remove(c.sess.ID)
	s.metrics.ActiveConnections.Add(-1)
	s.metrics.TotalDisconnects.Add(1)

	if !wasBound {
		return
	}
	slog.Info("user disconnected", "user", c.sess.Username)

	s.drainMu.RLock()
	draining := s.draining
	s.drainMu.RUnlock()
	if !draining {
		s.registry.Broadcast(protocol.Info(c.sess.Username+" disconnected"), c.sess.ID)
	}
}

// Shutdown drains the server: every connected session, anonymous or not,
// receives one shutdown notice and is closed. The drain flag suppresses the
// per-connection disconnect broadcasts so N closing sessions do not generate
// N*N notices at each other. Blocks until all connection goroutines finish.
func (s *Server) Shutdown() {
	s.drainMu.Lock()
	s.draining = true
	s.drainMu.Unlock()

	s.cancel()
	if s.ln != nil {
		_ = s.ln.Close()
	}

	clients := s.registry.All()
	slog.Info("draining connections", "count", len(clients))
	for _, c := range clients {
		c.reply(protocol.Info(noticeShutdown))
		c.close()
	}

	s.wg.Wait()
	slog.Info("server stopped")
}
