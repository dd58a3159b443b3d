package server

import (
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// metricsLogInterval is how often the periodic metrics summary is logged.
const metricsLogInterval = 60 * time.Second

// Run starts the server and blocks until an interrupt or termination signal
// triggers the shutdown drain. It returns nil on a graceful shutdown; a bind
// failure is returned immediately.
func (s *Server) Run() error {
	if err := s.Start(); err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			slog.Error("could not bind listen address, is the port already in use?", "addr", s.cfg.Addr)
		}
		return err
	}

	s.StartMetricsHTTP()
	s.metrics.StartPeriodicLog(metricsLogInterval, s.ctx.Done())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	s.Shutdown()
	return nil
}
