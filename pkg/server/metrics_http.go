package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// StartMetricsHTTP starts a lightweight HTTP server that exposes /metrics
// in Prometheus text exposition format. It runs in the background and
// shuts down when the server context is cancelled. Disabled unless
// Config.MetricsAddr is set.
func (s *Server) StartMetricsHTTP() {
	addr := s.cfg.MetricsAddr
	if addr == "" {
		return // metrics endpoint disabled
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("metrics HTTP listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics HTTP error", "err", err)
		}
	}()

	go func() {
		<-s.ctx.Done()
		_ = srv.Close()
	}()
}

// handleMetrics writes all counters in Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	m := s.metrics
	uptime := time.Since(m.startTime).Seconds()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Write errors to http.ResponseWriter are non-actionable; ignore them.
	write := func(name, help, mtype string, value int64) {
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
	}

	_, _ = fmt.Fprintf(w, "# HELP wirechat_uptime_seconds Server uptime in seconds.\n")
	_, _ = fmt.Fprintf(w, "# TYPE wirechat_uptime_seconds gauge\n")
	_, _ = fmt.Fprintf(w, "wirechat_uptime_seconds %f\n", uptime)

	write("wirechat_connections_active", "Current live connections.", "gauge",
		m.ActiveConnections.Load())
	write("wirechat_connections_total", "Lifetime TCP connections accepted.", "counter",
		m.TotalConnections.Load())
	write("wirechat_disconnects_total", "Total client disconnects.", "counter",
		m.TotalDisconnects.Load())

	write("wirechat_logins_total", "Successful LOGIN commands.", "counter",
		m.Logins.Load())
	write("wirechat_logins_failed_total", "Rejected LOGIN commands.", "counter",
		m.FailedLogins.Load())

	write("wirechat_broadcasts_total", "MSG broadcast fan-outs.", "counter",
		m.Broadcasts.Load())
	write("wirechat_direct_messages_total", "Direct messages delivered.", "counter",
		m.DirectMessages.Load())

	write("wirechat_idle_disconnects_total", "Connections closed by the idle timer.", "counter",
		m.IdleDisconnects.Load())
	write("wirechat_heartbeats_sent_total", "PING probes emitted.", "counter",
		m.HeartbeatsSent.Load())
	write("wirechat_lines_rejected_total", "Connections dropped for oversized lines.", "counter",
		m.LinesRejected.Load())
}
