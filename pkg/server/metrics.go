package server

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics tracks server runtime statistics.
// All counters use atomic operations for lock-free concurrent access.
type Metrics struct {
	startTime time.Time

	TotalConnections  atomic.Int64 // lifetime TCP connections accepted
	ActiveConnections atomic.Int64 // current live connections
	TotalDisconnects  atomic.Int64 // disconnects, clean and unclean
	Logins            atomic.Int64 // successful LOGINs
	FailedLogins      atomic.Int64 // rejected LOGINs (invalid or taken)

	Broadcasts      atomic.Int64 // MSG fan-outs performed
	DirectMessages  atomic.Int64 // DMs delivered
	IdleDisconnects atomic.Int64 // connections closed by the idle timer
	HeartbeatsSent  atomic.Int64 // PING probes emitted
	LinesRejected   atomic.Int64 // connections dropped for oversized lines
}

// NewMetrics creates a Metrics instance with the start time set to now.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// MetricsSnapshot is a point-in-time view of all counters.
type MetricsSnapshot struct {
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`

	ActiveConnections int64 `json:"active_connections"`
	TotalConnections  int64 `json:"total_connections"`
	TotalDisconnects  int64 `json:"total_disconnects"`
	Logins            int64 `json:"logins"`
	FailedLogins      int64 `json:"failed_logins"`

	Broadcasts      int64 `json:"broadcasts"`
	DirectMessages  int64 `json:"direct_messages"`
	IdleDisconnects int64 `json:"idle_disconnects"`
	HeartbeatsSent  int64 `json:"heartbeats_sent"`
	LinesRejected   int64 `json:"lines_rejected"`
}

// Snapshot returns a read-consistent snapshot of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	uptime := time.Since(m.startTime)
	return MetricsSnapshot{
		Uptime:            uptime.Truncate(time.Second).String(),
		UptimeSeconds:     int64(uptime.Seconds()),
		ActiveConnections: m.ActiveConnections.Load(),
		TotalConnections:  m.TotalConnections.Load(),
		TotalDisconnects:  m.TotalDisconnects.Load(),
		Logins:            m.Logins.Load(),
		FailedLogins:      m.FailedLogins.Load(),
		Broadcasts:        m.Broadcasts.Load(),
		DirectMessages:    m.DirectMessages.Load(),
		IdleDisconnects:   m.IdleDisconnects.Load(),
		HeartbeatsSent:    m.HeartbeatsSent.Load(),
		LinesRejected:     m.LinesRejected.Load(),
	}
}

// JSON returns the metrics snapshot as a JSON string.
func (m *Metrics) JSON() string {
	data, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// LogSummary writes a metrics summary to the logger.
func (m *Metrics) LogSummary() {
	s := m.Snapshot()
	slog.Info("metrics",
		"uptime", s.Uptime,
		"connections", s.ActiveConnections,
		"total_connections", s.TotalConnections,
		"logins", s.Logins,
		"broadcasts", s.Broadcasts,
		"dms", s.DirectMessages,
		"idle_disconnects", s.IdleDisconnects,
	)
}

// StartPeriodicLog starts a goroutine that logs metrics every interval.
// It stops when the done channel is closed.
func (m *Metrics) StartPeriodicLog(interval time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				m.LogSummary()
			}
		}
	}()
}
