package realtime

import (
	"sync"
	"time"
)

// Pinger reports backend reachability. *database.DB satisfies it.
type Pinger interface {
	Ping() error
}

// StatusMonitor probes the backend on a fixed interval and reports a boolean
// connected/disconnected to its observers. This is best-effort liveness, not
// a data-freshness guarantee.
type StatusMonitor struct {
	pinger   Pinger
	interval time.Duration

	mu        sync.Mutex
	connected bool
}

// NewStatusMonitor creates a monitor probing at the given interval
func NewStatusMonitor(pinger Pinger, interval time.Duration) *StatusMonitor {
	return &StatusMonitor{pinger: pinger, interval: interval, connected: true}
}

// Connected returns the most recently probed state
func (m *StatusMonitor) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *StatusMonitor) probe() bool {
	ok := m.pinger.Ping() == nil
	m.mu.Lock()
	m.connected = ok
	m.mu.Unlock()
	return ok
}

// Subscribe starts delivering the connection state to cb, first immediately
// and then once per interval. The returned disposer stops the probe loop.
func (m *StatusMonitor) Subscribe(cb func(connected bool)) func() {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		cb(m.probe())

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				cb(m.probe())
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}
