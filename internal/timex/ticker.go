package timex

import "time"

// Ticker is the tick source consumed by periodic loops (cleanup, connectivity
// checks). Production code uses NewTicker; tests drive ManualTicker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

// NewTicker returns a Ticker backed by time.Ticker.
func NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// ManualTicker delivers ticks only when Tick is called, so tests can advance
// virtual time deterministically.
type ManualTicker struct {
	ch chan time.Time
}

func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time)}
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }
func (m *ManualTicker) Stop()               {}

// Tick blocks until the consuming loop has received t.
func (m *ManualTicker) Tick(t time.Time) {
	m.ch <- t
}
