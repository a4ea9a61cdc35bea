// Package connectivity tracks whether the sync server is reachable and
// notifies subscribers on online/offline transitions.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/client"
	"github.com/dmitrijs2005/offlinefeed/internal/logging"
	"github.com/dmitrijs2005/offlinefeed/internal/timex"
)

const defaultPingTimeout = 3 * time.Second

type Option func(*Monitor)

// WithPingTimeout bounds every Ping issued by CheckNow.
func WithPingTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.pingTimeout = d
		}
	}
}

// WithInitial sets the state reported before the first check.
func WithInitial(online bool) Option {
	return func(m *Monitor) { m.online = online }
}

// Monitor holds the current connectivity state. Callbacks run synchronously
// on the goroutine that observed the transition, outside the monitor's lock.
type Monitor struct {
	pinger      client.Pinger
	log         logging.Logger
	pingTimeout time.Duration

	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(bool)
}

// New returns a monitor that starts online until a check says otherwise.
// A nil log discards output.
func New(p client.Pinger, log logging.Logger, opts ...Option) *Monitor {
	if log == nil {
		log = logging.Nop()
	}
	m := &Monitor{
		pinger:      p,
		log:         log.With("component", "connectivity"),
		pingTimeout: defaultPingTimeout,
		online:      true,
		subs:        map[int]func(bool){},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers fn for transitions. The returned func unregisters it.
func (m *Monitor) Subscribe(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Set pushes a state observed elsewhere. Subscribers are notified only when
// the state actually changes; every transition is delivered.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	if online {
		m.log.Info(context.Background(), "switched to online mode")
	} else {
		m.log.Warn(context.Background(), "switched to offline mode")
	}
	for _, fn := range subs {
		fn(online)
	}
}

// CheckNow pings the server once and applies the result.
func (m *Monitor) CheckNow(ctx context.Context) bool {
	if m.pinger == nil {
		return m.Online()
	}
	pctx, cancel := context.WithTimeout(ctx, m.pingTimeout)
	defer cancel()

	err := m.pinger.Ping(pctx)
	if err != nil && ctx.Err() != nil {
		// Shutting down says nothing about the server.
		return m.Online()
	}
	if err != nil {
		m.log.Debug(ctx, "ping failed", "error", err)
	}
	m.Set(err == nil)
	return err == nil
}

// Run checks on every tick until ctx is done. The ticker is stopped on return.
func (m *Monitor) Run(ctx context.Context, t timex.Ticker) {
	defer t.Stop()
	for {
		select {
		case <-t.C():
			m.CheckNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}
