package connectivity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/logging"
	"github.com/dmitrijs2005/offlinefeed/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakePinger) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	events []bool
}

func (r *recorder) record(online bool) {
	r.mu.Lock()
	r.events = append(r.events, online)
	r.mu.Unlock()
}

func (r *recorder) get() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.events...)
}

func TestMonitor_InitialOnline(t *testing.T) {
	m := New(nil, logging.Nop())
	assert.True(t, m.Online())

	m = New(nil, logging.Nop(), WithInitial(false))
	assert.False(t, m.Online())
}

func TestMonitor_NilLoggerDiscards(t *testing.T) {
	p := &fakePinger{err: errors.New("unreachable")}
	var m *Monitor
	require.NotPanics(t, func() { m = New(p, nil) })

	rec := &recorder{}
	m.Subscribe(rec.record)
	require.NotPanics(t, func() {
		assert.False(t, m.CheckNow(context.Background()))
		m.Set(true)
	})
	assert.Equal(t, []bool{false, true}, rec.get())
}

func TestMonitor_SetNotifiesOnTransitionsOnly(t *testing.T) {
	m := New(nil, logging.Nop())
	var r recorder
	m.Subscribe(r.record)

	m.Set(true)
	m.Set(false)
	m.Set(false)
	m.Set(true)
	m.Set(false)

	assert.Equal(t, []bool{false, true, false}, r.get())
	assert.False(t, m.Online())
}

func TestMonitor_Unsubscribe(t *testing.T) {
	m := New(nil, logging.Nop())
	var r recorder
	cancel := m.Subscribe(r.record)

	m.Set(false)
	cancel()
	cancel()
	m.Set(true)

	assert.Equal(t, []bool{false}, r.get())
}

func TestMonitor_CheckNow(t *testing.T) {
	p := &fakePinger{}
	m := New(p, logging.Nop())
	var r recorder
	m.Subscribe(r.record)

	require.True(t, m.CheckNow(context.Background()))
	p.fail(errors.New("connection refused"))
	require.False(t, m.CheckNow(context.Background()))
	require.False(t, m.Online())

	assert.Equal(t, []bool{false}, r.get())
	assert.Equal(t, 2, p.calls)
}

func TestMonitor_CheckNowCancelledKeepsState(t *testing.T) {
	p := &fakePinger{err: context.Canceled}
	m := New(p, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, m.CheckNow(ctx))
	assert.True(t, m.Online())
}

func TestMonitor_RunOnTicks(t *testing.T) {
	p := &fakePinger{err: errors.New("down")}
	m := New(p, logging.Nop())

	events := make(chan bool, 4)
	m.Subscribe(func(online bool) { events <- online })

	ctx, cancel := context.WithCancel(context.Background())
	tk := timex.NewManualTicker()
	done := make(chan struct{})
	go func() {
		m.Run(ctx, tk)
		close(done)
	}()

	tk.Tick(time.Now())
	require.False(t, <-events)

	p.fail(nil)
	tk.Tick(time.Now())
	require.True(t, <-events)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
