package enrichment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/giygas/medicine-library/textgen"
)

// fakeClock is a virtual clock; timers only fire from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	fired   bool
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Elapsed() time.Duration {
	return c.Now().Sub(time.Unix(0, 0))
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward, running due timers in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			break
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

type recordedCall struct {
	req textgen.ChatRequest
	at  time.Duration
}

// recordingGenerator answers immediately and remembers every request.
type recordingGenerator struct {
	mu    sync.Mutex
	clock *fakeClock
	calls []recordedCall
	text  string
	err   error
}

func (g *recordingGenerator) Complete(ctx context.Context, req textgen.ChatRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var at time.Duration
	if g.clock != nil {
		at = g.clock.Elapsed()
	}
	g.calls = append(g.calls, recordedCall{req: req, at: at})
	return g.text, g.err
}

func (g *recordingGenerator) Calls() []recordedCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]recordedCall(nil), g.calls...)
}

type reply struct {
	text string
	err  error
}

type pendingCall struct {
	ctx   context.Context
	req   textgen.ChatRequest
	reply chan reply
}

// blockingGenerator holds every request until the test answers it, ignoring cancellation
// so that late responses can be simulated.
type blockingGenerator struct {
	started chan *pendingCall
}

func newBlockingGenerator() *blockingGenerator {
	return &blockingGenerator{started: make(chan *pendingCall, 8)}
}

func (g *blockingGenerator) Complete(ctx context.Context, req textgen.ChatRequest) (string, error) {
	call := &pendingCall{ctx: ctx, req: req, reply: make(chan reply, 1)}
	g.started <- call
	r := <-call.reply
	return r.text, r.err
}

type settleEvent struct {
	generation uint64
	applied    bool
}

func watchSettle(s *Slot) chan settleEvent {
	ch := make(chan settleEvent, 8)
	s.testHookSettled = func(generation uint64, applied bool) {
		ch <- settleEvent{generation: generation, applied: applied}
	}
	return ch
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}
