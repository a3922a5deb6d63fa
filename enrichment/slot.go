// Package enrichment fetches short AI-generated texts for the current search and the
// selected medicine. Each text lives in a Slot: a small state machine that debounces
// subject changes and discards responses that arrive for a superseded subject.
package enrichment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/giygas/medicine-library/logging"
	"github.com/giygas/medicine-library/metrics"
	"github.com/giygas/medicine-library/textgen"
)

// State of a slot.
type State string

const (
	StateIdle     State = "idle"
	StatePending  State = "pending"
	StateResolved State = "resolved"
	StateFailed   State = "failed"
)

// Generator produces completion text for a chat request.
type Generator interface {
	Complete(ctx context.Context, req textgen.ChatRequest) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req textgen.ChatRequest) (string, error)

func (f GeneratorFunc) Complete(ctx context.Context, req textgen.ChatRequest) (string, error) {
	return f(ctx, req)
}

// SlotConfig configures one slot.
type SlotConfig struct {
	Name string
	// Debounce is the quiet period before a fetch is issued; 0 fetches immediately.
	Debounce time.Duration
	// Timeout bounds each fetch; 0 waits for the generator.
	Timeout time.Duration
	// FailureText is shown when the fetch fails for a reason other than configuration.
	FailureText string
	// EmptyText is shown when the service answers without any content.
	EmptyText string
}

// Snapshot is the externally visible state of a slot.
type Snapshot struct {
	Slot       string `json:"slot"`
	State      State  `json:"state"`
	Subject    string `json:"subject,omitempty"`
	Generation uint64 `json:"generation"`
	Text       string `json:"text,omitempty"`
}

// Slot is safe for concurrent use.
type Slot struct {
	cfg       SlotConfig
	generator Generator
	clock     Clock

	mu         sync.Mutex
	generation uint64
	state      State
	subject    string
	text       string
	timer      Timer
	cancel     context.CancelFunc
	closed     bool

	// testHookSettled, when set by tests, runs after every fetch with whether its result was applied.
	testHookSettled func(generation uint64, applied bool)
}

// NewSlot creates an idle slot.
func NewSlot(cfg SlotConfig, generator Generator, clock Clock) *Slot {
	if clock == nil {
		clock = RealClock()
	}
	return &Slot{
		cfg:       cfg,
		generator: generator,
		clock:     clock,
		state:     StateIdle,
	}
}

// Change moves the slot to Pending for a new subject and schedules the fetch of req.
// Any earlier scheduled or in-flight fetch is superseded. It returns the new generation.
// Repeating the current subject is a no-op: the pending fetch or the settled text is kept.
func (s *Slot) Change(subject string, req textgen.ChatRequest) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || (s.state != StateIdle && s.subject == subject) {
		return s.generation
	}

	s.supersedeLocked()
	s.generation++
	generation := s.generation
	s.state = StatePending
	s.subject = subject
	s.text = ""

	if s.cfg.Debounce > 0 {
		s.timer = s.clock.AfterFunc(s.cfg.Debounce, func() {
			s.fetch(generation, req)
		})
	} else {
		go s.fetch(generation, req)
	}

	return generation
}

// Clear returns the slot to Idle with no text, abandoning any pending work.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || (s.state == StateIdle && s.timer == nil && s.cancel == nil) {
		return
	}

	s.supersedeLocked()
	s.generation++
	s.state = StateIdle
	s.subject = ""
	s.text = ""
}

// Close stops the slot for good. Pending work is abandoned and later changes are ignored.
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLocked()
	s.closed = true
}

// Snapshot returns the current state.
func (s *Slot) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Slot) snapshotLocked() Snapshot {
	return Snapshot{
		Slot:       s.cfg.Name,
		State:      s.state,
		Subject:    s.subject,
		Generation: s.generation,
		Text:       s.text,
	}
}

// supersedeLocked drops the scheduled timer and cancels the in-flight request, if any.
func (s *Slot) supersedeLocked() {
	if s.timer != nil {
		if s.timer.Stop() {
			metrics.EnrichmentDebouncedTotal.WithLabelValues(s.cfg.Name).Inc()
		}
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Slot) fetch(generation uint64, req textgen.ChatRequest) {
	s.mu.Lock()
	if s.closed || generation != s.generation {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	if s.cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), s.cfg.Timeout)
	}
	s.timer = nil
	s.cancel = cancel
	s.mu.Unlock()

	text, err := s.generator.Complete(ctx, req)
	cancel()

	s.mu.Lock()
	applied := !s.closed && generation == s.generation
	if applied {
		s.cancel = nil
		s.applyLocked(text, err)
	}
	settle := s.testHookSettled
	s.mu.Unlock()

	if !applied {
		metrics.EnrichmentStaleTotal.WithLabelValues(s.cfg.Name).Inc()
		logging.Debug("Discarding stale enrichment response", "slot", s.cfg.Name, "generation", generation)
	}
	if settle != nil {
		settle(generation, applied)
	}
}

func (s *Slot) applyLocked(text string, err error) {
	switch {
	case err == nil:
		s.state = StateResolved
		s.text = text
		metrics.EnrichmentRequestsTotal.WithLabelValues(s.cfg.Name, "resolved").Inc()

	case errors.Is(err, textgen.ErrMissingAPIKey):
		// Operators can act on this one, so it is shown as is
		s.state = StateFailed
		s.text = err.Error()
		metrics.EnrichmentRequestsTotal.WithLabelValues(s.cfg.Name, "config_error").Inc()
		logging.Error("Enrichment is not configured", "slot", s.cfg.Name, "error", err)

	case errors.Is(err, textgen.ErrEmptyCompletion):
		s.state = StateFailed
		s.text = s.cfg.EmptyText
		metrics.EnrichmentRequestsTotal.WithLabelValues(s.cfg.Name, "empty").Inc()
		logging.Warn("Enrichment response had no content", "slot", s.cfg.Name, "subject", s.subject)

	default:
		s.state = StateFailed
		s.text = s.cfg.FailureText
		metrics.EnrichmentRequestsTotal.WithLabelValues(s.cfg.Name, "failed").Inc()
		logging.Error("Enrichment request failed", "slot", s.cfg.Name, "subject", s.subject, "error", err)
	}
}
