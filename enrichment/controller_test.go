package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/giygas/medicine-library/entities"
	"github.com/giygas/medicine-library/textgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func medicine(id, brand, generic string) *entities.Medicine {
	return &entities.Medicine{ID: id, BrandName: brand, GenericFormula: generic, Dosage: "Oral", Uses: []string{"Pain"}}
}

func TestSearchDebounce(t *testing.T) {
	clock := newFakeClock()
	gen := &recordingGenerator{clock: clock, text: "Paracetamol lowers fever."}
	c := NewController(Options{Generator: gen, Clock: clock, SearchDebounce: DefaultSearchDebounce})

	c.SearchChanged("par")
	clock.Advance(200 * time.Millisecond)
	c.SearchChanged("para")
	clock.Advance(300 * time.Millisecond)
	c.SearchChanged("parac")

	assert.Equal(t, StatePending, c.Snapshot().Search.State)

	clock.Advance(799 * time.Millisecond)
	assert.Empty(t, gen.Calls(), "nothing fires before the quiet period ends")

	clock.Advance(1 * time.Millisecond)
	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 1300*time.Millisecond, calls[0].at)
	assert.Contains(t, calls[0].req.Messages[0].Content, `"parac"`)

	snap := c.Snapshot().Search
	assert.Equal(t, Snapshot{
		Slot:       SearchSlot,
		State:      StateResolved,
		Subject:    "parac",
		Generation: 3,
		Text:       "Paracetamol lowers fever.",
	}, snap)

	clock.Advance(5 * time.Second)
	assert.Len(t, gen.Calls(), 1, "superseded timers never fire")
}

func TestSearchShortTermClears(t *testing.T) {
	clock := newFakeClock()
	gen := &recordingGenerator{clock: clock, text: "summary"}
	c := NewController(Options{Generator: gen, Clock: clock, SearchDebounce: DefaultSearchDebounce})

	c.SearchChanged("ab")
	assert.Equal(t, StateIdle, c.Snapshot().Search.State)

	c.SearchChanged("abc")
	assert.Equal(t, StatePending, c.Snapshot().Search.State)

	c.SearchChanged("a")
	snap := c.Snapshot().Search
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Text)
	assert.Empty(t, snap.Subject)

	clock.Advance(2 * time.Second)
	assert.Empty(t, gen.Calls())

	// Multi-byte characters count once
	c.SearchChanged("éé")
	assert.Equal(t, StateIdle, c.Snapshot().Search.State)
}

func TestSearchClearAfterResolve(t *testing.T) {
	clock := newFakeClock()
	gen := &recordingGenerator{clock: clock, text: "summary"}
	c := NewController(Options{Generator: gen, Clock: clock, SearchDebounce: DefaultSearchDebounce})

	c.SearchChanged("ibuprofen")
	clock.Advance(DefaultSearchDebounce)
	require.Equal(t, StateResolved, c.Snapshot().Search.State)

	c.SearchChanged("")
	snap := c.Snapshot().Search
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Text)
}

func TestDetailStalenessGuard(t *testing.T) {
	gen := newBlockingGenerator()
	c := NewController(Options{Generator: gen, Clock: newFakeClock()})
	settled := watchSettle(c.detail)

	c.SelectionChanged(medicine("1", "Tylenol", "Paracetamol"))
	first := receive(t, gen.started)

	c.SelectionChanged(medicine("2", "Advil", "Ibuprofen"))
	second := receive(t, gen.started)

	assert.ErrorIs(t, first.ctx.Err(), context.Canceled, "superseded request is cancelled")
	assert.Contains(t, second.req.Messages[1].Content, "Advil")

	second.reply <- reply{text: "Advil explanation"}
	ev := receive(t, settled)
	assert.Equal(t, settleEvent{generation: 2, applied: true}, ev)

	resolved := c.Snapshot().Detail
	assert.Equal(t, Snapshot{
		Slot:       DetailSlot,
		State:      StateResolved,
		Subject:    "2",
		Generation: 2,
		Text:       "Advil explanation",
	}, resolved)

	// The older response arrives last and must not overwrite the newer one
	first.reply <- reply{text: "Tylenol explanation"}
	ev = receive(t, settled)
	assert.Equal(t, settleEvent{generation: 1, applied: false}, ev)
	assert.Equal(t, resolved, c.Snapshot().Detail)
}

func TestDetailDeselectDiscardsInFlight(t *testing.T) {
	gen := newBlockingGenerator()
	c := NewController(Options{Generator: gen, Clock: newFakeClock()})
	settled := watchSettle(c.detail)

	c.SelectionChanged(medicine("1", "Tylenol", "Paracetamol"))
	call := receive(t, gen.started)
	assert.Equal(t, StatePending, c.Snapshot().Detail.State)

	c.SelectionChanged(nil)
	assert.Equal(t, StateIdle, c.Snapshot().Detail.State)

	call.reply <- reply{text: "late"}
	ev := receive(t, settled)
	assert.False(t, ev.applied)

	snap := c.Snapshot().Detail
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Text)
}

func TestDetailSameSelectionKeepsExplanation(t *testing.T) {
	gen := &recordingGenerator{text: "ok"}
	c := NewController(Options{Generator: gen, Clock: newFakeClock()})
	settled := watchSettle(c.detail)

	tylenol := medicine("1", "Tylenol", "Paracetamol")
	c.SelectionChanged(tylenol)
	receive(t, settled)

	c.SelectionChanged(tylenol)
	assert.Len(t, gen.Calls(), 1)
	assert.Equal(t, Snapshot{
		Slot:       DetailSlot,
		State:      StateResolved,
		Subject:    "1",
		Generation: 1,
		Text:       "ok",
	}, c.Snapshot().Detail)

	// Deselecting first makes the next selection a change again
	c.SelectionChanged(nil)
	c.SelectionChanged(tylenol)
	receive(t, settled)

	assert.Len(t, gen.Calls(), 2)
	assert.Equal(t, uint64(3), c.Snapshot().Detail.Generation)
	assert.Equal(t, StateResolved, c.Snapshot().Detail.State)
}

func TestSearchSameTermKeepsSummary(t *testing.T) {
	clock := newFakeClock()
	gen := &recordingGenerator{clock: clock, text: "summary"}
	c := NewController(Options{Generator: gen, Clock: clock, SearchDebounce: DefaultSearchDebounce})

	c.SearchChanged("para")
	clock.Advance(500 * time.Millisecond)
	c.SearchChanged("para")
	clock.Advance(300 * time.Millisecond)

	calls := gen.Calls()
	require.Len(t, calls, 1, "repeating the term does not restart the quiet period")
	assert.Equal(t, DefaultSearchDebounce, calls[0].at)

	resolved := c.Snapshot().Search
	require.Equal(t, StateResolved, resolved.State)

	c.SearchChanged("para")
	clock.Advance(2 * time.Second)
	assert.Len(t, gen.Calls(), 1)
	assert.Equal(t, resolved, c.Snapshot().Search)
}

func TestZeroOptionsStillDebounceSearch(t *testing.T) {
	clock := newFakeClock()
	gen := &recordingGenerator{clock: clock, text: "summary"}
	c := NewController(Options{Generator: gen, Clock: clock})

	c.SearchChanged("ibu")
	clock.Advance(100 * time.Millisecond)
	c.SearchChanged("ibuprofen")
	assert.Empty(t, gen.Calls())

	clock.Advance(DefaultSearchDebounce - time.Millisecond)
	assert.Empty(t, gen.Calls())

	clock.Advance(time.Millisecond)
	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 100*time.Millisecond+DefaultSearchDebounce, calls[0].at)
	assert.Contains(t, calls[0].req.Messages[0].Content, `"ibuprofen"`)
}

func TestDetailFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"missing credential is shown verbatim", textgen.ErrMissingAPIKey, textgen.ErrMissingAPIKey.Error()},
		{"empty completion", textgen.ErrEmptyCompletion, DetailEmptyText},
		{"status error", &textgen.StatusError{StatusCode: 500, Body: "boom"}, DetailFailureText},
		{"transport error", errors.New("connection reset"), DetailFailureText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &recordingGenerator{err: tt.err}
			c := NewController(Options{Generator: gen, Clock: newFakeClock()})
			settled := watchSettle(c.detail)

			c.SelectionChanged(medicine("1", "Tylenol", "Paracetamol"))
			receive(t, settled)

			snap := c.Snapshot().Detail
			assert.Equal(t, StateFailed, snap.State)
			assert.Equal(t, tt.expected, snap.Text)
			assert.NotContains(t, snap.Text, "boom")
		})
	}
}

func TestSearchFailureUsesGenericText(t *testing.T) {
	clock := newFakeClock()
	gen := &recordingGenerator{clock: clock, err: errors.New("dial tcp: refused")}
	c := NewController(Options{Generator: gen, Clock: clock, SearchDebounce: DefaultSearchDebounce})

	c.SearchChanged("aspirin")
	clock.Advance(DefaultSearchDebounce)

	snap := c.Snapshot().Search
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, SearchFailureText, snap.Text)
	assert.Equal(t, StateIdle, c.Snapshot().Detail.State, "slots are independent")
}

func TestSlotTimeout(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, req textgen.ChatRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	slot := NewSlot(SlotConfig{Name: "timeout", Timeout: 20 * time.Millisecond, FailureText: "failed"}, gen, newFakeClock())
	settled := watchSettle(slot)

	slot.Change("x", textgen.ChatRequest{})
	ev := receive(t, settled)
	assert.True(t, ev.applied)
	assert.Equal(t, StateFailed, slot.Snapshot().State)
	assert.Equal(t, "failed", slot.Snapshot().Text)
}

func TestClosedControllerIgnoresChanges(t *testing.T) {
	clock := newFakeClock()
	gen := &recordingGenerator{clock: clock, text: "x"}
	c := NewController(Options{Generator: gen, Clock: clock, SearchDebounce: DefaultSearchDebounce})

	c.SearchChanged("pending")
	c.Close()
	clock.Advance(time.Second)
	c.SearchChanged("after close")
	clock.Advance(time.Second)

	assert.Empty(t, gen.Calls())
}

func TestPrompts(t *testing.T) {
	search := SearchSummaryRequest("ibuprofen")
	require.Len(t, search.Messages, 1)
	assert.Equal(t, "system", search.Messages[0].Role)
	assert.Contains(t, search.Messages[0].Content, `"ibuprofen"`)
	assert.Contains(t, search.Messages[0].Content, "20 words")
	assert.Equal(t, 50, search.MaxTokens)
	assert.InDelta(t, 0.5, search.Temperature, 1e-9)

	med := entities.Medicine{BrandName: "Panadol", GenericFormula: "Paracetamol", Dosage: "Tablet 500mg", Uses: []string{"Fever", "Pain Relief"}}
	detail := DetailExplanationRequest(med)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, "system", detail.Messages[0].Role)
	assert.Contains(t, detail.Messages[0].Content, "Used for: Fever, Pain Relief")
	assert.Contains(t, detail.Messages[0].Content, "EXACT same generic formula (Paracetamol)")
	assert.Equal(t, textgen.Message{Role: "user", Content: "Please explain Panadol and suggest alternatives."}, detail.Messages[1])
	assert.Equal(t, 400, detail.MaxTokens)
}
