package enrichment

import (
	"time"
	"unicode/utf8"

	"github.com/giygas/medicine-library/entities"
)

// Slot names
const (
	SearchSlot = "search_summary"
	DetailSlot = "detail_explanation"
)

// DefaultSearchDebounce is the quiet period before a search summary is requested.
const DefaultSearchDebounce = 800 * time.Millisecond

// minSearchLength is the longest search text that does not get a summary.
const minSearchLength = 2

// Fallback texts shown in failed slots.
const (
	SearchFailureText = "Could not generate summary."
	DetailFailureText = "**Error:** Could not connect to the AI Assistant. Please check your API key and connection."
	DetailEmptyText   = "Sorry, I couldn't generate an explanation."
)

// Options configures a Controller.
type Options struct {
	Generator      Generator
	Clock          Clock
	SearchDebounce time.Duration // 0 uses DefaultSearchDebounce
	Timeout        time.Duration
}

// Snapshots holds both slot states of a controller
type Snapshots struct {
	Search Snapshot `json:"search"`
	Detail Snapshot `json:"detail"`
}

// Controller drives the search-summary and detail-explanation slots of one browsing session.
type Controller struct {
	search *Slot
	detail *Slot
}

// NewController creates a controller with both slots idle.
func NewController(opts Options) *Controller {
	clock := opts.Clock
	if clock == nil {
		clock = RealClock()
	}
	debounce := opts.SearchDebounce
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}

	return &Controller{
		search: NewSlot(SlotConfig{
			Name:        SearchSlot,
			Debounce:    debounce,
			Timeout:     opts.Timeout,
			FailureText: SearchFailureText,
			EmptyText:   SearchFailureText,
		}, opts.Generator, clock),
		detail: NewSlot(SlotConfig{
			Name:        DetailSlot,
			Timeout:     opts.Timeout,
			FailureText: DetailFailureText,
			EmptyText:   DetailEmptyText,
		}, opts.Generator, clock),
	}
}

// SearchChanged reacts to new search text. Text of two characters or less clears the summary.
func (c *Controller) SearchChanged(term string) {
	if utf8.RuneCountInString(term) <= minSearchLength {
		c.search.Clear()
		return
	}
	c.search.Change(term, SearchSummaryRequest(term))
}

// SelectionChanged reacts to a newly selected medicine; nil clears the explanation.
// A new selection is fetched right away. Selecting the current medicine again keeps its explanation.
func (c *Controller) SelectionChanged(med *entities.Medicine) {
	if med == nil {
		c.detail.Clear()
		return
	}
	c.detail.Change(med.ID, DetailExplanationRequest(*med))
}

// Snapshot returns the state of both slots
func (c *Controller) Snapshot() Snapshots {
	return Snapshots{
		Search: c.search.Snapshot(),
		Detail: c.detail.Snapshot(),
	}
}

// Close abandons all pending work.
func (c *Controller) Close() {
	c.search.Close()
	c.detail.Close()
}
