// Package session keeps the per-user browsing state: the catalog pinned at creation,
// the search position, the selected medicine and the enrichment slots that follow them.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/giygas/medicine-library/catalog"
	"github.com/giygas/medicine-library/enrichment"
	"github.com/giygas/medicine-library/entities"
	"github.com/giygas/medicine-library/query"
)

var (
	ErrMedicineNotFound = errors.New("medicine not found")
	ErrInvalidPage      = errors.New("page must be 1 or greater")
)

// Session is safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	catalog    *catalog.Catalog
	enrichment *enrichment.Controller
	pageSize   int

	mu       sync.Mutex
	state    query.State
	selected *entities.Medicine
}

// View is everything a client needs to render the session.
type View struct {
	ID         string               `json:"id"`
	Search     string               `json:"search"`
	Results    query.Page           `json:"results"`
	Selected   *entities.Medicine   `json:"selected,omitempty"`
	Similar    []entities.Medicine  `json:"similar,omitempty"`
	Enrichment enrichment.Snapshots `json:"enrichment"`
	CatalogAt  time.Time            `json:"catalog_built_at"`
}

func newSession(id string, c *catalog.Catalog, controller *enrichment.Controller, pageSize int) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		catalog:    c,
		enrichment: controller,
		pageSize:   pageSize,
		state:      query.NewState(),
	}
}

// SetSearch replaces the search term, goes back to the first page and
// refreshes the search summary.
func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.WithSearch(term)
	s.enrichment.SearchChanged(term)
}

// SetPage moves to page. Pages past the end are allowed and show no results.
func (s *Session) SetPage(page int) error {
	if page < 1 {
		return ErrInvalidPage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.WithPage(page)
	return nil
}

// Select makes the medicine with id the current selection and requests its explanation.
func (s *Session) Select(id string) (entities.Medicine, error) {
	med, ok := s.catalog.Get(id)
	if !ok {
		return entities.Medicine{}, ErrMedicineNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = &med
	s.enrichment.SelectionChanged(&med)
	return med.Clone(), nil
}

// ClearSelection drops the selection and its explanation.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = nil
	s.enrichment.SelectionChanged(nil)
}

// State returns the current search position.
func (s *Session) State() query.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View renders the current page, the selection with its similar medicines and both enrichment slots.
func (s *Session) View() View {
	s.mu.Lock()
	state := s.state
	var selected *entities.Medicine
	if s.selected != nil {
		med := s.selected.Clone()
		selected = &med
	}
	s.mu.Unlock()

	all := s.catalog.All()
	view := View{
		ID:         s.ID,
		Search:     state.SearchTerm,
		Results:    query.Paginate(query.Filter(all, state.SearchTerm), state.Page, s.pageSize),
		Selected:   selected,
		Enrichment: s.enrichment.Snapshot(),
		CatalogAt:  s.catalog.BuiltAt(),
	}
	if selected != nil {
		view.Similar = query.Similar(all, *selected)
	}
	return view
}

// Catalog returns the catalog pinned to this session.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// Close abandons pending enrichment work.
func (s *Session) Close() {
	s.enrichment.Close()
}
