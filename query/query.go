// Package query implements the read-only operations over a catalog: substring filtering,
// pagination and same-formula lookup. All functions are pure and keep catalog order.
package query

import (
	"strings"

	"github.com/giygas/medicine-library/entities"
	"golang.org/x/text/cases"
)

// DefaultPageSize is the number of records shown per page.
const DefaultPageSize = 9

// State is the caller-owned search position.
type State struct {
	SearchTerm string `json:"search_term"`
	Page       int    `json:"page"`
}

// NewState returns the initial state: no search, first page.
func NewState() State {
	return State{Page: 1}
}

// WithSearch changes the search term. The page always goes back to 1.
func (s State) WithSearch(term string) State {
	return State{SearchTerm: term, Page: 1}
}

// WithPage moves to another page of the same search.
func (s State) WithPage(page int) State {
	s.Page = page
	return s
}

// Page is one slice of a filtered result set
type Page struct {
	Items      []entities.Medicine `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalItems int                 `json:"total_items"`
	TotalPages int                 `json:"total_pages"`
}

// fold returns the caseless form of s used for substring matching.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Filter returns the medicines whose brand name, generic formula or any use contains term,
// ignoring case. An empty term matches everything.
func Filter(items []entities.Medicine, term string) []entities.Medicine {
	if term == "" {
		return items
	}

	needle := fold(term)
	results := make([]entities.Medicine, 0)
	for _, med := range items {
		if matches(med, needle) {
			results = append(results, med)
		}
	}
	return results
}

func matches(med entities.Medicine, needle string) bool {
	if strings.Contains(fold(med.BrandName), needle) || strings.Contains(fold(med.GenericFormula), needle) {
		return true
	}
	for _, use := range med.Uses {
		if strings.Contains(fold(use), needle) {
			return true
		}
	}
	return false
}

// Paginate slices filtered into pages of pageSize. page is not clamped: a page outside
// [1, TotalPages] yields empty Items. A non-positive pageSize falls back to DefaultPageSize.
func Paginate(filtered []entities.Medicine, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalItems := len(filtered)
	result := Page{
		Items:      []entities.Medicine{},
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: (totalItems + pageSize - 1) / pageSize,
	}

	if page < 1 || page > result.TotalPages {
		return result
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, totalItems)
	result.Items = filtered[start:end]
	return result
}

// Similar returns every other medicine sharing record's generic formula exactly
// (case-sensitive, no normalization).
func Similar(items []entities.Medicine, record entities.Medicine) []entities.Medicine {
	results := make([]entities.Medicine, 0)
	for _, med := range items {
		if med.GenericFormula == record.GenericFormula && med.ID != record.ID {
			results = append(results, med)
		}
	}
	return results
}
