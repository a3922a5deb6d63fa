// Package interfaces defines core abstractions for the medicine library API
// to improve testability and separation of concerns.
package interfaces

import (
	"context"
	"time"

	"github.com/giygas/medicine-library/catalog"
	"github.com/giygas/medicine-library/entities"
	"github.com/giygas/medicine-library/session"
)

// CatalogQualityReport summarizes data quality issues found in a built catalog
type CatalogQualityReport struct {
	Total             int      `json:"total"`
	NormalizedRecords int      `json:"normalized_records"`
	SeedRecords       int      `json:"seed_records"`
	DuplicateIDs      []string `json:"duplicate_ids,omitempty"`
	UnknownGenerics   int      `json:"unknown_generics"`
	DefaultedUses     int      `json:"defaulted_uses"` // labels with neither purpose nor indications
	RejectedLabels    int      `json:"rejected_labels"`
}

// CatalogStore defines the contract for the current catalog holder.
// Swaps are atomic so readers never observe a half-built catalog.
type CatalogStore interface {
	// Data retrieval methods
	GetCatalog() *catalog.Catalog
	GetLastUpdated() time.Time
	GetLastError() error
	GetQualityReport() *CatalogQualityReport
	IsUpdating() bool
	GetServerStartTime() time.Time

	// Data update methods
	UpdateCatalog(c *catalog.Catalog, report *CatalogQualityReport)
	RecordFailure(err error)
	BeginUpdate() bool
	EndUpdate()
}

// LabelSource provides raw label records from the external label service.
type LabelSource interface {
	Fetch(ctx context.Context) ([]entities.RawLabel, error)
}

// Scheduler defines the contract for job scheduling and freshness monitoring.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current system health status and the HTTP status to answer with
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled catalog refresh
	CalculateNextUpdate() time.Time
}

// InputValidator validates user input and reports catalog quality.
type InputValidator interface {
	// ValidateSearchTerm checks free-text search input
	ValidateSearchTerm(term string) error

	// ValidateID checks a medicine id path parameter
	ValidateID(id string) error

	// ParsePage parses a 1-based page number; empty input means page 1
	ParsePage(input string) (int, error)

	// ReportCatalogQuality inspects a merged catalog
	ReportCatalogQuality(medicines []entities.Medicine, build catalog.BuildReport) *CatalogQualityReport
}

// SessionStore keeps browsing sessions.
type SessionStore interface {
	Create(c *catalog.Catalog) (*session.Session, error)
	Get(id string) (*session.Session, bool)
	Delete(id string) bool
	Count() int
}
