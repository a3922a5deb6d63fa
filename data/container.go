// Package data holds the catalog currently served by the API. The catalog is swapped
// atomically so that requests never see a partially built one.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/medicine-library/catalog"
	"github.com/giygas/medicine-library/interfaces"
	"github.com/giygas/medicine-library/logging"
)

// Compile-time check to ensure Container implements CatalogStore
var _ interfaces.CatalogStore = (*Container)(nil)

// loadFailure boxes an error so atomic.Value always stores the same concrete type
type loadFailure struct {
	err error
	at  time.Time
}

// Container holds the current catalog with atomic pointers for zero-downtime updates
type Container struct {
	catalog         atomic.Pointer[catalog.Catalog]
	report          atomic.Pointer[interfaces.CatalogQualityReport]
	lastUpdated     atomic.Value // time.Time
	lastFailure     atomic.Pointer[loadFailure]
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewContainer creates an empty container. GetCatalog returns nil until the first build.
func NewContainer() *Container {
	c := &Container{}
	c.lastUpdated.Store(time.Time{})
	c.serverStartTime.Store(time.Time{})
	return c
}

// GetCatalog returns the current catalog, or nil if none was ever built.
func (c *Container) GetCatalog() *catalog.Catalog {
	return c.catalog.Load()
}

// GetQualityReport returns the report of the current catalog
func (c *Container) GetQualityReport() *interfaces.CatalogQualityReport {
	return c.report.Load()
}

// GetLastUpdated returns the time of the last successful build
func (c *Container) GetLastUpdated() time.Time {
	if v, ok := c.lastUpdated.Load().(time.Time); ok {
		return v
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// GetLastError returns the error of the most recent build, or nil if it succeeded.
func (c *Container) GetLastError() error {
	if f := c.lastFailure.Load(); f != nil {
		return f.err
	}
	return nil
}

// GetLastErrorTime returns when the most recent build failed.
func (c *Container) GetLastErrorTime() time.Time {
	if f := c.lastFailure.Load(); f != nil {
		return f.at
	}
	return time.Time{}
}

// IsUpdating returns true if a rebuild is in progress
func (c *Container) IsUpdating() bool {
	return c.updating.Load()
}

// SetServerStartTime sets the server start time
func (c *Container) SetServerStartTime(startTime time.Time) {
	c.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (c *Container) GetServerStartTime() time.Time {
	if v, ok := c.serverStartTime.Load().(time.Time); ok {
		return v
	}
	return time.Time{}
}

// UpdateCatalog atomically replaces the catalog and clears any recorded failure.
func (c *Container) UpdateCatalog(cat *catalog.Catalog, report *interfaces.CatalogQualityReport) {
	if cat == nil {
		logging.Warn("Ignoring update with a nil catalog")
		return
	}

	c.report.Store(report)
	c.catalog.Store(cat)
	c.lastUpdated.Store(time.Now())
	c.lastFailure.Store(nil)
}

// RecordFailure remembers a failed build. The current catalog, if any, is kept.
func (c *Container) RecordFailure(err error) {
	if err == nil {
		return
	}
	c.lastFailure.Store(&loadFailure{err: err, at: time.Now()})
}

// BeginUpdate marks the start of a rebuild.
// Returns true if the update can proceed, false if another one is in progress
func (c *Container) BeginUpdate() bool {
	return c.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a rebuild
func (c *Container) EndUpdate() {
	c.updating.Store(false)
}
