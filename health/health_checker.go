// Package health reports whether the API has a usable, fresh catalog.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/medicine-library/interfaces"
)

// Health statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// MaxCatalogAge is the age after which a catalog is considered stale.
const MaxCatalogAge = 48 * time.Hour

// Compile-time check to ensure Checker implements HealthChecker
var _ interfaces.HealthChecker = (*Checker)(nil)

// Checker implements the interfaces.HealthChecker interface
type Checker struct {
	store        interfaces.CatalogStore
	sessions     interfaces.SessionStore
	refreshTimes []string
	now          func() time.Time
}

// NewHealthChecker creates a health checker. refreshTimes are the daily "HH:MM" rebuild
// times; sessions may be nil.
func NewHealthChecker(store interfaces.CatalogStore, sessions interfaces.SessionStore, refreshTimes []string) *Checker {
	return &Checker{
		store:        store,
		sessions:     sessions,
		refreshTimes: refreshTimes,
		now:          time.Now,
	}
}

// HealthCheck returns the status with its data. Only a missing catalog makes the
// service unhealthy; a stale catalog or a failed refresh degrades it.
func (h *Checker) HealthCheck() (status string, data map[string]any, httpStatus int) {
	cat := h.store.GetCatalog()
	lastUpdate := h.store.GetLastUpdated()
	lastErr := h.store.GetLastError()
	now := h.now()

	data = map[string]any{
		"medicines":   cat.Len(),
		"is_updating": h.store.IsUpdating(),
	}

	if next := h.CalculateNextUpdate(); !next.IsZero() {
		data["next_update"] = next.Format(time.RFC3339)
	}
	if lastErr != nil {
		data["last_error"] = lastErr.Error()
	}
	if h.sessions != nil {
		data["sessions"] = h.sessions.Count()
	}
	if report := h.store.GetQualityReport(); report != nil {
		data["normalized"] = report.NormalizedRecords
		data["seed"] = report.SeedRecords
	}

	if cat == nil {
		return StatusUnhealthy, data, http.StatusServiceUnavailable
	}

	dataAge := now.Sub(lastUpdate)
	data["last_update"] = lastUpdate.Format(time.RFC3339)
	data["data_age_hours"] = math.Round(dataAge.Hours()*10) / 10

	switch {
	case dataAge > MaxCatalogAge:
		status = StatusDegraded
	case lastErr != nil:
		status = StatusDegraded
	default:
		status = StatusHealthy
	}

	return status, data, http.StatusOK
}

// CalculateNextUpdate returns the next scheduled rebuild, or the zero time if none is scheduled.
func (h *Checker) CalculateNextUpdate() time.Time {
	return NextRefresh(h.now(), h.refreshTimes)
}

// NextRefresh returns the first of the daily "HH:MM" times strictly after now.
// Malformed entries are skipped.
func NextRefresh(now time.Time, times []string) time.Time {
	var next time.Time
	for _, hhmm := range times {
		t, err := time.Parse("15:04", hhmm)
		if err != nil {
			continue
		}
		candidate := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next
}
