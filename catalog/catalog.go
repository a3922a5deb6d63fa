// Package catalog builds the immutable, shuffled medicine catalog served for a session
// from normalized label records and the curated seed list.
package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/giygas/medicine-library/entities"
	"github.com/giygas/medicine-library/logging"
	"github.com/giygas/medicine-library/normalizer"
)

// Catalog is a read-only, ordered set of medicines keyed by id.
// Its order is fixed once built; callers must not modify the slice returned by All.
type Catalog struct {
	medicines []entities.Medicine
	byID      map[string]int
	builtAt   time.Time
}

// MergeReport describes how a catalog was assembled
type MergeReport struct {
	Normalized   int      `json:"normalized"`
	Seed         int      `json:"seed"`
	DuplicateIDs []string `json:"duplicate_ids,omitempty"`
	Total        int      `json:"total"`
}

// BuildReport combines the normalizer and merge reports of one build.
type BuildReport struct {
	Labels normalizer.Report `json:"labels"`
	Merge  MergeReport       `json:"merge"`
}

// LabelFetcher is the subset of the label source used to build a catalog.
type LabelFetcher interface {
	Fetch(ctx context.Context) ([]entities.RawLabel, error)
}

// New freezes medicines, in the given order, into a catalog. Ids are assumed unique.
func New(medicines []entities.Medicine) *Catalog {
	c := &Catalog{
		medicines: medicines,
		byID:      make(map[string]int, len(medicines)),
		builtAt:   time.Now(),
	}
	for i := range medicines {
		c.byID[medicines[i].ID] = i
	}
	return c
}

// Shuffle returns a uniformly shuffled copy of items (Fisher-Yates). The input is not modified.
func Shuffle(items []entities.Medicine, rng *rand.Rand) []entities.Medicine {
	shuffled := make([]entities.Medicine, len(items))
	copy(shuffled, items)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Merge concatenates normalized records with the seed list, drops later records whose id
// was already seen, and shuffles the result into a new catalog.
func Merge(normalized, seed []entities.Medicine, rng *rand.Rand) (*Catalog, MergeReport) {
	report := MergeReport{Normalized: len(normalized), Seed: len(seed)}

	combined := make([]entities.Medicine, 0, len(normalized)+len(seed))
	seen := make(map[string]struct{}, len(normalized)+len(seed))
	for _, group := range [][]entities.Medicine{normalized, seed} {
		for _, med := range group {
			if _, dup := seen[med.ID]; dup {
				report.DuplicateIDs = append(report.DuplicateIDs, med.ID)
				continue
			}
			seen[med.ID] = struct{}{}
			combined = append(combined, med)
		}
	}

	report.Total = len(combined)
	return New(Shuffle(combined, rng)), report
}

// Build fetches one batch of labels, normalizes it and merges it with seed.
// A fetch failure is returned as-is and no catalog is produced.
func Build(ctx context.Context, source LabelFetcher, seed []entities.Medicine, rng *rand.Rand) (*Catalog, BuildReport, error) {
	raws, err := source.Fetch(ctx)
	if err != nil {
		return nil, BuildReport{}, fmt.Errorf("failed to fetch labels: %w", err)
	}

	normalized, labelReport := normalizer.NormalizeAll(raws)
	if labelReport.Rejected > 0 {
		logging.Debug("Dropped labels without a brand name", "count", labelReport.Rejected)
	}

	cat, mergeReport := Merge(normalized, seed, rng)
	return cat, BuildReport{Labels: labelReport, Merge: mergeReport}, nil
}

// All returns the catalog entries in display order.
func (c *Catalog) All() []entities.Medicine {
	if c == nil {
		return nil
	}
	return c.medicines
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.medicines)
}

// Get looks a medicine up by id.
func (c *Catalog) Get(id string) (entities.Medicine, bool) {
	if c == nil {
		return entities.Medicine{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return entities.Medicine{}, false
	}
	return c.medicines[i], true
}

// BuiltAt returns when the catalog was frozen
func (c *Catalog) BuiltAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.builtAt
}
