// Package entities holds the data shapes shared by the label source, the normalizer and the catalog.
package entities

// Medicine is the canonical catalog entry served by the API.
type Medicine struct {
	ID             string   `json:"id"`
	BrandName      string   `json:"brandName"`
	GenericFormula string   `json:"genericFormula"`
	Dosage         string   `json:"dosage"`
	Uses           []string `json:"uses"`
	IsCommon       bool     `json:"isCommon,omitempty"` // Only set on curated seed entries
}

// Clone returns a copy that does not share the Uses backing array.
func (m Medicine) Clone() Medicine {
	c := m
	c.Uses = append([]string(nil), m.Uses...)
	return c
}
