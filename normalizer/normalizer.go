// Package normalizer maps raw openFDA label records onto the catalog's Medicine shape.
// Labels are free text of very uneven quality, so every field has a default and the
// "uses" badge is derived by a fixed cleanup pipeline (see uses.go).
package normalizer

import (
	"strconv"

	"github.com/giygas/medicine-library/entities"
)

// Defaults applied when a label is missing a field.
const (
	UnknownBrand   = "Unknown Brand"
	UnknownGeneric = "Unknown Generic"
	DefaultDosage  = "Oral"
	DefaultUse     = "Medical Use"
)

// Report summarizes one NormalizeAll run
type Report struct {
	Total            int `json:"total"`
	Accepted         int `json:"accepted"`
	Rejected         int `json:"rejected"`
	DefaultedGeneric int `json:"defaulted_generic"`
	DefaultedDosage  int `json:"defaulted_dosage"`
	DefaultedUses    int `json:"defaulted_uses"`
}

// Normalize converts a raw label into a Medicine.
// index is the label's position in its batch and is used as the id when the label has none.
// The second return value is false when the label has no brand name; such records are dropped.
func Normalize(raw entities.RawLabel, index int) (entities.Medicine, bool) {
	med := entities.Medicine{
		ID:             raw.ID,
		BrandName:      firstOr(raw.OpenFDA.BrandName, UnknownBrand),
		GenericFormula: firstOr(raw.OpenFDA.GenericName, UnknownGeneric),
		Dosage:         firstOr(raw.OpenFDA.Route, DefaultDosage),
	}
	if med.ID == "" {
		med.ID = strconv.Itoa(index)
	}

	source := firstOr(raw.Purpose, firstOr(raw.IndicationsAndUsage, DefaultUse))
	med.Uses = []string{ExtractUse(source)}

	if med.BrandName == UnknownBrand {
		return med, false
	}
	return med, true
}

// NormalizeAll normalizes a batch, keeping input order and dropping rejected labels.
func NormalizeAll(raws []entities.RawLabel) ([]entities.Medicine, Report) {
	report := Report{Total: len(raws)}
	medicines := make([]entities.Medicine, 0, len(raws))

	for i, raw := range raws {
		med, ok := Normalize(raw, i)
		if !ok {
			report.Rejected++
			continue
		}

		if med.GenericFormula == UnknownGeneric {
			report.DefaultedGeneric++
		}
		if firstOr(raw.OpenFDA.Route, "") == "" {
			report.DefaultedDosage++
		}
		if med.Uses[0] == DefaultUse {
			report.DefaultedUses++
		}

		medicines = append(medicines, med)
	}

	report.Accepted = len(medicines)
	return medicines, report
}

// firstOr returns the first element of values, or fallback when the list is empty
// or its first element is the empty string.
func firstOr(values []string, fallback string) string {
	if len(values) == 0 || values[0] == "" {
		return fallback
	}
	return values[0]
}
