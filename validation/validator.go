// Package validation checks user input for the medicine library API and reports
// data quality issues in built catalogs.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/giygas/medicine-library/catalog"
	"github.com/giygas/medicine-library/entities"
	"github.com/giygas/medicine-library/interfaces"
	"github.com/giygas/medicine-library/logging"
	"github.com/giygas/medicine-library/normalizer"
)

const (
	MaxSearchLength = 100
	MaxIDLength     = 128
	MaxPage         = 10000
	maxRepetition   = 10
)

// Pre-compiled patterns, reused for all validations
var (
	// Letters in any script, digits, spaces and the punctuation found in drug names and uses
	searchRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-\.\+'&/,()]+$`)

	idRegex = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)

	// Matched case-insensitively as plain substrings
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"eval(", "expression(", "url(", "@import",
		// SQL injection patterns
		"' or ", "union select", "drop table", "delete from", "insert into", "--", "/*", "*/",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}
)

// Compile-time check to ensure Validator implements InputValidator
var _ interfaces.InputValidator = (*Validator)(nil)

// Validator is stateless and safe for concurrent use.
type Validator struct{}

// NewValidator creates a validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSearchTerm validates free-text search input. The empty term is valid and means no filter.
func (v *Validator) ValidateSearchTerm(term string) error {
	if term == "" {
		return nil
	}

	if utf8.RuneCountInString(term) > MaxSearchLength {
		return fmt.Errorf("search too long: maximum %d characters", MaxSearchLength)
	}

	if strings.TrimSpace(term) == "" {
		return fmt.Errorf("search cannot be only whitespace")
	}

	lower := strings.ToLower(term)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("search contains potentially dangerous content")
		}
	}

	if !searchRegex.MatchString(term) {
		return fmt.Errorf("search contains invalid characters. Only letters, numbers, spaces and - . + ' & / , ( ) are allowed")
	}

	if hasExcessiveRepetition(term) {
		return fmt.Errorf("search contains excessive character repetition")
	}

	return nil
}

// ValidateID validates a medicine id: letters, digits, hyphens and underscores.
func (v *Validator) ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("id too long: maximum %d characters", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("id contains invalid characters. Only letters, numbers, hyphens and underscores are allowed")
	}
	return nil
}

// ParsePage parses a 1-based page number. Empty input is page 1.
func (v *Validator) ParsePage(input string) (int, error) {
	if input == "" {
		return 1, nil
	}

	page, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("page must be a number")
	}
	if page < 1 {
		return 0, fmt.Errorf("page must be 1 or greater")
	}
	if page > MaxPage {
		return 0, fmt.Errorf("page must be at most %d", MaxPage)
	}
	return page, nil
}

// ReportCatalogQuality counts the records of a merged catalog that carry defaulted or
// suspicious data, and logs what it finds.
func (v *Validator) ReportCatalogQuality(medicines []entities.Medicine, build catalog.BuildReport) *interfaces.CatalogQualityReport {
	report := &interfaces.CatalogQualityReport{
		Total:          len(medicines),
		DuplicateIDs:   build.Merge.DuplicateIDs,
		RejectedLabels: build.Labels.Rejected,
		DefaultedUses:  build.Labels.DefaultedUses,
	}

	for _, med := range medicines {
		if med.IsCommon {
			report.SeedRecords++
		} else {
			report.NormalizedRecords++
		}
		if med.GenericFormula == normalizer.UnknownGeneric {
			report.UnknownGenerics++
		}
	}

	if len(report.DuplicateIDs) > 0 {
		logging.Warn("Duplicate medicine ids dropped",
			"total", len(report.DuplicateIDs),
			"id_list", report.DuplicateIDs,
		)
	}
	if report.UnknownGenerics > 0 {
		logging.Warn("Medicines without a generic formula", "count", report.UnknownGenerics)
	}
	if report.RejectedLabels > 0 {
		logging.Info("Labels rejected for missing brand name", "count", report.RejectedLabels)
	}

	return report
}

// hasExcessiveRepetition reports whether any character repeats more than maxRepetition times in a row
func hasExcessiveRepetition(input string) bool {
	var last rune
	run := 0
	for _, r := range input {
		if r == last {
			run++
			if run > maxRepetition {
				return true
			}
			continue
		}
		last = r
		run = 1
	}
	return false
}
