package entities

// RawLabel is one element of the openFDA drug label "results" array.
// Every field may be missing; list fields may also be empty or contain empty strings.
type RawLabel struct {
	ID                  string      `json:"id"`
	OpenFDA             OpenFDAInfo `json:"openfda"`
	Purpose             []string    `json:"purpose"`
	IndicationsAndUsage []string    `json:"indications_and_usage"`
}

// OpenFDAInfo is the harmonized "openfda" block of a label.
type OpenFDAInfo struct {
	BrandName   []string `json:"brand_name"`
	GenericName []string `json:"generic_name"`
	Route       []string `json:"route"`
}

// LabelResponse is the envelope returned by the label search endpoint.
type LabelResponse struct {
	Results []RawLabel `json:"results"`
}
