package domain

// FacetField identifies an aggregation dimension.
type FacetField string

// Available facet fields.
const (
	FacetCategory  FacetField = "category"
	FacetTags      FacetField = "tags"
	FacetDateRange FacetField = "dateRange"
	FacetYear      FacetField = "year"
	FacetMonth     FacetField = "month"
)

// AllFacetFields returns every facet field in presentation order.
func AllFacetFields() []FacetField {
	return []FacetField{FacetCategory, FacetTags, FacetDateRange, FacetYear, FacetMonth}
}

// IsValid returns true if the facet field is recognised.
func (f FacetField) IsValid() bool {
	switch f {
	case FacetCategory, FacetTags, FacetDateRange, FacetYear, FacetMonth:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f FacetField) String() string {
	return string(f)
}

// FacetValue is one bucket within a facet.
type FacetValue struct {
	// Value is the machine bucket key, e.g. "projects" or "2025-08".
	Value string

	// Label is the humanised display form, e.g. "Projects" or "Aug 2025".
	Label string

	// Count is the number of documents in the bucket.
	Count int
}

// Facet is a named aggregation over a result set.
// Values are sorted by descending count.
type Facet struct {
	Field      FacetField
	Values     []FacetValue
	TotalCount int
}
