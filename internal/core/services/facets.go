package services

import (
	"sort"
	"strconv"
	"time"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
)

// Date-range bucket keys. Buckets are half-open and the most recent
// bucket wins: a note modified an hour ago is "today", not
// "last-7-days".
const (
	bucketToday      = "today"
	bucketLast7Days  = "last-7-days"
	bucketLast30Days = "last-30-days"
	bucketLastYear   = "last-year"
	bucketOlder      = "older"
)

// maxTagFacetValues caps the tag facet at the most frequent tags.
const maxTagFacetValues = 20

// maxMonthFacetValues caps the month facet at the most recent months.
const maxMonthFacetValues = 12

// GenerateFacets aggregates the documents along each requested
// dimension. A facet whose value set is empty is omitted entirely.
func GenerateFacets(docs []domain.Document, fields []domain.FacetField) []domain.Facet {
	return generateFacetsAt(docs, fields, time.Now())
}

// generateFacetsAt is GenerateFacets with an explicit reference time
// for the date buckets.
func generateFacetsAt(docs []domain.Document, fields []domain.FacetField, now time.Time) []domain.Facet {
	facets := make([]domain.Facet, 0, len(fields))

	for _, field := range fields {
		var facet *domain.Facet
		switch field {
		case domain.FacetCategory:
			facet = categoryFacet(docs)
		case domain.FacetTags:
			facet = tagFacet(docs)
		case domain.FacetDateRange:
			facet = dateRangeFacet(docs, now)
		case domain.FacetYear:
			facet = yearFacet(docs)
		case domain.FacetMonth:
			facet = monthFacet(docs)
		}
		if facet != nil && len(facet.Values) > 0 {
			facets = append(facets, *facet)
		}
	}

	return facets
}

// categoryFacet counts documents per PARA category.
func categoryFacet(docs []domain.Document) *domain.Facet {
	counts := make(map[domain.Category]int)
	total := 0
	for i := range docs {
		if docs[i].Category.IsValid() {
			counts[docs[i].Category]++
			total++
		}
	}

	values := make([]domain.FacetValue, 0, len(counts))
	for _, c := range domain.Categories() {
		if counts[c] > 0 {
			values = append(values, domain.FacetValue{
				Value: c.String(),
				Label: c.Label(),
				Count: counts[c],
			})
		}
	}
	sortByCountDesc(values)

	return &domain.Facet{Field: domain.FacetCategory, Values: values, TotalCount: total}
}

// tagFacet counts documents per distinct tag. Bucket keys are
// case-sensitive; the same spelling always lands in the same bucket.
func tagFacet(docs []domain.Document) *domain.Facet {
	counts := make(map[string]int)
	total := 0
	for i := range docs {
		for _, tag := range docs[i].Tags {
			counts[tag]++
			total++
		}
	}

	values := make([]domain.FacetValue, 0, len(counts))
	for tag, count := range counts {
		values = append(values, domain.FacetValue{Value: tag, Label: tag, Count: count})
	}
	sortByCountDesc(values)

	if len(values) > maxTagFacetValues {
		values = values[:maxTagFacetValues]
	}

	return &domain.Facet{Field: domain.FacetTags, Values: values, TotalCount: total}
}

// dateBucket places a date into its most recent qualifying bucket.
func dateBucket(date, now time.Time) string {
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case !date.Before(startOfToday):
		return bucketToday
	case !date.Before(now.AddDate(0, 0, -7)):
		return bucketLast7Days
	case !date.Before(now.AddDate(0, 0, -30)):
		return bucketLast30Days
	case !date.Before(now.AddDate(-1, 0, 0)):
		return bucketLastYear
	default:
		return bucketOlder
	}
}

// bucketLabel humanises a date bucket key.
func bucketLabel(bucket string) string {
	switch bucket {
	case bucketToday:
		return "Today"
	case bucketLast7Days:
		return "Last 7 Days"
	case bucketLast30Days:
		return "Last 30 Days"
	case bucketLastYear:
		return "Last Year"
	default:
		return "Older"
	}
}

// dateRangeFacet buckets documents by their relevant date. Documents
// with neither a modified nor a created date are excluded; when no
// document qualifies the facet is absent.
func dateRangeFacet(docs []domain.Document, now time.Time) *domain.Facet {
	counts := make(map[string]int)
	total := 0
	for i := range docs {
		date := docs[i].RelevantDate()
		if date == nil {
			continue
		}
		counts[dateBucket(*date, now)]++
		total++
	}

	values := make([]domain.FacetValue, 0, len(counts))
	for bucket, count := range counts {
		values = append(values, domain.FacetValue{
			Value: bucket,
			Label: bucketLabel(bucket),
			Count: count,
		})
	}
	sortByCountDesc(values)

	return &domain.Facet{Field: domain.FacetDateRange, Values: values, TotalCount: total}
}

// yearFacet counts documents per four-digit year of the relevant
// date, most recent year first.
func yearFacet(docs []domain.Document) *domain.Facet {
	counts := make(map[string]int)
	total := 0
	for i := range docs {
		date := docs[i].RelevantDate()
		if date == nil {
			continue
		}
		counts[strconv.Itoa(date.Year())]++
		total++
	}

	values := make([]domain.FacetValue, 0, len(counts))
	for year, count := range counts {
		values = append(values, domain.FacetValue{Value: year, Label: year, Count: count})
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].Value > values[j].Value
	})

	return &domain.Facet{Field: domain.FacetYear, Values: values, TotalCount: total}
}

// monthFacet counts documents per YYYY-MM month of the relevant date,
// keeping only the 12 most recent distinct months present.
func monthFacet(docs []domain.Document) *domain.Facet {
	counts := make(map[string]int)
	labels := make(map[string]string)
	total := 0
	for i := range docs {
		date := docs[i].RelevantDate()
		if date == nil {
			continue
		}
		key := date.Format("2006-01")
		counts[key]++
		labels[key] = date.Format("Jan 2006")
		total++
	}

	values := make([]domain.FacetValue, 0, len(counts))
	for key, count := range counts {
		values = append(values, domain.FacetValue{Value: key, Label: labels[key], Count: count})
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].Value > values[j].Value
	})

	if len(values) > maxMonthFacetValues {
		values = values[:maxMonthFacetValues]
	}

	return &domain.Facet{Field: domain.FacetMonth, Values: values, TotalCount: total}
}

// sortByCountDesc orders facet values by descending count, breaking
// ties by value for deterministic output.
func sortByCountDesc(values []domain.FacetValue) {
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})
}

// ApplyFacetFilter keeps the documents that fall into the given facet
// bucket, using the same boundaries as facet generation. An
// unrecognised field returns the input unchanged.
func ApplyFacetFilter(docs []domain.Document, field domain.FacetField, value string) []domain.Document {
	return applyFacetFilterAt(docs, field, value, time.Now())
}

// applyFacetFilterAt is ApplyFacetFilter with an explicit reference
// time for the date buckets.
func applyFacetFilterAt(docs []domain.Document, field domain.FacetField, value string, now time.Time) []domain.Document {
	switch field {
	case domain.FacetCategory:
		return filterDocs(docs, func(d *domain.Document) bool {
			return d.Category.String() == value
		})

	case domain.FacetTags:
		return filterDocs(docs, func(d *domain.Document) bool {
			for _, tag := range d.Tags {
				if tag == value {
					return true
				}
			}
			return false
		})

	case domain.FacetDateRange:
		return filterDocs(docs, func(d *domain.Document) bool {
			date := d.RelevantDate()
			return date != nil && dateBucket(*date, now) == value
		})

	case domain.FacetYear:
		return filterDocs(docs, func(d *domain.Document) bool {
			date := d.RelevantDate()
			return date != nil && strconv.Itoa(date.Year()) == value
		})

	case domain.FacetMonth:
		return filterDocs(docs, func(d *domain.Document) bool {
			date := d.RelevantDate()
			return date != nil && date.Format("2006-01") == value
		})

	default:
		return docs
	}
}

// filterDocs returns the documents satisfying the predicate.
func filterDocs(docs []domain.Document, keep func(*domain.Document) bool) []domain.Document {
	filtered := make([]domain.Document, 0, len(docs))
	for i := range docs {
		if keep(&docs[i]) {
			filtered = append(filtered, docs[i])
		}
	}
	return filtered
}
