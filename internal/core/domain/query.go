package domain

import "time"

// ClauseType identifies how a clause value is matched.
type ClauseType string

// Available clause types.
const (
	// ClauseExact matches by case-insensitive equality or substring,
	// depending on the field convention.
	ClauseExact ClauseType = "exact"

	// ClauseFuzzy matches by edit-distance similarity.
	ClauseFuzzy ClauseType = "fuzzy"

	// ClausePhrase matches a literal quoted phrase.
	ClausePhrase ClauseType = "phrase"

	// ClauseWildcard matches a glob pattern (* and ?).
	ClauseWildcard ClauseType = "wildcard"

	// ClauseRegex matches a user-supplied regular expression.
	ClauseRegex ClauseType = "regex"
)

// ClauseField restricts a clause to one document attribute.
// The empty field searches title, content, and tags.
type ClauseField string

// Recognised clause fields. Anything else in a "field:value" token
// is treated as a literal term, not a field restriction.
const (
	FieldAny     ClauseField = ""
	FieldTitle   ClauseField = "title"
	FieldContent ClauseField = "content"
	FieldTags    ClauseField = "tags"
	FieldTag     ClauseField = "tag"
)

// ParseClauseField resolves a field name from query text.
// Returns false for unrecognised names.
func ParseClauseField(s string) (ClauseField, bool) {
	switch ClauseField(s) {
	case FieldTitle, FieldContent, FieldTags, FieldTag:
		return ClauseField(s), true
	default:
		return FieldAny, false
	}
}

// DefaultFuzzyTolerance applies to fuzzy clauses that carry no
// explicit tolerance.
const DefaultFuzzyTolerance = 0.8

// Clause is one atomic query term.
type Clause struct {
	// Field restricts matching to a single attribute. FieldAny
	// searches title, content, and tags, keeping the best result.
	Field ClauseField

	// Value is the term, phrase, pattern, or glob to match.
	Value string

	// Type selects the matching semantics for Value.
	Type ClauseType

	// FuzzyTolerance tunes ClauseFuzzy matching: values near 0 are
	// strict, 1 accepts very low similarity. Zero means "use
	// default"; a term that must match exactly belongs in a
	// ClauseExact instead. Ignored for other clause types.
	FuzzyTolerance float64
}

// Tolerance returns the effective fuzzy tolerance for the clause.
func (c Clause) Tolerance() float64 {
	if c.FuzzyTolerance <= 0 {
		return DefaultFuzzyTolerance
	}
	return c.FuzzyTolerance
}

// ParsedQuery is the structured form of a boolean query string.
type ParsedQuery struct {
	// Must clauses are ANDed: every one is required.
	Must []Clause

	// Should clauses are ORed: each match contributes partial credit.
	Should []Clause

	// MustNot clauses exclude: any match zeroes the score.
	MustNot []Clause
}

// IsEmpty returns true when the query has no clauses at all.
func (q ParsedQuery) IsEmpty() bool {
	return len(q.Must) == 0 && len(q.Should) == 0 && len(q.MustNot) == 0
}

// BoolOperator combines structured query criteria.
type BoolOperator string

// Available operators for structured queries.
const (
	OperatorAnd BoolOperator = "AND"
	OperatorOr  BoolOperator = "OR"
)

// DateRange bounds a structured query by the document's relevant date.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// IsZero returns true when neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// SearchQuery is the flat request accepted by the engine.
// Text, when present, is parsed as a boolean query and scored with the
// advanced scorer; the remaining criteria form a structured query
// scored with the simple scorer.
type SearchQuery struct {
	// Text is a free-form boolean query string.
	Text string

	// Tags filters and scores by frontmatter tags.
	Tags []string

	// Content searches body text.
	Content string

	// Title searches note titles.
	Title string

	// Category restricts to one PARA category.
	Category Category

	// DateRange restricts by the document's relevant date.
	DateRange DateRange

	// Operator combines the structured criteria (default AND).
	Operator BoolOperator

	// Limit is the maximum number of results. Must be positive.
	Limit int

	// Offset is the number of results to skip. Must be non-negative.
	Offset int

	// IncludeFacets requests facet aggregation over the candidate set.
	IncludeFacets []FacetField

	// IncludeSnippets attaches a highlighted content excerpt per result.
	IncludeSnippets bool
}

// HasCriteria returns true when at least one non-pagination criterion
// is present. Queries without criteria are rejected by validation.
func (q SearchQuery) HasCriteria() bool {
	return q.Text != "" ||
		len(q.Tags) > 0 ||
		q.Content != "" ||
		q.Title != "" ||
		q.Category != "" ||
		!q.DateRange.IsZero()
}

// SearchResult is a single ranked hit.
type SearchResult struct {
	// Path identifies the matched document.
	Path string

	// Title is the document title.
	Title string

	// RelevanceScore is in [0,100], higher is better.
	RelevanceScore float64

	// Snippet is a highlighted excerpt, when requested.
	Snippet string

	// Tags are the document tags.
	Tags []string

	// Category is the document's PARA category.
	Category Category

	// Metadata carries the document's extra frontmatter.
	Metadata map[string]any
}

// SearchResponse is the full reply to a search call.
type SearchResponse struct {
	// Results is the requested page, ranked by descending score.
	Results []SearchResult

	// TotalCount is the number of matches before pagination.
	TotalCount int

	// ExecutionTime is the wall-clock duration of the search.
	ExecutionTime time.Duration

	// Facets holds the requested aggregations, if any.
	Facets []Facet
}

// IndexStats summarises the live index.
type IndexStats struct {
	// DocumentCount is the number of indexed documents.
	DocumentCount int

	// Categories counts documents per PARA category.
	Categories map[Category]int
}
