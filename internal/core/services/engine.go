package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
	"github.com/mikeyobrien/forge-search/internal/core/ports/driven"
	"github.com/mikeyobrien/forge-search/internal/core/ports/driving"
	"github.com/mikeyobrien/forge-search/internal/logger"
)

// Ensure Engine implements the interface.
var _ driving.SearchService = (*Engine)(nil)

// EngineConfig bundles the tuning for an Engine. Zero values fall
// back to defaults.
type EngineConfig struct {
	// Weights configures the simple relevance scorer.
	Weights ScoreWeights

	// Fuzzy configures the fuzzy matcher used by advanced scoring.
	Fuzzy FuzzyConfig

	// SnippetLength is the maximum snippet size in characters.
	SnippetLength int

	// SnippetContext is the word-boundary snap radius for snippets.
	SnippetContext int
}

// DefaultEngineConfig returns the standard engine tuning.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Weights:        DefaultScoreWeights(),
		Fuzzy:          DefaultFuzzyConfig(),
		SnippetLength:  150,
		SnippetContext: 10,
	}
}

// indexEntry is one document in the index with its insertion
// sequence, used as the stable tie-break for equal scores. Entries
// are immutable once published: updates install a fresh entry in the
// map, so a search that retained the old pointer keeps reading a
// consistent document.
type indexEntry struct {
	doc domain.Document
	seq int
}

// Engine owns the in-memory index and executes searches against it.
// It is constructed with an injected DocumentStore and holds no
// ambient global state. Many concurrent searches may run while a
// single writer mutates the index.
type Engine struct {
	store    driven.DocumentStore
	parser   *QueryParser
	scorer   *RelevanceScorer
	advanced *AdvancedScorer
	cfg      EngineConfig

	mu    sync.RWMutex
	docs  map[string]*indexEntry
	order []string // insertion order; may contain removed paths
	stale int      // removed paths still present in order
	seq   int
}

// NewEngine creates an engine over the given document store.
func NewEngine(store driven.DocumentStore, cfg EngineConfig) *Engine {
	def := DefaultEngineConfig()
	if cfg.Weights == (ScoreWeights{}) {
		cfg.Weights = def.Weights
	}
	if cfg.SnippetLength <= 0 {
		cfg.SnippetLength = def.SnippetLength
	}
	if cfg.SnippetContext <= 0 {
		cfg.SnippetContext = def.SnippetContext
	}

	fuzzy := NewFuzzyMatcher(cfg.Fuzzy)
	return &Engine{
		store:    store,
		parser:   NewQueryParser(),
		scorer:   NewRelevanceScorer(cfg.Weights),
		advanced: NewAdvancedScorer(fuzzy),
		cfg:      cfg,
		docs:     make(map[string]*indexEntry),
	}
}

// Parser exposes the engine's query parser for adapters that want to
// validate or normalize query text.
func (e *Engine) Parser() *QueryParser {
	return e.parser
}

// Initialize builds the index from a full store scan. The new index
// is assembled off to the side and swapped in atomically, so
// concurrent readers never observe a partial build. A document that
// fails to load is logged and skipped; one bad note never aborts the
// build.
func (e *Engine) Initialize(ctx context.Context) error {
	logger.Section("Index Build")
	start := time.Now()

	docs, err := e.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	fresh := make(map[string]*indexEntry, len(docs))
	order := make([]string, 0, len(docs))
	for i := range docs {
		path := docs[i].Path
		if path == "" {
			logger.Warn("Skipping document with empty path")
			continue
		}
		if _, exists := fresh[path]; exists {
			logger.Warn("Skipping duplicate path %s", path)
			continue
		}
		fresh[path] = &indexEntry{doc: docs[i], seq: len(order)}
		order = append(order, path)
	}

	e.mu.Lock()
	e.docs = fresh
	e.order = order
	e.stale = 0
	e.seq = len(order)
	e.mu.Unlock()

	logger.Info("Indexed %d documents in %s", len(order), time.Since(start))
	return nil
}

// Search validates and executes a query, returning a ranked,
// paginated response. Invalid requests fail with *domain.QueryError.
func (e *Engine) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error) {
	start := time.Now()
	qid := uuid.NewString()[:8]

	logger.Section("Search Execution")
	logger.Debug("[%s] Query: text=%q tags=%v category=%q limit=%d offset=%d",
		qid, query.Text, query.Tags, query.Category, query.Limit, query.Offset)

	if err := validateQuery(query); err != nil {
		logger.Debug("[%s] Rejected: %v", qid, err)
		return nil, err
	}

	var parsed domain.ParsedQuery
	freeText := strings.TrimSpace(query.Text) != ""
	if freeText {
		var err error
		parsed, err = e.parser.Parse(query.Text)
		if err != nil {
			return nil, err
		}
		logger.Debug("[%s] Parsed: must=%d should=%d mustNot=%d",
			qid, len(parsed.Must), len(parsed.Should), len(parsed.MustNot))
	}

	type scored struct {
		entry *indexEntry
		score float64
	}

	e.mu.RLock()
	candidates := make([]scored, 0, len(e.docs))
	for _, path := range e.order {
		entry, ok := e.docs[path]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			e.mu.RUnlock()
			return nil, err
		}

		doc := &entry.doc
		if !matchesFilters(doc, query) {
			continue
		}

		var score float64
		if freeText {
			score = e.advanced.CalculateAdvancedScore(doc, parsed)
			// Zero encodes a failed must or a matched mustNot.
			if score <= 0 {
				continue
			}
		} else {
			// Structured criteria were already enforced by the filter;
			// a zero score (a dateless document in a category-only
			// search, say) still belongs in the results.
			score = e.scorer.CalculateScore(doc, query)
		}
		candidates = append(candidates, scored{entry: entry, score: score})
	}
	e.mu.RUnlock()

	// Descending by score; SliceStable keeps insertion order for ties
	// because candidates were collected in insertion order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	total := len(candidates)
	logger.Debug("[%s] Matched %d documents", qid, total)

	page := paginate(len(candidates), query.Offset, query.Limit)
	results := make([]domain.SearchResult, 0, page[1]-page[0])
	term := snippetTerm(query, parsed)
	for _, c := range candidates[page[0]:page[1]] {
		result := domain.SearchResult{
			Path:           c.entry.doc.Path,
			Title:          c.entry.doc.Title,
			RelevanceScore: c.score,
			Tags:           c.entry.doc.Tags,
			Category:       c.entry.doc.Category,
			Metadata:       c.entry.doc.Metadata,
		}
		if query.IncludeSnippets {
			result.Snippet = e.advanced.GenerateSnippet(
				c.entry.doc.Content, term, e.cfg.SnippetLength, e.cfg.SnippetContext)
		}
		results = append(results, result)
	}

	response := &domain.SearchResponse{
		Results:       results,
		TotalCount:    total,
		ExecutionTime: time.Since(start),
	}

	if len(query.IncludeFacets) > 0 {
		matched := make([]domain.Document, 0, len(candidates))
		for _, c := range candidates {
			matched = append(matched, c.entry.doc)
		}
		response.Facets = GenerateFacets(matched, query.IncludeFacets)
	}

	logger.Info("[%s] Returning %d of %d results in %s", qid, len(results), total, response.ExecutionTime)
	return response, nil
}

// validateQuery enforces the request contract: at least one
// non-pagination criterion, a coherent date range, a positive limit,
// and a non-negative offset. Nothing is silently defaulted.
func validateQuery(query domain.SearchQuery) error {
	trimmed := query
	trimmed.Text = strings.TrimSpace(query.Text)

	if !trimmed.HasCriteria() {
		return domain.NewValidationError("query must include at least one search criterion")
	}
	if query.DateRange.Start != nil && query.DateRange.End != nil &&
		!query.DateRange.Start.Before(*query.DateRange.End) {
		return domain.NewValidationError("date range start must be before end")
	}
	if query.Limit <= 0 {
		return domain.NewValidationError("limit must be positive, got %d", query.Limit)
	}
	if query.Offset < 0 {
		return domain.NewValidationError("offset must be non-negative, got %d", query.Offset)
	}
	if query.Category != "" && !query.Category.IsValid() {
		return domain.NewValidationError("unknown category %q", query.Category)
	}
	return nil
}

// matchesFilters applies the hard structured filters: category and
// date range always restrict; for structured OR queries at least one
// text criterion must hit, while scoring handles AND strictness.
func matchesFilters(doc *domain.Document, query domain.SearchQuery) bool {
	if query.Category != "" && doc.Category != query.Category {
		return false
	}

	if !query.DateRange.IsZero() {
		date := doc.RelevantDate()
		if date == nil {
			return false
		}
		if query.DateRange.Start != nil && date.Before(*query.DateRange.Start) {
			return false
		}
		if query.DateRange.End != nil && !date.Before(*query.DateRange.End) {
			return false
		}
	}

	if strings.TrimSpace(query.Text) != "" {
		// Free-text match/no-match is the advanced scorer's call.
		return true
	}

	// Structured criteria: AND requires every provided criterion to
	// hit; OR requires at least one.
	criteria := make([]bool, 0, 3)
	if len(query.Tags) > 0 {
		criteria = append(criteria, anyTagMatches(doc, query.Tags))
	}
	if query.Title != "" {
		criteria = append(criteria, titleMatches(doc.Title, query.Title))
	}
	if query.Content != "" {
		criteria = append(criteria, contentMatches(doc.Content, query.Content))
	}
	if len(criteria) == 0 {
		// Category or date range only.
		return true
	}

	if query.Operator == domain.OperatorOr {
		for _, ok := range criteria {
			if ok {
				return true
			}
		}
		return false
	}
	for _, ok := range criteria {
		if !ok {
			return false
		}
	}
	return true
}

// anyTagMatches reports whether any query tag matches a document tag
// exactly or by substring, case-insensitively.
func anyTagMatches(doc *domain.Document, tags []string) bool {
	for _, qt := range tags {
		qtLower := strings.ToLower(qt)
		for _, dt := range doc.Tags {
			dtLower := strings.ToLower(dt)
			if dtLower == qtLower || strings.Contains(dtLower, qtLower) || strings.Contains(qtLower, dtLower) {
				return true
			}
		}
	}
	return false
}

// titleMatches reports substring containment or any word overlap.
func titleMatches(title, query string) bool {
	titleLower := strings.ToLower(title)
	queryLower := strings.ToLower(query)
	if strings.Contains(titleLower, queryLower) {
		return true
	}
	for _, word := range strings.Fields(queryLower) {
		if strings.Contains(titleLower, word) {
			return true
		}
	}
	return false
}

// contentMatches reports phrase containment or any word containment.
func contentMatches(content, query string) bool {
	contentLower := strings.ToLower(content)
	queryLower := strings.ToLower(query)
	if strings.Contains(contentLower, queryLower) {
		return true
	}
	for _, word := range strings.Fields(queryLower) {
		if strings.Contains(contentLower, word) {
			return true
		}
	}
	return false
}

// paginate clamps an offset/limit window to [0, total] and returns
// the half-open slice bounds.
func paginate(total, offset, limit int) [2]int {
	if offset >= total {
		return [2]int{total, total}
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return [2]int{offset, end}
}

// snippetTerm picks the text to highlight in snippets: the first
// positive clause of a parsed query, or the structured content/title
// criterion.
func snippetTerm(query domain.SearchQuery, parsed domain.ParsedQuery) string {
	if len(parsed.Must) > 0 {
		return parsed.Must[0].Value
	}
	if len(parsed.Should) > 0 {
		return parsed.Should[0].Value
	}
	if query.Content != "" {
		return query.Content
	}
	return query.Title
}

// UpdateDocument re-reads one document from the store and updates the
// index in place, without a full rebuild. A path that no longer
// exists is removed from the index.
func (e *Engine) UpdateDocument(ctx context.Context, path string) error {
	doc, err := e.store.Read(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return e.RemoveDocument(ctx, path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if entry, ok := e.docs[path]; ok {
		// Replace, never mutate: concurrent searches may still hold
		// the old entry.
		e.docs[path] = &indexEntry{doc: *doc, seq: entry.seq}
		logger.Debug("Updated %s in index", path)
		return nil
	}

	e.docs[path] = &indexEntry{doc: *doc, seq: e.seq}
	e.order = append(e.order, path)
	e.seq++
	logger.Debug("Added %s to index", path)
	return nil
}

// RemoveDocument drops one document from the index. Removing an
// unknown path is a no-op.
func (e *Engine) RemoveDocument(_ context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.docs[path]; !ok {
		return nil
	}
	delete(e.docs, path)
	e.stale++
	logger.Debug("Removed %s from index", path)

	// Compact the order slice once removals dominate, keeping
	// removal amortised O(1).
	if e.stale > len(e.order)/2 {
		compacted := make([]string, 0, len(e.docs))
		for _, p := range e.order {
			if _, ok := e.docs[p]; ok {
				compacted = append(compacted, p)
			}
		}
		e.order = compacted
		e.stale = 0
	}
	return nil
}

// Stats reports the current document count and per-category breakdown.
func (e *Engine) Stats() domain.IndexStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := domain.IndexStats{
		DocumentCount: len(e.docs),
		Categories:    make(map[domain.Category]int),
	}
	for _, entry := range e.docs {
		stats.Categories[entry.doc.Category]++
	}
	return stats
}
