package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeyobrien/forge-search/internal/adapters/driven/storage/memory"
	"github.com/mikeyobrien/forge-search/internal/core/domain"
)

func daysAgo(n int) *time.Time {
	t := time.Now().AddDate(0, 0, -n)
	return &t
}

// newTestEngine builds an initialized engine over a small fixture vault.
func newTestEngine(t *testing.T) (*Engine, *memory.DocumentStore) {
	t.Helper()

	store := memory.NewDocumentStore()
	store.Put(domain.Document{
		Path:     "projects/search-engine.md",
		Title:    "Search Engine Design",
		Content:  "Boolean queries with fuzzy matching and relevance scoring.",
		Tags:     []string{"golang", "design"},
		Category: domain.CategoryProjects,
		Modified: daysAgo(1),
	})
	store.Put(domain.Document{
		Path:     "areas/health.md",
		Title:    "Health Routine",
		Content:  "Running schedule and sleep tracking notes.",
		Tags:     []string{"health"},
		Category: domain.CategoryAreas,
		Modified: daysAgo(10),
	})
	store.Put(domain.Document{
		Path:     "resources/golang-tips.md",
		Title:    "Golang Tips",
		Content:  "Slices, maps, and goroutine patterns in golang.",
		Tags:     []string{"golang", "reference"},
		Category: domain.CategoryResources,
		Modified: daysAgo(400),
	})

	engine := NewEngine(store, DefaultEngineConfig())
	require.NoError(t, engine.Initialize(context.Background()))
	return engine, store
}

func TestEngine_Search_FreeText(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), domain.SearchQuery{
		Text:  "golang",
		Limit: 10,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Results)
	assert.Equal(t, resp.TotalCount, len(resp.Results))
	for _, r := range resp.Results {
		assert.Greater(t, r.RelevanceScore, 0.0)
	}
}

func TestEngine_Search_ResultsSortedByScore(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), domain.SearchQuery{
		Text:  "golang",
		Limit: 10,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(resp.Results), 2)

	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].RelevanceScore, resp.Results[i].RelevanceScore)
	}
}

func TestEngine_Search_StructuredTags(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), domain.SearchQuery{
		Tags:  []string{"golang"},
		Limit: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalCount)
	for _, r := range resp.Results {
		assert.Contains(t, r.Tags, "golang")
	}
}

func TestEngine_Search_CategoryFilter(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), domain.SearchQuery{
		Tags:     []string{"golang"},
		Category: domain.CategoryProjects,
		Limit:    10,
	})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "projects/search-engine.md", resp.Results[0].Path)
}

func TestEngine_Search_CategoryOnly(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), domain.SearchQuery{
		Category: domain.CategoryAreas,
		Limit:    10,
	})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "areas/health.md", resp.Results[0].Path)
}

func TestEngine_Search_DateRangeFilter(t *testing.T) {
	engine, _ := newTestEngine(t)

	start := time.Now().AddDate(0, 0, -30)
	resp, err := engine.Search(context.Background(), domain.SearchQuery{
		Tags:      []string{"golang"},
		DateRange: domain.DateRange{Start: &start},
		Limit:     10,
	})
	require.NoError(t, err)

	// The 400-day-old golang document falls outside the range.
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "projects/search-engine.md", resp.Results[0].Path)
}

func TestEngine_Search_OperatorOr(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), domain.SearchQuery{
		Tags:     []string{"health"},
		Title:    "golang tips",
		Operator: domain.OperatorOr,
		Limit:    10,
	})
	require.NoError(t, err)

	// OR keeps documents satisfying either criterion.
	assert.Equal(t, 2, resp.TotalCount)
}

func TestEngine_Search_OperatorAndIsStrict(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), domain.SearchQuery{
		Tags:     []string{"health"},
		Title:    "golang tips",
		Operator: domain.OperatorAnd,
		Limit:    10,
	})
	require.NoError(t, err)

	assert.Zero(t, resp.TotalCount)
}

func TestEngine_Search_Pagination(t *testing.T) {
	engine, _ := newTestEngine(t)

	first, err := engine.Search(context.Background(), domain.SearchQuery{
		Text:   "golang",
		Limit:  1,
		Offset: 0,
	})
	require.NoError(t, err)
	second, err := engine.Search(context.Background(), domain.SearchQuery{
		Text:   "golang",
		Limit:  1,
		Offset: 1,
	})
	require.NoError(t, err)

	require.Len(t, first.Results, 1)
	require.Len(t, second.Results, 1)
	assert.NotEqual(t, first.Results[0].Path, second.Results[0].Path)
	assert.Equal(t, first.TotalCount, second.TotalCount)
}

func TestEngine_Search_OffsetPastEnd(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), domain.SearchQuery{
		Text:   "golang",
		Limit:  10,
		Offset: 100,
	})
	require.NoError(t, err)

	assert.Empty(t, resp.Results)
	assert.Greater(t, resp.TotalCount, 0)
}

func TestEngine_Search_Validation(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query domain.SearchQuery
	}{
		{"no criteria", domain.SearchQuery{Limit: 10}},
		{"whitespace text only", domain.SearchQuery{Text: "   ", Limit: 10}},
		{"zero limit", domain.SearchQuery{Text: "golang"}},
		{"negative offset", domain.SearchQuery{Text: "golang", Limit: 5, Offset: -1}},
		{"unknown category", domain.SearchQuery{Category: domain.Category("misc"), Limit: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Search(ctx, tt.query)
			require.Error(t, err)
			assert.True(t, domain.IsQueryError(err, domain.ErrKindValidation))
		})
	}
}

func TestEngine_Search_InvertedDateRange(t *testing.T) {
	engine, _ := newTestEngine(t)

	start := time.Now()
	end := start.AddDate(0, 0, -7)
	_, err := engine.Search(context.Background(), domain.SearchQuery{
		DateRange: domain.DateRange{Start: &start, End: &end},
		Limit:     10,
	})

	require.Error(t, err)
	assert.True(t, domain.IsQueryError(err, domain.ErrKindValidation))
}

func TestEngine_Search_SyntaxErrorPropagates(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Search(context.Background(), domain.SearchQuery{
		Text:  "(unclosed",
		Limit: 10,
	})

	require.Error(t, err)
	assert.True(t, domain.IsQueryError(err, domain.ErrKindSyntax))
}

func TestEngine_Search_Snippets(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), domain.SearchQuery{
		Text:            "fuzzy",
		Limit:           10,
		IncludeSnippets: true,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Results)
	assert.Contains(t, resp.Results[0].Snippet, "**fuzzy**")
}

func TestEngine_Search_Facets(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), domain.SearchQuery{
		Tags:          []string{"golang"},
		Limit:         1, // facets cover all matches, not just the page
		IncludeFacets: []domain.FacetField{domain.FacetCategory},
	})
	require.NoError(t, err)

	require.Len(t, resp.Facets, 1)
	assert.Equal(t, 2, resp.Facets[0].TotalCount)
}

func TestEngine_Search_CancelledContext(t *testing.T) {
	engine, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Search(ctx, domain.SearchQuery{Text: "golang", Limit: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_UpdateDocument_AddsNew(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	store.Put(domain.Document{
		Path:     "projects/new-note.md",
		Title:    "New Note",
		Content:  "golang again",
		Category: domain.CategoryProjects,
	})
	require.NoError(t, engine.UpdateDocument(ctx, "projects/new-note.md"))

	assert.Equal(t, 4, engine.Stats().DocumentCount)
}

func TestEngine_UpdateDocument_RefreshesExisting(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	store.Put(domain.Document{
		Path:     "areas/health.md",
		Title:    "Health Routine v2",
		Content:  "Updated running schedule.",
		Category: domain.CategoryAreas,
	})
	require.NoError(t, engine.UpdateDocument(ctx, "areas/health.md"))

	resp, err := engine.Search(ctx, domain.SearchQuery{Title: "Health Routine v2", Limit: 10})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Health Routine v2", resp.Results[0].Title)
	assert.Equal(t, 3, engine.Stats().DocumentCount)
}

func TestEngine_UpdateDocument_MissingPathRemoves(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	store.Delete("areas/health.md")
	require.NoError(t, engine.UpdateDocument(ctx, "areas/health.md"))

	assert.Equal(t, 2, engine.Stats().DocumentCount)
}

func TestEngine_RemoveDocument(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.RemoveDocument(ctx, "areas/health.md"))
	assert.Equal(t, 2, engine.Stats().DocumentCount)

	// Removing again is a no-op.
	require.NoError(t, engine.RemoveDocument(ctx, "areas/health.md"))
	assert.Equal(t, 2, engine.Stats().DocumentCount)

	resp, err := engine.Search(ctx, domain.SearchQuery{Tags: []string{"health"}, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestEngine_Stats(t *testing.T) {
	engine, _ := newTestEngine(t)

	stats := engine.Stats()
	assert.Equal(t, 3, stats.DocumentCount)
	assert.Equal(t, 1, stats.Categories[domain.CategoryProjects])
	assert.Equal(t, 1, stats.Categories[domain.CategoryAreas])
	assert.Equal(t, 1, stats.Categories[domain.CategoryResources])
}

func TestEngine_Search_IncludesDatelessDocuments(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	// No Created, no Modified: the recency term contributes nothing.
	store.Put(domain.Document{
		Path:     "areas/someday.md",
		Title:    "Someday Maybe",
		Content:  "Ideas parked for later.",
		Category: domain.CategoryAreas,
	})
	require.NoError(t, engine.UpdateDocument(ctx, "areas/someday.md"))

	resp, err := engine.Search(ctx, domain.SearchQuery{
		Category: domain.CategoryAreas,
		Limit:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalCount)
	paths := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		paths = append(paths, r.Path)
	}
	assert.Contains(t, paths, "areas/someday.md")
}

func TestEngine_Search_NegationOnlyQuery(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), domain.SearchQuery{
		Text:  `NOT "fuzzy matching"`,
		Limit: 10,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Results)
	for _, r := range resp.Results {
		assert.NotEqual(t, "projects/search-engine.md", r.Path)
		assert.Greater(t, r.RelevanceScore, 0.0)
	}
}

func TestEngine_ConcurrentSearchAndUpdate(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	const iterations = 200
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			resp, err := engine.Search(ctx, domain.SearchQuery{
				Text:            "golang",
				Limit:           10,
				IncludeSnippets: true,
				IncludeFacets:   domain.AllFacetFields(),
			})
			assert.NoError(t, err)
			assert.NotNil(t, resp)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			store.Put(domain.Document{
				Path:     "resources/golang-tips.md",
				Title:    fmt.Sprintf("Golang Tips v%d", i),
				Content:  "Slices, maps, and goroutine patterns in golang.",
				Tags:     []string{"golang", "reference"},
				Category: domain.CategoryResources,
				Modified: daysAgo(i % 30),
			})
			assert.NoError(t, engine.UpdateDocument(ctx, "resources/golang-tips.md"))
		}
	}()

	wg.Wait()
}

func TestEngine_Initialize_SkipsDuplicatesAndEmptyPaths(t *testing.T) {
	store := memory.NewDocumentStore()
	store.Put(domain.Document{Path: "a.md", Title: "A"})
	store.Put(domain.Document{Path: "", Title: "empty"})

	engine := NewEngine(store, DefaultEngineConfig())
	require.NoError(t, engine.Initialize(context.Background()))

	assert.Equal(t, 1, engine.Stats().DocumentCount)
}
