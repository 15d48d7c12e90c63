package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
)

func newAdvancedScorer() *AdvancedScorer {
	return NewAdvancedScorer(NewFuzzyMatcher(DefaultFuzzyConfig()))
}

func TestAdvancedScorer_MustNotZeroesScore(t *testing.T) {
	s := newAdvancedScorer()

	doc := &domain.Document{
		Title:   "Python Tutorial",
		Content: "Learn Python programming step by step",
	}
	query := domain.ParsedQuery{
		Must:    []domain.Clause{{Value: "Python", Type: domain.ClauseExact}},
		MustNot: []domain.Clause{{Value: "Tutorial", Type: domain.ClauseExact}},
	}

	assert.Equal(t, 0.0, s.CalculateAdvancedScore(doc, query))
}

func TestAdvancedScorer_NegationOnlyQuery(t *testing.T) {
	s := newAdvancedScorer()

	query := domain.ParsedQuery{
		MustNot: []domain.Clause{{Value: "archived", Type: domain.ClauseExact}},
	}

	spared := &domain.Document{Title: "Active Project", Content: "Work in flight"}
	assert.Equal(t, pureNegationScore, s.CalculateAdvancedScore(spared, query))

	excluded := &domain.Document{Title: "Old Plans", Content: "This one is archived"}
	assert.Equal(t, 0.0, s.CalculateAdvancedScore(excluded, query))
}

func TestAdvancedScorer_FailingMustZeroesScore(t *testing.T) {
	s := newAdvancedScorer()

	doc := &domain.Document{
		Title:   "Python Guide",
		Content: "All about Python",
	}
	query := domain.ParsedQuery{
		Must: []domain.Clause{
			{Value: "Python", Type: domain.ClauseExact},
			{Value: "JavaScript", Type: domain.ClauseExact},
		},
	}

	assert.Equal(t, 0.0, s.CalculateAdvancedScore(doc, query))
}

func TestAdvancedScorer_PositiveIffMatching(t *testing.T) {
	s := newAdvancedScorer()

	doc := &domain.Document{Title: "Python Guide", Content: "All about Python"}

	matching := domain.ParsedQuery{
		Must: []domain.Clause{{Value: "Python", Type: domain.ClauseExact}},
	}
	assert.Greater(t, s.CalculateAdvancedScore(doc, matching), 0.0)

	nonMatching := domain.ParsedQuery{
		Must: []domain.Clause{{Value: "Rust", Type: domain.ClauseExact}},
	}
	assert.Equal(t, 0.0, s.CalculateAdvancedScore(doc, nonMatching))
}

func TestAdvancedScorer_ShouldClausesAreOptional(t *testing.T) {
	s := newAdvancedScorer()

	doc := &domain.Document{Title: "Python Guide", Content: "All about Python"}

	query := domain.ParsedQuery{
		Must:   []domain.Clause{{Value: "Python", Type: domain.ClauseExact}},
		Should: []domain.Clause{{Value: "Haskell", Type: domain.ClauseExact}},
	}

	// The failed should clause costs the completeness bonus but does
	// not zero the score.
	score := s.CalculateAdvancedScore(doc, query)
	assert.Greater(t, score, 0.0)

	allMatching := domain.ParsedQuery{
		Must:   []domain.Clause{{Value: "Python", Type: domain.ClauseExact}},
		Should: []domain.Clause{{Value: "Guide", Type: domain.ClauseExact}},
	}
	assert.Greater(t, s.CalculateAdvancedScore(doc, allMatching), score)
}

func TestAdvancedScorer_FieldScopedClause(t *testing.T) {
	s := newAdvancedScorer()

	doc := &domain.Document{
		Title:   "Roadmap",
		Content: "planning the kubernetes migration",
		Tags:    []string{"planning"},
	}

	// Scoped to title: "planning" only appears in content and tags.
	titleOnly := domain.ParsedQuery{
		Must: []domain.Clause{{Field: domain.FieldTitle, Value: "planning", Type: domain.ClauseExact}},
	}
	assert.Equal(t, 0.0, s.CalculateAdvancedScore(doc, titleOnly))

	tagOnly := domain.ParsedQuery{
		Must: []domain.Clause{{Field: domain.FieldTag, Value: "planning", Type: domain.ClauseExact}},
	}
	assert.Greater(t, s.CalculateAdvancedScore(doc, tagOnly), 0.0)
}

func TestAdvancedScorer_FuzzyClause(t *testing.T) {
	s := newAdvancedScorer()

	doc := &domain.Document{Title: "Kubernetes Notes", Content: "cluster setup"}

	query := domain.ParsedQuery{
		Must: []domain.Clause{{Value: "kubernets", Type: domain.ClauseFuzzy}},
	}

	assert.Greater(t, s.CalculateAdvancedScore(doc, query), 0.0)
}

func TestAdvancedScorer_WildcardClause(t *testing.T) {
	s := newAdvancedScorer()

	doc := &domain.Document{Title: "Docker Compose", Content: "container orchestration"}

	matching := domain.ParsedQuery{
		Must: []domain.Clause{{Value: "dock*", Type: domain.ClauseWildcard}},
	}
	assert.Greater(t, s.CalculateAdvancedScore(doc, matching), 0.0)

	nonMatching := domain.ParsedQuery{
		Must: []domain.Clause{{Value: "z?t", Type: domain.ClauseWildcard}},
	}
	assert.Equal(t, 0.0, s.CalculateAdvancedScore(doc, nonMatching))
}

func TestAdvancedScorer_InvalidRegexScoresZero(t *testing.T) {
	s := newAdvancedScorer()

	doc := &domain.Document{Title: "Anything", Content: "anything at all"}

	query := domain.ParsedQuery{
		Must: []domain.Clause{{Value: "[unclosed", Type: domain.ClauseRegex}},
	}

	// A bad pattern fails its clause without panicking or erroring out.
	assert.Equal(t, 0.0, s.CalculateAdvancedScore(doc, query))
}

func TestAdvancedScorer_PhraseEarlyInContentScoresHigher(t *testing.T) {
	s := newAdvancedScorer()

	filler := strings.Repeat("lorem ipsum dolor sit amet ", 40)
	early := &domain.Document{Content: "sprint planning " + filler}
	late := &domain.Document{Content: filler + " sprint planning"}

	query := domain.ParsedQuery{
		Must: []domain.Clause{{Field: domain.FieldContent, Value: "sprint planning", Type: domain.ClausePhrase}},
	}

	assert.Greater(t, s.CalculateAdvancedScore(early, query), s.CalculateAdvancedScore(late, query))
}

func TestAdvancedScorer_DocumentSimilarity_Identical(t *testing.T) {
	s := newAdvancedScorer()

	doc := &domain.Document{
		Title:   "Weekly Review",
		Tags:    []string{"review", "weekly"},
		Content: "Reflections about progress this week",
	}

	assert.InDelta(t, 1.0, s.CalculateDocumentSimilarity(doc, doc), 1e-9)
}

func TestAdvancedScorer_DocumentSimilarity_Disjoint(t *testing.T) {
	s := newAdvancedScorer()

	a := &domain.Document{Title: "Gardening", Tags: []string{"hobby"}, Content: "roses need pruning"}
	b := &domain.Document{Title: "Kubernetes", Tags: []string{"infra"}, Content: "cluster autoscaling works"}

	assert.Less(t, s.CalculateDocumentSimilarity(a, b), 0.3)
}

func TestAdvancedScorer_DocumentSimilarity_SharedTags(t *testing.T) {
	s := newAdvancedScorer()

	a := &domain.Document{Title: "Post Mortem March", Tags: []string{"incident", "ops"}}
	b := &domain.Document{Title: "Post Mortem April", Tags: []string{"incident", "ops"}}

	assert.Greater(t, s.CalculateDocumentSimilarity(a, b), 0.5)
}

func TestGenerateSnippet_EmptyContent(t *testing.T) {
	s := newAdvancedScorer()

	assert.Equal(t, "", s.GenerateSnippet("", "term", 150, 10))
}

func TestGenerateSnippet_ShortContentReturnedWhole(t *testing.T) {
	s := newAdvancedScorer()

	content := "A short note."
	assert.Equal(t, content, s.GenerateSnippet(content, "missing", 150, 10))
}

func TestGenerateSnippet_HighlightsMatch(t *testing.T) {
	s := newAdvancedScorer()

	content := "The sprint planning session covered the roadmap."
	snippet := s.GenerateSnippet(content, "planning", 150, 10)

	assert.Contains(t, snippet, "**planning**")
}

func TestGenerateSnippet_PreservesOriginalCase(t *testing.T) {
	s := newAdvancedScorer()

	content := "Meeting with the Planning committee."
	snippet := s.GenerateSnippet(content, "planning", 150, 10)

	// Match is located case-insensitively but rendered as written.
	assert.Contains(t, snippet, "**Planning**")
}

func TestGenerateSnippet_EllipsesOnTruncatedEdges(t *testing.T) {
	s := newAdvancedScorer()

	filler := strings.Repeat("word ", 60)
	content := filler + "needle" + " " + filler
	snippet := s.GenerateSnippet(content, "needle", 80, 10)

	assert.True(t, strings.HasPrefix(snippet, "..."))
	assert.True(t, strings.HasSuffix(snippet, "..."))
	assert.Contains(t, snippet, "**needle**")
	assert.LessOrEqual(t, len(snippet), 80+len("**")*2+len("...")*2+20)
}

func TestGenerateSnippet_NoTermTruncatesStart(t *testing.T) {
	s := newAdvancedScorer()

	content := strings.Repeat("alpha beta gamma ", 30)
	snippet := s.GenerateSnippet(content, "missing", 50, 10)

	assert.True(t, strings.HasSuffix(snippet, "..."))
	assert.LessOrEqual(t, len(snippet), 53)
}

func TestGenerateSnippet_SnapsToWordBoundaries(t *testing.T) {
	s := newAdvancedScorer()

	content := "supercalifragilistic expialidocious needle somewhere around here padding padding padding"
	snippet := s.GenerateSnippet(content, "needle", 40, 12)

	trimmed := strings.TrimSuffix(strings.TrimPrefix(snippet, "..."), "...")
	require.NotEmpty(t, trimmed)

	// Every fragment in the window is a whole word from the source.
	for _, word := range strings.Fields(strings.ReplaceAll(trimmed, "**", "")) {
		assert.Contains(t, content, word)
	}
}
