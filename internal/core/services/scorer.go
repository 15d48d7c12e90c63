package services

import (
	"math"
	"strings"
	"time"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
)

// ScoreWeights configures the simple relevance scorer. All weights
// are explicit; pass DefaultScoreWeights() for the standard tuning.
type ScoreWeights struct {
	// ExactTagMatch is added per query tag equal to a document tag.
	ExactTagMatch float64

	// PartialTagMatch is added per query tag that is a substring of a
	// document tag, or vice versa.
	PartialTagMatch float64

	// TitleMatch scales title scoring: doubled for full equality,
	// taken whole for containment, fractional for word overlap.
	TitleMatch float64

	// ContentMatch is added per occurrence of the query in content.
	ContentMatch float64

	// MaxContentScore caps the total content contribution.
	MaxContentScore float64

	// RecencyBoost is the maximum bonus for a just-modified document.
	RecencyBoost float64
}

// DefaultScoreWeights returns the standard scoring weights.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		ExactTagMatch:   30,
		PartialTagMatch: 15,
		TitleMatch:      25,
		ContentMatch:    10,
		MaxContentScore: 50,
		RecencyBoost:    1,
	}
}

// recencyHalfScale controls the recency decay rate in days. With
// exp(-age/120) the boost is full at day 0, about 22% at 180 days,
// and under 5% by one year.
const recencyHalfScale = 120.0

// RelevanceScorer scores documents against structured queries with an
// additive weighted model.
type RelevanceScorer struct {
	weights ScoreWeights
}

// NewRelevanceScorer creates a scorer with the given weights.
func NewRelevanceScorer(weights ScoreWeights) *RelevanceScorer {
	return &RelevanceScorer{weights: weights}
}

// CalculateScore returns a relevance score in [0,100] for the
// document against the structured query criteria.
func (s *RelevanceScorer) CalculateScore(doc *domain.Document, query domain.SearchQuery) float64 {
	score := 0.0

	if len(query.Tags) > 0 {
		score += s.scoreTags(doc.Tags, query.Tags)
	}
	if query.Title != "" {
		score += s.scoreTitle(doc.Title, query.Title)
	}
	if query.Content != "" {
		score += s.scoreContent(doc.Content, query.Content)
	}
	score += s.scoreRecency(doc.Modified, time.Now())

	if score > 100 {
		score = 100
	}
	return score
}

// scoreTags awards ExactTagMatch per case-insensitive tag equality
// and PartialTagMatch per substring containment in either direction.
func (s *RelevanceScorer) scoreTags(docTags, queryTags []string) float64 {
	score := 0.0
	for _, qt := range queryTags {
		qtLower := strings.ToLower(qt)
		for _, dt := range docTags {
			dtLower := strings.ToLower(dt)
			if qtLower == dtLower {
				score += s.weights.ExactTagMatch
				break
			}
			if strings.Contains(dtLower, qtLower) || strings.Contains(qtLower, dtLower) {
				score += s.weights.PartialTagMatch
				break
			}
		}
	}
	return score
}

// scoreTitle awards TitleMatch*2 for full case-insensitive equality,
// TitleMatch for containment, and otherwise the query-word overlap
// ratio scaled by TitleMatch.
func (s *RelevanceScorer) scoreTitle(title, query string) float64 {
	titleLower := strings.ToLower(title)
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return 0
	}

	if titleLower == queryLower {
		return s.weights.TitleMatch * 2
	}
	if strings.Contains(titleLower, queryLower) {
		return s.weights.TitleMatch
	}

	queryWords := strings.Fields(queryLower)
	if len(queryWords) == 0 {
		return 0
	}
	titleWords := make(map[string]bool)
	for _, w := range strings.Fields(titleLower) {
		titleWords[w] = true
	}

	overlap := 0
	for _, w := range queryWords {
		if titleWords[w] {
			overlap++
		}
	}
	return float64(overlap) / float64(len(queryWords)) * s.weights.TitleMatch
}

// scoreContent counts case-insensitive occurrences of the query
// phrase; when the phrase is absent it falls back to summing the
// occurrences of its individual words. The total is scaled by
// ContentMatch and capped at MaxContentScore.
func (s *RelevanceScorer) scoreContent(content, query string) float64 {
	contentLower := strings.ToLower(content)
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if contentLower == "" || queryLower == "" {
		return 0
	}

	occurrences := strings.Count(contentLower, queryLower)
	if occurrences == 0 {
		for _, word := range strings.Fields(queryLower) {
			occurrences += strings.Count(contentLower, word)
		}
	}

	score := float64(occurrences) * s.weights.ContentMatch
	if score > s.weights.MaxContentScore {
		score = s.weights.MaxContentScore
	}
	return score
}

// scoreRecency decays RecencyBoost exponentially with document age:
// full at day 0, partial near 180 days, effectively gone by a year.
func (s *RelevanceScorer) scoreRecency(modified *time.Time, now time.Time) float64 {
	if modified == nil || s.weights.RecencyBoost == 0 {
		return 0
	}

	ageDays := now.Sub(*modified).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return s.weights.RecencyBoost * math.Exp(-ageDays/recencyHalfScale)
}
