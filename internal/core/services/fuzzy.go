package services

import (
	"sort"
	"strings"
)

// FuzzyConfig tunes the fuzzy matcher. All knobs are explicit; there
// is no hidden global configuration.
type FuzzyConfig struct {
	// MaxEditDistance prunes candidates whose length differs from the
	// query by more than this many characters before the DP runs.
	MaxEditDistance int

	// IncludeTranspositions enables Damerau-style adjacent
	// transpositions as a single edit.
	IncludeTranspositions bool

	// MinSimilarity is the default acceptance threshold in [0,1].
	MinSimilarity float64

	// PrefixWeight (>= 1) scales similarity when one string is a
	// prefix of the other. The boosted value never exceeds 1.0.
	PrefixWeight float64
}

// DefaultFuzzyConfig returns the tuning used across the engine.
func DefaultFuzzyConfig() FuzzyConfig {
	return FuzzyConfig{
		MaxEditDistance:       3,
		IncludeTranspositions: true,
		MinSimilarity:         0.6,
		PrefixWeight:          1.2,
	}
}

// FuzzyMatcher computes normalized string similarity using
// Damerau-Levenshtein edit distance.
type FuzzyMatcher struct {
	cfg FuzzyConfig
}

// NewFuzzyMatcher creates a matcher with the given configuration.
// Zero-value fields fall back to defaults.
func NewFuzzyMatcher(cfg FuzzyConfig) *FuzzyMatcher {
	def := DefaultFuzzyConfig()
	if cfg.MaxEditDistance <= 0 {
		cfg.MaxEditDistance = def.MaxEditDistance
	}
	if cfg.MinSimilarity <= 0 {
		cfg.MinSimilarity = def.MinSimilarity
	}
	if cfg.PrefixWeight < 1 {
		cfg.PrefixWeight = def.PrefixWeight
	}
	return &FuzzyMatcher{cfg: cfg}
}

// Config returns the matcher's configuration.
func (m *FuzzyMatcher) Config() FuzzyConfig {
	return m.cfg
}

// CalculateSimilarity returns a [0,1] similarity between two strings.
// Comparison is case-insensitive and ignores surrounding whitespace.
// Identical strings score 1.0, and an empty string scores 0.0 against
// anything. Otherwise the score is 1 - editDistance/maxLen, boosted
// when one string is a prefix of the other.
func (m *FuzzyMatcher) CalculateSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		if a == "" {
			return 0.0
		}
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	ra := []rune(a)
	rb := []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}

	dist := m.editDistance(ra, rb)
	sim := 1.0 - float64(dist)/float64(maxLen)
	if sim < 0 {
		sim = 0
	}

	if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
		sim *= m.cfg.PrefixWeight
		if sim > 1.0 {
			sim = 1.0
		}
	}

	return sim
}

// editDistance computes the Damerau-Levenshtein distance between two
// rune slices using a rolling three-row DP, O(len(a)*len(b)) time and
// O(len(b)) space. Adjacent transpositions count as one edit when
// enabled in the configuration.
func (m *FuzzyMatcher) editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// prev2 is row i-2 (for transpositions), prev is row i-1,
	// curr is the row being filled.
	prev2 := make([]int, len(b)+1)
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}

			if m.cfg.IncludeTranspositions && i > 1 && j > 1 &&
				a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				if t := prev2[j-2] + 1; t < best {
					best = t
				}
			}

			curr[j] = best
		}
		prev2, prev, curr = prev, curr, prev2
	}

	return prev[len(b)]
}

// Matches reports whether two strings are similar enough for the
// given tolerance: similarity >= 1 - tolerance. A non-positive
// tolerance falls back to the configured default (1 - MinSimilarity).
func (m *FuzzyMatcher) Matches(a, b string, tolerance float64) bool {
	if tolerance <= 0 {
		tolerance = 1 - m.cfg.MinSimilarity
	}
	return m.CalculateSimilarity(a, b) >= 1-tolerance
}

// Match pairs a candidate with its similarity to the query.
type Match struct {
	Value      string
	Similarity float64
}

// FindBestMatches ranks candidates by similarity to the query.
// Results are sorted non-increasing, filtered by minSimilarity
// (non-positive falls back to the configured default), and capped at
// maxResults (non-positive means unlimited).
func (m *FuzzyMatcher) FindBestMatches(query string, candidates []string, maxResults int, minSimilarity float64) []Match {
	if minSimilarity <= 0 {
		minSimilarity = m.cfg.MinSimilarity
	}

	queryLen := len([]rune(strings.TrimSpace(query)))

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		// Length pre-filter: a candidate further than MaxEditDistance
		// in length can still clear a generous threshold via the
		// prefix boost, so only prune when no prefix relation holds.
		candLen := len([]rune(strings.TrimSpace(c)))
		diff := candLen - queryLen
		if diff < 0 {
			diff = -diff
		}
		if diff > m.cfg.MaxEditDistance && !hasPrefixFold(query, c) {
			continue
		}

		sim := m.CalculateSimilarity(query, c)
		if sim >= minSimilarity {
			matches = append(matches, Match{Value: c, Similarity: sim})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}

// MatchTokens reports whether every query token fuzzy-matches some
// target token. An empty query token set trivially matches; an empty
// target set never matches a non-empty query.
func (m *FuzzyMatcher) MatchTokens(queryTokens, targetTokens []string, tolerance float64) bool {
	if len(queryTokens) == 0 {
		return true
	}
	if len(targetTokens) == 0 {
		return false
	}

	for _, qt := range queryTokens {
		found := false
		for _, tt := range targetTokens {
			if m.Matches(qt, tt, tolerance) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// CalculateTokenSimilarity tokenizes both strings on whitespace and
// averages the best per-token similarity of the first string's tokens
// against the second's. Tokens below the configured MinSimilarity do
// not count; when none clears it the result is 0.
func (m *FuzzyMatcher) CalculateTokenSimilarity(a, b string) float64 {
	aTokens := strings.Fields(strings.ToLower(a))
	bTokens := strings.Fields(strings.ToLower(b))
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0.0
	}

	total := 0.0
	matched := 0
	for _, at := range aTokens {
		best := 0.0
		for _, bt := range bTokens {
			if sim := m.CalculateSimilarity(at, bt); sim > best {
				best = sim
			}
		}
		if best >= m.cfg.MinSimilarity {
			total += best
			matched++
		}
	}

	if matched == 0 {
		return 0.0
	}
	return total / float64(len(aTokens))
}

// GenerateAlternatives returns a deterministic, ordered list of
// spelling alternatives for a word: every single-character deletion
// first, then every adjacent-pair transposition, deduplicated and
// capped at max (non-positive means unlimited).
func (m *FuzzyMatcher) GenerateAlternatives(word string, max int) []string {
	runes := []rune(strings.ToLower(strings.TrimSpace(word)))
	if len(runes) < 2 {
		return nil
	}

	seen := make(map[string]bool, 2*len(runes))
	alternatives := make([]string, 0, 2*len(runes))

	add := func(alt string) bool {
		if alt == string(runes) || seen[alt] {
			return true
		}
		seen[alt] = true
		alternatives = append(alternatives, alt)
		return max <= 0 || len(alternatives) < max
	}

	// Single-character deletions.
	for i := range runes {
		alt := make([]rune, 0, len(runes)-1)
		alt = append(alt, runes[:i]...)
		alt = append(alt, runes[i+1:]...)
		if !add(string(alt)) {
			return alternatives
		}
	}

	// Adjacent-pair transpositions.
	for i := 0; i < len(runes)-1; i++ {
		alt := make([]rune, len(runes))
		copy(alt, runes)
		alt[i], alt[i+1] = alt[i+1], alt[i]
		if !add(string(alt)) {
			return alternatives
		}
	}

	return alternatives
}

// hasPrefixFold reports whether either trimmed, lowercased string is
// a prefix of the other.
func hasPrefixFold(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}
