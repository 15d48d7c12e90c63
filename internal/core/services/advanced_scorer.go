package services

import (
	"regexp"
	"strings"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
	"github.com/mikeyobrien/forge-search/internal/logger"
)

// Per-clause contribution weights. A should clause is worth half of
// an equivalent must clause; matching every supplied clause earns the
// completeness bonus. The grand total is clamped to 100.
const (
	mustClauseWeight   = 25.0
	shouldClauseWeight = 12.5
	allMatchedBonus    = 10.0

	// pureNegationScore is the flat score for documents a
	// negation-only query spares. With no positive clauses there is
	// nothing to rank by.
	pureNegationScore = 25.0
)

// Field boosts applied when a clause has no field restriction: an
// identical literal match counts more in the title than in content,
// and more in content than in a tag.
const (
	titleBoost   = 1.0
	contentBoost = 0.75
	tagBoost     = 0.6
)

// AdvancedScorer scores documents against parsed boolean queries with
// per-clause type semantics, and derives snippets and inter-document
// similarity.
type AdvancedScorer struct {
	fuzzy *FuzzyMatcher
}

// NewAdvancedScorer creates a scorer backed by the given fuzzy matcher.
func NewAdvancedScorer(fuzzy *FuzzyMatcher) *AdvancedScorer {
	return &AdvancedScorer{fuzzy: fuzzy}
}

// CalculateAdvancedScore returns a relevance score in [0,100].
//
// Rule order: any matching mustNot clause zeroes the score; any
// failing must clause zeroes the score; otherwise matching must and
// should clauses contribute their weighted strengths, a bonus applies
// when every supplied clause matched, and the total is clamped. A
// negation-only query gives every surviving document a flat base
// score, since there is no positive clause to rank by.
func (s *AdvancedScorer) CalculateAdvancedScore(doc *domain.Document, query domain.ParsedQuery) float64 {
	for _, clause := range query.MustNot {
		if matched, _ := s.matchClause(doc, clause); matched {
			return 0
		}
	}

	// A negation-only query matches every document its mustNot
	// clauses spare.
	if len(query.Must)+len(query.Should) == 0 {
		return pureNegationScore
	}

	score := 0.0
	allMatched := true

	for _, clause := range query.Must {
		matched, strength := s.matchClause(doc, clause)
		if !matched {
			return 0
		}
		score += mustClauseWeight * strength
	}

	for _, clause := range query.Should {
		matched, strength := s.matchClause(doc, clause)
		if !matched {
			allMatched = false
			continue
		}
		score += shouldClauseWeight * strength
	}

	if allMatched && len(query.Must)+len(query.Should) > 0 {
		score += allMatchedBonus
	}

	if score > 100 {
		score = 100
	}
	return score
}

// matchClause evaluates one clause against the document. The strength
// is in [0, ~1.25]: phrase matches near the start of content and
// exact title equality earn a little extra before the final clamp.
func (s *AdvancedScorer) matchClause(doc *domain.Document, clause domain.Clause) (bool, float64) {
	switch clause.Field {
	case domain.FieldTitle:
		return s.matchInTitle(doc, clause)
	case domain.FieldContent:
		return s.matchInContent(doc, clause)
	case domain.FieldTag, domain.FieldTags:
		return s.matchInTags(doc, clause)
	default:
		// Unrestricted: search every attribute, keep the best result.
		best := 0.0
		matched := false
		if ok, strength := s.matchInTitle(doc, clause); ok {
			matched = true
			if v := strength * titleBoost; v > best {
				best = v
			}
		}
		if ok, strength := s.matchInContent(doc, clause); ok {
			matched = true
			if v := strength * contentBoost; v > best {
				best = v
			}
		}
		if ok, strength := s.matchInTags(doc, clause); ok {
			matched = true
			if v := strength * tagBoost; v > best {
				best = v
			}
		}
		return matched, best
	}
}

// matchInTitle matches a clause against the document title.
func (s *AdvancedScorer) matchInTitle(doc *domain.Document, clause domain.Clause) (bool, float64) {
	title := doc.Title
	titleLower := strings.ToLower(title)
	value := strings.ToLower(clause.Value)

	switch clause.Type {
	case domain.ClauseExact, domain.ClausePhrase:
		if titleLower == value {
			return true, 1.1
		}
		if strings.Contains(titleLower, value) {
			return true, 1.0
		}
		return false, 0

	case domain.ClauseFuzzy:
		tolerance := clause.Tolerance()
		if s.fuzzy.Matches(clause.Value, title, tolerance) {
			return true, s.fuzzy.CalculateSimilarity(clause.Value, title)
		}
		best := 0.0
		for _, word := range strings.Fields(title) {
			if s.fuzzy.Matches(clause.Value, word, tolerance) {
				if sim := s.fuzzy.CalculateSimilarity(clause.Value, word); sim > best {
					best = sim
				}
			}
		}
		return best > 0, best

	case domain.ClauseWildcard:
		re, err := compileWildcard(clause.Value)
		if err != nil {
			return false, 0
		}
		if re.MatchString(titleLower) {
			return true, 1.0
		}
		for _, word := range strings.Fields(titleLower) {
			if re.MatchString(word) {
				return true, 0.9
			}
		}
		return false, 0

	case domain.ClauseRegex:
		re, err := compileUserRegex(clause.Value)
		if err != nil {
			return false, 0
		}
		return re.MatchString(title), 1.0

	default:
		return false, 0
	}
}

// matchInContent matches a clause against the document content.
func (s *AdvancedScorer) matchInContent(doc *domain.Document, clause domain.Clause) (bool, float64) {
	content := doc.Content
	contentLower := strings.ToLower(content)
	value := strings.ToLower(clause.Value)

	switch clause.Type {
	case domain.ClauseExact:
		return strings.Contains(contentLower, value), 1.0

	case domain.ClausePhrase:
		idx := strings.Index(contentLower, value)
		if idx < 0 {
			return false, 0
		}
		// A phrase in the opening of a note is a stronger signal.
		if idx < 100 || idx*10 < len(contentLower) {
			return true, 1.25
		}
		return true, 1.0

	case domain.ClauseFuzzy:
		tolerance := clause.Tolerance()
		best := 0.0
		for _, word := range strings.Fields(content) {
			if s.fuzzy.Matches(clause.Value, word, tolerance) {
				if sim := s.fuzzy.CalculateSimilarity(clause.Value, word); sim > best {
					best = sim
				}
			}
		}
		return best > 0, best

	case domain.ClauseWildcard:
		re, err := compileWildcard(clause.Value)
		if err != nil {
			return false, 0
		}
		for _, word := range strings.Fields(contentLower) {
			if re.MatchString(word) {
				return true, 1.0
			}
		}
		return false, 0

	case domain.ClauseRegex:
		re, err := compileUserRegex(clause.Value)
		if err != nil {
			return false, 0
		}
		return re.MatchString(content), 1.0

	default:
		return false, 0
	}
}

// matchInTags matches a clause against the document tags.
func (s *AdvancedScorer) matchInTags(doc *domain.Document, clause domain.Clause) (bool, float64) {
	value := strings.ToLower(clause.Value)

	switch clause.Type {
	case domain.ClauseExact, domain.ClausePhrase:
		for _, tag := range doc.Tags {
			if strings.ToLower(tag) == value {
				return true, 1.0
			}
		}
		return false, 0

	case domain.ClauseFuzzy:
		tolerance := clause.Tolerance()
		best := 0.0
		for _, tag := range doc.Tags {
			if s.fuzzy.Matches(clause.Value, tag, tolerance) {
				if sim := s.fuzzy.CalculateSimilarity(clause.Value, tag); sim > best {
					best = sim
				}
			}
		}
		return best > 0, best

	case domain.ClauseWildcard:
		re, err := compileWildcard(clause.Value)
		if err != nil {
			return false, 0
		}
		for _, tag := range doc.Tags {
			if re.MatchString(strings.ToLower(tag)) {
				return true, 1.0
			}
		}
		return false, 0

	case domain.ClauseRegex:
		re, err := compileUserRegex(clause.Value)
		if err != nil {
			return false, 0
		}
		for _, tag := range doc.Tags {
			if re.MatchString(tag) {
				return true, 1.0
			}
		}
		return false, 0

	default:
		return false, 0
	}
}

// compileWildcard translates a glob pattern into an anchored,
// case-insensitive regular expression: * matches any run, ? any
// single character, everything else is literal.
func compileWildcard(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

// compileUserRegex compiles a user-supplied pattern case-insensitively.
// A pattern that fails to compile is logged and the clause scores 0;
// one bad clause never aborts a whole query.
func compileUserRegex(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		logger.Warn("Invalid regex clause %q: %v", pattern, err)
		return nil, err
	}
	return re, nil
}

// Blend weights for document-to-document similarity.
const (
	docSimTitleWeight   = 0.4
	docSimTagWeight     = 0.3
	docSimKeywordWeight = 0.3
)

// CalculateDocumentSimilarity returns a [0,1] similarity between two
// documents: a weighted blend of fuzzy title similarity, tag-set
// overlap, and shared content keywords. Identical documents score
// 1.0; documents sharing nothing score near 0.
func (s *AdvancedScorer) CalculateDocumentSimilarity(a, b *domain.Document) float64 {
	titleSim := s.fuzzy.CalculateSimilarity(a.Title, b.Title)
	tagSim := jaccard(lowerSet(a.Tags), lowerSet(b.Tags))
	keywordSim := jaccard(contentKeywords(a.Content), contentKeywords(b.Content))

	sim := docSimTitleWeight*titleSim + docSimTagWeight*tagSim + docSimKeywordWeight*keywordSim
	if sim > 1 {
		sim = 1
	}
	return sim
}

// jaccard is set intersection over union. Two empty sets count as
// identical so that identical documents without tags still score 1.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// lowerSet builds a lowercase membership set.
func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}

// minKeywordLength filters trivial words out of keyword extraction.
const minKeywordLength = 4

// contentKeywords extracts the distinct significant words of a text.
func contentKeywords(content string) map[string]bool {
	keywords := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(content)) {
		word = strings.Trim(word, ".,;:!?\"'()[]{}")
		if len(word) >= minKeywordLength {
			keywords[word] = true
		}
	}
	return keywords
}

// GenerateSnippet extracts an excerpt of content around the first
// case-insensitive occurrence of term, bold-highlighting the match
// and keeping it roughly centred within maxLen characters. Truncated
// edges get "..." ellipses; context is the radius, in characters,
// within which the window edges snap to word boundaries. When the
// term does not occur the snippet is the start of the content, and
// empty content yields an empty snippet.
func (s *AdvancedScorer) GenerateSnippet(content, term string, maxLen, context int) string {
	if content == "" {
		return ""
	}
	if maxLen <= 0 {
		maxLen = 150
	}

	idx := -1
	if term != "" {
		idx = strings.Index(strings.ToLower(content), strings.ToLower(term))
	}

	if idx < 0 {
		if len(content) <= maxLen {
			return content
		}
		cut := snapToWordStart(content, maxLen, context)
		return strings.TrimSpace(content[:cut]) + "..."
	}

	matched := content[idx : idx+len(term)]
	highlighted := "**" + matched + "**"

	// Centre the match within the window.
	pad := (maxLen - len(term)) / 2
	if pad < 0 {
		pad = 0
	}
	start := idx - pad
	if start < 0 {
		start = 0
	}
	end := idx + len(term) + pad
	if end > len(content) {
		end = len(content)
	}

	if start > 0 {
		start = snapToWordStart(content, start, context)
	}
	if end < len(content) {
		end = snapToWordEnd(content, end, context)
	}

	snippet := content[start:idx] + highlighted + content[idx+len(term):end]
	snippet = strings.TrimSpace(snippet)

	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet += "..."
	}
	return snippet
}

// snapToWordStart pulls pos back to the nearest word boundary within
// radius so a window does not begin mid-word.
func snapToWordStart(content string, pos, radius int) int {
	if pos <= 0 || pos >= len(content) {
		return pos
	}
	for i := pos; i > pos-radius && i > 0; i-- {
		if content[i-1] == ' ' || content[i-1] == '\n' {
			return i
		}
	}
	return pos
}

// snapToWordEnd pushes pos forward to the next word boundary within
// radius so a window does not end mid-word.
func snapToWordEnd(content string, pos, radius int) int {
	if pos <= 0 || pos >= len(content) {
		return pos
	}
	for i := pos; i < pos+radius && i < len(content); i++ {
		if content[i] == ' ' || content[i] == '\n' {
			return i
		}
	}
	return pos
}
