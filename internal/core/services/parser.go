package services

import (
	"strings"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
)

// QueryParser turns raw boolean query text into a domain.ParsedQuery
// and renders a ParsedQuery back into query text.
//
// Grammar, informally:
//
//	query   = term*                       (juxtaposition is implicit AND)
//	term    = [NOT | -] atom | atom OR atom ...
//	atom    = word | "phrase" | field:value | field:"phrase" | ( query )
//
// AND, OR, and NOT are recognised only in uppercase; lowercase forms
// are ordinary search terms. A leading dash negates the next atom.
// Recognised fields are title, content, tags, and tag; an unknown
// prefix, or a value with additional colons, keeps the whole token as
// a literal term (time:3:30pm searches for the literal text).
type QueryParser struct{}

// NewQueryParser creates a query parser.
func NewQueryParser() *QueryParser {
	return &QueryParser{}
}

// token kinds produced by the lexer.
type tokenKind int

const (
	tokenTerm tokenKind = iota
	tokenLParen
	tokenRParen
)

// token is one lexed unit of query text.
type token struct {
	kind tokenKind

	// text is the term text. For quoted tokens it is the unescaped
	// phrase content; for field-quoted tokens the phrase content only.
	text string

	// quoted is true when the token came from a double-quoted phrase.
	quoted bool

	// fieldRaw is the raw prefix before a field-quoted phrase, e.g.
	// `title` in title:"hello world". Empty otherwise.
	fieldRaw string
}

// Parse converts query text into a structured query. Empty or
// whitespace-only input yields an empty ParsedQuery; rejecting empty
// queries is the search validation layer's job, not the parser's.
// An unmatched opening parenthesis is a syntax error; a stray closing
// parenthesis is ignored.
func (p *QueryParser) Parse(text string) (domain.ParsedQuery, error) {
	tokens := lex(text)

	query, pos, err := p.parseGroup(tokens, 0, false)
	if err != nil {
		return domain.ParsedQuery{}, err
	}
	// Stray closing parens at the top level were consumed by
	// parseGroup; pos is always len(tokens) here.
	_ = pos

	// A bare top-level OR query ("a OR b") would otherwise match
	// nothing by requirement. Promote the first disjunct into must so
	// the query still requires at least one match. Nested groups keep
	// plain should semantics.
	if len(query.Must) == 0 && len(query.Should) > 0 {
		query.Must = append(query.Must, query.Should[0])
	}

	return query, nil
}

// parseGroup parses tokens[pos:] until the end of input, or until the
// matching closing parenthesis when inGroup is set.
func (p *QueryParser) parseGroup(tokens []token, pos int, inGroup bool) (domain.ParsedQuery, int, error) {
	var query domain.ParsedQuery

	// pendingOr routes the next clause into should; pendingNot into
	// mustNot. They are mutually exclusive and consumed by the next
	// atom.
	pendingOr := false
	pendingNot := false

	for pos < len(tokens) {
		tok := tokens[pos]

		switch tok.kind {
		case tokenLParen:
			sub, next, err := p.parseGroup(tokens, pos+1, true)
			if err != nil {
				return domain.ParsedQuery{}, 0, err
			}
			pos = next
			if pendingNot {
				query.MustNot = append(query.MustNot, sub.Must...)
				query.MustNot = append(query.MustNot, sub.Should...)
				pendingNot = false
			} else {
				query.Must = append(query.Must, sub.Must...)
				query.Should = append(query.Should, sub.Should...)
				query.MustNot = append(query.MustNot, sub.MustNot...)
			}
			pendingOr = false

		case tokenRParen:
			if inGroup {
				return query, pos + 1, nil
			}
			// Stray closing parenthesis: tolerated, skipped.
			pos++

		case tokenTerm:
			if !tok.quoted && tok.fieldRaw == "" {
				switch tok.text {
				case "AND":
					// Juxtaposition already means AND.
					pos++
					continue
				case "OR":
					// Move the previous clause from must to should and
					// route the next one there too.
					if n := len(query.Must); n > 0 {
						query.Should = append(query.Should, query.Must[n-1])
						query.Must = query.Must[:n-1]
					}
					pendingOr = true
					pos++
					continue
				case "NOT":
					pendingNot = true
					pos++
					continue
				}
			}

			clause, negated, ok := p.buildClause(tok)
			pos++
			if !ok {
				continue
			}

			switch {
			case pendingNot || negated:
				query.MustNot = append(query.MustNot, clause)
			case pendingOr:
				query.Should = append(query.Should, clause)
			default:
				query.Must = append(query.Must, clause)
			}
			pendingOr = false
			pendingNot = false
		}
	}

	if inGroup {
		return domain.ParsedQuery{}, 0, domain.NewSyntaxError("Expected closing parenthesis")
	}
	return query, pos, nil
}

// buildClause turns a term token into a clause. The negated return is
// true for dash-prefixed terms. ok is false for tokens that reduce to
// nothing (a lone dash).
func (p *QueryParser) buildClause(tok token) (clause domain.Clause, negated, ok bool) {
	if tok.quoted {
		clause = domain.Clause{Value: tok.text, Type: domain.ClausePhrase}
		if tok.fieldRaw != "" {
			if field, known := domain.ParseClauseField(tok.fieldRaw); known {
				clause.Field = field
			} else {
				// Unknown prefix keeps the token literal.
				clause.Value = tok.fieldRaw + ":" + tok.text
			}
		}
		return clause, false, true
	}

	text := tok.text
	if strings.HasPrefix(text, "-") {
		negated = true
		text = text[1:]
	}
	if text == "" {
		return domain.Clause{}, false, false
	}

	field := domain.FieldAny
	value := text
	if idx := strings.Index(text, ":"); idx > 0 {
		prefix, rest := text[:idx], text[idx+1:]
		parsed, known := domain.ParseClauseField(prefix)
		// A value with additional colons stays a literal whole token:
		// time:3:30pm searches for exactly that text.
		if known && rest != "" && !strings.Contains(rest, ":") {
			field = parsed
			value = rest
		}
	}

	clauseType := domain.ClauseFuzzy
	if strings.ContainsAny(value, "*?") {
		clauseType = domain.ClauseWildcard
	}

	return domain.Clause{Field: field, Value: value, Type: clauseType}, negated, true
}

// lex splits query text into parentheses, words, and quoted phrases.
// Inside quotes, \" unescapes to a literal double quote. A quote
// immediately after a trailing colon glues the phrase to its field
// prefix (title:"hello world" is one token).
func lex(text string) []token {
	var tokens []token
	runes := []rune(text)
	i := 0

	readPhrase := func() string {
		// Caller consumed the opening quote.
		var sb strings.Builder
		for i < len(runes) {
			r := runes[i]
			if r == '\\' && i+1 < len(runes) && runes[i+1] == '"' {
				sb.WriteRune('"')
				i += 2
				continue
			}
			if r == '"' {
				i++
				break
			}
			sb.WriteRune(r)
			i++
		}
		return sb.String()
	}

	for i < len(runes) {
		r := runes[i]

		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++

		case r == '(':
			tokens = append(tokens, token{kind: tokenLParen})
			i++

		case r == ')':
			tokens = append(tokens, token{kind: tokenRParen})
			i++

		case r == '"':
			i++
			tokens = append(tokens, token{kind: tokenTerm, text: readPhrase(), quoted: true})

		default:
			var sb strings.Builder
			fieldRaw := ""
			quoted := false
			for i < len(runes) {
				r = runes[i]
				if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '(' || r == ')' {
					break
				}
				if r == '"' && strings.HasSuffix(sb.String(), ":") {
					// field:"quoted phrase"
					fieldRaw = strings.TrimSuffix(sb.String(), ":")
					i++
					sb.Reset()
					sb.WriteString(readPhrase())
					quoted = true
					break
				}
				sb.WriteRune(r)
				i++
			}
			tokens = append(tokens, token{kind: tokenTerm, text: sb.String(), quoted: quoted, fieldRaw: fieldRaw})
		}
	}

	return tokens
}

// Normalize renders a ParsedQuery back into query text: must clauses
// joined by AND, should clauses by OR, must-not clauses prefixed NOT.
// Must clauses that also appear in should are skipped so that a
// promoted OR disjunct is not rendered twice; Parse(Normalize(q)) is
// equivalent to q for queries Parse produces.
func (p *QueryParser) Normalize(query domain.ParsedQuery) string {
	var parts []string

	shouldSet := make(map[domain.Clause]bool, len(query.Should))
	for _, c := range query.Should {
		shouldSet[c] = true
	}

	var mustParts []string
	for _, c := range query.Must {
		if shouldSet[c] {
			continue
		}
		mustParts = append(mustParts, renderClause(c))
	}
	if len(mustParts) > 0 {
		parts = append(parts, strings.Join(mustParts, " AND "))
	}

	var shouldParts []string
	for _, c := range query.Should {
		shouldParts = append(shouldParts, renderClause(c))
	}
	if len(shouldParts) > 0 {
		parts = append(parts, strings.Join(shouldParts, " OR "))
	}

	for _, c := range query.MustNot {
		parts = append(parts, "NOT "+renderClause(c))
	}

	return strings.Join(parts, " ")
}

// renderClause renders one clause as query text.
func renderClause(c domain.Clause) string {
	value := c.Value
	if c.Type == domain.ClausePhrase {
		value = `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
	}
	if c.Field != domain.FieldAny {
		return string(c.Field) + ":" + value
	}
	return value
}
