package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string   `json:"query,omitempty" jsonschema:"free-text query; supports AND OR NOT, -negation, field:value, quoted phrases, * and ? wildcards"`
	Tags     []string `json:"tags,omitempty" jsonschema:"filter to documents carrying any (OR) or all (AND) of these tags"`
	Title    string   `json:"title,omitempty" jsonschema:"match against document titles"`
	Category string   `json:"category,omitempty" jsonschema:"restrict to one category: projects, areas, resources or archives"`
	Operator string   `json:"operator,omitempty" jsonschema:"how structured criteria combine: AND (default) or OR"`
	Limit    int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Offset   int      `json:"offset,omitempty" jsonschema:"number of results to skip for pagination"`
	Facets   bool     `json:"facets,omitempty" jsonschema:"include facet buckets computed over all matches"`
	Snippets bool     `json:"snippets,omitempty" jsonschema:"include a highlighted snippet per result"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results    []SearchResultOutput `json:"results"`
	TotalCount int                  `json:"total_count"`
	Facets     []FacetOutput        `json:"facets,omitempty"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Path     string   `json:"path"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	Score    float64  `json:"score"`
	Snippet  string   `json:"snippet,omitempty"`
}

// FacetOutput represents one facet dimension.
type FacetOutput struct {
	Field  string             `json:"field"`
	Values []FacetValueOutput `json:"values"`
}

// FacetValueOutput is a single bucket within a facet.
type FacetValueOutput struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the markdown vault by relevance, with optional facets and snippets",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_syntax",
		Description: "Describe the boolean query syntax accepted by the search tool",
	}, s.handleQuerySyntax)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	operator := domain.OperatorAnd
	if input.Operator == string(domain.OperatorOr) {
		operator = domain.OperatorOr
	}

	query := domain.SearchQuery{
		Text:            input.Query,
		Tags:            input.Tags,
		Title:           input.Title,
		Category:        domain.Category(input.Category),
		Operator:        operator,
		Limit:           limit,
		Offset:          input.Offset,
		IncludeSnippets: input.Snippets,
	}
	if input.Facets {
		query.IncludeFacets = domain.AllFacetFields()
	}

	resp, err := s.ports.Search.Search(ctx, query)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:    make([]SearchResultOutput, len(resp.Results)),
		TotalCount: resp.TotalCount,
	}

	for i := range resp.Results {
		result := resp.Results[i]
		output.Results[i] = SearchResultOutput{
			Path:     result.Path,
			Title:    result.Title,
			Category: string(result.Category),
			Tags:     result.Tags,
			Score:    result.RelevanceScore,
			Snippet:  result.Snippet,
		}
	}

	for _, facet := range resp.Facets {
		fo := FacetOutput{
			Field:  string(facet.Field),
			Values: make([]FacetValueOutput, len(facet.Values)),
		}
		for j, fv := range facet.Values {
			fo.Values[j] = FacetValueOutput{Value: fv.Value, Label: fv.Label, Count: fv.Count}
		}
		output.Facets = append(output.Facets, fo)
	}

	return nil, output, nil
}

// QuerySyntaxInput is the (empty) input schema for the query_syntax tool.
type QuerySyntaxInput struct{}

// QuerySyntaxOutput is the output schema for the query_syntax tool.
type QuerySyntaxOutput struct {
	Syntax string `json:"syntax"`
}

// querySyntaxHelp documents the grammar the parser accepts. Kept in
// one place so the MCP tool and CLI help stay in sync.
const querySyntaxHelp = `Search queries support:

  term                 fuzzy match against title, content and tags
  "exact phrase"       phrase match; \" escapes a quote inside
  term1 term2          implicit AND
  term1 AND term2      explicit AND (operators must be uppercase)
  term1 OR term2       match either term
  NOT term, -term      exclude documents matching term
  field:value          restrict to a field: title, content, tags or tag
  field:"a phrase"     field-scoped phrase
  doc*  ?at            wildcards: * matches any run, ? a single character
  (a OR b) AND c       parentheses group sub-expressions

Examples:
  meeting notes
  title:roadmap AND tags:planning
  "code review" OR retro*
  project -archived`

// handleQuerySyntax handles the query_syntax tool invocation.
func (s *Server) handleQuerySyntax(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ QuerySyntaxInput,
) (*mcp.CallToolResult, QuerySyntaxOutput, error) {
	return nil, QuerySyntaxOutput{Syntax: querySyntaxHelp}, nil
}
