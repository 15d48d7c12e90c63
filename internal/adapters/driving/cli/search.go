package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
)

var (
	searchTags     []string
	searchTitle    string
	searchCategory string
	searchOperator string
	searchLimit    int
	searchOffset   int
	searchJSON     bool
	searchFacets   bool
	searchSnippets bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the vault",
	Long: `Searches the vault and ranks results by relevance.

The query supports boolean operators (uppercase AND, OR, NOT), -negation,
field:value scoping (title, content, tags, tag), quoted phrases and the
* and ? wildcards. Structured filters (--tag, --title, --category) can be
used with or without a query.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringArrayVarP(&searchTags, "tag", "t", nil, "filter by tag (repeatable)")
	searchCmd.Flags().StringVar(&searchTitle, "title", "", "match against document titles")
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "restrict to a category (projects|areas|resources|archives)")
	searchCmd.Flags().StringVar(&searchOperator, "operator", "AND", "combine structured criteria with AND or OR")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchFacets, "facets", false, "include facet counts")
	searchCmd.Flags().BoolVar(&searchSnippets, "snippets", false, "include content snippets")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query := domain.SearchQuery{
		Tags:            searchTags,
		Title:           searchTitle,
		Category:        domain.Category(searchCategory),
		Operator:        domain.OperatorAnd,
		Limit:           searchLimit,
		Offset:          searchOffset,
		IncludeSnippets: searchSnippets,
	}
	if searchFacets {
		query.IncludeFacets = domain.AllFacetFields()
	}
	if len(args) == 1 {
		query.Text = args[0]
	}
	if strings.EqualFold(searchOperator, string(domain.OperatorOr)) {
		query.Operator = domain.OperatorOr
	}

	resp, err := searchService.Search(cmd.Context(), query)
	if err != nil {
		var qErr *domain.QueryError
		if errors.As(err, &qErr) {
			return fmt.Errorf("invalid query: %s", qErr.Message)
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, resp)
	}

	return outputSearchText(cmd, resp)
}

func outputSearchJSON(cmd *cobra.Command, resp *domain.SearchResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("%d of %d results (%s)\n\n", len(resp.Results), resp.TotalCount, resp.ExecutionTime)
	for i := range resp.Results {
		result := resp.Results[i]

		cmd.Printf("  [%d] %s (%.1f)\n", searchOffset+i+1, result.Title, result.RelevanceScore)
		cmd.Printf("      %s  [%s]\n", result.Path, result.Category)
		if len(result.Tags) > 0 {
			cmd.Printf("      Tags: %s\n", strings.Join(result.Tags, ", "))
		}
		if result.Snippet != "" {
			cmd.Printf("      %s\n", result.Snippet)
		}
		cmd.Println()
	}

	for _, facet := range resp.Facets {
		cmd.Printf("%s:\n", facet.Field)
		for _, fv := range facet.Values {
			cmd.Printf("  %-24s %d\n", fv.Label, fv.Count)
		}
		cmd.Println()
	}

	return nil
}
