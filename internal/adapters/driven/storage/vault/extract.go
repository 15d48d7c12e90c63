package vault

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// extractText converts a markdown body into the plain text used for
// indexing, and returns the first level-1 heading as a title
// candidate. Fenced and indented code blocks carry no searchable
// prose and are excluded; link text is kept, link targets are not.
func extractText(body string) (content, headingTitle string) {
	src := []byte(body)
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	var sb strings.Builder
	var heading strings.Builder
	inFirstH1 := false

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 && headingTitle == "" {
				inFirstH1 = entering
				if !entering {
					headingTitle = strings.TrimSpace(heading.String())
				}
			}

		case *ast.Text:
			if entering {
				segment := node.Segment.Value(src)
				sb.Write(segment)
				sb.WriteByte(' ')
				if inFirstH1 {
					heading.Write(segment)
				}
			}
		}
		return ast.WalkContinue, nil
	})

	return normalizeWhitespace(sb.String()), headingTitle
}

// normalizeWhitespace collapses runs of spaces and blank lines so
// phrase matching is not defeated by markdown layout.
func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
