// Package vault implements the production DocumentStore over a
// markdown knowledge base on disk. It walks the vault directory,
// parses YAML frontmatter, strips markdown down to plain text for
// indexing, and derives the PARA category from frontmatter or the
// top-level directory.
package vault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
	"github.com/mikeyobrien/forge-search/internal/core/ports/driven"
	"github.com/mikeyobrien/forge-search/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store reads documents from a markdown vault rooted at a directory.
type Store struct {
	root string
}

// NewStore creates a vault store rooted at the given directory.
func NewStore(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s is not a directory", root)
	}
	return &Store{root: filepath.Clean(root)}, nil
}

// Root returns the vault root directory.
func (s *Store) Root() string {
	return s.root
}

// List walks the vault and parses every markdown note. A note that
// fails to read or parse is logged and skipped so one bad file never
// fails the build. Draft notes are excluded.
func (s *Store) List(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Walking %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isMarkdown(name) {
			return nil
		}

		doc, err := s.load(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}
		if doc == nil {
			// Draft note.
			return nil
		}
		docs = append(docs, *doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}

	return docs, nil
}

// Read loads one note by vault-relative path. Missing files and
// draft notes return domain.ErrNotFound so the index drops them.
func (s *Store) Read(_ context.Context, path string) (*domain.Document, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(path))
	if !strings.HasPrefix(filepath.Clean(abs), s.root) {
		return nil, domain.ErrInvalidInput
	}

	doc, err := s.load(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// Rel converts an absolute path inside the vault to the slash-form
// vault-relative path used as the document identifier.
func (s *Store) Rel(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// isMarkdown reports whether the filename is a markdown note.
func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

// frontmatter is the recognised subset of note metadata. Unknown
// keys are preserved in the document's Metadata map.
type frontmatter struct {
	Title    string   `yaml:"title"`
	Tags     []string `yaml:"tags"`
	Category string   `yaml:"category"`
	Created  string   `yaml:"created"`
	Modified string   `yaml:"modified"`
	Draft    bool     `yaml:"draft"`
}

// load reads and parses one note. Returns (nil, nil) for drafts.
func (s *Store) load(abs string) (*domain.Document, error) {
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	fmRaw, body := splitFrontmatter(string(raw))

	var fm frontmatter
	meta := make(map[string]any)
	if fmRaw != "" {
		if err := yaml.Unmarshal([]byte(fmRaw), &fm); err != nil {
			return nil, fmt.Errorf("frontmatter: %w", err)
		}
		// Second pass keeps the unrecognised keys.
		if err := yaml.Unmarshal([]byte(fmRaw), &meta); err == nil {
			for _, known := range []string{"title", "tags", "category", "created", "modified", "draft"} {
				delete(meta, known)
			}
		}
	}
	if fm.Draft {
		return nil, nil
	}

	content, headingTitle := extractText(body)

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = headingTitle
	}
	if title == "" {
		title = titleFromFilename(abs)
	}

	rel := s.Rel(abs)
	doc := &domain.Document{
		Path:     rel,
		Title:    title,
		Content:  content,
		Tags:     fm.Tags,
		Category: resolveCategory(fm.Category, rel),
		Created:  parseDate(fm.Created),
		Modified: parseDate(fm.Modified),
	}
	if len(meta) > 0 {
		doc.Metadata = meta
	}
	if doc.Modified == nil {
		mtime := info.ModTime()
		doc.Modified = &mtime
	}

	return doc, nil
}

// splitFrontmatter separates a leading --- fenced YAML block from the
// note body. Notes without frontmatter return an empty first value.
func splitFrontmatter(content string) (fmRaw, body string) {
	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		return "", content
	}

	rest := content[strings.Index(content, "\n")+1:]
	for _, fence := range []string{"\n---\n", "\n---\r\n"} {
		if idx := strings.Index(rest, fence); idx >= 0 {
			return rest[:idx], rest[idx+len(fence):]
		}
	}
	if strings.HasSuffix(rest, "\n---") {
		return strings.TrimSuffix(rest, "\n---"), ""
	}
	return "", content
}

// parseDate accepts any date layout dateparse understands.
// Unparseable or empty values are treated as unknown, not fatal.
func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		logger.Debug("Unparseable date %q: %v", value, err)
		return nil
	}
	return &t
}

// resolveCategory prefers the frontmatter category, then the note's
// top-level vault directory, then Resources.
func resolveCategory(fmCategory, rel string) domain.Category {
	if c, ok := domain.ParseCategory(strings.TrimSpace(fmCategory)); ok {
		return c
	}
	if idx := strings.Index(rel, "/"); idx > 0 {
		if c, ok := domain.ParseCategory(rel[:idx]); ok {
			return c
		}
	}
	return domain.CategoryResources
}

// titleFromFilename derives a title from the file name, turning
// dashes and underscores into spaces.
func titleFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
