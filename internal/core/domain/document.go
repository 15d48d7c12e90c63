package domain

import (
	"strings"
	"time"
)

// Document represents an indexed note from the knowledge base.
// It is the canonical representation after frontmatter and markdown
// parsing; the index owns and rebuilds these wholesale.
type Document struct {
	// Path is the vault-relative path and unique identifier.
	Path string

	// Title is the human-readable title.
	Title string

	// Content is the plain text content after markdown stripping.
	Content string

	// Tags are the frontmatter tags. Order is not significant.
	Tags []string

	// Category is the PARA category of the note.
	Category Category

	// Created is when the note was authored, if known.
	Created *time.Time

	// Modified is when the note was last changed, if known.
	Modified *time.Time

	// Metadata contains extra frontmatter key-value pairs.
	Metadata map[string]any
}

// Category is a PARA category. Every document belongs to exactly one.
type Category string

// The closed set of PARA categories.
const (
	CategoryProjects  Category = "projects"
	CategoryAreas     Category = "areas"
	CategoryResources Category = "resources"
	CategoryArchives  Category = "archives"
)

// Categories lists all valid categories in canonical order.
func Categories() []Category {
	return []Category{CategoryProjects, CategoryAreas, CategoryResources, CategoryArchives}
}

// IsValid returns true if the category is one of the PARA set.
func (c Category) IsValid() bool {
	switch c {
	case CategoryProjects, CategoryAreas, CategoryResources, CategoryArchives:
		return true
	default:
		return false
	}
}

// Label returns the humanised display label.
func (c Category) Label() string {
	switch c {
	case CategoryProjects:
		return "Projects"
	case CategoryAreas:
		return "Areas"
	case CategoryResources:
		return "Resources"
	case CategoryArchives:
		return "Archives"
	default:
		return "Unknown"
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// ParseCategory resolves a case-insensitive category name.
// Returns false when the name is not part of the PARA set.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(s)) {
	case CategoryProjects:
		return CategoryProjects, true
	case CategoryAreas:
		return CategoryAreas, true
	case CategoryResources:
		return CategoryResources, true
	case CategoryArchives:
		return CategoryArchives, true
	default:
		return "", false
	}
}

// HasTag reports whether the document carries the tag, case-insensitively.
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// RelevantDate returns Modified when set, else Created, else nil.
// Date facets and recency scoring key off this date.
func (d *Document) RelevantDate() *time.Time {
	if d.Modified != nil {
		return d.Modified
	}
	return d.Created
}
