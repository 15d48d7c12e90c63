// Package vault provides a filesystem-backed implementation of the
// driven.DocumentStore port for a directory of markdown notes.
//
// Documents are plain markdown files with optional YAML frontmatter.
// Loading a document means:
//
//   - splitting the frontmatter block from the body
//   - extracting plain text from the markdown (code blocks excluded)
//   - resolving the title from frontmatter, the first heading, or the filename
//   - resolving the category from frontmatter or the top-level directory
//   - parsing created/modified dates, falling back to the file mtime
//
// Files whose frontmatter sets draft: true are never returned.
//
// The package also contains Watcher, which keeps a search index in
// sync with the vault via fsnotify instead of periodic rebuilds.
package vault
