// Package parser turns a Markdown page into a graph node: a title and the
// ordered wikilinks it makes.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	fenceRe    = regexp.MustCompile("(?s)```.*?```")
)

// Link is one wikilink in document order.
type Link struct {
	Target string
	// Alias is the text after '|', or "" when the link has none.
	Alias string
}

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Links       []Link
	Title       string
}

// Parse extracts frontmatter, title and wikilinks from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Links:       extractLinks(body),
		Title:       deriveTitle(fm, body),
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		// Broken frontmatter is kept as body text.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// extractLinks returns wikilinks in order of appearance, skipping fenced
// code. Repeated targets are kept: each occurrence is its own edge.
func extractLinks(body string) []Link {
	body = fenceRe.ReplaceAllString(body, "")
	matches := wikilinkRe.FindAllStringSubmatch(body, -1)
	out := make([]Link, 0, len(matches))
	for _, m := range matches {
		target, alias, _ := strings.Cut(m[1], "|")
		// [[Page#Heading]] links to Page.
		target, _, _ = strings.Cut(target, "#")
		target = strings.TrimSuffix(strings.TrimSpace(target), ".md")
		if target == "" {
			continue
		}
		out = append(out, Link{Target: target, Alias: strings.TrimSpace(alias)})
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
