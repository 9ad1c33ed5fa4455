// Package docs fetches documentation snippets for the keytao input method
// from its published markdown source, matched by keyword.
package docs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xkinput/keytao-bot/internal/schema"
)

const (
	// maxDocs bounds how many documents a single query may pull in.
	maxDocs = 3
	// maxContentRunes bounds each snippet after frontmatter removal.
	maxContentRunes = 2000

	defaultTimeout = 10 * time.Second
)

// keywordEntry pairs a match keyword with the doc paths it pulls in.
// A slice keeps keyword precedence stable across queries.
type keywordEntry struct {
	Keyword string
	Paths   []string
}

func defaultMapping() []keywordEntry {
	return []keywordEntry{
		{"规则", []string{
			"guide/learn-xkjd/phonetics-rules.md",
			"guide/learn-xkjd/stroke-rules.md",
		}},
		{"学习", []string{
			"guide/learn-xkjd/index.md",
			"guide/start-xkjd/index.md",
			"guide/learn-xkjd/layouts.md",
		}},
		{"安装", []string{
			"guide/get-xkjd/download-and-install.md",
			"guide/get-xkjd/index.md",
		}},
		{"字根", []string{
			"guide/learn-xkjd/stroke-rules.md",
			"guide/learn-xkjd/layouts.md",
		}},
		{"单字", []string{"guide/start-xkjd/characters.md"}},
		{"词组", []string{"guide/start-xkjd/phrases.md"}},
		{"顶功", []string{"guide/advance-in-xkjd/top-up.md"}},
		{"简码", []string{"guide/advance-in-xkjd/shorthand.md"}},
	}
}

// Client resolves keyword queries to fetched markdown snippets.
type Client struct {
	rawBase    string
	siteBase   string
	mapping    []keywordEntry
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a docs client. rawBase is the raw markdown URL prefix,
// siteBase the rendered site prefix used for source links. mappingPath, when
// non-empty, points at a YAML file overriding the built-in keyword mapping.
func NewClient(rawBase, siteBase, mappingPath string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	mapping := defaultMapping()
	if mappingPath != "" {
		loaded, err := loadMapping(mappingPath)
		if err != nil {
			return nil, fmt.Errorf("load docs mapping: %w", err)
		}
		mapping = loaded
	}
	return &Client{
		rawBase:    strings.TrimRight(rawBase, "/") + "/",
		siteBase:   strings.TrimRight(siteBase, "/") + "/",
		mapping:    mapping,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}, nil
}

// loadMapping reads a keyword→paths mapping from YAML. yaml.Node preserves
// the document's key order so overrides keep their own precedence.
func loadMapping(path string) ([]keywordEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("mapping file %s: expected a top-level mapping", path)
	}
	root := doc.Content[0]
	var mapping []keywordEntry
	for i := 0; i+1 < len(root.Content); i += 2 {
		var paths []string
		if err := root.Content[i+1].Decode(&paths); err != nil {
			return nil, fmt.Errorf("mapping key %q: %w", root.Content[i].Value, err)
		}
		mapping = append(mapping, keywordEntry{Keyword: root.Content[i].Value, Paths: paths})
	}
	return mapping, nil
}

// Fetch matches query against the keyword mapping and fetches the mapped
// documents, at most three, deduplicated in mapping order. A query matching
// no keyword returns an empty slice and no error. Individual fetch failures
// are logged and skipped.
func (c *Client) Fetch(ctx context.Context, query string) ([]schema.DocSnippet, error) {
	lower := strings.ToLower(query)

	var paths []string
	seen := make(map[string]bool)
	var matched []string
	for _, entry := range c.mapping {
		if !strings.Contains(lower, entry.Keyword) && !strings.Contains(query, entry.Keyword) {
			continue
		}
		matched = append(matched, entry.Keyword)
		for _, p := range entry.Paths {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	if len(paths) == 0 {
		return nil, nil
	}
	if len(paths) > maxDocs {
		paths = paths[:maxDocs]
	}

	snippets := make([]schema.DocSnippet, 0, len(paths))
	for _, p := range paths {
		raw, err := c.fetchRaw(ctx, p)
		if err != nil {
			c.logger.Warn("docs fetch failed", "path", p, "error", err)
			continue
		}
		content := cleanMarkdown(raw)
		if content == "" {
			continue
		}
		snippets = append(snippets, schema.DocSnippet{
			Title:     extractTitle(content, p),
			Content:   content,
			SourceURL: c.siteBase + strings.TrimSuffix(p, ".md") + ".html",
			Matched:   matched,
		})
	}
	return snippets, nil
}

func (c *Client) fetchRaw(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rawBase+path, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// cleanMarkdown strips a leading YAML frontmatter block and truncates the
// remainder to maxContentRunes, appending an ellipsis when cut.
func cleanMarkdown(raw string) string {
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "---" {
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				lines = lines[i+1:]
				break
			}
		}
	}
	cleaned := strings.TrimSpace(strings.Join(lines, "\n"))
	runes := []rune(cleaned)
	if len(runes) > maxContentRunes {
		cleaned = string(runes[:maxContentRunes]) + "\n\n..."
	}
	return cleaned
}

// extractTitle returns the first level-one heading, falling back to the
// file's base name without extension.
func extractTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	base := path
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.TrimSuffix(base, ".md")
}
