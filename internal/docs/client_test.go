package docs

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newDocsClient(t *testing.T, files map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, "https://keytao-docs.vercel.app", "", slog.Default())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestFetch_MatchesKeyword(t *testing.T) {
	c := newDocsClient(t, map[string]string{
		"guide/advance-in-xkjd/top-up.md": "---\ntitle: x\n---\n# 顶功说明\n\n内容",
	})

	snippets, err := c.Fetch(context.Background(), "什么是顶功？")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snippets) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(snippets))
	}
	s := snippets[0]
	if s.Title != "顶功说明" {
		t.Errorf("unexpected title: %q", s.Title)
	}
	if strings.Contains(s.Content, "title: x") {
		t.Error("frontmatter must be stripped")
	}
	if s.SourceURL != "https://keytao-docs.vercel.app/guide/advance-in-xkjd/top-up.html" {
		t.Errorf("unexpected source URL: %q", s.SourceURL)
	}
	if len(s.Matched) != 1 || s.Matched[0] != "顶功" {
		t.Errorf("unexpected matched keywords: %v", s.Matched)
	}
}

func TestFetch_NoMatchReturnsEmpty(t *testing.T) {
	c := newDocsClient(t, nil)
	snippets, err := c.Fetch(context.Background(), "今天天气怎么样")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snippets) != 0 {
		t.Errorf("expected no snippets, got %d", len(snippets))
	}
}

func TestFetch_CapsAtThreeDocs(t *testing.T) {
	files := map[string]string{
		"guide/learn-xkjd/phonetics-rules.md": "# 音码",
		"guide/learn-xkjd/stroke-rules.md":    "# 形码",
		"guide/learn-xkjd/index.md":           "# 研习",
		"guide/start-xkjd/index.md":           "# 入门",
		"guide/learn-xkjd/layouts.md":         "# 图谱",
	}
	c := newDocsClient(t, files)

	snippets, err := c.Fetch(context.Background(), "学习规则")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snippets) != 3 {
		t.Errorf("expected 3 snippets, got %d", len(snippets))
	}
}

func TestFetch_SkipsFailedDocs(t *testing.T) {
	c := newDocsClient(t, map[string]string{
		"guide/learn-xkjd/stroke-rules.md": "# 形码规则\n内容",
		// phonetics-rules.md missing on purpose
	})

	snippets, err := c.Fetch(context.Background(), "规则")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snippets) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(snippets))
	}
	if snippets[0].Title != "形码规则" {
		t.Errorf("unexpected title: %q", snippets[0].Title)
	}
}

func TestFetch_TruncatesLongContent(t *testing.T) {
	long := "# 长文\n" + strings.Repeat("很长的内容。", 1000)
	c := newDocsClient(t, map[string]string{
		"guide/start-xkjd/phrases.md": long,
	})

	snippets, err := c.Fetch(context.Background(), "词组")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := snippets[0].Content
	if !strings.HasSuffix(content, "...") {
		t.Error("truncated content must end with ellipsis")
	}
	if n := len([]rune(strings.TrimSuffix(content, "\n\n..."))); n != 2000 {
		t.Errorf("expected 2000 runes before ellipsis, got %d", n)
	}
}

func TestNewClient_MappingOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	yamlBody := "打字:\n  - custom/typing.md\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/custom/typing.md" {
			_, _ = w.Write([]byte("# 打字指南"))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, "https://keytao-docs.vercel.app", path, slog.Default())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	snippets, err := c.Fetch(context.Background(), "怎么打字")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snippets) != 1 || snippets[0].Title != "打字指南" {
		t.Fatalf("override mapping not applied: %+v", snippets)
	}

	// The built-in mapping is replaced, not merged.
	snippets, err = c.Fetch(context.Background(), "顶功")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snippets) != 0 {
		t.Error("built-in keywords must not match after override")
	}
}

func TestNewClient_BadMappingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	if err := os.WriteFile(path, []byte("- just\n- a list\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewClient("http://x", "http://y", path, slog.Default()); err == nil {
		t.Error("expected error for non-mapping YAML")
	}
}

func TestExtractTitle_Fallback(t *testing.T) {
	if got := extractTitle("no heading here", "guide/start-xkjd/phrases.md"); got != "phrases" {
		t.Errorf("expected file stem fallback, got %q", got)
	}
}
