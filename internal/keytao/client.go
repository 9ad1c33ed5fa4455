// Package keytao talks to the keytao dictionary service and renders its
// results for chat display.
package keytao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/xkinput/keytao-bot/internal/schema"
)

const (
	// maxEntries caps how many phrases a single lookup returns.
	maxEntries = 5

	lookupTimeout = 10 * time.Second
)

// Client queries the public phrase-lookup endpoints. Every call re-queries
// the remote service; there is no local cache and no retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a lookup client for the given service base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: lookupTimeout},
	}
}

// phrasesResponse is the wire shape of both lookup endpoints.
type phrasesResponse struct {
	Phrases []struct {
		Word   string `json:"word"`
		Code   string `json:"code"`
		Weight int    `json:"weight"`
		Type   string `json:"type"`
	} `json:"phrases"`
}

// LookupByCode queries all words mapped to one code.
// code must be a non-empty pure-letter token. An empty result is a normal
// "not found" outcome; only transport problems return an error.
func (c *Client) LookupByCode(ctx context.Context, code string) (*schema.LookupResult, error) {
	if !isAlphabetic(code) {
		return nil, fmt.Errorf("lookup failed: code must be a non-empty letter sequence, got %q", code)
	}

	body, err := c.getPhrases(ctx, "/api/phrases/by-code", "code", code)
	if err != nil {
		return nil, err
	}

	res := &schema.LookupResult{QueryCode: code}
	for i, p := range body.Phrases {
		if i >= maxEntries {
			break
		}
		res.Entries = append(res.Entries, schema.PhraseEntry{
			Word:      p.Word,
			Code:      p.Code,
			Weight:    p.Weight,
			TypeLabel: schema.TypeLabel(p.Type),
		})
	}
	return res, nil
}

// LookupByWord queries all codes for one word. For each returned code it
// resolves the full set of words sharing that code so the caller can render
// duplicate annotations. A failed per-code resolution degrades to no
// duplicate group rather than failing the whole lookup.
func (c *Client) LookupByWord(ctx context.Context, word string) (*schema.LookupResult, error) {
	if word == "" {
		return nil, fmt.Errorf("lookup failed: word must not be empty")
	}

	body, err := c.getPhrases(ctx, "/api/phrases/by-word", "word", word)
	if err != nil {
		return nil, err
	}

	res := &schema.LookupResult{QueryWord: word}
	for i, p := range body.Phrases {
		if i >= maxEntries {
			break
		}
		entry := schema.PhraseEntry{
			Word:      p.Word,
			Code:      p.Code,
			Weight:    p.Weight,
			TypeLabel: schema.TypeLabel(p.Type),
			Dup:       c.resolveDuplicates(ctx, p.Code, word),
		}
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}

// resolveDuplicates fetches the words sharing code and builds the duplicate
// group, labelling each word by its rank. Returns nil when the code could
// not be resolved or resolves to the query word alone.
func (c *Client) resolveDuplicates(ctx context.Context, code, queryWord string) *schema.DuplicateGroup {
	body, err := c.getPhrases(ctx, "/api/phrases/by-code", "code", code)
	if err != nil {
		return nil
	}

	group := &schema.DuplicateGroup{}
	for rank, p := range body.Phrases {
		if rank >= maxEntries {
			break
		}
		label := schema.PositionLabel(rank)
		group.Words = append(group.Words, schema.DupWord{Word: p.Word, PositionLabel: label})
		if p.Word == queryWord {
			group.PositionLabel = label
		}
	}
	if len(group.Words) == 0 {
		return nil
	}
	return group
}

func (c *Client) getPhrases(ctx context.Context, path, param, value string) (*phrasesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("lookup failed: %w", err)
	}
	q := url.Values{}
	q.Set(param, value)
	q.Set("page", "1")
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("lookup failed: HTTP %d: %s", resp.StatusCode, raw)
	}

	var body phrasesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("lookup failed: decode response: %w", err)
	}
	return &body, nil
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
