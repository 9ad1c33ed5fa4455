package schema

import "fmt"

// DupWord is one word inside a duplicate group, with the position label
// derived from its rank on the shared code ("" for the first-position word).
type DupWord struct {
	Word          string
	PositionLabel string
}

// DuplicateGroup is the set of distinct words that all map to one code.
// PositionLabel is the label of the entry that owns the group.
// A group with a single word is display-equivalent to no group at all.
type DuplicateGroup struct {
	PositionLabel string
	Words         []DupWord
}

// Genuine reports whether the group triggers duplicate-expanded rendering,
// i.e. more than one word actually shares the code.
func (g *DuplicateGroup) Genuine() bool {
	return g != nil && len(g.Words) > 1
}

// PhraseEntry is one dictionary record returned by the lookup service.
type PhraseEntry struct {
	Word      string
	Code      string
	Weight    int
	TypeLabel string
	Dup       *DuplicateGroup
}

// LookupResult is the outcome of one lookup query. Exactly one of QueryWord
// and QueryCode is set, matching the query kind. Empty Entries means the
// query succeeded but nothing matched; transport failures never produce a
// LookupResult.
type LookupResult struct {
	QueryWord string
	QueryCode string
	Entries   []PhraseEntry
}

// DocSnippet is one documentation excerpt returned by the docs service.
type DocSnippet struct {
	Title     string
	Content   string
	SourceURL string
	Matched   []string
}

var positionNumerals = []string{"", "二", "三", "四", "五", "六", "七", "八", "九", "十"}

// PositionLabel returns the duplicate-position label for a zero-based rank
// among words sharing one code: "" for rank 0, then 二重, 三重, and so on.
func PositionLabel(rank int) string {
	if rank <= 0 {
		return ""
	}
	if rank < len(positionNumerals) {
		return positionNumerals[rank] + "重"
	}
	return fmt.Sprintf("%d重", rank+1)
}

// phraseTypeLabels maps upstream phrase type names to display labels.
var phraseTypeLabels = map[string]string{
	"Phrase":     "词组",
	"Single":     "单字",
	"Supplement": "增补",
	"Symbol":     "符号",
	"Link":       "链接",
	"English":    "英文",
	"CSS":        "超简词",
	"CSSSingle":  "超简单字",
}

// TypeLabel returns the display label for an upstream phrase type,
// defaulting to 词组 for unknown or missing types.
func TypeLabel(phraseType string) string {
	if label, ok := phraseTypeLabels[phraseType]; ok {
		return label
	}
	return "词组"
}
