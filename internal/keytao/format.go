package keytao

import (
	"fmt"
	"strings"

	"github.com/xkinput/keytao-bot/internal/schema"
)

// queryMarker is appended to the duplicate-group item matching the queried word.
const queryMarker = " ←"

// FormatLookup renders a LookupResult as plain chat text.
//
// Rules:
//   - one entry without a genuine duplicate group: a single `code【类型】` line
//   - by-word entry whose code is shared by several words: the code with its
//     position label, then every word on that code as a bullet, the queried
//     word marked with a trailing arrow
//   - several codes for one word: an enumerated list, each item rendered by
//     the single-code rules independently
//   - several words on one queried code: a bullet list with position labels
//     and no arrow, since the query subject is the code
//
// It is a pure function: the same result always renders identically.
func FormatLookup(res *schema.LookupResult) string {
	if res == nil || len(res.Entries) == 0 {
		return notFoundText(res)
	}
	if res.QueryCode != "" {
		return formatByCode(res)
	}
	return formatByWord(res)
}

func formatByCode(res *schema.LookupResult) string {
	if len(res.Entries) == 1 {
		e := res.Entries[0]
		return fmt.Sprintf("%s【%s】", e.Code, e.TypeLabel)
	}

	var sb strings.Builder
	sb.WriteString(res.QueryCode + ":\n")
	for rank, e := range res.Entries {
		sb.WriteString("• " + annotateWord(e.Word, schema.PositionLabel(rank), e.TypeLabel) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatByWord(res *schema.LookupResult) string {
	if len(res.Entries) == 1 {
		return formatWordEntry(res.Entries[0], res.QueryWord, "")
	}

	var sb strings.Builder
	for i, e := range res.Entries {
		item := formatWordEntry(e, res.QueryWord, "   ")
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, item))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatWordEntry renders one code of a by-word query. indent prefixes the
// duplicate-group bullets when the entry is part of an enumerated list.
func formatWordEntry(e schema.PhraseEntry, queryWord, indent string) string {
	if !e.Dup.Genuine() {
		return fmt.Sprintf("%s【%s】", e.Code, e.TypeLabel)
	}

	var sb strings.Builder
	sb.WriteString(annotateCode(e.Code, e.Dup.PositionLabel))
	for _, w := range e.Dup.Words {
		sb.WriteString("\n" + indent + "• " + annotateWord(w.Word, w.PositionLabel, e.TypeLabel))
		if w.Word == queryWord {
			sb.WriteString(queryMarker)
		}
	}
	return sb.String()
}

func annotateCode(code, posLabel string) string {
	if posLabel == "" {
		return code
	}
	return fmt.Sprintf("%s（%s）", code, posLabel)
}

func annotateWord(word, posLabel, typeLabel string) string {
	if posLabel == "" {
		return fmt.Sprintf("%s【%s】", word, typeLabel)
	}
	return fmt.Sprintf("%s（%s）【%s】", word, posLabel, typeLabel)
}

func notFoundText(res *schema.LookupResult) string {
	subject := ""
	if res != nil {
		if res.QueryWord != "" {
			subject = "「" + res.QueryWord + "」"
		} else if res.QueryCode != "" {
			subject = "「" + res.QueryCode + "」"
		}
	}
	return "未找到" + subject + "对应的词条，可以前往官网 keytao.vercel.app 加词～"
}

// FormatDocs renders documentation snippets as plain chat text:
// each snippet as a 【title】 block, blocks separated by a rule, followed by
// the source list. Returns "" for an empty slice.
func FormatDocs(snippets []schema.DocSnippet) string {
	if len(snippets) == 0 {
		return ""
	}

	parts := make([]string, 0, len(snippets))
	var sources []string
	for _, s := range snippets {
		parts = append(parts, fmt.Sprintf("【%s】\n\n%s", s.Title, s.Content))
		if s.SourceURL != "" {
			sources = append(sources, s.SourceURL)
		}
	}

	out := strings.Join(parts, "\n\n---\n\n")
	if len(sources) > 0 {
		out += "\n\n来源:"
		for _, src := range sources {
			out += "\n• " + src
		}
	}
	return out
}
