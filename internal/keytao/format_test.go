package keytao

import (
	"strings"
	"testing"

	"github.com/xkinput/keytao-bot/internal/schema"
)

func TestFormatLookup_Empty(t *testing.T) {
	got := FormatLookup(&schema.LookupResult{QueryWord: "不存在"})
	if !strings.Contains(got, "未找到「不存在」") {
		t.Errorf("unexpected not-found text: %q", got)
	}
	if FormatLookup(nil) == "" {
		t.Error("nil result must still render a not-found message")
	}
}

func TestFormatLookup_ByWordSingleCodeNoDup(t *testing.T) {
	res := &schema.LookupResult{
		QueryWord: "找寻",
		Entries: []schema.PhraseEntry{
			{Word: "找寻", Code: "fzxw", TypeLabel: "词组"},
		},
	}
	if got, want := FormatLookup(res), "fzxw【词组】"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatLookup_ByWordWithDuplicateGroup(t *testing.T) {
	res := &schema.LookupResult{
		QueryWord: "执事",
		Entries: []schema.PhraseEntry{
			{
				Word: "执事", Code: "fkekiv", TypeLabel: "词组",
				Dup: &schema.DuplicateGroup{
					PositionLabel: "三重",
					Words: []schema.DupWord{
						{Word: "芝士", PositionLabel: ""},
						{Word: "指事", PositionLabel: "二重"},
						{Word: "执事", PositionLabel: "三重"},
					},
				},
			},
		},
	}
	want := "fkekiv（三重）\n" +
		"• 芝士【词组】\n" +
		"• 指事（二重）【词组】\n" +
		"• 执事（三重）【词组】 ←"
	if got := FormatLookup(res); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

// A duplicate group holding only the entry itself renders like no group at all.
func TestFormatLookup_SingleElementDupGroup(t *testing.T) {
	res := &schema.LookupResult{
		QueryWord: "找寻",
		Entries: []schema.PhraseEntry{
			{
				Word: "找寻", Code: "fzxw", TypeLabel: "词组",
				Dup: &schema.DuplicateGroup{
					Words: []schema.DupWord{{Word: "找寻"}},
				},
			},
		},
	}
	if got, want := FormatLookup(res), "fzxw【词组】"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatLookup_ByWordMultipleCodes(t *testing.T) {
	res := &schema.LookupResult{
		QueryWord: "测试",
		Entries: []schema.PhraseEntry{
			{Word: "测试", Code: "ceshi", TypeLabel: "词组"},
			{
				Word: "测试", Code: "cs", TypeLabel: "超简词",
				Dup: &schema.DuplicateGroup{
					PositionLabel: "二重",
					Words: []schema.DupWord{
						{Word: "参数", PositionLabel: ""},
						{Word: "测试", PositionLabel: "二重"},
					},
				},
			},
		},
	}
	want := "1. ceshi【词组】\n" +
		"2. cs（二重）\n" +
		"   • 参数【超简词】\n" +
		"   • 测试（二重）【超简词】 ←"
	if got := FormatLookup(res); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatLookup_ByCodeSingleEntry(t *testing.T) {
	res := &schema.LookupResult{
		QueryCode: "fzxw",
		Entries: []schema.PhraseEntry{
			{Word: "找寻", Code: "fzxw", TypeLabel: "词组"},
		},
	}
	if got, want := FormatLookup(res), "fzxw【词组】"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// A by-code query lists every word with its position label but no arrow,
// since the query subject is the code rather than any one word.
func TestFormatLookup_ByCodeMultipleWords(t *testing.T) {
	res := &schema.LookupResult{
		QueryCode: "fkekiv",
		Entries: []schema.PhraseEntry{
			{Word: "芝士", Code: "fkekiv", TypeLabel: "词组"},
			{Word: "指事", Code: "fkekiv", TypeLabel: "词组"},
			{Word: "执事", Code: "fkekiv", TypeLabel: "词组"},
		},
	}
	want := "fkekiv:\n" +
		"• 芝士【词组】\n" +
		"• 指事（二重）【词组】\n" +
		"• 执事（三重）【词组】"
	got := FormatLookup(res)
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if strings.Contains(got, queryMarker) {
		t.Error("by-code output must not carry the query marker")
	}
}

func TestFormatLookup_Deterministic(t *testing.T) {
	res := &schema.LookupResult{
		QueryWord: "执事",
		Entries: []schema.PhraseEntry{
			{
				Word: "执事", Code: "fkekiv", TypeLabel: "词组",
				Dup: &schema.DuplicateGroup{
					PositionLabel: "二重",
					Words: []schema.DupWord{
						{Word: "芝士"},
						{Word: "执事", PositionLabel: "二重"},
					},
				},
			},
		},
	}
	first := FormatLookup(res)
	for i := 0; i < 3; i++ {
		if got := FormatLookup(res); got != first {
			t.Fatalf("render %d differs from first render", i+1)
		}
	}
}

func TestFormatDocs(t *testing.T) {
	got := FormatDocs([]schema.DocSnippet{
		{Title: "规则说明", Content: "内容一", SourceURL: "https://keytao.vercel.app/docs/rule.html"},
		{Title: "字根表", Content: "内容二", SourceURL: "https://keytao.vercel.app/docs/radicals.html"},
	})
	for _, want := range []string{
		"【规则说明】\n\n内容一",
		"\n\n---\n\n【字根表】",
		"来源:",
		"• https://keytao.vercel.app/docs/rule.html",
		"• https://keytao.vercel.app/docs/radicals.html",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	if FormatDocs(nil) != "" {
		t.Error("empty snippet list must render empty string")
	}
}
