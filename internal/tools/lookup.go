package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xkinput/keytao-bot/internal/keytao"
)

// LookupByCodeTool resolves an alphabetic code to the words it types.
type LookupByCodeTool struct {
	client *keytao.Client
}

func NewLookupByCodeTool(client *keytao.Client) *LookupByCodeTool {
	return &LookupByCodeTool{client: client}
}

func (t *LookupByCodeTool) Name() string { return string(ToolLookupByCode) }

func (t *LookupByCodeTool) Description() string {
	return "查询键道输入法编码对应的词条。用于将字母编码（如 'abc', 'nau'）转换为中文词组"
}

func (t *LookupByCodeTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"code": {
				"type": "string",
				"description": "键道输入法编码，纯字母组合，如 'abc', 'nau'"
			}
		},
		"required": ["code"]
	}`)
}

func (t *LookupByCodeTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	code, _ := args["code"].(string)
	if code == "" {
		return "", fmt.Errorf("missing required argument: code")
	}
	res, err := t.client.LookupByCode(ctx, code)
	if err != nil {
		return "", err
	}
	return keytao.FormatLookup(res), nil
}

// LookupByWordTool resolves a word to the codes that type it.
type LookupByWordTool struct {
	client *keytao.Client
}

func NewLookupByWordTool(client *keytao.Client) *LookupByWordTool {
	return &LookupByWordTool{client: client}
}

func (t *LookupByWordTool) Name() string { return string(ToolLookupByWord) }

func (t *LookupByWordTool) Description() string {
	return "查询中文词条对应的键道输入法编码。用于查找如何用键道输入法打出某个词"
}

func (t *LookupByWordTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"word": {
				"type": "string",
				"description": "要查询的中文词条，如 '你好', '世界'"
			}
		},
		"required": ["word"]
	}`)
}

func (t *LookupByWordTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	word, _ := args["word"].(string)
	if word == "" {
		return "", fmt.Errorf("missing required argument: word")
	}
	res, err := t.client.LookupByWord(ctx, word)
	if err != nil {
		return "", err
	}
	return keytao.FormatLookup(res), nil
}
