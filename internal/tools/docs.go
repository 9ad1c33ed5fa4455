package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xkinput/keytao-bot/internal/docs"
	"github.com/xkinput/keytao-bot/internal/keytao"
)

// FetchDocsTool pulls matching documentation snippets for a question.
type FetchDocsTool struct {
	client *docs.Client
}

func NewFetchDocsTool(client *docs.Client) *FetchDocsTool {
	return &FetchDocsTool{client: client}
}

func (t *FetchDocsTool) Name() string { return string(ToolFetchDocs) }

func (t *FetchDocsTool) Description() string {
	return "从键道输入法官方文档网站获取相关内容。用于回答关于键道的学习方法、编码规则、教程、概念解释等问题"
}

func (t *FetchDocsTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "要查询的问题或关键词，如 '学习方法', '编码规则', '字根', '安装教程'等"
			}
		},
		"required": ["query"]
	}`)
}

func (t *FetchDocsTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return "", fmt.Errorf("missing required argument: query")
	}
	snippets, err := t.client.Fetch(ctx, query)
	if err != nil {
		return "", err
	}
	if len(snippets) == 0 {
		return "未找到相关文档内容，建议访问官方文档了解更多：https://keytao-docs.vercel.app", nil
	}
	return keytao.FormatDocs(snippets), nil
}
