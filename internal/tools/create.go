package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xkinput/keytao-bot/internal/keytao"
)

// unboundIdentity is returned when a mutating tool runs outside a chat turn.
const unboundIdentity = `{"success": false, "message": "无法确定操作者身份，请在聊天中使用此功能"}`

// CreatePhraseTool creates, changes or deletes a dictionary entry on behalf
// of the message sender. Sender identity comes from the turn context, never
// from the model's arguments.
type CreatePhraseTool struct {
	client *keytao.BotClient
}

func NewCreatePhraseTool(client *keytao.BotClient) *CreatePhraseTool {
	return &CreatePhraseTool{client: client}
}

func (t *CreatePhraseTool) Name() string { return string(ToolCreatePhrase) }

func (t *CreatePhraseTool) Description() string {
	return "创建、修改或删除键道词条。用于用户希望添加、修改或删除词条时。支持检测冲突和警告，如有重码警告可确认后创建。自动追加到草稿批次。"
}

func (t *CreatePhraseTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"word": {
				"type": "string",
				"description": "要操作的词条内容（中文词组）"
			},
			"code": {
				"type": "string",
				"description": "键道输入法编码（纯字母）"
			},
			"action": {
				"type": "string",
				"enum": ["Create", "Change", "Delete"],
				"description": "操作类型：Create（创建）、Change（修改）、Delete（删除），默认为 Create"
			},
			"old_word": {
				"type": "string",
				"description": "旧词条内容（仅 Change 操作需要）"
			},
			"type": {
				"type": "string",
				"enum": ["Single", "Phrase", "Supplement", "Symbol", "Link", "CSS", "CSSSingle", "English"],
				"description": "词条类型，默认为 Phrase（词组）"
			},
			"remark": {
				"type": "string",
				"description": "可选的备注说明"
			},
			"confirmed": {
				"type": "boolean",
				"description": "当工具首次返回警告（requiresConfirmation=true）后，用户确认时必须设置为 true，否则会重复收到同一警告。默认 false"
			}
		},
		"required": ["word", "code"]
	}`)
}

func (t *CreatePhraseTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	tc := TurnCtx(ctx)
	if tc.Platform == "" || tc.SenderID == "" {
		return unboundIdentity, nil
	}

	word, _ := args["word"].(string)
	code, _ := args["code"].(string)
	if word == "" || code == "" {
		return "", fmt.Errorf("missing required arguments: word and code")
	}
	confirmed, _ := args["confirmed"].(bool)

	req := keytao.PhraseRequest{
		Platform:   tc.Platform,
		PlatformID: tc.SenderID,
		Word:       word,
		Code:       code,
		Action:     stringArg(args, "action"),
		OldWord:    stringArg(args, "old_word"),
		Type:       stringArg(args, "type"),
		Remark:     stringArg(args, "remark"),
		Confirmed:  confirmed,
	}
	raw, err := t.client.CreatePhrase(ctx, req)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SubmitBatchTool submits the sender's draft batch for review.
type SubmitBatchTool struct {
	client *keytao.BotClient
}

func NewSubmitBatchTool(client *keytao.BotClient) *SubmitBatchTool {
	return &SubmitBatchTool{client: client}
}

func (t *SubmitBatchTool) Name() string { return string(ToolSubmitBatch) }

func (t *SubmitBatchTool) Description() string {
	return "提交当前草稿批次进行审核。用于用户确认提交词条修改后。会自动查找并提交用户的草稿批次。"
}

func (t *SubmitBatchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

func (t *SubmitBatchTool) Execute(ctx context.Context, _ map[string]any) (string, error) {
	tc := TurnCtx(ctx)
	if tc.Platform == "" || tc.SenderID == "" {
		return unboundIdentity, nil
	}

	raw, err := t.client.SubmitBatch(ctx, tc.Platform, tc.SenderID)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
