package keytao

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const submitTimeout = 30 * time.Second

// BotClient talks to the authenticated bot endpoints of the keytao service
// (phrase submission and account binding). All requests carry the shared
// X-Bot-Token header; an empty token disables the capability.
type BotClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewBotClient creates a BotClient. token may be empty, in which case every
// call fails with a configuration error instead of reaching the network.
func NewBotClient(baseURL, token string) *BotClient {
	return &BotClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: submitTimeout},
	}
}

// Available reports whether the bot token is configured.
func (c *BotClient) Available() bool { return c.token != "" }

// PhraseRequest describes one create/change/delete submission.
type PhraseRequest struct {
	Platform   string // "qq" or "telegram"
	PlatformID string
	Word       string
	Code       string
	Action     string // "Create", "Change" or "Delete"
	OldWord    string // Change only
	Type       string // auto-detected when "Phrase" or empty
	Remark     string
	Confirmed  bool // confirm a previously returned warning
}

// BindResult is the outcome of verifying a binding code.
type BindResult struct {
	Success  bool
	Nickname string
	Message  string
}

// LatestDraftBatch returns the id of the user's current draft batch,
// creating one server-side if none exists.
func (c *BotClient) LatestDraftBatch(ctx context.Context, platform, platformID string) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("bot token not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/bot/batches/latest-draft", nil)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("platform", platform)
	q.Set("platformId", platformID)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("X-Bot-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("latest draft batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return "", fmt.Errorf("latest draft batch: HTTP %d: %s", resp.StatusCode, raw)
	}
	var body struct {
		BatchID string `json:"batchId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("latest draft batch: decode: %w", err)
	}
	if body.BatchID == "" {
		return "", fmt.Errorf("latest draft batch: empty batch id")
	}
	return body.BatchID, nil
}

// CreatePhrase submits one phrase operation to the user's draft batch and
// returns the server's JSON verdict. Known rejection statuses (404 unbound,
// 400 conflict/warning) are returned as structured payloads so the model can
// relay them; only transport problems surface as errors.
func (c *BotClient) CreatePhrase(ctx context.Context, pr PhraseRequest) (json.RawMessage, error) {
	if !c.Available() {
		return nil, fmt.Errorf("bot token not configured")
	}

	batchID, err := c.LatestDraftBatch(ctx, pr.Platform, pr.PlatformID)
	if err != nil {
		return nil, err
	}

	action := pr.Action
	if action == "" {
		action = "Create"
	}
	phraseType := pr.Type
	if phraseType == "" || phraseType == "Phrase" {
		phraseType = DetectPhraseType(pr.Word, pr.Code)
	}

	item := map[string]any{
		"action": action,
		"word":   pr.Word,
		"code":   pr.Code,
		"type":   phraseType,
	}
	if pr.OldWord != "" {
		item["oldWord"] = pr.OldWord
	}
	if pr.Remark != "" {
		item["remark"] = pr.Remark
	}
	payload := map[string]any{
		"platform":   pr.Platform,
		"platformId": pr.PlatformID,
		"items":      []map[string]any{item},
		"confirmed":  pr.Confirmed,
		"batchId":    batchID,
	}

	raw, status, err := c.postJSON(ctx, "/api/bot/pull-requests/batch", payload)
	if err != nil {
		return nil, fmt.Errorf("create phrase: %w", err)
	}
	switch status {
	case http.StatusOK, http.StatusBadRequest:
		// 400 carries the conflict/warning payload the model must relay.
		return raw, nil
	case http.StatusNotFound:
		return failureMessage("未找到绑定账号，请使用 /bind 命令绑定你的账号"), nil
	default:
		return failureMessage(fmt.Sprintf("创建失败: HTTP %d", status)), nil
	}
}

// SubmitBatch submits the user's current draft batch for review.
func (c *BotClient) SubmitBatch(ctx context.Context, platform, platformID string) (json.RawMessage, error) {
	if !c.Available() {
		return nil, fmt.Errorf("bot token not configured")
	}

	batchID, err := c.LatestDraftBatch(ctx, platform, platformID)
	if err != nil {
		return nil, err
	}

	raw, status, err := c.postJSON(ctx,
		"/api/bot/batches/"+batchID+"/submit",
		map[string]any{"platform": platform, "platformId": platformID})
	if err != nil {
		return nil, fmt.Errorf("submit batch: %w", err)
	}
	switch status {
	case http.StatusOK, http.StatusBadRequest:
		return raw, nil
	case http.StatusNotFound:
		return failureMessage("批次不存在或已被删除"), nil
	case http.StatusForbidden:
		return failureMessage("无权限操作此批次"), nil
	default:
		return failureMessage(fmt.Sprintf("提交失败: HTTP %d", status)), nil
	}
}

// VerifyBindKey verifies a binding code generated on the keytao site.
func (c *BotClient) VerifyBindKey(ctx context.Context, key, platform, platformID string) (BindResult, error) {
	if !c.Available() {
		return BindResult{}, fmt.Errorf("bot token not configured")
	}

	raw, status, err := c.postJSON(ctx, "/api/auth/link/verify", map[string]any{
		"key":        key,
		"platform":   platform,
		"platformId": platformID,
	})
	if err != nil {
		return BindResult{}, fmt.Errorf("verify bind key: %w", err)
	}

	var body struct {
		Success      bool   `json:"success"`
		Message      string `json:"message"`
		UserName     string `json:"userName"`
		UserNickname string `json:"userNickname"`
	}
	_ = json.Unmarshal(raw, &body)

	if status != http.StatusOK || !body.Success {
		msg := body.Message
		if msg == "" {
			msg = "绑定失败"
		}
		return BindResult{Message: msg}, nil
	}

	nickname := body.UserNickname
	if nickname == "" {
		nickname = body.UserName
	}
	return BindResult{Success: true, Nickname: nickname}, nil
}

func (c *BotClient) postJSON(ctx context.Context, path string, payload any) (json.RawMessage, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("X-Bot-Token", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}

func failureMessage(msg string) json.RawMessage {
	raw, _ := json.Marshal(map[string]any{"success": false, "message": msg})
	return raw
}
