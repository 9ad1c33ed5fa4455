package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xkinput/keytao-bot/internal/bus"
	"github.com/xkinput/keytao-bot/internal/config"
)

const (
	qqTokenURL = "https://bots.qq.com/app/getAppAccessToken"
	qqAPIBase  = "https://api.sgroup.qq.com"

	// GROUP_AND_C2C_EVENT intent: private chats and group @-messages.
	qqIntents = 1 << 25

	// Sliding dedup window; the gateway redelivers on reconnect.
	qqDedupWindow = 1000
)

// The platform rejects messages containing links from unapproved bots.
var qqURLPattern = regexp.MustCompile(`(?i)(https?://\S+|ftp://\S+|www\.\S+)`)

// stripURLs replaces every URL in text with a placeholder so the message
// passes the platform's link review.
func stripURLs(text string) string {
	return qqURLPattern.ReplaceAllString(text, "[链接]")
}

// QQChannel connects to the official QQ bot gateway over WebSocket and
// handles private (C2C) messages and group @-messages.
type QQChannel struct {
	Base
	cfg        *config.QQConfig
	httpClient *http.Client

	tokenMu  sync.Mutex
	token    string
	tokenExp time.Time

	seenMu    sync.Mutex
	seen      map[string]bool
	seenQueue []string
}

func NewQQChannel(cfg *config.QQConfig, b *bus.MessageBus) *QQChannel {
	return &QQChannel{
		Base:       NewBase(bus.ChannelQQ, b, cfg.AllowFrom),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		seen:       make(map[string]bool),
	}
}

func (q *QQChannel) Name() string { return string(bus.ChannelQQ) }

// Start connects to the gateway and reconnects with a fixed backoff until
// ctx is cancelled.
func (q *QQChannel) Start(ctx context.Context) error {
	if q.cfg.AppID == "" || q.cfg.Secret == "" {
		return fmt.Errorf("qq: appId or secret not configured")
	}
	for {
		if err := q.connectOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("qq: connection lost", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func (q *QQChannel) connectOnce(ctx context.Context) error {
	token, err := q.getAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("qq: get token: %w", err)
	}
	wsURL, err := q.getGatewayURL(ctx, token)
	if err != nil {
		return fmt.Errorf("qq: get gateway: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	slog.Info("qq: gateway connected")

	return q.gatewayLoop(ctx, conn, token)
}

// getAccessToken returns a cached app access token, refreshing when close
// to expiry. Tokens last ~7200s.
func (q *QQChannel) getAccessToken(ctx context.Context) (string, error) {
	q.tokenMu.Lock()
	defer q.tokenMu.Unlock()
	if q.token != "" && time.Now().Before(q.tokenExp) {
		return q.token, nil
	}

	data, _ := json.Marshal(map[string]string{
		"appId":        q.cfg.AppID,
		"clientSecret": q.cfg.Secret,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, qqTokenURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := q.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	var result struct {
		AccessToken string `json:"access_token"`
	}
	_ = json.Unmarshal(b, &result)
	if result.AccessToken == "" {
		return "", fmt.Errorf("token response: %s", b)
	}
	q.token = result.AccessToken
	q.tokenExp = time.Now().Add(7100 * time.Second)
	return q.token, nil
}

func (q *QQChannel) getGatewayURL(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, qqAPIBase+"/gateway", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "QQBot "+token)
	resp, err := q.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	var result struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(b, &result)
	if result.URL == "" {
		return "", fmt.Errorf("gateway response: %s", b)
	}
	return result.URL, nil
}

func (q *QQChannel) gatewayLoop(ctx context.Context, conn *websocket.Conn, token string) error {
	heartbeatStop := make(chan struct{})
	defer close(heartbeatStop)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var payload struct {
			Op int             `json:"op"`
			T  string          `json:"t"`
			D  json.RawMessage `json:"d"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			continue
		}

		switch payload.Op {
		case 10: // HELLO
			var hello struct {
				HeartbeatInterval int `json:"heartbeat_interval"`
			}
			_ = json.Unmarshal(payload.D, &hello)
			go q.heartbeatLoop(ctx, conn, time.Duration(hello.HeartbeatInterval)*time.Millisecond, heartbeatStop)
			if err := q.identify(conn, token); err != nil {
				return err
			}
		case 0: // DISPATCH
			switch payload.T {
			case "C2C_MESSAGE_CREATE":
				go q.handleEvent(payload.D, false)
			case "GROUP_AT_MESSAGE_CREATE":
				go q.handleEvent(payload.D, true)
			}
		}
	}
}

func (q *QQChannel) heartbeatLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration, stop <-chan struct{}) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			data, _ := json.Marshal(map[string]any{"op": 1, "d": nil})
			_ = conn.WriteMessage(websocket.TextMessage, data)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (q *QQChannel) identify(conn *websocket.Conn, token string) error {
	data, _ := json.Marshal(map[string]any{
		"op": 2,
		"d": map[string]any{
			"token":   "QQBot " + token,
			"intents": qqIntents,
			"shard":   []int{0, 1},
		},
	})
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (q *QQChannel) handleEvent(raw json.RawMessage, isGroup bool) {
	var event struct {
		ID      string `json:"id"`
		Content string `json:"content"`
		Author  struct {
			UserOpenID   string `json:"user_openid"`
			MemberOpenID string `json:"member_openid"`
			ID           string `json:"id"`
		} `json:"author"`
		GroupOpenID string `json:"group_openid"`
	}
	if err := json.Unmarshal(raw, &event); err != nil {
		return
	}
	if q.alreadySeen(event.ID) {
		return
	}

	senderID := event.Author.UserOpenID
	if senderID == "" {
		senderID = event.Author.MemberOpenID
	}
	if senderID == "" {
		senderID = event.Author.ID
	}
	// Group @-messages arrive with the mention already removed but keep
	// leading whitespace.
	content := strings.TrimSpace(event.Content)
	if content == "" || senderID == "" {
		return
	}

	chatID := senderID
	if isGroup {
		chatID = event.GroupOpenID
	}
	q.HandleMessage(senderID, chatID, content, map[string]any{
		"message_id": event.ID,
		"is_group":   isGroup,
	})
}

// alreadySeen records id in the sliding dedup window and reports whether it
// was delivered before.
func (q *QQChannel) alreadySeen(id string) bool {
	if id == "" {
		return false
	}
	q.seenMu.Lock()
	defer q.seenMu.Unlock()
	if q.seen[id] {
		return true
	}
	q.seen[id] = true
	q.seenQueue = append(q.seenQueue, id)
	if len(q.seenQueue) > qqDedupWindow {
		del := q.seenQueue[0]
		q.seenQueue = q.seenQueue[1:]
		delete(q.seen, del)
	}
	return false
}

// Send posts a passive reply. The platform requires the triggering msg_id;
// without it the message would be treated as proactive and rejected for
// unapproved bots.
func (q *QQChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	token, err := q.getAccessToken(ctx)
	if err != nil {
		return err
	}

	isGroup, _ := msg.Metadata()["is_group"].(bool)
	url := fmt.Sprintf("%s/v2/users/%s/messages", qqAPIBase, msg.ChatID())
	if isGroup {
		url = fmt.Sprintf("%s/v2/groups/%s/messages", qqAPIBase, msg.ChatID())
	}

	body := map[string]any{
		"content":  stripURLs(msg.Content()),
		"msg_type": 0,
	}
	if mid, ok := msg.Metadata()["message_id"].(string); ok {
		body["msg_id"] = mid
	}
	data, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "QQBot "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return fmt.Errorf("qq: send failed: HTTP %d: %s", resp.StatusCode, b)
	}
	return nil
}
