package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xkinput/keytao-bot/internal/bus"
	"github.com/xkinput/keytao-bot/internal/keytao"
)

func TestProcess_NoProviderConfigured(t *testing.T) {
	l := NewLoop(bus.NewMessageBus(1), nil, nil, nil)
	msg := bus.NewInboundMessage(bus.ChannelCLI, "u1", "c1", "你好怎么打")

	if got := l.Process(context.Background(), msg); got != noProviderReply {
		t.Errorf("got %q", got)
	}
}

func TestProcess_EmptyContentIgnored(t *testing.T) {
	l := NewLoop(bus.NewMessageBus(1), nil, nil, nil)
	msg := bus.NewInboundMessage(bus.ChannelCLI, "u1", "c1", "   ")

	if got := l.Process(context.Background(), msg); got != "" {
		t.Errorf("expected no reply for blank message, got %q", got)
	}
}

func TestProcess_HelpCommand(t *testing.T) {
	l := NewLoop(bus.NewMessageBus(1), nil, nil, nil)
	for _, cmd := range []string{"/help", "/start", "/help@keytao_bot"} {
		msg := bus.NewInboundMessage(bus.ChannelTelegram, "u1", "c1", cmd)
		if got := l.Process(context.Background(), msg); !strings.Contains(got, "键道小助手") {
			t.Errorf("%s: unexpected reply %q", cmd, got)
		}
	}
}

func TestProcess_UnknownCommand(t *testing.T) {
	l := NewLoop(bus.NewMessageBus(1), nil, nil, nil)
	msg := bus.NewInboundMessage(bus.ChannelCLI, "u1", "c1", "/frobnicate")

	if got := l.Process(context.Background(), msg); !strings.Contains(got, "/help") {
		t.Errorf("got %q", got)
	}
}

func TestProcess_BindCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/link/verify" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["platform"] != "qq" || body["platformId"] != "u1" {
			t.Errorf("identity not taken from the message: %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true, "userNickname": "小明",
		})
	}))
	t.Cleanup(srv.Close)

	l := NewLoop(bus.NewMessageBus(1), nil, keytao.NewBotClient(srv.URL, "tok"), nil)
	msg := bus.NewInboundMessage(bus.ChannelQQ, "u1", "c1", "/bind ABC123")

	got := l.Process(context.Background(), msg)
	if !strings.Contains(got, "绑定成功") || !strings.Contains(got, "小明") {
		t.Errorf("got %q", got)
	}
}

func TestProcess_BindWithoutKey(t *testing.T) {
	l := NewLoop(bus.NewMessageBus(1), nil, keytao.NewBotClient("http://x", "tok"), nil)
	msg := bus.NewInboundMessage(bus.ChannelQQ, "u1", "c1", "/bind")

	if got := l.Process(context.Background(), msg); !strings.Contains(got, "用法") {
		t.Errorf("got %q", got)
	}
}

func TestProcess_BindUnconfigured(t *testing.T) {
	l := NewLoop(bus.NewMessageBus(1), nil, keytao.NewBotClient("http://x", ""), nil)
	msg := bus.NewInboundMessage(bus.ChannelQQ, "u1", "c1", "/bind ABC123")

	if got := l.Process(context.Background(), msg); !strings.Contains(got, "未配置") {
		t.Errorf("got %q", got)
	}
}
