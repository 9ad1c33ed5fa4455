package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xkinput/keytao-bot/internal/bus"
	"github.com/xkinput/keytao-bot/internal/keytao"
	"github.com/xkinput/keytao-bot/internal/tools"
)

const (
	noProviderReply = "AI 服务未配置，请联系管理员设置 DashScope API Key。"

	helpText = `【键道小助手】

直接提问即可，例如：
• 你好 怎么打
• abc 对应什么词
• 键道怎么学
• 帮我加个词：编码 abcd，词条 测试词

命令：
• /bind <绑定码> — 绑定键道账号（绑定码在官网个人页生成）
• /help — 显示本帮助

官网: https://keytao.vercel.app
文档: https://keytao-docs.vercel.app`
)

// Loop consumes inbound messages from the bus, runs each through the tool
// loop (or a slash-command handler), and publishes replies.
type Loop struct {
	bus       *bus.MessageBus
	runner    *Runner // nil when no API key is configured
	botClient *keytao.BotClient
	logger    *slog.Logger
}

// NewLoop creates the agent loop. runner may be nil, in which case every
// non-command message gets a configuration notice instead of an LLM reply.
func NewLoop(b *bus.MessageBus, runner *Runner, botClient *keytao.BotClient, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{bus: b, runner: runner, botClient: botClient, logger: logger}
}

// Run reads from the inbound bus and processes each message in its own
// goroutine. Blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("agent loop started")
	for {
		select {
		case msg := <-l.bus.Inbound:
			go l.handleMessage(ctx, msg)
		case <-ctx.Done():
			l.logger.Info("agent loop stopping")
			return ctx.Err()
		}
	}
}

func (l *Loop) handleMessage(ctx context.Context, msg bus.InboundMessage) {
	logger := l.logger.With("requestId", msg.RequestID(), "channel", msg.Channel())

	reply := l.process(ctx, msg, logger)
	if reply == "" {
		return
	}
	out := bus.NewOutboundMessage(msg.Channel(), msg.ChatID(), reply)
	out.SetMetadata(msg.Metadata())
	l.bus.PublishOutbound(out)
}

// Process answers one message synchronously, bypassing the bus. Used by the
// CLI command and by tests.
func (l *Loop) Process(ctx context.Context, msg bus.InboundMessage) string {
	return l.process(ctx, msg, l.logger.With("requestId", msg.RequestID()))
}

func (l *Loop) process(ctx context.Context, msg bus.InboundMessage, logger *slog.Logger) string {
	content := strings.TrimSpace(msg.Content())
	if content == "" {
		return ""
	}

	if strings.HasPrefix(content, "/") {
		return l.handleCommand(ctx, msg, content)
	}

	if l.runner == nil {
		return noProviderReply
	}

	ctx = tools.WithTurnContext(ctx, tools.TurnContext{
		Platform: string(msg.Channel()),
		SenderID: msg.SenderID(),
	})
	logger.Info("processing message", "length", len(content))
	return l.runner.Run(ctx, content)
}

func (l *Loop) handleCommand(ctx context.Context, msg bus.InboundMessage, content string) string {
	fields := strings.Fields(content)
	cmd := strings.ToLower(fields[0])
	// Telegram attaches the bot name to commands in groups: /bind@keytao_bot.
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}

	switch cmd {
	case "/help", "/start":
		return helpText
	case "/bind":
		if len(fields) < 2 {
			return "用法: /bind <绑定码>\n绑定码请在官网个人页面生成: https://keytao.vercel.app"
		}
		return l.bindAccount(ctx, msg, fields[1])
	default:
		return "未知命令，发送 /help 查看用法"
	}
}

func (l *Loop) bindAccount(ctx context.Context, msg bus.InboundMessage, key string) string {
	if l.botClient == nil || !l.botClient.Available() {
		return "绑定功能未配置，请联系管理员"
	}

	res, err := l.botClient.VerifyBindKey(ctx, key, string(msg.Channel()), msg.SenderID())
	if err != nil {
		l.logger.Error("bind verification failed", "error", err)
		return "绑定服务暂时不可用，请稍后再试"
	}
	if !res.Success {
		return "绑定失败: " + res.Message
	}
	return fmt.Sprintf("绑定成功！欢迎你，%s～现在可以让我帮你加词了", res.Nickname)
}
