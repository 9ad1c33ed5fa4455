package channels

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xkinput/keytao-bot/internal/bus"
	"github.com/xkinput/keytao-bot/internal/config"
)

// telegramMaxLen is Telegram's message length limit, with headroom.
const telegramMaxLen = 4000

// TelegramChannel implements the Telegram bot via long polling.
//
// Private chats are always answered; group messages only when the bot is
// @-mentioned, with the mention stripped before processing. Replies are
// plain text since the agent's output format already uses 【】 and bullets.
type TelegramChannel struct {
	Base
	cfg *config.TelegramConfig
	bot *tgbotapi.BotAPI
}

// NewTelegramChannel creates a TelegramChannel.
func NewTelegramChannel(cfg *config.TelegramConfig, b *bus.MessageBus) *TelegramChannel {
	return &TelegramChannel{
		Base: NewBase(bus.ChannelTelegram, b, cfg.AllowFrom),
		cfg:  cfg,
	}
}

func (t *TelegramChannel) Name() string { return string(bus.ChannelTelegram) }

func (t *TelegramChannel) Start(ctx context.Context) error {
	if t.cfg.Token == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}
	bot, err := tgbotapi.NewBotAPI(t.cfg.Token)
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", err)
	}
	t.bot = bot
	slog.Info("telegram: connected", "username", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go t.handleUpdate(update)
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

func (t *TelegramChannel) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	isGroup := msg.Chat.Type != "private"
	content := msg.Text
	if isGroup {
		stripped, mentioned := stripMention(content, t.bot.Self.UserName)
		if !mentioned && !strings.HasPrefix(content, "/") {
			return
		}
		content = stripped
	}
	if strings.TrimSpace(content) == "" {
		return
	}

	senderID := fmt.Sprintf("%d", msg.From.ID)
	if msg.From.UserName != "" {
		senderID = senderID + "|" + msg.From.UserName
	}
	chatID := fmt.Sprintf("%d", msg.Chat.ID)

	// Best-effort typing indicator; Telegram shows it for a few seconds,
	// which covers a typical agent turn.
	t.sendTyping(msg.Chat.ID)

	metadata := map[string]any{
		"message_id": msg.MessageID,
		"user_id":    msg.From.ID,
		"username":   msg.From.UserName,
		"is_group":   isGroup,
	}
	t.HandleMessage(senderID, chatID, content, metadata)
}

// stripMention removes an @botname mention and reports whether one was found.
func stripMention(content, botName string) (string, bool) {
	if botName == "" {
		return content, false
	}
	mention := "@" + botName
	if !strings.Contains(content, mention) {
		return content, false
	}
	return strings.TrimSpace(strings.ReplaceAll(content, mention, " ")), true
}

func (t *TelegramChannel) sendTyping(chatID int64) {
	if t.bot == nil {
		return
	}
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, _ = t.bot.Send(action)
}

func (t *TelegramChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	if t.bot == nil {
		return fmt.Errorf("telegram: bot not running")
	}
	chatID, err := parseChatID(msg.ChatID())
	if err != nil {
		return err
	}
	if msg.Content() == "" {
		return nil
	}

	// Reply-to keeps threads readable in groups.
	var replyMsgID int
	if t.cfg.ReplyToMessage {
		if isGroup, _ := msg.Metadata()["is_group"].(bool); isGroup {
			switch v := msg.Metadata()["message_id"].(type) {
			case int:
				replyMsgID = v
			case float64:
				replyMsgID = int(v)
			}
		}
	}

	for _, chunk := range splitMessage(msg.Content(), telegramMaxLen) {
		m := tgbotapi.NewMessage(chatID, chunk)
		if replyMsgID != 0 {
			m.ReplyToMessageID = replyMsgID
		}
		if _, err := t.bot.Send(m); err != nil {
			return fmt.Errorf("telegram: send: %w", err)
		}
	}
	return nil
}

func parseChatID(s string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid chat_id: %s", s)
	}
	return id, nil
}
