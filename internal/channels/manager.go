package channels

import (
	"context"
	"log/slog"

	"github.com/xkinput/keytao-bot/internal/bus"
	"github.com/xkinput/keytao-bot/internal/config"
	"github.com/xkinput/keytao-bot/internal/schema"
)

// Manager owns all enabled channels and routes outbound messages.
type Manager struct {
	channels map[string]schema.Channel
	bus      *bus.MessageBus
}

// NewManager creates a Manager with the channels the config enables.
// withCLI additionally registers the terminal channel; gateway mode leaves
// it off so stdin stays free.
func NewManager(cfg *config.Config, b *bus.MessageBus, withCLI bool) *Manager {
	m := &Manager{
		channels: make(map[string]schema.Channel),
		bus:      b,
	}

	if withCLI {
		cli := NewCLIChannel(b)
		m.channels[cli.Name()] = cli
		slog.Info("channel enabled", "name", cli.Name())
	}
	if cfg.Channels.Telegram.Enabled {
		ch := NewTelegramChannel(&cfg.Channels.Telegram, b)
		m.channels[ch.Name()] = ch
		slog.Info("channel enabled", "name", ch.Name())
	}
	if cfg.Channels.QQ.Enabled {
		ch := NewQQChannel(&cfg.Channels.QQ, b)
		m.channels[ch.Name()] = ch
		slog.Info("channel enabled", "name", ch.Name())
	}

	return m
}

// EnabledChannels returns the names of all enabled channels.
func (m *Manager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for n := range m.channels {
		names = append(names, n)
	}
	return names
}

// StartAll starts all channels concurrently and dispatches outbound
// messages. Blocks until ctx is cancelled.
func (m *Manager) StartAll(ctx context.Context) error {
	go m.dispatchOutbound(ctx)

	for name, ch := range m.channels {
		go func(n string, c schema.Channel) {
			slog.Info("starting channel", "name", n)
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				slog.Error("channel exited with error", "name", n, "error", err)
			}
		}(name, ch)
	}

	<-ctx.Done()
	return ctx.Err()
}

// dispatchOutbound reads agent replies from the bus and routes each to its
// channel's Send.
func (m *Manager) dispatchOutbound(ctx context.Context) {
	for {
		select {
		case msg := <-m.bus.Outbound:
			ch, ok := m.channels[string(msg.Channel())]
			if !ok {
				slog.Debug("no channel for outbound message", "channel", msg.Channel())
				continue
			}
			if err := ch.Send(ctx, msg); err != nil {
				slog.Error("send error", "channel", msg.Channel(), "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
