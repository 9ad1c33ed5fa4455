// Package dependency wires keytao-bot's services using go.uber.org/dig.
package dependency

import (
	"log/slog"

	"go.uber.org/dig"

	"github.com/xkinput/keytao-bot/internal/agent"
	"github.com/xkinput/keytao-bot/internal/bus"
	"github.com/xkinput/keytao-bot/internal/config"
	"github.com/xkinput/keytao-bot/internal/docs"
	"github.com/xkinput/keytao-bot/internal/keytao"
	"github.com/xkinput/keytao-bot/internal/providers"
	"github.com/xkinput/keytao-bot/internal/schema"
	"github.com/xkinput/keytao-bot/internal/tools"
)

const busBufferSize = 32

// Container holds the resolved service singletons. Callers use the typed
// getter methods; they never need to import dig directly.
type Container struct {
	provider schema.LLMProvider
	msgBus   *bus.MessageBus
	loop     *agent.Loop
	registry *tools.Registry
}

func (c *Container) Provider() schema.LLMProvider { return c.provider }
func (c *Container) MessageBus() *bus.MessageBus  { return c.msgBus }
func (c *Container) AgentLoop() *agent.Loop       { return c.loop }
func (c *Container) Registry() *tools.Registry    { return c.registry }

// New builds and wires all services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	for _, ctor := range []any{
		func() *config.Config { return cfg },
		newProvider,
		newMessageBus,
		newKeytaoClient,
		newBotClient,
		newDocsClient,
		newRegistry,
		newRunner,
		newLoop,
	} {
		if err := d.Provide(ctor); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		provider schema.LLMProvider,
		msgBus *bus.MessageBus,
		loop *agent.Loop,
		registry *tools.Registry,
	) {
		result = &Container{
			provider: provider,
			msgBus:   msgBus,
			loop:     loop,
			registry: registry,
		}
	})
	return result, err
}

// newProvider yields a nil provider when no API key is configured; the agent
// loop turns that into a configuration notice instead of a crash.
func newProvider(cfg *config.Config) schema.LLMProvider {
	if cfg.DashScope.APIKey == "" {
		slog.Warn("dashscope api key not configured, chat capability disabled",
			"configPath", config.ConfigPath())
		return nil
	}
	return providers.New(cfg.DashScope.APIKey, cfg.DashScope.APIBase, cfg.DashScope.Model)
}

func newMessageBus() *bus.MessageBus {
	return bus.NewMessageBus(busBufferSize)
}

func newKeytaoClient(cfg *config.Config) *keytao.Client {
	return keytao.NewClient(cfg.Keytao.BaseURL)
}

func newBotClient(cfg *config.Config) *keytao.BotClient {
	return keytao.NewBotClient(cfg.Keytao.BaseURL, cfg.Keytao.BotToken)
}

func newDocsClient(cfg *config.Config) (*docs.Client, error) {
	return docs.NewClient(cfg.Docs.RawBase, cfg.Docs.SiteBase, cfg.Docs.MappingPath, slog.Default())
}

func newRegistry(
	client *keytao.Client,
	botClient *keytao.BotClient,
	docsClient *docs.Client,
) (*tools.Registry, error) {
	b := tools.NewRegistryBuilder().
		WithTool(tools.NewLookupByCodeTool(client)).
		WithTool(tools.NewLookupByWordTool(client)).
		WithTool(tools.NewFetchDocsTool(docsClient))

	// Mutating tools only make sense with a bot token.
	if botClient.Available() {
		b.WithTool(tools.NewCreatePhraseTool(botClient)).
			WithTool(tools.NewSubmitBatchTool(botClient))
	}
	return b.Build()
}

func newRunner(cfg *config.Config, provider schema.LLMProvider, registry *tools.Registry) *agent.Runner {
	if provider == nil {
		return nil
	}
	return agent.NewRunner(provider, registry, agent.Settings{
		Model:       cfg.DashScope.Model,
		MaxTokens:   cfg.DashScope.MaxTokens,
		Temperature: cfg.DashScope.Temperature,
		MaxIter:     cfg.DashScope.MaxToolIterations,
	}, slog.Default())
}

func newLoop(b *bus.MessageBus, runner *agent.Runner, botClient *keytao.BotClient) *agent.Loop {
	return agent.NewLoop(b, runner, botClient, slog.Default())
}
