// Package config defines the configuration schema for keytao-bot.
//
// JSON keys use camelCase. Every field has a default so a missing or empty
// config file still yields a runnable (if credential-less) bot.
package config

// DashScopeConfig holds settings for the DashScope (Qwen) completion API.
// An empty APIKey disables the chat capability at startup; it never crashes
// the process.
type DashScopeConfig struct {
	APIKey            string  `json:"apiKey"`
	APIBase           string  `json:"apiBase"`
	Model             string  `json:"model"`
	MaxTokens         int     `json:"maxTokens"`
	Temperature       float64 `json:"temperature"`
	MaxToolIterations int     `json:"maxToolIterations"`
}

func defaultDashScopeConfig() DashScopeConfig {
	return DashScopeConfig{
		APIBase:           "https://dashscope.aliyuncs.com/compatible-mode/v1",
		Model:             "qwen-plus",
		MaxTokens:         1000,
		Temperature:       0.7,
		MaxToolIterations: 3,
	}
}

// KeytaoConfig holds the dictionary service endpoint and the bot API token
// used for authenticated operations (phrase submission, account binding).
type KeytaoConfig struct {
	BaseURL  string `json:"baseUrl"`
	BotToken string `json:"botToken"`
}

func defaultKeytaoConfig() KeytaoConfig {
	return KeytaoConfig{BaseURL: "https://keytao.vercel.app"}
}

// DocsConfig holds the documentation source settings.
// MappingPath optionally points at a YAML file overriding the built-in
// keyword → document-path table.
type DocsConfig struct {
	RawBase     string `json:"rawBase"`
	SiteBase    string `json:"siteBase"`
	MappingPath string `json:"mappingPath,omitempty"`
}

func defaultDocsConfig() DocsConfig {
	return DocsConfig{
		RawBase:  "https://raw.githubusercontent.com/xkinput/keytao-docs/main/",
		SiteBase: "https://keytao-docs.vercel.app",
	}
}

// TelegramConfig configures the Telegram channel.
type TelegramConfig struct {
	Enabled        bool     `json:"enabled"`
	Token          string   `json:"token"`
	AllowFrom      []string `json:"allowFrom"`
	ReplyToMessage bool     `json:"replyToMessage"`
}

func defaultTelegramConfig() TelegramConfig {
	return TelegramConfig{AllowFrom: []string{}, ReplyToMessage: true}
}

// QQConfig configures the QQ official bot channel.
type QQConfig struct {
	Enabled   bool     `json:"enabled"`
	AppID     string   `json:"appId"`
	Secret    string   `json:"secret"`
	AllowFrom []string `json:"allowFrom"`
}

func defaultQQConfig() QQConfig {
	return QQConfig{AllowFrom: []string{}}
}

// ChannelsConfig groups all channel configurations.
type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	QQ       QQConfig       `json:"qq"`
}

func defaultChannelsConfig() ChannelsConfig {
	return ChannelsConfig{
		Telegram: defaultTelegramConfig(),
		QQ:       defaultQQConfig(),
	}
}

// Config is the root configuration object, loaded from ~/.keytao-bot/config.json.
type Config struct {
	DashScope DashScopeConfig `json:"dashscope"`
	Keytao    KeytaoConfig    `json:"keytao"`
	Docs      DocsConfig      `json:"docs"`
	Channels  ChannelsConfig  `json:"channels"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		DashScope: defaultDashScopeConfig(),
		Keytao:    defaultKeytaoConfig(),
		Docs:      defaultDocsConfig(),
		Channels:  defaultChannelsConfig(),
	}
}
