package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Brands    BrandsConfig    `yaml:"brands" mapstructure:"brands"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Analyze   AnalyzeConfig   `yaml:"analyze" mapstructure:"analyze"`
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// BrandsConfig locates the brand configuration file.
type BrandsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// FetchConfig configures the multi-source fetch orchestrator.
type FetchConfig struct {
	LookbackDays     int     `yaml:"lookback_days" mapstructure:"lookback_days"`
	CourtesyDelaySec float64 `yaml:"courtesy_delay_sec" mapstructure:"courtesy_delay_sec"`
	DisableThreshold int     `yaml:"disable_threshold" mapstructure:"disable_threshold"`
	MaxPages         int     `yaml:"max_pages" mapstructure:"max_pages"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnalyzeConfig configures the batch classification orchestrator.
type AnalyzeConfig struct {
	BatchSize      int `yaml:"batch_size" mapstructure:"batch_size"`
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	TimeoutSecs    int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SourcesConfig holds per-source settings.
type SourcesConfig struct {
	ArcticShift ArcticShiftConfig `yaml:"arcticshift" mapstructure:"arcticshift"`
	Official    OfficialConfig    `yaml:"official" mapstructure:"official"`
	Feed        FeedConfig        `yaml:"feed" mapstructure:"feed"`
	Pullpush    PullpushConfig    `yaml:"pullpush" mapstructure:"pullpush"`
}

// ArcticShiftConfig configures the primary archive-search source.
type ArcticShiftConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// OfficialConfig configures the Reddit search source. Credentials are
// optional; without them the client runs read-only.
type OfficialConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	Username     string `yaml:"username" mapstructure:"username"`
	Password     string `yaml:"password" mapstructure:"password"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
}

// FeedConfig configures the RSS feed source.
type FeedConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	MaxPosts int   `yaml:"max_posts" mapstructure:"max_posts"`
}

// PullpushConfig configures the secondary archive source.
type PullpushConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ProvidersConfig holds per-provider inference settings. Providers without
// a key are left out of the chain.
type ProvidersConfig struct {
	Groq      ChatProviderConfig `yaml:"groq" mapstructure:"groq"`
	Cerebras  ChatProviderConfig `yaml:"cerebras" mapstructure:"cerebras"`
	Mistral   ChatProviderConfig `yaml:"mistral" mapstructure:"mistral"`
	Anthropic AnthropicConfig    `yaml:"anthropic" mapstructure:"anthropic"`
}

// ChatProviderConfig holds settings for an OpenAI-compatible chat provider.
type ChatProviderConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MENTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("brands.path", "brands.yaml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.lookback_days", 90)
	v.SetDefault("fetch.courtesy_delay_sec", 2.0)
	v.SetDefault("fetch.disable_threshold", 5)
	v.SetDefault("fetch.max_pages", 5)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("analyze.batch_size", 10)
	v.SetDefault("analyze.max_concurrency", 2)
	v.SetDefault("analyze.timeout_secs", 30)
	v.SetDefault("sources.arcticshift.base_url", "https://arctic-shift.photon-reddit.com")
	v.SetDefault("sources.official.user_agent", "mention-cli:reader (by /u/sells-group)")
	v.SetDefault("sources.feed.base_url", "https://www.reddit.com")
	v.SetDefault("sources.feed.max_posts", 25)
	v.SetDefault("sources.pullpush.base_url", "https://api.pullpush.io")
	v.SetDefault("providers.groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("providers.groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("providers.cerebras.base_url", "https://api.cerebras.ai/v1")
	v.SetDefault("providers.cerebras.model", "llama-3.3-70b")
	v.SetDefault("providers.mistral.base_url", "https://api.mistral.ai/v1")
	v.SetDefault("providers.mistral.model", "mistral-small-latest")
	v.SetDefault("providers.anthropic.model", "claude-haiku-4-5-20251001")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
