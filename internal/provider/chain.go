package provider

import (
	"go.uber.org/zap"

	"github.com/sells-group/mention-cli/internal/config"
	"github.com/sells-group/mention-cli/pkg/anthropic"
	"github.com/sells-group/mention-cli/pkg/openaichat"
)

// BuildChain assembles the active provider chain in priority order from
// configuration. Providers without an API key are left out. The returned
// slice may be empty; the analysis orchestrator then classifies everything
// with the keyword fallback.
func BuildChain(cfg config.ProvidersConfig) []Provider {
	var chain []Provider

	chatProviders := []struct {
		name string
		cfg  config.ChatProviderConfig
	}{
		{"groq", cfg.Groq},
		{"cerebras", cfg.Cerebras},
		{"mistral", cfg.Mistral},
	}

	for _, p := range chatProviders {
		if p.cfg.Key == "" {
			continue
		}
		client := openaichat.NewClient(p.cfg.Key,
			openaichat.WithBaseURL(p.cfg.BaseURL),
			openaichat.WithModel(p.cfg.Model),
		)
		chain = append(chain, NewChat(p.name, client, p.cfg.Model))
	}

	if cfg.Anthropic.Key != "" {
		chain = append(chain, NewAnthropic(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model))
	}

	names := make([]string, len(chain))
	for i, p := range chain {
		names[i] = p.Name()
	}
	zap.L().Info("provider chain assembled", zap.Strings("providers", names))

	return chain
}
