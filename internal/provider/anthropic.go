package provider

import (
	"context"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"

	"github.com/sells-group/mention-cli/internal/resilience"
	"github.com/sells-group/mention-cli/pkg/anthropic"
)

// anthropicProvider adapts the Anthropic Messages API as a Provider. The
// shared system preamble is sent with a cache breakpoint so repeated batch
// calls within a run mostly hit the prompt cache.
type anthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropic wraps an Anthropic client as a Provider.
func NewAnthropic(client anthropic.Client, model string) Provider {
	return &anthropicProvider{client: client, model: model}
}

func (a *anthropicProvider) Name() string { return "anthropic" }

func (a *anthropicProvider) Complete(ctx context.Context, system, user string) (string, error) {
	temperature := 0.1

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   1024,
		System:      anthropic.BuildCachedSystemBlocks(system),
		Messages:    []anthropic.Message{{Role: "user", Content: user}},
		Temperature: &temperature,
	})
	if err != nil {
		return "", classifyAnthropicError(err)
	}

	return resp.Text(), nil
}

func classifyAnthropicError(err error) error {
	if anthropic.IsRateLimitError(err) {
		return resilience.RateLimited(eris.Wrap(err, "anthropic"))
	}
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return resilience.FromHTTPStatus(eris.Wrap(err, "anthropic"), apiErr.StatusCode)
	}
	return resilience.Unavailable(eris.Wrap(err, "anthropic"))
}
