// Package provider wraps external inference endpoints behind one completion
// capability, tried in priority order by the analysis orchestrator.
package provider

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/mention-cli/internal/resilience"
	"github.com/sells-group/mention-cli/pkg/openaichat"
)

// Provider performs one text completion. Implementations classify their
// failures via the resilience package so the orchestrator can tell a
// rate limit from a transient outage.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// chat adapts an OpenAI-compatible endpoint (Groq, Cerebras, Mistral).
type chat struct {
	name   string
	client openaichat.Client
	model  string
}

// NewChat wraps an OpenAI-compatible chat client as a Provider.
func NewChat(name string, client openaichat.Client, model string) Provider {
	return &chat{name: name, client: client, model: model}
}

func (c *chat) Name() string { return c.name }

func (c *chat) Complete(ctx context.Context, system, user string) (string, error) {
	temperature := 0.1
	maxTokens := 1024

	resp, err := c.client.ChatCompletion(ctx, openaichat.ChatCompletionRequest{
		Model: c.model,
		Messages: []openaichat.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", classifyChatError(c.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", resilience.SchemaError(eris.Errorf("%s: empty choices", c.name))
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyChatError(name string, err error) error {
	var apiErr *openaichat.APIError
	if errors.As(err, &apiErr) {
		return resilience.FromHTTPStatus(eris.Wrap(err, name), apiErr.StatusCode)
	}
	return resilience.Unavailable(eris.Wrap(err, name))
}
