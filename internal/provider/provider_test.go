package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mention-cli/internal/resilience"
	"github.com/sells-group/mention-cli/pkg/openaichat"
)

// mockChatClient implements openaichat.Client.
type mockChatClient struct {
	lastReq openaichat.ChatCompletionRequest
	resp    *openaichat.ChatCompletionResponse
	err     error
}

func (m *mockChatClient) ChatCompletion(_ context.Context, req openaichat.ChatCompletionRequest) (*openaichat.ChatCompletionResponse, error) {
	m.lastReq = req
	return m.resp, m.err
}

func TestChat_Complete_ReturnsContent(t *testing.T) {
	client := &mockChatClient{
		resp: &openaichat.ChatCompletionResponse{
			Choices: []openaichat.Choice{
				{Message: openaichat.Message{Role: "assistant", Content: `[{"id":"a"}]`}},
			},
		},
	}

	p := NewChat("groq", client, "llama-3.3-70b-versatile")
	out, err := p.Complete(context.Background(), "system prompt", "user prompt")

	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, out)
	assert.Equal(t, "groq", p.Name())

	require.Len(t, client.lastReq.Messages, 2)
	assert.Equal(t, "system", client.lastReq.Messages[0].Role)
	assert.Equal(t, "user", client.lastReq.Messages[1].Role)
	assert.Equal(t, "llama-3.3-70b-versatile", client.lastReq.Model)
}

func TestChat_Complete_EmptyChoicesIsSchemaError(t *testing.T) {
	client := &mockChatClient{resp: &openaichat.ChatCompletionResponse{}}

	p := NewChat("groq", client, "m")
	_, err := p.Complete(context.Background(), "s", "u")

	require.Error(t, err)
	assert.True(t, resilience.IsSchemaError(err))
}

func TestChat_Complete_ClassifiesAPIErrors(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
		label  string
	}{
		{429, resilience.IsRateLimited, "rate limited"},
		{403, resilience.IsBlocked, "blocked"},
		{500, func(err error) bool { return resilience.KindOf(err) == resilience.KindUnavailable }, "unavailable"},
	}

	for _, tt := range tests {
		client := &mockChatClient{err: &openaichat.APIError{StatusCode: tt.status, Body: "nope"}}
		p := NewChat("groq", client, "m")

		_, err := p.Complete(context.Background(), "s", "u")
		require.Error(t, err)
		assert.True(t, tt.check(err), tt.label)
	}
}

func TestChat_Complete_TransportErrorIsUnavailable(t *testing.T) {
	client := &mockChatClient{err: errors.New("connection refused")}
	p := NewChat("groq", client, "m")

	_, err := p.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Equal(t, resilience.KindUnavailable, resilience.KindOf(err))
}
