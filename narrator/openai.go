package narrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI implements llmpress.LLM against the hosted OpenAI chat completions
// API, or any endpoint baseURL points at (tests point it at an httptest
// server instead of api.openai.com).
type OpenAI struct {
	model  string
	params Parameters

	client *goopenai.Client
	logger *slog.Logger
}

// NewOpenAI builds an OpenAI client authenticated with apiKey. An empty
// baseURL uses the real OpenAI API.
func NewOpenAI(apiKey, baseURL, model string, params Parameters, logger *slog.Logger) OpenAI {
	config := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return OpenAI{
		model:  model,
		params: params,
		client: goopenai.NewClientWithConfig(config),
		logger: logger.With(slog.String("module", "narrator.openai")),
	}
}

// Chat implements llmpress.LLM.
func (o OpenAI) Chat(messages []string) (string, error) {
	roles := rolesFor(messages)
	msgs := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		role := goopenai.ChatMessageRoleUser
		if roles[i] == "assistant" {
			role = goopenai.ChatMessageRoleAssistant
		}
		msgs[i] = goopenai.ChatCompletionMessage{Role: role, Content: msg}
	}

	req := o.chatRequest(msgs)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("narrator openai: chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("narrator openai: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

func (o OpenAI) chatRequest(messages []goopenai.ChatCompletionMessage) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	}

	if o.params.Temperature != nil {
		req.Temperature = *o.params.Temperature
	}
	if o.params.TopP != nil {
		req.TopP = *o.params.TopP
	}
	if o.params.Stop != nil {
		req.Stop = o.params.Stop
	}
	if o.params.PresencePenalty != nil {
		req.PresencePenalty = *o.params.PresencePenalty
	}
	if o.params.Seed != nil {
		req.Seed = o.params.Seed
	}
	if o.params.FrequencyPenalty != nil {
		req.FrequencyPenalty = *o.params.FrequencyPenalty
	}
	if o.params.LogitBias != nil {
		req.LogitBias = o.params.LogitBias
	}
	if o.params.MaxTokens != nil {
		req.MaxTokens = *o.params.MaxTokens
	}
	if o.params.Logprobs != nil {
		req.LogProbs = *o.params.Logprobs
	}
	if o.params.TopLogprobs != nil {
		req.TopLogProbs = *o.params.TopLogprobs
	}

	return req
}
