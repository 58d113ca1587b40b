package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OpenAICompat implements llmpress.LLM against any server speaking the
// OpenAI chat-completions wire format: a self-hosted gateway, a local
// inference server, or a hosted aggregator such as OpenRouter. BaseURL
// selects which; Authorization is only sent when apiKey is non-empty,
// since self-hosted endpoints usually need none.
type OpenAICompat struct {
	baseURL string
	apiKey  string
	model   string
	params  Parameters

	client *http.Client
	logger *slog.Logger
}

// NewOpenAICompat builds a client against baseURL (e.g.
// "https://openrouter.ai/api/v1" or a local vLLM/llama.cpp server).
func NewOpenAICompat(baseURL, apiKey, model string, params Parameters, logger *slog.Logger) OpenAICompat {
	return OpenAICompat{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		params:  params,
		client:  &http.Client{Timeout: 110 * time.Second},
		logger:  logger.With(slog.String("module", "narrator.openaicompat")),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model            string         `json:"model"`
	Messages         []chatMessage  `json:"messages"`
	Temperature      *float32       `json:"temperature,omitempty"`
	TopP             *float32       `json:"top_p,omitempty"`
	Stop             []string       `json:"stop,omitempty"`
	PresencePenalty  *float32       `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float32       `json:"frequency_penalty,omitempty"`
	Seed             *int           `json:"seed,omitempty"`
	LogitBias        map[string]int `json:"logit_bias,omitempty"`
	MaxTokens        *int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Chat implements llmpress.LLM.
func (o OpenAICompat) Chat(messages []string) (string, error) {
	roles := rolesFor(messages)
	msgs := make([]chatMessage, len(messages))
	for i, msg := range messages {
		msgs[i] = chatMessage{Role: roles[i], Content: msg}
	}

	req := o.chatRequest(msgs)

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Second)
	defer cancel()

	resp, err := o.sendRequest(ctx, req)
	if err != nil {
		return "", fmt.Errorf("narrator openaicompat: chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("narrator openaicompat: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

func (o OpenAICompat) chatRequest(messages []chatMessage) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	}

	if o.params.Temperature != nil {
		req.Temperature = o.params.Temperature
	}
	if o.params.TopP != nil {
		req.TopP = o.params.TopP
	}
	if o.params.Stop != nil {
		req.Stop = o.params.Stop
	}
	if o.params.PresencePenalty != nil {
		req.PresencePenalty = o.params.PresencePenalty
	}
	if o.params.Seed != nil {
		req.Seed = o.params.Seed
	}
	if o.params.FrequencyPenalty != nil {
		req.FrequencyPenalty = o.params.FrequencyPenalty
	}
	if o.params.LogitBias != nil {
		req.LogitBias = o.params.LogitBias
	}
	if o.params.MaxTokens != nil {
		req.MaxTokens = o.params.MaxTokens
	}

	return req
}

func (o OpenAICompat) sendRequest(ctx context.Context, req chatCompletionRequest) (*chatCompletionResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &chatResp, nil
}
