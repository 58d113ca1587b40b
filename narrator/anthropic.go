package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Anthropic implements llmpress.LLM against the Anthropic Messages API.
// Unlike OpenAI, Anthropic has no Go SDK in this module's dependency graph,
// so the request is built by hand against an http.Client, as OpenAICompat
// does.
type Anthropic struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int

	params Parameters

	client *http.Client
}

type anthropicMessage struct {
	Role    string                    `json:"role"`
	Content []anthropicMessageContent `json:"content"`
}

type anthropicMessageContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`

	StopSequences []string `json:"stop_sequences,omitempty"`
	Temperature   *float32 `json:"temperature,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	TopP          *float32 `json:"top_p,omitempty"`
}

const defaultAnthropicBaseURL = "https://api.anthropic.com/v1"

// NewAnthropic builds an Anthropic client authenticated with apiKey,
// bounding each response to maxTokens. An empty baseURL talks to the real
// Anthropic API; tests point it at an httptest server instead.
func NewAnthropic(baseURL, apiKey, model string, maxTokens int, params Parameters) Anthropic {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}

	return Anthropic{
		baseURL:   baseURL,
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		params:    params,
		client:    &http.Client{Timeout: time.Minute},
	}
}

// Chat implements llmpress.LLM.
func (a Anthropic) Chat(messages []string) (string, error) {
	roles := rolesFor(messages)
	msgs := make([]anthropicMessage, len(messages))
	for i, msg := range messages {
		msgs[i] = anthropicMessage{
			Role:    roles[i],
			Content: []anthropicMessageContent{{Type: "text", Text: msg}},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	reply, err := a.send(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("narrator anthropic: chat: %w", err)
	}
	if len(reply.Content) == 0 {
		return "", fmt.Errorf("narrator anthropic: empty response content")
	}

	return reply.Content[0].Text, nil
}

func (a Anthropic) send(ctx context.Context, messages []anthropicMessage) (anthropicMessage, error) {
	body := anthropicRequest{
		Model:     a.model,
		Messages:  messages,
		MaxTokens: a.maxTokens,

		StopSequences: a.params.Stop,
		Temperature:   a.params.Temperature,
		TopK:          a.params.TopK,
		TopP:          a.params.TopP,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return anthropicMessage{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return anthropicMessage{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return anthropicMessage{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return anthropicMessage{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var reply anthropicMessage
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return anthropicMessage{}, fmt.Errorf("decode response: %w", err)
	}

	return reply, nil
}
