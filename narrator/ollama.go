package narrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// Ollama implements llmpress.LLM against a local or remote Ollama server,
// for narration without a hosted API key.
type Ollama struct {
	model string

	params Parameters

	client *api.Client

	logger *slog.Logger
}

// NewOllama builds an Ollama client targeting host. A malformed host URL
// panics, matching the fail-fast posture of constructing any other
// narrator client with bad configuration.
func NewOllama(host, model string, params Parameters, logger *slog.Logger) Ollama {
	u, err := url.Parse(host)
	if err != nil {
		panic(err)
	}

	return Ollama{
		model:  model,
		params: params,
		client: api.NewClient(u, &http.Client{}),
		logger: logger.With(slog.String("module", "narrator.ollama")),
	}
}

// Chat implements llmpress.LLM.
func (o Ollama) Chat(messages []string) (string, error) {
	roles := rolesFor(messages)
	msgs := make([]api.Message, len(messages))
	for i, msg := range messages {
		msgs[i] = api.Message{Role: roles[i], Content: msg}
	}

	req := o.chatRequest(msgs)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var result strings.Builder
	if err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
		result.WriteString(res.Message.Content)
		return nil
	}); err != nil {
		return "", fmt.Errorf("narrator ollama: chat: %w", err)
	}

	return result.String(), nil
}

func (o Ollama) chatRequest(messages []api.Message) api.ChatRequest {
	req := api.ChatRequest{
		Model:    o.model,
		Messages: messages,
	}

	opts := make(map[string]any)
	if o.params.Temperature != nil {
		opts["temperature"] = *o.params.Temperature
	}
	if o.params.Seed != nil {
		opts["seed"] = *o.params.Seed
	}
	if o.params.Stop != nil {
		opts["stop"] = o.params.Stop
	}
	if o.params.TopK != nil {
		opts["top_k"] = *o.params.TopK
	}
	if o.params.TopP != nil {
		opts["top_p"] = *o.params.TopP
	}
	if o.params.MinP != nil {
		opts["min_p"] = *o.params.MinP
	}
	if o.params.IncludeReasoning != nil {
		req.Think = o.params.IncludeReasoning
	}
	req.Options = opts

	return req
}
