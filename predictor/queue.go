// Package predictor provides Predictor implementations: a Redis-backed
// remote client (Queue), an on-disk memoization layer (Cache), and an
// in-process tokenizer-only predictor for tests and dry runs (Local).
package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	llmpress "github.com/brodiemilliken/LLMPress"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	requestListKey = "llmpress:predictor:requests"
	replyKeyPrefix = "llmpress:predictor:reply:"
)

// request is the envelope pushed onto the Redis request list. A worker pool
// outside this module consumes it, performs the operation against the
// language model, and pushes a response envelope onto replyKeyPrefix+ID.
type request struct {
	ID      string          `json:"id"`
	Op      string          `json:"op"`
	Payload json.RawMessage `json:"payload"`
}

type response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *errorEnvelope  `json:"error,omitempty"`
}

type errorEnvelope struct {
	Kind    string `json:"kind"` // "transport", "protocol", "unavailable"
	Message string `json:"message"`
}

type tokenizeRequest struct {
	Text string `json:"text"`
}

type tokenizeResult struct {
	IDs []uint32 `json:"ids"`
}

type detokenizeRequest struct {
	IDs []uint32 `json:"ids"`
}

type detokenizeResult struct {
	Text string `json:"text"`
}

type topKRequest struct {
	Context []uint32 `json:"context"`
	K       int      `json:"k"`
}

type topKResult struct {
	IDs []uint32 `json:"ids"`
}

// Queue is a Redis-backed request/response Predictor, binding the spec's
// out-of-scope remote task-queue transport (§6.2) to a hand-rolled
// list-push/blocking-pop RPC — the closest Go analog of the original
// system's Celery-over-Redis task dispatch.
type Queue struct {
	client  *redis.Client
	timeout time.Duration
	retries uint64

	logger *slog.Logger
}

// NewQueue builds a Queue against an existing Redis client. timeout bounds
// every request/reply round trip; retries bounds the number of retries of
// transport-level failures and timeouts (§5, §7), after which the call
// returns the last such error (wrapping ErrTransport or ErrTimeout).
func NewQueue(client *redis.Client, timeout time.Duration, retries uint64, logger *slog.Logger) Queue {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return Queue{
		client:  client,
		timeout: timeout,
		retries: retries,
		logger:  logger.With(slog.String("module", "predictor.queue")),
	}
}

// Tokenize implements llmpress.Predictor.
func (q Queue) Tokenize(ctx context.Context, text string) ([]uint32, error) {
	var result tokenizeResult
	if err := q.call(ctx, "tokenize", tokenizeRequest{Text: text}, &result); err != nil {
		return nil, err
	}
	return result.IDs, nil
}

// Detokenize implements llmpress.Predictor.
func (q Queue) Detokenize(ctx context.Context, ids []uint32) (string, error) {
	var result detokenizeResult
	if err := q.call(ctx, "detokenize", detokenizeRequest{IDs: ids}, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// TopK implements llmpress.Predictor.
func (q Queue) TopK(ctx context.Context, ctxTokens []uint32, k int) ([]uint32, error) {
	var result topKResult
	if err := q.call(ctx, "top_k", topKRequest{Context: ctxTokens, K: k}, &result); err != nil {
		return nil, err
	}
	return result.IDs, nil
}

// call pushes a request envelope and blocks on its reply key, retrying
// transport-level failures and timeouts with exponential backoff. A protocol or
// unavailable response is never retried.
func (q Queue) call(ctx context.Context, op string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("predictor queue: marshal %s request: %w", op, llmpress.ErrProtocol)
	}

	id := uuid.NewString()
	reqBody, err := json.Marshal(request{ID: id, Op: op, Payload: body})
	if err != nil {
		return fmt.Errorf("predictor queue: marshal %s envelope: %w", op, llmpress.ErrProtocol)
	}
	replyKey := replyKeyPrefix + id

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, q.timeout)
		defer cancel()

		if err := q.client.LPush(callCtx, requestListKey, reqBody).Err(); err != nil {
			return fmt.Errorf("predictor %s: push request: %w", op, llmpress.ErrTransport)
		}

		res, err := q.client.BLPop(callCtx, q.timeout, replyKey).Result()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
				return fmt.Errorf("predictor %s: %w", op, llmpress.ErrTimeout)
			}
			return fmt.Errorf("predictor %s: %w", op, llmpress.ErrTransport)
		}

		var env response
		if err := json.Unmarshal([]byte(res[1]), &env); err != nil {
			return backoff.Permanent(fmt.Errorf("predictor %s: malformed response: %w", op, llmpress.ErrProtocol))
		}
		if env.Error != nil {
			if env.Error.Kind == "transport" {
				return fmt.Errorf("predictor %s: %s: %w", op, env.Error.Message, llmpress.ErrTransport)
			}
			kind := llmpress.ErrProtocol
			if env.Error.Kind == "unavailable" {
				kind = llmpress.ErrUnavailable
			}
			return backoff.Permanent(fmt.Errorf("predictor %s: %s: %w", op, env.Error.Message, kind))
		}

		if err := json.Unmarshal(env.Result, out); err != nil {
			return backoff.Permanent(fmt.Errorf("predictor %s: malformed result: %w", op, llmpress.ErrProtocol))
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), q.retries), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		q.logger.Error("predictor call failed", slog.String("op", op), slog.String("error", err.Error()))
		return err
	}
	return nil
}
