// Command llmpress compresses and decompresses text files using an LLM's
// next-token predictions as a shared, regenerable predictor between the
// encoder and decoder.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	llmpress "github.com/brodiemilliken/LLMPress"
	"github.com/brodiemilliken/LLMPress/narrator"
	"github.com/brodiemilliken/LLMPress/pipeline"
	"github.com/brodiemilliken/LLMPress/predictor"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v2"
)

type fileConfig struct {
	llmpress.Config `yaml:",inline"`

	RedisAddr     string `yaml:"redis_addr"`
	CacheDBPath   string `yaml:"cache_db_path"`
	PredictorMode string `yaml:"predictor_mode"`

	LogLevel string `yaml:"log_level"`

	Narrate          bool   `yaml:"narrate"`
	NarratorProvider string `yaml:"narrator_provider"` // "ollama", "openai", "anthropic", "openaicompat"

	OllamaHost  string `yaml:"ollama_host"`
	OllamaModel string `yaml:"ollama_model"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`

	AnthropicAPIKey    string `yaml:"anthropic_api_key"`
	AnthropicBaseURL   string `yaml:"anthropic_base_url"`
	AnthropicModel     string `yaml:"anthropic_model"`
	AnthropicMaxTokens int    `yaml:"anthropic_max_tokens"`

	OpenAICompatBaseURL string `yaml:"openaicompat_base_url"`
	OpenAICompatAPIKey  string `yaml:"openaicompat_api_key"`
	OpenAICompatModel   string `yaml:"openaicompat_model"`
}

func main() {
	mode := flag.String("mode", "", "compress or decompress")
	inPath := flag.String("in", "", "input file path")
	outPath := flag.String("out", "", "output file path")
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	if *mode != "compress" && *mode != "decompress" {
		fmt.Fprintln(os.Stderr, "error: -mode must be \"compress\" or \"decompress\"")
		os.Exit(1)
	}
	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "error: -in and -out are required")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	pred, closePred, err := buildPredictor(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building predictor: %v\n", err)
		os.Exit(1)
	}
	defer closePred()

	data, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", *inPath, err)
		os.Exit(1)
	}

	ctx := context.Background()
	obs := llmpress.Observer(func(stage string, index, total int) {
		logger.Debug("progress", slog.String("stage", stage), slog.Int("index", index), slog.Int("total", total))
	})

	switch *mode {
	case "compress":
		runCompress(ctx, cfg, pred, string(data), *outPath, logger, obs)
	case "decompress":
		runDecompress(ctx, pred, data, *outPath, logger, obs)
	}
}

func runCompress(ctx context.Context, cfg fileConfig, pred llmpress.Predictor, text, outPath string, logger *slog.Logger, obs llmpress.Observer) {
	start := time.Now()
	result, err := pipeline.Compress(ctx, cfg.Config, pred, text, obs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error compressing: %v\n", err)
		os.Exit(1)
	}
	logger.Info("compressed",
		slog.Int("original_bytes", result.OriginalSize),
		slog.Int("compressed_bytes", result.CompressedSize),
		slog.Int("literal_count", result.LiteralCount),
		slog.Int("rank_count", result.RankCount),
		slog.Duration("elapsed", time.Since(start)))

	if err := os.WriteFile(outPath, result.Bytes, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	if cfg.Narrate {
		narrate(cfg, result, text, logger)
	}
}

func runDecompress(ctx context.Context, pred llmpress.Predictor, data []byte, outPath string, logger *slog.Logger, obs llmpress.Observer) {
	start := time.Now()
	text, err := pipeline.Decompress(ctx, pred, data, obs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error decompressing: %v\n", err)
		os.Exit(1)
	}
	logger.Info("decompressed",
		slog.Int("output_bytes", len(text)),
		slog.Duration("elapsed", time.Since(start)))

	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}
}

func narrate(cfg fileConfig, result pipeline.Result, originalText string, logger *slog.Logger) {
	client, err := buildNarratorClient(cfg, logger)
	if err != nil {
		logger.Warn("narrate requested but client could not be built", slog.String("error", err.Error()))
		return
	}

	n := narrator.New(client)

	preview := originalText
	const previewLimit = 500
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}

	summary, err := n.Describe(narrator.Stats{
		OriginalSize:   result.OriginalSize,
		CompressedSize: result.CompressedSize,
		LiteralCount:   result.LiteralCount,
		RankCount:      result.RankCount,
		BreakCount:     result.BreakCount,
	}, preview)
	if err != nil {
		logger.Warn("narration failed", slog.String("error", err.Error()))
		return
	}

	fmt.Println("\nSummary:")
	fmt.Println(summary)
}

// buildNarratorClient selects the configured narrator_provider and
// constructs the matching LLM client. It defaults to "ollama" when the key
// is omitted, preserving the pre-existing single-provider behavior.
func buildNarratorClient(cfg fileConfig, logger *slog.Logger) (llmpress.LLM, error) {
	provider := cfg.NarratorProvider
	if provider == "" {
		provider = "ollama"
	}

	switch provider {
	case "ollama":
		if cfg.OllamaHost == "" {
			return nil, fmt.Errorf("narrator_provider %q requires ollama_host", provider)
		}
		return narrator.NewOllama(cfg.OllamaHost, cfg.OllamaModel, narrator.Parameters{}, logger), nil

	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("narrator_provider %q requires openai_api_key", provider)
		}
		return narrator.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, narrator.Parameters{}, logger), nil

	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("narrator_provider %q requires anthropic_api_key", provider)
		}
		maxTokens := cfg.AnthropicMaxTokens
		if maxTokens == 0 {
			maxTokens = 1024
		}
		return narrator.NewAnthropic(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, cfg.AnthropicModel, maxTokens, narrator.Parameters{}), nil

	case "openaicompat":
		if cfg.OpenAICompatBaseURL == "" {
			return nil, fmt.Errorf("narrator_provider %q requires openaicompat_base_url", provider)
		}
		return narrator.NewOpenAICompat(cfg.OpenAICompatBaseURL, cfg.OpenAICompatAPIKey, cfg.OpenAICompatModel, narrator.Parameters{}, logger), nil

	default:
		return nil, fmt.Errorf("unknown narrator_provider %q", provider)
	}
}

func loadConfig(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// buildPredictor wires the configured predictor transport, wrapping it in
// the bbolt memoization cache unless a cache path is omitted. It returns a
// close function the caller must always invoke, even on the error path
// where it is a no-op.
func buildPredictor(cfg fileConfig, logger *slog.Logger) (llmpress.Predictor, func(), error) {
	noop := func() {}

	if cfg.PredictorMode == "local" {
		local, err := predictor.NewLocal()
		if err != nil {
			return nil, noop, fmt.Errorf("build local predictor: %w", err)
		}
		return wrapCache(cfg, local, logger, noop)
	}

	if cfg.RedisAddr == "" {
		return nil, noop, fmt.Errorf("predictor_mode %q requires redis_addr", cfg.PredictorMode)
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	closeRedis := func() { _ = client.Close() }

	queue := predictor.NewQueue(client, 30*time.Second, uint64(3), logger)
	return wrapCache(cfg, queue, logger, closeRedis)
}

func wrapCache(cfg fileConfig, inner llmpress.Predictor, logger *slog.Logger, innerClose func()) (llmpress.Predictor, func(), error) {
	if cfg.CacheDBPath == "" {
		return inner, innerClose, nil
	}

	cache, err := predictor.NewCache(cfg.CacheDBPath, inner, logger)
	if err != nil {
		innerClose()
		return nil, func() {}, fmt.Errorf("build predictor cache: %w", err)
	}

	return cache, func() {
		_ = cache.Close()
		innerClose()
	}, nil
}
