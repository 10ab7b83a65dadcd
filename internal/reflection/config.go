package reflection

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Provider names accepted in Config.Provider.
const (
	ProviderNone   = "none"
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGenAI  = "genai"
	ProviderRemote = "remote"
)

// Config selects and configures the reflection provider.
type Config struct {
	Provider   string        `json:"provider" yaml:"provider" mapstructure:"provider"`
	APIKey     string        `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
	Model      string        `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`
	BaseURL    string        `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
	CacheBytes int64         `json:"cache_bytes" yaml:"cache_bytes" mapstructure:"cache_bytes"`
	CacheTTL   time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// New builds the Reflector for cfg. The returned close function releases
// the cache and must be called once the Reflector is no longer used.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Reflector, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() {}

	var gen Generator
	switch cfg.Provider {
	case "", ProviderNone:
	case ProviderGroq, ProviderOpenAI:
		gen = NewChatClient(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderGenAI:
		g, err := NewGenAIGenerator(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, noop, err
		}
		gen = g
	case ProviderRemote:
		if cfg.BaseURL == "" {
			return nil, noop, fmt.Errorf("remote reflection provider requires base_url")
		}
		return NewRemoteClient(cfg.BaseURL, logger), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown reflection provider %q", cfg.Provider)
	}

	opts := []Option{WithLogger(logger)}
	closeFn := noop
	if cfg.CacheBytes > 0 && gen != nil {
		cache, err := NewCache(cfg.CacheBytes)
		if err != nil {
			return nil, noop, fmt.Errorf("create reflection cache: %w", err)
		}
		opts = append(opts, WithCache(cache, cfg.CacheTTL))
		closeFn = cache.Close
	}
	logger.Info("reflection provider ready", zap.String("provider", cfg.Provider))
	return NewService(gen, opts...), closeFn, nil
}
