// Package reflection produces the one-sentence "reflection" shown next to
// a featured memory. Text generation is delegated to a Generator; the
// Service around it never fails, substituting fixed sentences when the
// memory is empty, the provider errors or the provider answers nothing.
package reflection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Fallback sentences.
const (
	FallbackEmptyMemory = "A silent mark left in the digital sands of time."
	FallbackError       = "A shared fragment of a unique journey."
	FallbackEmptyAnswer = "A profound moment captured for posterity."
)

// ErrNoProvider is returned by the generator used when no provider is
// configured.
var ErrNoProvider = errors.New("no reflection provider configured")

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Reflector returns a reflection for a memory. Implementations never fail.
type Reflector interface {
	Reflect(ctx context.Context, memoryText string) string
}

// Prompt builds the generation prompt for memoryText.
func Prompt(memoryText string) string {
	return fmt.Sprintf("Provide a short, poetic, one-sentence reflection on this memory: \"%s\". "+
		"The reflection should be archival and respectful. Do not use conversational filler.", memoryText)
}

// Service wraps a Generator with fallbacks and an optional result cache.
type Service struct {
	gen     Generator
	cache   *Cache
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache caches reflections per memory text for ttl.
func WithCache(cache *Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.ttl = ttl
	}
}

// WithTimeout bounds each generator call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithLogger sets the logger used to report provider failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService returns a Service over gen. A nil gen always yields
// FallbackError for non-empty memories.
func NewService(gen Generator, opts ...Option) *Service {
	if gen == nil {
		gen = noProvider{}
	}
	s := &Service{gen: gen, timeout: 15 * time.Second, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reflect returns a reflection on memoryText. Provider answers are
// trimmed; only non-fallback answers are cached.
func (s *Service) Reflect(ctx context.Context, memoryText string) string {
	memoryText = strings.TrimSpace(memoryText)
	if memoryText == "" {
		return FallbackEmptyMemory
	}
	if s.cache != nil {
		if v, ok := s.cache.Get(memoryText); ok {
			return v
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	answer, err := s.gen.Generate(ctx, Prompt(memoryText))
	if err != nil {
		s.logger.Warn("reflection provider failed", zap.Error(err))
		return FallbackError
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return FallbackEmptyAnswer
	}
	if s.cache != nil {
		s.cache.Set(memoryText, answer, s.ttl)
	}
	return answer
}

type noProvider struct{}

func (noProvider) Generate(context.Context, string) (string, error) { return "", ErrNoProvider }
