// Package storage opens the configured types.Store backend and composes
// backends into a primary/secondary fallback chain.
package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/echosign/internal/jsonfile"
	"github.com/mesh-intelligence/echosign/internal/memory"
	"github.com/mesh-intelligence/echosign/internal/postgres"
	"github.com/mesh-intelligence/echosign/internal/redisstore"
	"github.com/mesh-intelligence/echosign/internal/sqlite"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

// jsonFileDir is the jsonfile backend's subdirectory under DataDir.
const jsonFileDir = "kv"

// Open validates cfg and opens its backend. When FallbackBackend is set
// the result is a Chain with the fallback as secondary.
func Open(ctx context.Context, cfg types.Config, logger *zap.Logger) (types.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	primary, err := openBackend(ctx, cfg.Backend, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	if cfg.FallbackBackend == "" {
		return primary, nil
	}

	secondary, err := openBackend(ctx, cfg.FallbackBackend, cfg)
	if err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("open %s fallback backend: %w", cfg.FallbackBackend, err)
	}
	logger.Info("storage fallback chain enabled",
		zap.String("primary", cfg.Backend),
		zap.String("secondary", cfg.FallbackBackend))
	return NewChain(primary, secondary, logger), nil
}

func openBackend(ctx context.Context, name string, cfg types.Config) (types.Store, error) {
	switch name {
	case types.BackendMemory:
		return memory.New(), nil
	case types.BackendSQLite:
		b := sqlite.NewBackend()
		if err := b.Attach(cfg); err != nil {
			return nil, err
		}
		return b, nil
	case types.BackendJSONFile:
		return jsonfile.Open(filepath.Join(cfg.DataDir, jsonFileDir))
	case types.BackendRedis:
		return redisstore.Open(ctx, cfg.Redis)
	case types.BackendPostgres:
		return postgres.Open(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, name)
	}
}
