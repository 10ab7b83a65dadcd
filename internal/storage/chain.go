package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/echosign/pkg/types"
)

// Chain is a types.Store over a primary and a secondary store. Reads try
// the primary first; writes and removes go to both. A failing leg is logged
// and tolerated as long as the other leg succeeds.
type Chain struct {
	primary   types.Store
	secondary types.Store
	logger    *zap.Logger
}

// NewChain composes primary and secondary.
func NewChain(primary, secondary types.Store, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{primary: primary, secondary: secondary, logger: logger}
}

// Load returns the primary's value when present, else the secondary's.
func (c *Chain) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, perr := c.primary.Load(ctx, key)
	if perr == nil && ok {
		return data, true, nil
	}
	if perr != nil {
		c.logger.Warn("primary store load failed", zap.String("key", key), zap.Error(perr))
	}

	data, ok, serr := c.secondary.Load(ctx, key)
	if serr != nil {
		c.logger.Warn("secondary store load failed", zap.String("key", key), zap.Error(serr))
		if perr != nil {
			return nil, false, errors.Join(perr, serr)
		}
		return nil, false, nil
	}
	return data, ok, nil
}

// Save writes to both legs.
func (c *Chain) Save(ctx context.Context, key string, value []byte) error {
	return c.both("save", key, func(s types.Store) error { return s.Save(ctx, key, value) })
}

// Remove deletes from both legs.
func (c *Chain) Remove(ctx context.Context, key string) error {
	return c.both("remove", key, func(s types.Store) error { return s.Remove(ctx, key) })
}

// Close closes both legs.
func (c *Chain) Close() error {
	return errors.Join(c.primary.Close(), c.secondary.Close())
}

func (c *Chain) both(op, key string, fn func(types.Store) error) error {
	perr := fn(c.primary)
	serr := fn(c.secondary)
	switch {
	case perr == nil && serr == nil:
		return nil
	case perr != nil && serr != nil:
		return errors.Join(perr, serr)
	case perr != nil:
		c.logger.Warn("primary store "+op+" failed", zap.String("key", key), zap.Error(perr))
	default:
		c.logger.Warn("secondary store "+op+" failed", zap.String("key", key), zap.Error(serr))
	}
	return nil
}
