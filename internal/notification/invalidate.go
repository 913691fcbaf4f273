package notification

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/morpheus-mall/mall-backend/internal/cache"
)

// CacheInvalidator returns a handler that drops the cached results of the
// given query operations on every participation change.
func CacheInvalidator(c *cache.Cache, operations ...string) HandlerFunc {
	return func(ctx context.Context, msg Message) error {
		var errs []error
		for _, op := range operations {
			n, err := c.InvalidateOperation(ctx, op)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			zerolog.Ctx(ctx).Debug().Str("operation", op).Int("removed", n).Str("type", string(msg.Type)).Msg("cache invalidated")
		}
		return errors.Join(errs...)
	}
}
