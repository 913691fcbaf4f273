package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter returns a Gin middleware that limits requests per IP. With a
// redis client the counters are shared across replicas, otherwise they live
// in process memory.
func RateLimiter(perMinute int64, client *redis.Client) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  perMinute,
	}

	var store limiter.Store = memory.NewStore()
	if client != nil {
		s, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "morpheus:ratelimit"})
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter falling back to memory store")
		} else {
			store = s
		}
	}

	return ginlimiter.NewMiddleware(limiter.New(store, rate))
}
