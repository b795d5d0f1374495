package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/training-api/internal/repository"
)

// ActivityTracker stamps users.lastActivity for authenticated callers, at
// most once per throttle window per user.
type ActivityTracker struct {
	users    repository.UserRepository
	seen     *cache.Cache
	now      func() time.Time
	throttle time.Duration
}

func NewActivityTracker(users repository.UserRepository, throttle time.Duration) *ActivityTracker {
	if throttle <= 0 {
		throttle = time.Minute
	}
	return &ActivityTracker{
		users:    users,
		seen:     cache.New(throttle, 2*throttle),
		now:      time.Now,
		throttle: throttle,
	}
}

// Track must run after Authenticate. A failed write is logged and retried
// on the caller's next request.
func (t *ActivityTracker) Track() gin.HandlerFunc {
	return func(c *gin.Context) {
		if viewer, ok := GetViewer(c); ok {
			key := viewer.ID.Hex()
			// Add fails while the key is live, which is the throttle.
			if err := t.seen.Add(key, struct{}{}, t.throttle); err == nil {
				if err := t.users.TouchActivity(c.Request.Context(), viewer.ID, t.now().UTC()); err != nil {
					t.seen.Delete(key)
					log.Warn().Err(err).Str("user_id", key).Msg("failed to record activity")
				}
			}
		}
		c.Next()
	}
}
