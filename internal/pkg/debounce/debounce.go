package debounce

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard suppresses duplicate terminal punches. A key is set the first time an
// employee punches; while it lives, further punches are reported as blocked.
// A nil client disables the guard entirely so a Redis outage never blocks
// ingestion.
type Guard struct {
	client *redis.Client
}

func NewGuard(client *redis.Client) *Guard {
	return &Guard{client: client}
}

// Allow reports whether a punch may pass. The second return is the error from
// Redis itself; callers log it and let the punch through.
func (g *Guard) Allow(ctx context.Context, tenantID, employeeID string, window time.Duration) (bool, error) {
	if g == nil || g.client == nil || window <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("punch:debounce:%s:%s", tenantID, employeeID)
	ok, err := g.client.SetNX(ctx, key, "1", window).Result()
	if err != nil {
		return true, err
	}
	return ok, nil
}
