package dispatch

import (
	"context"
	"sync"
	"time"

	redis "github.com/go-redis/redis/v8"
)

// Throttle is a shared, time-windowed claim check: at most one caller wins
// per signal reference per window, even across concurrent dispatchers.
type Throttle interface {
	Claim(ctx context.Context, signalRef string, window time.Duration) (bool, error)
}

const throttleKeyPrefix = "lifeops:failure-throttle:"

// WindowThrottle claims via Redis SET NX PX so the window is shared across
// instances. With Redis disabled (nil client) it falls back to an
// in-process map, which is correct for a single-instance deployment.
type WindowThrottle struct {
	rdb *redis.Client

	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewWindowThrottle(rdb *redis.Client) *WindowThrottle {
	return &WindowThrottle{
		rdb:  rdb,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (t *WindowThrottle) Claim(ctx context.Context, signalRef string, window time.Duration) (bool, error) {
	if t.rdb != nil {
		return t.rdb.SetNX(ctx, throttleKeyPrefix+signalRef, 1, window).Result()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if last, ok := t.seen[signalRef]; ok && now.Sub(last) < window {
		return false, nil
	}
	t.seen[signalRef] = now

	// Drop expired entries so the map does not grow with dead signals.
	for ref, at := range t.seen {
		if now.Sub(at) >= window {
			delete(t.seen, ref)
		}
	}
	return true, nil
}
