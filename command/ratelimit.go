package command

import (
	"context"
	"sync"
	"time"

	"github.com/zephyrnaut/euphoxide-go/api"
)

// tokenBucket is a simple token bucket: it starts full, refills one token
// per RefillInterval up to MaxBurst, and denies once empty.
type tokenBucket struct {
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

// RateLimit configures one bucket: how many invocations are allowed in a
// burst, and how often one refills.
type RateLimit struct {
	MaxBurst       int
	RefillInterval time.Duration
}

// RateLimiter throttles command invocations per key (usually a trigger
// name, a sender SessionId, or some combination), so a handler can avoid
// answering so quickly that the room itself throttles the bot (see the
// wire protocol's Throttled field) or that it looks like spam to the
// room's occupants.
type RateLimiter[K comparable] struct {
	mu      sync.Mutex
	limit   RateLimit
	buckets map[K]*tokenBucket
}

// NewRateLimiter returns a RateLimiter applying limit uniformly to every
// key it sees.
func NewRateLimiter[K comparable](limit RateLimit) *RateLimiter[K] {
	return &RateLimiter[K]{limit: limit, buckets: make(map[K]*tokenBucket)}
}

// Allow reports whether an invocation keyed by key should proceed, and
// consumes a token from its bucket if so.
func (r *RateLimiter[K]) Allow(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.buckets[key]
	if !ok {
		bucket = &tokenBucket{
			tokens:     r.limit.MaxBurst,
			maxTokens:  r.limit.MaxBurst,
			refillRate: r.limit.RefillInterval,
			lastRefill: time.Now(),
		}
		r.buckets[key] = bucket
	}

	now := time.Now()
	if elapsed := now.Sub(bucket.lastRefill); elapsed >= bucket.refillRate && bucket.tokens < bucket.maxTokens {
		tokensToAdd := int(elapsed / bucket.refillRate)
		bucket.tokens += tokensToAdd
		if bucket.tokens > bucket.maxTokens {
			bucket.tokens = bucket.maxTokens
		}
		bucket.lastRefill = now
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}

	return false
}

// Limited wraps cmd so that each invocation consumes a token from limiter,
// keyed by the triggering message's sender session id. Invocations beyond
// the limit are silently dropped (PropagateYes, so later commands still
// run).
func Limited[K comparable](cmd Command[K], limiter *RateLimiter[SessionKey]) Command[K] {
	return limitedCommand[K]{Command: cmd, limiter: limiter}
}

// SessionKey is the key type Limited's default rate limiting uses: the
// session id of whoever triggered the command.
type SessionKey = string

type limitedCommand[K comparable] struct {
	Command[K]
	limiter *RateLimiter[SessionKey]
}

func (l limitedCommand[K]) Execute(ctx context.Context, cctx *Context[K], msg api.SendEvent) (Propagate, error) {
	if !l.limiter.Allow(string(msg.Sender.SessionID)) {
		return PropagateYes, nil
	}
	return l.Command.Execute(ctx, cctx, msg)
}
