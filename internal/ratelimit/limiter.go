// Package ratelimit throttles MCP tool calls with per-tool token buckets.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is returned by CheckLimit when a tool's bucket is empty.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter hands out tokens from one bucket per key. Buckets start full and
// refill continuously at rate tokens per second up to burst.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   float64
	nowFunc func() time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// refill credits the tokens earned since the bucket was last seen.
func (b *bucket) refill(now time.Time, rate, burst float64) {
	if elapsed := now.Sub(b.seen).Seconds(); elapsed > 0 {
		b.tokens = min(burst, b.tokens+rate*elapsed)
		b.seen = now
	}
}

// NewLimiter creates a limiter refilling rate tokens per second with room
// for burst tokens.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   float64(burst),
		nowFunc: time.Now,
	}
}

// Allow takes a token for key and reports whether one was available.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, seen: now}
		l.buckets[key] = b
	}
	b.refill(now, l.rate, l.burst)

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Rule is the budget of one tool.
type Rule struct {
	PerMinute float64
	Burst     int
}

// DefaultRules are the per-tool budgets of the MCP server. Profile writes
// are the most expensive and get the tightest budget.
var DefaultRules = map[string]Rule{
	"gamesoul_questionnaire": {PerMinute: 10, Burst: 3},
	"gamesoul_feedback":      {PerMinute: 30, Burst: 5},
	"gamesoul_recommend":     {PerMinute: 60, Burst: 10},
	"gamesoul_questions":     {PerMinute: 60, Burst: 10},
	"gamesoul_emotions":      {PerMinute: 60, Burst: 10},
	"gamesoul_profile":       {PerMinute: 60, Burst: 10},
}

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates one limiter per rule. A nil map uses DefaultRules.
func NewToolLimiters(rules map[string]Rule) ToolLimiters {
	if rules == nil {
		rules = DefaultRules
	}
	limiters := make(ToolLimiters, len(rules))
	for tool, r := range rules {
		limiters[tool] = NewLimiter(r.PerMinute/60.0, r.Burst)
	}
	return limiters
}

// CheckLimit takes a token for toolName. Tools without a limiter are
// never throttled.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok || limiter.Allow(toolName) {
		return nil
	}
	return fmt.Errorf("%w for %s, please try again shortly", ErrRateLimited, toolName)
}
