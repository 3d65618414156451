package ratelimit

import "sync"

// Limiter manages one token bucket per source name.
//
// Buckets are sized from the source's requests-per-minute limit: the
// capacity equals the per-minute limit (allowing a full-minute burst) and
// tokens refill at limit/60 per second.
type Limiter struct {
	buckets map[string]*TokenBucket
	mu      sync.Mutex
}

// NewLimiter creates an empty per-source limiter.
func NewLimiter() *Limiter {
	return &Limiter{
		buckets: make(map[string]*TokenBucket),
	}
}

// SetLimit installs or replaces the bucket for a source. A perMinute value
// of zero or less removes the limit.
func (l *Limiter) SetLimit(source string, perMinute int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if perMinute <= 0 {
		delete(l.buckets, source)
		return
	}

	l.buckets[source] = NewTokenBucket(int64(perMinute), float64(perMinute)/60.0)
}

// Allow consumes one token for the source. Sources without a configured
// limit are always allowed.
func (l *Limiter) Allow(source string) bool {
	l.mu.Lock()
	bucket, ok := l.buckets[source]
	l.mu.Unlock()

	if !ok {
		return true
	}
	return bucket.Take(1)
}

// Remaining returns the tokens left for a source, or -1 when the source
// has no limit.
func (l *Limiter) Remaining(source string) int64 {
	l.mu.Lock()
	bucket, ok := l.buckets[source]
	l.mu.Unlock()

	if !ok {
		return -1
	}
	return bucket.Remaining()
}
