package ratelimit

import (
	"testing"
	"time"
)

// TestTokenBucket_TakeAndExhaust consumes a bucket to empty.
func TestTokenBucket_TakeAndExhaust(t *testing.T) {
	bucket := NewTokenBucket(3, 0.001) // effectively no refill during the test

	for i := 0; i < 3; i++ {
		if !bucket.Take(1) {
			t.Fatalf("Take() = false on token %d, want true", i+1)
		}
	}

	if bucket.Take(1) {
		t.Error("Take() = true on an empty bucket")
	}
}

// TestTokenBucket_Refill verifies tokens come back over time.
func TestTokenBucket_Refill(t *testing.T) {
	bucket := NewTokenBucket(10, 100) // 100 tokens/sec

	for i := 0; i < 10; i++ {
		bucket.Take(1)
	}
	if bucket.Take(1) {
		t.Fatal("bucket not empty after draining")
	}

	time.Sleep(50 * time.Millisecond)

	if !bucket.Take(1) {
		t.Error("Take() = false after refill window")
	}
}

// TestTokenBucket_CapacityClamp verifies refill never exceeds capacity.
func TestTokenBucket_CapacityClamp(t *testing.T) {
	bucket := NewTokenBucket(5, 1000)

	time.Sleep(20 * time.Millisecond)

	if got := bucket.Remaining(); got > 5 {
		t.Errorf("Remaining() = %d, want <= capacity 5", got)
	}
}

// TestTokenBucket_Reset restores full capacity.
func TestTokenBucket_Reset(t *testing.T) {
	bucket := NewTokenBucket(2, 0.001)
	bucket.Take(2)

	bucket.Reset()

	if got := bucket.Remaining(); got != 2 {
		t.Errorf("Remaining() = %d after Reset(), want 2", got)
	}
}

// TestTokenBucket_TimeUntilAvailable estimates the wait for a token.
func TestTokenBucket_TimeUntilAvailable(t *testing.T) {
	bucket := NewTokenBucket(1, 1) // 1 token/sec

	if d := bucket.TimeUntilAvailable(1); d != 0 {
		t.Errorf("TimeUntilAvailable() = %s with a full bucket, want 0", d)
	}

	bucket.Take(1)
	if d := bucket.TimeUntilAvailable(1); d <= 0 || d > time.Second {
		t.Errorf("TimeUntilAvailable() = %s, want within (0, 1s]", d)
	}
}

// TestLimiter_PerSourceBuckets keeps sources independent.
func TestLimiter_PerSourceBuckets(t *testing.T) {
	limiter := NewLimiter()
	limiter.SetLimit("ofac_sdn", 1)
	limiter.SetLimit("fbi_wanted", 60)

	if !limiter.Allow("ofac_sdn") {
		t.Fatal("Allow() = false on a fresh bucket")
	}
	if limiter.Allow("ofac_sdn") {
		t.Error("Allow() = true on a drained bucket")
	}

	// Draining ofac must not affect fbi
	if !limiter.Allow("fbi_wanted") {
		t.Error("Allow() = false for an unrelated source")
	}
}

// TestLimiter_UnlimitedSource always allows sources without a limit.
func TestLimiter_UnlimitedSource(t *testing.T) {
	limiter := NewLimiter()

	for i := 0; i < 100; i++ {
		if !limiter.Allow("no_limit") {
			t.Fatal("Allow() = false for an unlimited source")
		}
	}
	if limiter.Remaining("no_limit") != -1 {
		t.Error("Remaining() != -1 for an unlimited source")
	}
}

// TestLimiter_ZeroRemovesLimit verifies SetLimit(0) lifts the cap.
func TestLimiter_ZeroRemovesLimit(t *testing.T) {
	limiter := NewLimiter()
	limiter.SetLimit("src", 1)
	limiter.Allow("src")

	limiter.SetLimit("src", 0)

	if !limiter.Allow("src") {
		t.Error("Allow() = false after the limit was removed")
	}
}

// Benchmark_Limiter_Allow benchmarks the limiter hot path.
func Benchmark_Limiter_Allow(b *testing.B) {
	limiter := NewLimiter()
	limiter.SetLimit("src", 1000000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow("src")
	}
}
