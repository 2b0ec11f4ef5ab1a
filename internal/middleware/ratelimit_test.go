package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    5,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})

	for i := 0; i < 5; i++ {
		if !rl.Allow("test-ip") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_BlocksAfterMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    3,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})

	for i := 0; i < 3; i++ {
		rl.Allow("test-ip")
	}

	if rl.Allow("test-ip") {
		t.Fatal("4th request should be blocked")
	}
}

func TestRateLimiter_DifferentKeysIndependent(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    2,
		Window: time.Minute,
		KeyFn:  KeyByVoterID,
	})

	rl.Allow("voter:a")
	rl.Allow("voter:a")

	if rl.Allow("voter:a") {
		t.Fatal("voter:a should be blocked")
	}

	if !rl.Allow("voter:b") {
		t.Fatal("voter:b should be allowed (independent key)")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    2,
		Window: 50 * time.Millisecond,
		KeyFn:  KeyByIP,
	})

	rl.Allow("test")
	rl.Allow("test")

	if rl.Allow("test") {
		t.Fatal("should be blocked within window")
	}

	// Wait for window to expire
	time.Sleep(60 * time.Millisecond)

	if !rl.Allow("test") {
		t.Fatal("should be allowed after window reset")
	}
}

func TestRateLimiter_QueueConfig(t *testing.T) {
	rl := NewQueueRateLimiter()
	for i := 0; i < 60; i++ {
		if !rl.Allow("voter:abc123") {
			t.Fatalf("queue request %d should be allowed (max 60)", i+1)
		}
	}
	if rl.Allow("voter:abc123") {
		t.Fatal("61st queue request should be blocked")
	}
}

func TestRateLimiter_VoteConfig(t *testing.T) {
	rl := NewVoteRateLimiter()
	for i := 0; i < 10; i++ {
		if !rl.Allow("voter:abc123") {
			t.Fatalf("vote request %d should be allowed (max 10)", i+1)
		}
	}
	if rl.Allow("voter:abc123") {
		t.Fatal("11th vote should be blocked")
	}
}

func TestRateLimiter_ReadConfig(t *testing.T) {
	rl := NewReadRateLimiter()
	for i := 0; i < 100; i++ {
		if !rl.Allow("ip:127.0.0.1") {
			t.Fatalf("read request %d should be allowed (max 100)", i+1)
		}
	}
	if rl.Allow("ip:127.0.0.1") {
		t.Fatal("101st read request should be blocked")
	}
}
