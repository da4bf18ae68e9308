package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter caps how often a single IP may open connections. Buckets for
// IPs not seen in a while are evicted so the map cannot grow unbounded.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	perIP   float64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perIP float64) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		perIP:   perIP,
	}
	go rl.evictLoop()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{
			limiter: rate.NewLimiter(rate.Limit(rl.perIP), int(rl.perIP)*2),
		}
		rl.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	rl.mu.Unlock()

	return b.limiter.Allow()
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-10 * time.Minute)
		for ip, b := range rl.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}
