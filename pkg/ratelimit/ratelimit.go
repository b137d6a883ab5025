// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ratelimit limits the rate of requests per client. Every key
// owns a token bucket of the configured burst size that refills one
// token per interval; a request is allowed when a token is available.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter tracks one token bucket per client key. Buckets are created
// on first use and live until cleared.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	rate    rate.Limit
	burst   int
}

// New constructs a Limiter refilling one token per interval up to burst
// tokens per key.
func New(interval time.Duration, burst int) *Limiter {
	return &Limiter{
		clients: make(map[string]*rate.Limiter),
		rate:    rate.Every(interval),
		burst:   burst,
	}
}

// Allow takes one token from the bucket of key and reports whether one
// was available.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.clients[key]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.clients[key] = limiter
	}

	return limiter.Allow()
}

// Clear forgets the bucket of key, giving it a full burst again on its
// next request.
func (l *Limiter) Clear(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.clients, key)
}
