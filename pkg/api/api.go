// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package api exposes the public HTTP API of a foldsum node. Its single
// operational endpoint computes the fold digest of a message together
// with the complete reduction trace and the standard SHA-256 digest of
// the same message for cross-checking.
package api

import (
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"resenje.org/singleflight"

	"github.com/foldlabs/foldsum/pkg/fold"
	"github.com/foldlabs/foldsum/pkg/logging"
	"github.com/foldlabs/foldsum/pkg/ratelimit"
	"github.com/foldlabs/foldsum/pkg/tracing"
)

// MaxRequestBodySize limits the accepted size of a hash request body.
const MaxRequestBodySize = 1024 * 1024

// Service is the surface of the API exposed to the node assembly: an
// http.Handler whose metrics can be collected.
type Service interface {
	http.Handler
	Metrics() []prometheus.Collector
}

type server struct {
	Options
	http.Handler

	hasher  *fold.Hasher
	group   singleflight.Group
	limiter *ratelimit.Limiter
	metrics metrics
}

// Options holds the configurable parameters of the API service.
type Options struct {
	Logger             logging.Logger
	Tracer             *tracing.Tracer
	CORSAllowedOrigins []string
	// Workers bounds the number of goroutines compressing blocks
	// within a single request. Zero selects the number of CPUs.
	Workers int
	// RateLimitRate and RateLimitBurst configure the per-client
	// request limiter. A zero burst disables limiting.
	RateLimitRate  time.Duration
	RateLimitBurst int
}

// New constructs the API service with its routes set up.
func New(o Options) Service {
	s := &server{
		Options: o,
		hasher:  fold.New(o.Workers),
		metrics: newMetrics(),
	}
	if o.RateLimitBurst > 0 {
		s.limiter = ratelimit.New(o.RateLimitRate, o.RateLimitBurst)
	}
	s.setupRouting()
	return s
}

func (s *server) newTracingHandler(spanName string) func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := s.Tracer.WithContextFromHTTPHeaders(r.Context(), r.Header)
			if err != nil && !errors.Is(err, tracing.ErrContextNotFound) {
				s.Logger.Debugf("span %q: extract tracing context: %v", spanName, err)
				// ignore
			}

			span, _, ctx := s.Tracer.StartSpanFromContext(ctx, spanName, s.Logger)
			defer span.Finish()

			err = s.Tracer.AddContextHTTPHeader(ctx, r.Header)
			if err != nil {
				s.Logger.Debugf("span %q: inject tracing context: %v", spanName, err)
				// ignore
			}

			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// checkOrigin returns true if the request origin is allowed. Requests
// from the server's own host are always allowed.
func (s *server) checkOrigin(r *http.Request) bool {
	origin := r.Header["Origin"]
	if len(origin) == 0 {
		return true
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	hosts := append(s.CORSAllowedOrigins, scheme+"://"+r.Host)
	for _, v := range hosts {
		if equalASCIIFold(origin[0], v) || v == "*" {
			return true
		}
	}

	return false
}

// equalASCIIFold returns true if s is equal to t with ASCII case
// folding as defined in RFC 4790.
func equalASCIIFold(s, t string) bool {
	for s != "" && t != "" {
		sr, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		tr, size := utf8.DecodeRuneInString(t)
		t = t[size:]
		if sr == tr {
			continue
		}
		if 'A' <= sr && sr <= 'Z' {
			sr = sr + 'a' - 'A'
		}
		if 'A' <= tr && tr <= 'Z' {
			tr = tr + 'a' - 'A'
		}
		if sr != tr {
			return false
		}
	}
	return s == t
}
