// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"resenje.org/web"

	"github.com/foldlabs/foldsum/pkg/api"
	"github.com/foldlabs/foldsum/pkg/logging"
)

type testServerOptions struct {
	Logger             logging.Logger
	CORSAllowedOrigins []string
	Workers            int
	RateLimitRate      time.Duration
	RateLimitBurst     int
}

func newTestServer(t *testing.T, o testServerOptions) *http.Client {
	t.Helper()

	if o.Logger == nil {
		o.Logger = logging.New(io.Discard, 0)
	}
	s := api.New(api.Options{
		Logger:             o.Logger,
		CORSAllowedOrigins: o.CORSAllowedOrigins,
		Workers:            o.Workers,
		RateLimitRate:      o.RateLimitRate,
		RateLimitBurst:     o.RateLimitBurst,
	})
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)

	return &http.Client{
		Transport: web.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			u, err := url.Parse(ts.URL + r.URL.String())
			if err != nil {
				return nil, err
			}
			r.URL = u
			return ts.Client().Transport.RoundTrip(r)
		}),
	}
}
