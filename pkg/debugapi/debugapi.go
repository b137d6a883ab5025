// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package debugapi exposes the debug API used to
// observe low-level and runtime features and
// functionalities of a foldsum node.
package debugapi

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/foldlabs/foldsum/pkg/logging"
	"github.com/foldlabs/foldsum/pkg/tracing"
)

// Service implements http.Handler interface to be used in HTTP server.
type Service struct {
	logger             logging.Logger
	tracer             *tracing.Tracer
	corsAllowedOrigins []string
	metricsRegistry    *prometheus.Registry
	// handler is changed in the Configure method
	handler   http.Handler
	handlerMu sync.RWMutex
}

// New creates a new Debug API Service with only basic routers enabled
// in order to expose /health, Go metrics and pprof before the node is
// fully assembled. It is useful to have access to basic debugging
// tools while the rest of the node starts up.
func New(logger logging.Logger, tracer *tracing.Tracer, corsAllowedOrigins []string) *Service {
	s := new(Service)
	s.logger = logger
	s.tracer = tracer
	s.corsAllowedOrigins = corsAllowedOrigins
	s.metricsRegistry = newMetricsRegistry()

	s.setRouter(s.newBasicRouter())

	return s
}

// Configure marks the node as assembled and constructs the complete
// set of routes, most notably the /readiness endpoint. It is intended
// and safe to call this method only once.
func (s *Service) Configure() {
	s.setRouter(s.newRouter())
}

// ServeHTTP implements http.Handler interface.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// protect handler as it is changed by the Configure method
	s.handlerMu.RLock()
	h := s.handler
	s.handlerMu.RUnlock()

	h.ServeHTTP(w, r)
}
