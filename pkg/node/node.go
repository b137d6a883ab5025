// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package node bootstraps a foldsum node by constructing and wiring
// all of its services: the public hash API, the optional debug API
// with its metrics registry, and the tracer.
package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/foldlabs/foldsum/pkg/api"
	"github.com/foldlabs/foldsum/pkg/debugapi"
	"github.com/foldlabs/foldsum/pkg/logging"
	"github.com/foldlabs/foldsum/pkg/metrics"
	"github.com/foldlabs/foldsum/pkg/tracing"
)

// ErrShutdownInProgress is returned by Shutdown when a previous call
// has not finished yet.
var ErrShutdownInProgress = errors.New("shutdown in progress")

// Foldsum is a running node. It owns the listening HTTP servers and
// the closers of the services behind them.
type Foldsum struct {
	apiServer          *http.Server
	debugAPIServer     *http.Server
	errorLogWriter     *io.PipeWriter
	tracerCloser       io.Closer
	shutdownInProgress atomic.Bool
}

type Options struct {
	APIAddr            string
	DebugAPIAddr       string
	CORSAllowedOrigins []string
	Logger             logging.Logger
	TracingEnabled     bool
	TracingEndpoint    string
	TracingServiceName string
	HashWorkers        int
	HashRateLimitRate  time.Duration
	HashRateLimitBurst int
}

// NewFoldsum assembles a node from o and starts its HTTP servers. The
// returned node is serving when the call returns.
func NewFoldsum(o *Options) (f *Foldsum, err error) {
	logger := o.Logger

	tracer, tracerCloser, err := tracing.NewTracer(&tracing.Options{
		Enabled:     o.TracingEnabled,
		Endpoint:    o.TracingEndpoint,
		ServiceName: o.TracingServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("tracer: %w", err)
	}

	f = &Foldsum{
		errorLogWriter: logger.WriterLevel(logrus.ErrorLevel),
		tracerCloser:   tracerCloser,
	}

	var debugAPIService *debugapi.Service
	if o.DebugAPIAddr != "" {
		debugAPIService = debugapi.New(logger, tracer, o.CORSAllowedOrigins)

		debugAPIListener, err := net.Listen("tcp", o.DebugAPIAddr)
		if err != nil {
			return nil, fmt.Errorf("debug api listener: %w", err)
		}

		debugAPIServer := &http.Server{
			IdleTimeout:       30 * time.Second,
			ReadHeaderTimeout: 3 * time.Second,
			Handler:           debugAPIService,
			ErrorLog:          stdlog.New(f.errorLogWriter, "", 0),
		}

		go func() {
			logger.Infof("debug api address: %s", debugAPIListener.Addr())

			if err := debugAPIServer.Serve(debugAPIListener); err != nil && err != http.ErrServerClosed {
				logger.Debugf("debug api server: %v", err)
				logger.Error("unable to serve debug api")
			}
		}()

		f.debugAPIServer = debugAPIServer
	}

	apiService := api.New(api.Options{
		Logger:             logger,
		Tracer:             tracer,
		CORSAllowedOrigins: o.CORSAllowedOrigins,
		Workers:            o.HashWorkers,
		RateLimitRate:      o.HashRateLimitRate,
		RateLimitBurst:     o.HashRateLimitBurst,
	})

	apiListener, err := net.Listen("tcp", o.APIAddr)
	if err != nil {
		return nil, fmt.Errorf("api listener: %w", err)
	}

	apiServer := &http.Server{
		IdleTimeout:       30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		Handler:           apiService,
		ErrorLog:          stdlog.New(f.errorLogWriter, "", 0),
	}

	go func() {
		logger.Infof("api address: %s", apiListener.Addr())

		if err := apiServer.Serve(apiListener); err != nil && err != http.ErrServerClosed {
			logger.Debugf("api server: %v", err)
			logger.Error("unable to serve api")
		}
	}()

	f.apiServer = apiServer

	if debugAPIService != nil {
		// register metrics from components
		if l, ok := logger.(metrics.Collector); ok {
			debugAPIService.MustRegisterMetrics(l.Metrics()...)
		}
		debugAPIService.MustRegisterMetrics(apiService.Metrics()...)

		debugAPIService.Configure()
	}

	return f, nil
}

// Shutdown stops the HTTP servers gracefully within the deadline of
// ctx and closes the remaining services.
func (f *Foldsum) Shutdown(ctx context.Context) error {
	if !f.shutdownInProgress.CAS(false, true) {
		return ErrShutdownInProgress
	}
	defer f.shutdownInProgress.Store(false)

	var mErr error
	tryClose := func(c io.Closer, errMsg string) {
		if c == nil {
			return
		}
		if err := c.Close(); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("%s: %w", errMsg, err))
		}
	}

	var eg errgroup.Group
	if f.apiServer != nil {
		eg.Go(func() error {
			if err := f.apiServer.Shutdown(ctx); err != nil {
				return fmt.Errorf("api server: %w", err)
			}
			return nil
		})
	}
	if f.debugAPIServer != nil {
		eg.Go(func() error {
			if err := f.debugAPIServer.Shutdown(ctx); err != nil {
				return fmt.Errorf("debug api server: %w", err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		mErr = multierror.Append(mErr, err)
	}

	tryClose(f.tracerCloser, "tracer")
	tryClose(f.errorLogWriter, "error log writer")

	return mErr
}
