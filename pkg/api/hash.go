// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/foldlabs/foldsum/pkg/fold"
	"github.com/foldlabs/foldsum/pkg/jsonhttp"
	"github.com/foldlabs/foldsum/pkg/sha256"
	"github.com/foldlabs/foldsum/pkg/tracing"
)

type hashRequest struct {
	Input string `json:"input"`
}

type hashResponse struct {
	FinalDigest string      `json:"finalDigest"`
	Trace       *fold.Trace `json:"trace"`
	NormalHash  string      `json:"normalHash"`
}

// hashHandler computes the fold digest of the posted message together
// with its full reduction trace. The standard SHA-256 digest of the
// same message is computed concurrently and returned alongside.
func (s *server) hashHandler(w http.ResponseWriter, r *http.Request) {
	logger := tracing.NewLoggerWithTraceID(r.Context(), s.Logger)

	if s.limiter != nil && !s.limiter.Allow(clientKey(r)) {
		s.metrics.RateLimitedCount.Inc()
		jsonhttp.TooManyRequests(w, nil)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if jsonhttp.HandleBodyReadError(err, w) {
			return
		}
		logger.Debugf("hash: read request body error: %v", err)
		logger.Error("hash: read request body error")
		jsonhttp.InternalServerError(w, "cannot read request")
		return
	}

	if !utf8.Valid(body) {
		logger.Debug("hash: request body is not valid utf-8")
		s.metrics.EncodingErrorCount.Inc()
		jsonhttp.BadRequest(w, "request body must be valid utf-8")
		return
	}

	var req hashRequest
	if err := json.Unmarshal(body, &req); err != nil {
		logger.Debugf("hash: unmarshal request body: %v", err)
		s.metrics.EncodingErrorCount.Inc()
		jsonhttp.BadRequest(w, "malformed json request")
		return
	}

	start := time.Now()
	// Identical messages hash to identical responses, so concurrent
	// duplicate requests share a single computation.
	v, _, err := s.group.Do(r.Context(), req.Input, func(ctx context.Context) (interface{}, error) {
		return s.compute(ctx, []byte(req.Input))
	})
	if err != nil {
		switch {
		case errors.Is(err, sha256.ErrMessageTooLong):
			logger.Debugf("hash: message too long: %v", err)
			s.metrics.EncodingErrorCount.Inc()
			jsonhttp.BadRequest(w, "message too long")
		case errors.Is(err, fold.ErrInvariant):
			logger.Debugf("hash: %v", err)
			logger.Error("hash: fold invariant violation")
			s.metrics.InvariantViolationCount.Inc()
			jsonhttp.InternalServerError(w, "could not compute hash")
		default:
			logger.Debugf("hash: %v", err)
			logger.Error("hash: computation failed")
			jsonhttp.InternalServerError(w, "could not compute hash")
		}
		return
	}

	resp := v.(*hashResponse)

	s.metrics.HashCount.Inc()
	s.metrics.HashDuration.Observe(time.Since(start).Seconds())
	s.metrics.HashMessageBytes.Observe(float64(len(req.Input)))
	s.metrics.HashBlocksCount.Add(float64(len(resp.Trace.Blocks)))
	s.metrics.HashRoundsCount.Add(float64(len(resp.Trace.Rounds)))

	jsonhttp.OK(w, resp)
}

// compute runs the fold and the standard digest of msg concurrently.
func (s *server) compute(ctx context.Context, msg []byte) (*hashResponse, error) {
	var (
		res      *fold.Result
		standard sha256.State
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res, err = s.hasher.Hash(msg)
		return err
	})
	g.Go(func() error {
		var err error
		standard, err = sha256.Sum(msg)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &hashResponse{
		FinalDigest: res.Digest.String(),
		Trace:       res.Trace,
		NormalHash:  standard.String(),
	}, nil
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
