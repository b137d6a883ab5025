// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package httpaccess contains middleware for logging served HTTP
// requests, annotated with the trace id of the request when tracing is
// enabled.
package httpaccess

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/foldlabs/foldsum/pkg/logging"
	"github.com/foldlabs/foldsum/pkg/tracing"
)

// NewHTTPAccessLogHandler creates a handler that logs message at the
// given level with request details after the request is served.
func NewHTTPAccessLogHandler(logger logging.Logger, level logrus.Level, tracer *tracing.Tracer, message string) func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			aw := &accessWriter{ResponseWriter: w, level: level}

			h.ServeHTTP(aw, r)

			if aw.level == 0 {
				return
			}

			ctx, _ := tracer.WithContextFromHTTPHeaders(r.Context(), r.Header)

			tracing.NewLoggerWithTraceID(ctx, logger).
				WithFields(accessFields(r, aw, start)).
				Log(aw.level, message)
		})
	}
}

// SetAccessLogLevelHandler overrides the log level set in
// NewHTTPAccessLogHandler for a specific endpoint. Use log level 0 to
// suppress log messages.
func SetAccessLogLevelHandler(level logrus.Level) func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if aw, ok := w.(*accessWriter); ok {
				aw.level = level
			}
			h.ServeHTTP(w, r)
		})
	}
}

func accessFields(r *http.Request, aw *accessWriter, start time.Time) logrus.Fields {
	status := aw.status
	if status == 0 {
		status = http.StatusOK
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	fields := logrus.Fields{
		"ip":       ip,
		"method":   r.Method,
		"uri":      r.RequestURI,
		"proto":    r.Proto,
		"status":   status,
		"size":     aw.size,
		"duration": time.Since(start).Seconds(),
	}
	for field, value := range map[string]string{
		"referrer":        r.Referer(),
		"user-agent":      r.UserAgent(),
		"x-forwarded-for": r.Header.Get("X-Forwarded-For"),
		"x-real-ip":       r.Header.Get("X-Real-Ip"),
	} {
		if value != "" {
			fields[field] = value
		}
	}
	return fields
}

// accessWriter captures the response status and body size for the
// access log line and carries the log level that the middleware chain
// may adjust per endpoint.
type accessWriter struct {
	http.ResponseWriter
	status int
	size   int
	level  logrus.Level
}

func (w *accessWriter) Write(b []byte) (int, error) {
	size, err := w.ResponseWriter.Write(b)
	w.size += size
	return size, err
}

func (w *accessWriter) WriteHeader(s int) {
	w.ResponseWriter.WriteHeader(s)
	if w.status == 0 {
		w.status = s
	}
}

func (w *accessWriter) Flush() {
	w.ResponseWriter.(http.Flusher).Flush()
}

func (w *accessWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}

// CloseNotify is deprecated but still required by the gorilla compress
// handler wrapping this writer in the router chains.
func (w *accessWriter) CloseNotify() <-chan bool {
	// nolint:staticcheck
	return w.ResponseWriter.(http.CloseNotifier).CloseNotify()
}

func (w *accessWriter) Push(target string, opts *http.PushOptions) error {
	return w.ResponseWriter.(http.Pusher).Push(target, opts)
}
