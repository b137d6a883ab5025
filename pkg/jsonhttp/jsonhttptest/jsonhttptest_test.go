// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonhttptest_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foldlabs/foldsum/pkg/jsonhttp"
	"github.com/foldlabs/foldsum/pkg/jsonhttp/jsonhttptest"
)

type echoResponse struct {
	Message string `json:"message"`
}

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			jsonhttp.InternalServerError(w, nil)
			return
		}
		var req echoResponse
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				jsonhttp.BadRequest(w, nil)
				return
			}
		}
		w.Header().Set("X-Echo", r.Header.Get("X-Echo"))
		jsonhttp.OK(w, echoResponse{Message: req.Message})
	}))
	t.Cleanup(s.Close)
	return s
}

func TestRequest_expectedJSONResponse(t *testing.T) {
	s := newEchoServer(t)

	jsonhttptest.Request(t, s.Client(), http.MethodPost, s.URL, http.StatusOK,
		jsonhttptest.WithJSONRequestBody(echoResponse{Message: "grain"}),
		jsonhttptest.WithExpectedJSONResponse(echoResponse{Message: "grain"}),
	)
}

func TestRequest_unmarshalResponse(t *testing.T) {
	s := newEchoServer(t)

	var resp echoResponse
	jsonhttptest.Request(t, s.Client(), http.MethodPost, s.URL, http.StatusOK,
		jsonhttptest.WithJSONRequestBody(echoResponse{Message: "grain"}),
		jsonhttptest.WithUnmarshalResponse(&resp),
	)
	if resp.Message != "grain" {
		t.Fatalf("got message %q, want %q", resp.Message, "grain")
	}
}

func TestRequest_headers(t *testing.T) {
	s := newEchoServer(t)

	headers := jsonhttptest.Request(t, s.Client(), http.MethodPost, s.URL, http.StatusOK,
		jsonhttptest.WithRequestHeader("X-Echo", "pong"),
		jsonhttptest.WithExpectedJSONResponse(echoResponse{}),
	)
	if got := headers.Get("X-Echo"); got != "pong" {
		t.Fatalf("got X-Echo header %q, want %q", got, "pong")
	}
}
