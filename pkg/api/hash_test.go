// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api_test

import (
	"bytes"
	stdsha256 "crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/foldlabs/foldsum/pkg/api"
	"github.com/foldlabs/foldsum/pkg/fold"
	"github.com/foldlabs/foldsum/pkg/jsonhttp"
	"github.com/foldlabs/foldsum/pkg/jsonhttp/jsonhttptest"
)

const (
	abcDigest   = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	emptyDigest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

// TestHashSingleBlock posts a message that pads to a single block. The
// fold digest of a single block is the standard digest, no rounds run,
// and the complete wire response is known ahead of time.
func TestHashSingleBlock(t *testing.T) {
	client := newTestServer(t, testServerOptions{})

	block := "61626380" + strings.Repeat("00", 52) + "0000000000000018"

	jsonhttptest.Request(t, client, http.MethodPost, "/hash", http.StatusOK,
		jsonhttptest.WithJSONRequestBody(api.HashRequest{Input: "abc"}),
		jsonhttptest.WithExpectedJSONResponse(api.HashResponse{
			FinalDigest: abcDigest,
			Trace: &fold.Trace{
				OriginalMessage:    "abc",
				Padded:             block,
				Blocks:             []string{block},
				InitialHashOutputs: []string{abcDigest},
				Rounds:             []fold.Round{},
				FinalDigest:        abcDigest,
			},
			NormalHash: abcDigest,
		}),
	)
}

func TestHashEmptyMessage(t *testing.T) {
	client := newTestServer(t, testServerOptions{})

	block := "80" + strings.Repeat("00", 63)

	jsonhttptest.Request(t, client, http.MethodPost, "/hash", http.StatusOK,
		jsonhttptest.WithJSONRequestBody(api.HashRequest{Input: ""}),
		jsonhttptest.WithExpectedJSONResponse(api.HashResponse{
			FinalDigest: emptyDigest,
			Trace: &fold.Trace{
				OriginalMessage:    "",
				Padded:             block,
				Blocks:             []string{block},
				InitialHashOutputs: []string{emptyDigest},
				Rounds:             []fold.Round{},
				FinalDigest:        emptyDigest,
			},
			NormalHash: emptyDigest,
		}),
	)
}

// TestHashMultiBlock checks the response shape for a message spanning
// seven blocks, which folds over three rounds.
func TestHashMultiBlock(t *testing.T) {
	client := newTestServer(t, testServerOptions{})

	input := strings.Repeat("a", 439)

	var resp api.HashResponse
	jsonhttptest.Request(t, client, http.MethodPost, "/hash", http.StatusOK,
		jsonhttptest.WithJSONRequestBody(api.HashRequest{Input: input}),
		jsonhttptest.WithUnmarshalResponse(&resp),
	)

	d := stdsha256.Sum256([]byte(input))
	want := hex.EncodeToString(d[:])
	if resp.NormalHash != want {
		t.Fatalf("got normal hash %s, want %s", resp.NormalHash, want)
	}
	if resp.Trace == nil {
		t.Fatal("response trace missing")
	}
	if resp.Trace.OriginalMessage != input {
		t.Fatal("original message not echoed back")
	}
	if got := len(resp.Trace.Blocks); got != 7 {
		t.Fatalf("got %d blocks, want 7", got)
	}
	if got := len(resp.Trace.InitialHashOutputs); got != 7 {
		t.Fatalf("got %d initial hash outputs, want 7", got)
	}
	if got := len(resp.Trace.Rounds); got != 3 {
		t.Fatalf("got %d rounds, want 3", got)
	}
	for i, r := range resp.Trace.Rounds {
		if r.Round != i+1 {
			t.Fatalf("round %d numbered %d", i, r.Round)
		}
		if len(r.ComputedNewIV) != 64 {
			t.Fatalf("round %d: computed iv has %d hex chars", r.Round, len(r.ComputedNewIV))
		}
	}
	if resp.Trace.FinalDigest != resp.FinalDigest {
		t.Fatalf("trace digest %s does not match top-level digest %s", resp.Trace.FinalDigest, resp.FinalDigest)
	}
	last := resp.Trace.Rounds[len(resp.Trace.Rounds)-1]
	if len(last.OutputHashOutputs) != 1 || last.OutputHashOutputs[0] != resp.FinalDigest {
		t.Fatal("final round does not close on the final digest")
	}
}

// TestHashOddCarry checks the wire shape of an odd block count: three
// initial blocks fold one pair and carry the third output unmodified.
func TestHashOddCarry(t *testing.T) {
	client := newTestServer(t, testServerOptions{})

	input := strings.Repeat("x", 130)

	var resp api.HashResponse
	jsonhttptest.Request(t, client, http.MethodPost, "/hash", http.StatusOK,
		jsonhttptest.WithJSONRequestBody(api.HashRequest{Input: input}),
		jsonhttptest.WithUnmarshalResponse(&resp),
	)

	if got := len(resp.Trace.Blocks); got != 3 {
		t.Fatalf("got %d blocks, want 3", got)
	}
	if got := len(resp.Trace.Rounds); got != 2 {
		t.Fatalf("got %d rounds, want 2", got)
	}

	first := resp.Trace.Rounds[0]
	if got := len(first.InputHashOutputs); got != 3 {
		t.Fatalf("round 1: got %d inputs, want 3", got)
	}
	if got := len(first.NewBlocks); got != 2 {
		t.Fatalf("round 1: got %d new blocks, want 2", got)
	}
	if len(first.NewBlocks[0]) != 128 {
		t.Fatalf("round 1: paired block has %d hex chars, want 128", len(first.NewBlocks[0]))
	}
	if len(first.NewBlocks[1]) != 64 {
		t.Fatalf("round 1: carried block has %d hex chars, want 64", len(first.NewBlocks[1]))
	}
	if got := len(first.OutputHashOutputs); got != 2 {
		t.Fatalf("round 1: got %d outputs, want 2", got)
	}
	if first.OutputHashOutputs[1] != first.InputHashOutputs[2] {
		t.Fatal("round 1: carried output modified")
	}

	second := resp.Trace.Rounds[1]
	if got := len(second.OutputHashOutputs); got != 1 {
		t.Fatalf("round 2: got %d outputs, want 1", got)
	}
}

func TestHashVersionedPath(t *testing.T) {
	client := newTestServer(t, testServerOptions{})

	var resp api.HashResponse
	jsonhttptest.Request(t, client, http.MethodPost, "/v1/hash", http.StatusOK,
		jsonhttptest.WithJSONRequestBody(api.HashRequest{Input: "abc"}),
		jsonhttptest.WithUnmarshalResponse(&resp),
	)

	if resp.FinalDigest != abcDigest {
		t.Fatalf("got final digest %s, want %s", resp.FinalDigest, abcDigest)
	}
}

// TestHashDeterminism posts the same message twice and requires byte
// identical responses.
func TestHashDeterminism(t *testing.T) {
	client := newTestServer(t, testServerOptions{})

	input := strings.Repeat("determinism", 64)

	var first, second []byte
	jsonhttptest.Request(t, client, http.MethodPost, "/hash", http.StatusOK,
		jsonhttptest.WithJSONRequestBody(api.HashRequest{Input: input}),
		jsonhttptest.WithPutResponseBody(&first),
	)
	jsonhttptest.Request(t, client, http.MethodPost, "/hash", http.StatusOK,
		jsonhttptest.WithJSONRequestBody(api.HashRequest{Input: input}),
		jsonhttptest.WithPutResponseBody(&second),
	)

	if !bytes.Equal(first, second) {
		t.Fatal("responses for identical input differ")
	}
}

func TestHashMalformedJSON(t *testing.T) {
	client := newTestServer(t, testServerOptions{})

	jsonhttptest.Request(t, client, http.MethodPost, "/hash", http.StatusBadRequest,
		jsonhttptest.WithRequestBody(strings.NewReader("{")),
		jsonhttptest.WithExpectedJSONResponse(jsonhttp.StatusResponse{
			Message: "malformed json request",
			Code:    http.StatusBadRequest,
		}),
	)
}

func TestHashInvalidUTF8(t *testing.T) {
	client := newTestServer(t, testServerOptions{})

	body := []byte(`{"input":"`)
	body = append(body, 0xff, 0xfe, '"', '}')

	jsonhttptest.Request(t, client, http.MethodPost, "/hash", http.StatusBadRequest,
		jsonhttptest.WithRequestBody(bytes.NewReader(body)),
		jsonhttptest.WithExpectedJSONResponse(jsonhttp.StatusResponse{
			Message: "request body must be valid utf-8",
			Code:    http.StatusBadRequest,
		}),
	)
}

func TestHashMethodNotAllowed(t *testing.T) {
	client := newTestServer(t, testServerOptions{})

	headers := jsonhttptest.Request(t, client, http.MethodGet, "/hash", http.StatusMethodNotAllowed,
		jsonhttptest.WithExpectedJSONResponse(jsonhttp.StatusResponse{
			Message: http.StatusText(http.StatusMethodNotAllowed),
			Code:    http.StatusMethodNotAllowed,
		}),
	)

	if got := headers.Get("Allow"); got != http.MethodPost {
		t.Fatalf("got Allow header %q, want %q", got, http.MethodPost)
	}
}

func TestHashBodyTooLarge(t *testing.T) {
	client := newTestServer(t, testServerOptions{})

	jsonhttptest.Request(t, client, http.MethodPost, "/hash", http.StatusRequestEntityTooLarge,
		jsonhttptest.WithRequestBody(bytes.NewReader(make([]byte, api.MaxRequestBodySize+1))),
		jsonhttptest.WithExpectedJSONResponse(jsonhttp.StatusResponse{
			Message: http.StatusText(http.StatusRequestEntityTooLarge),
			Code:    http.StatusRequestEntityTooLarge,
		}),
	)
}

func TestHashRateLimit(t *testing.T) {
	client := newTestServer(t, testServerOptions{
		RateLimitRate:  time.Minute,
		RateLimitBurst: 2,
	})

	for i := 0; i < 2; i++ {
		jsonhttptest.Request(t, client, http.MethodPost, "/hash", http.StatusOK,
			jsonhttptest.WithJSONRequestBody(api.HashRequest{Input: "abc"}),
		)
	}

	jsonhttptest.Request(t, client, http.MethodPost, "/hash", http.StatusTooManyRequests,
		jsonhttptest.WithJSONRequestBody(api.HashRequest{Input: "abc"}),
		jsonhttptest.WithExpectedJSONResponse(jsonhttp.StatusResponse{
			Message: http.StatusText(http.StatusTooManyRequests),
			Code:    http.StatusTooManyRequests,
		}),
	)
}
