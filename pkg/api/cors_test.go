// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api_test

import (
	"net/http"
	"strings"
	"testing"
)

func TestCORSHeaders(t *testing.T) {
	for _, tc := range []struct {
		name           string
		origin         string
		allowedOrigins []string
		wantCORS       bool
	}{
		{
			name: "none",
		},
		{
			name:           "no origin",
			allowedOrigins: []string{"https://fold.example.org"},
			wantCORS:       false,
		},
		{
			name:           "single explicit",
			origin:         "https://fold.example.org",
			allowedOrigins: []string{"https://fold.example.org"},
			wantCORS:       true,
		},
		{
			name:           "single explicit blocked",
			origin:         "http://a-hacker.me",
			allowedOrigins: []string{"https://fold.example.org"},
			wantCORS:       false,
		},
		{
			name:           "multiple explicit",
			origin:         "https://staging.fold.example.org",
			allowedOrigins: []string{"https://fold.example.org", "https://staging.fold.example.org"},
			wantCORS:       true,
		},
		{
			name:           "multiple explicit blocked",
			origin:         "http://a-hacker.me",
			allowedOrigins: []string{"https://fold.example.org", "https://staging.fold.example.org"},
			wantCORS:       false,
		},
		{
			name:           "wildcard",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{"*"},
			wantCORS:       true,
		},
		{
			name:           "with origin only",
			origin:         "https://fold.example.org",
			allowedOrigins: nil,
			wantCORS:       false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestServer(t, testServerOptions{
				CORSAllowedOrigins: tc.allowedOrigins,
			})

			req, err := http.NewRequest(http.MethodPost, "/hash", strings.NewReader(`{"input":"abc"}`))
			if err != nil {
				t.Fatal(err)
			}
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}

			r, err := client.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer r.Body.Close()

			got := r.Header.Get("Access-Control-Allow-Origin")

			if tc.wantCORS {
				if got != tc.origin {
					t.Errorf("got Access-Control-Allow-Origin %q, want %q", got, tc.origin)
				}
			} else {
				if got != "" {
					t.Errorf("got Access-Control-Allow-Origin %q, want none", got)
				}
			}
		})
	}
}

// TestCORSPreflight checks that an allowed preflight request is
// answered directly with 204 and the allow headers, and that a
// disallowed one falls through without them.
func TestCORSPreflight(t *testing.T) {
	client := newTestServer(t, testServerOptions{
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	})

	req, err := http.NewRequest(http.MethodOptions, "/hash", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	r, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	r.Body.Close()

	if r.StatusCode != http.StatusNoContent {
		t.Fatalf("got status %d, want %d", r.StatusCode, http.StatusNoContent)
	}
	if got := r.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("got Access-Control-Allow-Origin %q, want %q", got, "http://localhost:5173")
	}
	if got := r.Header.Get("Access-Control-Allow-Methods"); got == "" {
		t.Fatal("Access-Control-Allow-Methods header missing")
	}

	req, err = http.NewRequest(http.MethodOptions, "/hash", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "http://a-hacker.me")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	r, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	r.Body.Close()

	if r.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("got status %d, want %d", r.StatusCode, http.StatusMethodNotAllowed)
	}
	if got := r.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("got Access-Control-Allow-Origin %q, want none", got)
	}
}
