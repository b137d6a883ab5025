// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sha256_test

import (
	"encoding/json"
	"testing"

	"github.com/foldlabs/foldsum/pkg/sha256"
)

func TestParseState(t *testing.T) {
	t.Parallel()

	const str = "6a09e667bb67ae853c6ef372a54ff53a510e527f9b05688c1f83d9ab5be0cd19"

	s, err := sha256.ParseState(str)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Equal(sha256.IV()) {
		t.Fatalf("got state %s, want %s", s, sha256.IV())
	}
	if s.String() != str {
		t.Fatalf("got string %s, want %s", s, str)
	}

	if _, err := sha256.ParseState("zz"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
	if _, err := sha256.ParseState("abcd"); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestStateBytes(t *testing.T) {
	t.Parallel()

	iv := sha256.IV()
	b := iv.Bytes()
	if len(b) != sha256.Size {
		t.Fatalf("got %d bytes, want %d", len(b), sha256.Size)
	}
	s, err := sha256.StateFromBytes(b)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Equal(iv) {
		t.Fatalf("got state %s, want %s", s, iv)
	}

	if _, err := sha256.StateFromBytes(b[:16]); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestStateJSON(t *testing.T) {
	t.Parallel()

	iv := sha256.IV()

	b, err := json.Marshal(iv)
	if err != nil {
		t.Fatal(err)
	}
	want := `"` + iv.String() + `"`
	if string(b) != want {
		t.Fatalf("got json %s, want %s", b, want)
	}

	var s sha256.State
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatal(err)
	}
	if !s.Equal(iv) {
		t.Fatalf("got state %s, want %s", s, iv)
	}

	if err := json.Unmarshal([]byte(`"xyz"`), &s); err == nil {
		t.Fatal("expected error for invalid hex")
	}
}
