// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sha256

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// State is a 256-bit SHA-256 hash state, eight 32-bit words. It serves
// both as a chaining value fed into Compress and as a finished digest.
type State [8]uint32

// StateFromBytes constructs a State from a big-endian byte slice of
// exactly Size bytes.
func StateFromBytes(p []byte) (s State, err error) {
	if len(p) != Size {
		return s, fmt.Errorf("state must be %d bytes, have %d", Size, len(p))
	}
	for i := range s {
		s[i] = binary.BigEndian.Uint32(p[i*4:])
	}
	return s, nil
}

// ParseState returns a State from a hex-encoded string representation.
func ParseState(str string) (State, error) {
	p, err := hex.DecodeString(str)
	if err != nil {
		return State{}, err
	}
	return StateFromBytes(p)
}

// MustParseState returns a State from a hex-encoded string
// representation, and panics if there is a parse error.
func MustParseState(str string) State {
	s, err := ParseState(str)
	if err != nil {
		panic(err)
	}
	return s
}

// Bytes returns the big-endian byte representation of the State.
func (s State) Bytes() []byte {
	p := make([]byte, Size)
	for i, w := range s {
		binary.BigEndian.PutUint32(p[i*4:], w)
	}
	return p
}

// String returns a hex-encoded representation of the State.
func (s State) String() string {
	return hex.EncodeToString(s.Bytes())
}

// Equal returns true if two states are identical.
func (s State) Equal(o State) bool {
	return s == o
}

// MarshalJSON returns the JSON-encoded representation of the State as a
// hex string.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON sets the State from a JSON-encoded hex string
// representation.
func (s *State) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	parsed, err := ParseState(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
