// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fold

import (
	"encoding/hex"

	"github.com/foldlabs/foldsum/pkg/sha256"
)

// Result is the outcome of one fold computation.
type Result struct {
	Digest sha256.State
	Trace  *Trace
}

// Trace records every intermediate value of a fold computation.
// OriginalMessage echoes the input verbatim; everything else is a
// lowercase hex string, message blocks encoding to 128 characters and
// hash outputs and chaining values to 64.
type Trace struct {
	OriginalMessage    string   `json:"originalMessage"`
	Padded             string   `json:"padded"`
	Blocks             []string `json:"blocks"`
	InitialHashOutputs []string `json:"initialHashOutputs"`
	Rounds             []Round  `json:"rounds"`
	FinalDigest        string   `json:"finalDigest"`
}

// Round records one fold round. Rounds are numbered from 1. NewBlocks
// holds the paired 512-bit blocks and, after an odd-length round, a
// trailing carried 256-bit output.
type Round struct {
	Round             int      `json:"round"`
	InputHashOutputs  []string `json:"inputHashOutputs"`
	ComputedNewIV     string   `json:"computedNewIV"`
	NewBlocks         []string `json:"newBlocks"`
	OutputHashOutputs []string `json:"outputHashOutputs"`
}

func encodeStates(states []sha256.State) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = s.String()
	}
	return out
}

func encodeBlocks(blocks []sha256.Block) []string {
	out := make([]string, len(blocks))
	for i := range blocks {
		out[i] = hex.EncodeToString(blocks[i][:])
	}
	return out
}
