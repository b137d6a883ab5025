// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fold implements a parallel, reducible variant of SHA-256.
//
// The padded message blocks are first compressed independently, every one
// against the standard initial value, yielding one 256-bit hash output per
// block. The output list is then folded: outputs are paired left to right
// into new 512-bit blocks, a fresh chaining value is derived from the
// first pair, the paired blocks are compressed against it, and the fold
// repeats until a single output remains. An odd output at the end of a
// round is carried into the next round unchanged.
//
// Unlike a sequential hash, the per-block stage and every round are
// embarrassingly parallel. Every intermediate value is recorded in a
// Trace so the computation can be replayed and verified step by step.
//
// A simple sequential implementation for cross-checking lives in the
// reference sub-package.
package fold

import (
	"encoding/hex"
	"fmt"
	"runtime"
	"sync"

	"github.com/foldlabs/foldsum/pkg/sha256"
)

// Hasher computes fold digests. It carries no per-message state and is
// safe for concurrent use; every Hash call runs its own worker fan-out.
type Hasher struct {
	workers int
}

// New constructs a Hasher that spreads block compressions over the given
// number of worker goroutines. A non-positive count selects
// runtime.NumCPU(). The digest and trace do not depend on the worker
// count.
func New(workers int) *Hasher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Hasher{workers: workers}
}

// Hash computes the fold digest of msg and the trace of every
// intermediate value. Message padding errors are returned as is;
// any other error wraps ErrInvariant and signals a bug in the engine.
func (h *Hasher) Hash(msg []byte) (*Result, error) {
	padded, err := sha256.Pad(msg)
	if err != nil {
		return nil, err
	}
	blocks, err := sha256.Split(padded)
	if err != nil {
		return nil, fmt.Errorf("%w: split padded message: %v", ErrInvariant, err)
	}

	outputs := h.compressBlocks(blocks)

	trace := &Trace{
		OriginalMessage:    string(msg),
		Padded:             hex.EncodeToString(padded),
		Blocks:             encodeBlocks(blocks),
		InitialHashOutputs: encodeStates(outputs),
		Rounds:             []Round{},
	}

	iv := sha256.IV()
	for round := 1; len(outputs) > 1; round++ {
		var r Round
		r, iv, outputs, err = h.reduce(round, iv, outputs)
		if err != nil {
			return nil, err
		}
		trace.Rounds = append(trace.Rounds, r)
	}

	trace.FinalDigest = outputs[0].String()
	return &Result{Digest: outputs[0], Trace: trace}, nil
}

// compressBlocks hashes every message block independently against the
// standard initial value.
func (h *Hasher) compressBlocks(blocks []sha256.Block) []sha256.State {
	outputs := make([]sha256.State, len(blocks))
	iv := sha256.IV()
	h.fanOut(len(blocks), func(i int) {
		outputs[i] = sha256.Compress(&blocks[i], iv)
	})
	return outputs
}

// reduce runs one fold round over the input hash outputs and returns the
// recorded round, the chaining value it compressed with and the output
// list for the next round. The caller guarantees at least two inputs.
func (h *Hasher) reduce(round int, iv sha256.State, inputs []sha256.State) (Round, sha256.State, []sha256.State, error) {
	pairs := len(inputs) / 2
	carry := len(inputs)%2 == 1

	newIV := reduceIV(iv, inputs[0], inputs[1])

	blocks := make([]sha256.Block, pairs)
	for i := 0; i < pairs; i++ {
		copy(blocks[i][:sha256.Size], inputs[2*i].Bytes())
		copy(blocks[i][sha256.Size:], inputs[2*i+1].Bytes())
	}

	outputs := make([]sha256.State, pairs, pairs+1)
	h.fanOut(pairs, func(i int) {
		outputs[i] = sha256.Compress(&blocks[i], newIV)
	})

	newBlocks := make([]string, 0, pairs+1)
	for i := range blocks {
		newBlocks = append(newBlocks, hex.EncodeToString(blocks[i][:]))
	}
	if carry {
		// The unpaired last output passes through to the next round
		// unchanged. It is recorded among the new blocks as a bare
		// 256-bit entry so the output list and the block list stay
		// the same length.
		carried := inputs[len(inputs)-1]
		newBlocks = append(newBlocks, carried.String())
		outputs = append(outputs, carried)
	}

	if want := (len(inputs) + 1) / 2; len(outputs) != want || len(newBlocks) != want {
		return Round{}, sha256.State{}, nil, fmt.Errorf("%w: round %d produced %d outputs and %d blocks for %d inputs, want %d",
			ErrInvariant, round, len(outputs), len(newBlocks), len(inputs), want)
	}

	r := Round{
		Round:             round,
		InputHashOutputs:  encodeStates(inputs),
		ComputedNewIV:     newIV.String(),
		NewBlocks:         newBlocks,
		OutputHashOutputs: encodeStates(outputs),
	}
	return r, newIV, outputs, nil
}

// reduceIV derives the chaining value of a round from the previous
// round's value and the first pair of hash outputs: every word of the
// two outputs is combined with XOR and added into the previous value
// mod 2^32. The standard initial value seeds the first round.
func reduceIV(iv, first, second sha256.State) sha256.State {
	var out sha256.State
	for i := range out {
		out[i] = iv[i] + (first[i] ^ second[i])
	}
	return out
}

// fanOut runs fn for every index in [0, n) spread over the hasher's
// workers. Each index is visited by exactly one goroutine, so fn may
// write to preallocated result slots without locking.
func (h *Hasher) fanOut(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	group := (n + h.workers - 1) / h.workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += group {
		end := start + group
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
