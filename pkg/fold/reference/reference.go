// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reference is a sequential implementation of the fold
// construction, optimized for code simplicity and meant as a readable
// cross-check for the concurrent hasher.
package reference

import (
	"github.com/foldlabs/foldsum/pkg/sha256"
)

// Fold computes the fold digest of msg with plain loops and no
// concurrency.
func Fold(msg []byte) (sha256.State, error) {
	padded, err := sha256.Pad(msg)
	if err != nil {
		return sha256.State{}, err
	}
	blocks, err := sha256.Split(padded)
	if err != nil {
		return sha256.State{}, err
	}

	outputs := make([]sha256.State, len(blocks))
	for i := range blocks {
		outputs[i] = sha256.Compress(&blocks[i], sha256.IV())
	}

	iv := sha256.IV()
	for len(outputs) > 1 {
		for i := range iv {
			iv[i] += outputs[0][i] ^ outputs[1][i]
		}
		next := make([]sha256.State, 0, (len(outputs)+1)/2)
		for i := 0; i+1 < len(outputs); i += 2 {
			var blk sha256.Block
			copy(blk[:sha256.Size], outputs[i].Bytes())
			copy(blk[sha256.Size:], outputs[i+1].Bytes())
			next = append(next, sha256.Compress(&blk, iv))
		}
		if len(outputs)%2 == 1 {
			next = append(next, outputs[len(outputs)-1])
		}
		outputs = next
	}

	return outputs[0], nil
}
