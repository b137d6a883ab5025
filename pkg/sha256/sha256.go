// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sha256 implements the SHA-256 primitives the fold construction
// is built from: message padding, block splitting and the raw compression
// function applied to a caller supplied chaining value. The stepwise API
// exists so that every intermediate value can be observed and recorded;
// for a plain digest use Sum, which is bit compatible with crypto/sha256.
package sha256

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// BlockSize is the size in bytes of one message block.
	BlockSize = 64
	// Size is the size in bytes of a digest and of an encoded State.
	Size = 32
	// MaxMessageSize is the largest message in bytes whose bit length
	// still fits the 64-bit length field of the padding.
	MaxMessageSize = 1<<61 - 1
)

var (
	// ErrMessageTooLong is returned by Pad when the message bit length
	// does not fit the 64-bit length field.
	ErrMessageTooLong = errors.New("message exceeds maximum allowed length")

	// ErrUnalignedData is returned by Split when the data length is not
	// a multiple of the block size. Data produced by Pad is always
	// aligned, so this signals a bug in the caller, not bad input.
	ErrUnalignedData = errors.New("data length is not a multiple of the block size")
)

// Block is a single 512-bit message block.
type Block [BlockSize]byte

// BlockFromBytes constructs a Block from a byte slice of exactly
// BlockSize bytes.
func BlockFromBytes(p []byte) (b Block, err error) {
	if len(p) != BlockSize {
		return b, fmt.Errorf("%w: have %d bytes", ErrUnalignedData, len(p))
	}
	copy(b[:], p)
	return b, nil
}

// IV returns the standard SHA-256 initial hash value.
func IV() State {
	return State{
		0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
		0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
	}
}

// Pad appends the SHA-256 padding to msg: a 0x80 marker byte, zero bytes
// up to the last eight bytes of a block boundary, and the message length
// in bits as a big-endian 64-bit integer. The result length is a multiple
// of BlockSize; an empty message pads to exactly one block.
func Pad(msg []byte) ([]byte, error) {
	if uint64(len(msg)) > MaxMessageSize {
		return nil, ErrMessageTooLong
	}
	// One byte for the marker, eight for the bit length, zeros in
	// between up to the next block boundary.
	zeros := 0
	if rem := (len(msg) + 1 + 8) % BlockSize; rem != 0 {
		zeros = BlockSize - rem
	}
	padded := make([]byte, len(msg)+1+zeros+8)
	n := copy(padded, msg)
	padded[n] = 0x80
	binary.BigEndian.PutUint64(padded[len(padded)-8:], uint64(len(msg))*8)
	return padded, nil
}

// Split cuts padded data into consecutive message blocks.
func Split(padded []byte) ([]Block, error) {
	if len(padded)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: have %d bytes", ErrUnalignedData, len(padded))
	}
	blocks := make([]Block, len(padded)/BlockSize)
	for i := range blocks {
		copy(blocks[i][:], padded[i*BlockSize:])
	}
	return blocks, nil
}

// Sum computes the SHA-256 digest of msg by chaining Compress over the
// padded message blocks, starting from the standard initial value.
func Sum(msg []byte) (State, error) {
	padded, err := Pad(msg)
	if err != nil {
		return State{}, err
	}
	blocks, err := Split(padded)
	if err != nil {
		return State{}, err
	}
	s := IV()
	for i := range blocks {
		s = Compress(&blocks[i], s)
	}
	return s, nil
}
