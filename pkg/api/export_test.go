// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api

type (
	HashRequest  = hashRequest
	HashResponse = hashResponse
)
