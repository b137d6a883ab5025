// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fold

import (
	"errors"
)

// ErrInvariant is returned when the engine breaks one of its own
// postconditions. It signals a bug in the fold computation, never bad
// caller input, and must not be reported as such.
var ErrInvariant = errors.New("fold invariant violation")
