// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !windows
// +build !windows

package cmd

func isWindowsService() (bool, error) {
	return false, nil
}
