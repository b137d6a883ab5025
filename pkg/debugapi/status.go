// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package debugapi

import (
	"net/http"

	"github.com/foldlabs/foldsum"
	"github.com/foldlabs/foldsum/pkg/jsonhttp"
)

type statusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Service) statusHandler(w http.ResponseWriter, _ *http.Request) {
	jsonhttp.OK(w, statusResponse{
		Status:  "ok",
		Version: foldsum.Version,
	})
}
