// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsonhttp provides convenience methods to handle HTTP requests
// and responses with JSON-encoded bodies.
package jsonhttp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

var (
	// DefaultContentTypeHeader is the value of the Content-Type header
	// set on every JSON response.
	DefaultContentTypeHeader = "application/json; charset=utf-8"
	// EscapeHTML specifies whether problematic HTML characters should be
	// escaped inside JSON quoted strings.
	EscapeHTML = false
)

// StatusResponse is a standardized error format for specific HTTP
// responses.
type StatusResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Respond writes a JSON-encoded body to the http.ResponseWriter. A nil
// response renders a StatusResponse with the standard status text, and
// string and error responses are wrapped in a StatusResponse carrying
// the status code, so that every body on the wire has the same shape.
func Respond(w http.ResponseWriter, statusCode int, response interface{}) {
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	if response == nil {
		response = &StatusResponse{
			Message: http.StatusText(statusCode),
			Code:    statusCode,
		}
	} else {
		switch message := response.(type) {
		case string:
			response = &StatusResponse{
				Message: message,
				Code:    statusCode,
			}
		case error:
			response = &StatusResponse{
				Message: message.Error(),
				Code:    statusCode,
			}
		}
	}
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(EscapeHTML)
	if err := enc.Encode(response); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", DefaultContentTypeHeader)
	}
	w.WriteHeader(statusCode)
	fmt.Fprint(w, b.String())
}
