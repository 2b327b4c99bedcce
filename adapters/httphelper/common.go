// Copyright (c) 2023 ubirch GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httphelper

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	RequestTimeout   = 60 * time.Second  // default timeout for single requests to the target system
	BatchTimeout     = 120 * time.Second // upper bound for the whole group of a batch request
	GatewayTimeout   = 20 * time.Second  // time after which the fake targets send a 504 response if no timely response could be produced
	ShutdownTimeout  = 10 * time.Second  // time after which the server will be shut down forcefully if graceful shutdown did not happen before
	ReadTimeout      = 5 * time.Second   // maximum duration for reading the entire request
	WriteTimeout     = 30 * time.Second  // time after which the connection will be closed if response was not written
	IdleTimeout      = 60 * time.Second  // time to wait for the next request when keep-alives are enabled
	MaxResponseBytes = 10 << 20          // responses are cut off after 10 MiB
)

// helper function to get "Content-Type" from request header
func ContentType(header http.Header) string {
	return strings.ToLower(header.Get("Content-Type"))
}

func ReadBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("unable to read body: %v", err)
	}
	return body, nil
}
