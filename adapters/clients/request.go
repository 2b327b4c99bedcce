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

package clients

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	h "github.com/ubirch/ubirch-load-test/adapters/httphelper"
)

// Params are the caller supplied parts of a request. A zero Timeout
// falls back to the transport default. ExpectedStatuses replaces the
// default "status < 400" rule of Response.Failed.
type Params struct {
	Header           http.Header
	Timeout          time.Duration
	ExpectedStatuses []int
}

func (p *Params) header() http.Header {
	if p == nil || p.Header == nil {
		return http.Header{}
	}
	return p.Header.Clone()
}

func (p *Params) timeout() time.Duration {
	if p == nil {
		return 0
	}
	return p.Timeout
}

func (p *Params) expectedStatuses() []int {
	if p == nil {
		return nil
	}
	return p.ExpectedStatuses
}

// Request describes one entry of a batch. URL is relative to the client
// the batch is sent through, Body is serialized to JSON.
type Request struct {
	Method string
	URL    string
	Body   interface{}
	Params *Params
}

// HTTPRequest is a fully prepared request as handed to the Transport
type HTTPRequest struct {
	Method           string
	URL              string
	Body             []byte
	Header           http.Header
	Timeout          time.Duration
	ExpectedStatuses []int
}

// Response is the outcome of a request. Transport failures do not surface
// as errors of the client methods but are carried in Error with Status 0.
type Response struct {
	Method           string
	URL              string
	Status           int
	Header           http.Header
	Body             []byte
	Duration         time.Duration
	Error            error
	ExpectedStatuses []int
}

func errorResponse(method, url string, err error) *Response {
	return &Response{Method: method, URL: url, Error: err}
}

// Failed reports whether the request failed on transport level or the
// target responded with an unexpected status. Without ExpectedStatuses
// every status >= 400 is unexpected.
func (r *Response) Failed() bool {
	if r.Error != nil {
		return true
	}
	if len(r.ExpectedStatuses) == 0 {
		return r.Status >= http.StatusBadRequest
	}
	for _, status := range r.ExpectedStatuses {
		if r.Status == status {
			return false
		}
	}
	return true
}

func (r *Response) Success() bool {
	return r.Error == nil && h.HttpSuccess(r.Status)
}

// JSON decodes the response body into v
func (r *Response) JSON(v interface{}) error {
	if r.Error != nil {
		return r.Error
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("unable to decode response body of %s %s: %v", r.Method, r.URL, err)
	}
	return nil
}

func (r *Response) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s %s: %v", r.Method, r.URL, r.Error)
	}
	return fmt.Sprintf("%s %s: (%d) %s", r.Method, r.URL, r.Status, r.Duration)
}

// encodeBody serializes a request payload. Raw bytes are assumed to be
// serialized already, everything else is marshalled to JSON.
func encodeBody(body interface{}) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("unable to encode request body: %v", err)
		}
		return data, nil
	}
}
