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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	h "github.com/ubirch/ubirch-load-test/adapters/httphelper"
)

// Transport sends prepared requests to the target system. Failures are
// reported in the returned responses, never as a separate error.
type Transport interface {
	Do(ctx context.Context, req *HTTPRequest) *Response
	// DoBatch sends all requests concurrently and returns the responses
	// in the order of reqs.
	DoBatch(ctx context.Context, reqs []*HTTPRequest) []*Response
}

// Observer is called with every response the transport produced
type Observer func(resp *Response)

type HTTPTransport struct {
	Client           *http.Client
	RequestTimeout   time.Duration
	BatchTimeout     time.Duration
	BatchParallelism int // maximum number of in-flight requests of one batch, 0 means unlimited
	Observer         Observer
}

func NewHTTPTransport(requestTimeout, batchTimeout time.Duration, batchParallelism int, observer Observer) *HTTPTransport {
	if requestTimeout <= 0 {
		requestTimeout = h.RequestTimeout
	}
	if batchTimeout <= 0 {
		batchTimeout = h.BatchTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 0
	transport.MaxIdleConnsPerHost = 100

	return &HTTPTransport{
		Client:           &http.Client{Transport: transport},
		RequestTimeout:   requestTimeout,
		BatchTimeout:     batchTimeout,
		BatchParallelism: batchParallelism,
		Observer:         observer,
	}
}

func (t *HTTPTransport) Do(ctx context.Context, req *HTTPRequest) *Response {
	resp := t.send(ctx, req)
	resp.ExpectedStatuses = req.ExpectedStatuses
	if t.Observer != nil {
		t.Observer(resp)
	}
	return resp
}

func (t *HTTPTransport) DoBatch(ctx context.Context, reqs []*HTTPRequest) []*Response {
	responses := make([]*Response, len(reqs))

	batchTimeout := t.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = h.BatchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	g := new(errgroup.Group)
	if t.BatchParallelism > 0 {
		g.SetLimit(t.BatchParallelism)
	}

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			responses[i] = t.Do(ctx, req)
			return nil
		})
	}

	// the goroutines never fail, errors are part of the responses
	_ = g.Wait()

	return responses
}

func (t *HTTPTransport) send(ctx context.Context, req *HTTPRequest) *Response {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = t.RequestTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return errorResponse(req.Method, req.URL, fmt.Errorf("failed to make new %s request: %v", req.Method, err))
	}
	for k, v := range req.Header {
		httpReq.Header[k] = v
	}

	start := time.Now()

	httpResp, err := t.Client.Do(httpReq)
	if err != nil {
		resp := errorResponse(req.Method, req.URL, fmt.Errorf("failed to send %s request: %v", req.Method, err))
		resp.Duration = time.Since(start)
		return resp
	}
	//noinspection GoUnhandledErrorResult
	defer httpResp.Body.Close()

	respBody, err := h.ReadBody(httpResp.Body)

	return &Response{
		Method:   req.Method,
		URL:      req.URL,
		Status:   httpResp.StatusCode,
		Header:   httpResp.Header,
		Body:     respBody,
		Duration: time.Since(start),
		Error:    err,
	}
}
