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
	"context"
	"net/http"
	"net/url"
	"time"

	h "github.com/ubirch/ubirch-load-test/adapters/httphelper"
	"github.com/ubirch/ubirch-load-test/vars"
)

// RequestHook adds headers to a request right after the credentials
// were applied
type RequestHook func(header http.Header)

// BaseClient sends requests below a fixed URL prefix. Credentials and
// hooks are set at construction and shared with clients derived by WithURL.
type BaseClient struct {
	url         string
	credentials Credentials
	hooks       []RequestHook
	transport   Transport
}

func NewBaseClient(transport Transport, baseURL, subURL string, credentials Credentials, hooks ...RequestHook) *BaseClient {
	return &BaseClient{
		url:         JoinURL(baseURL, subURL),
		credentials: credentials,
		hooks:       hooks,
		transport:   transport,
	}
}

// WithURL returns a client scoped below the current one
func (c *BaseClient) WithURL(subURL string) *BaseClient {
	return &BaseClient{
		url:         JoinURL(c.url, subURL),
		credentials: c.credentials,
		hooks:       c.hooks,
		transport:   c.transport,
	}
}

func (c *BaseClient) URL() string {
	return c.url
}

func (c *BaseClient) Credentials() Credentials {
	return c.credentials
}

func (c *BaseClient) Get(ctx context.Context, path string, params *Params) *Response {
	return c.transport.Do(ctx, c.prepare(http.MethodGet, path, nil, params.header(), params.timeout(), params.expectedStatuses()))
}

// Post sends body serialized as JSON. A []byte or json.RawMessage body is
// sent as is, a string is encoded as a JSON string.
func (c *BaseClient) Post(ctx context.Context, path string, body interface{}, params *Params) *Response {
	data, err := encodeBody(body)
	if err != nil {
		return errorResponse(http.MethodPost, c.url+path, err)
	}

	header := params.header()
	header.Set(vars.ContentTypeHeader, vars.JSONType)

	return c.transport.Do(ctx, c.prepare(http.MethodPost, path, data, header, params.timeout(), params.expectedStatuses()))
}

// FormPost sends form url-encoded
func (c *BaseClient) FormPost(ctx context.Context, path string, form url.Values, params *Params) *Response {
	header := params.header()
	header.Set(vars.ContentTypeHeader, vars.FormType)

	return c.transport.Do(ctx, c.prepare(http.MethodPost, path, []byte(form.Encode()), header, params.timeout(), params.expectedStatuses()))
}

func (c *BaseClient) Delete(ctx context.Context, path string, params *Params) *Response {
	return c.transport.Do(ctx, c.prepare(http.MethodDelete, path, nil, params.header(), params.timeout(), params.expectedStatuses()))
}

// Batch prepares every request on its own and sends all of them as one
// concurrent group. The response at index i belongs to reqs[i].
func (c *BaseClient) Batch(ctx context.Context, reqs []Request) []*Response {
	responses := make([]*Response, len(reqs))
	prepared := make([]*HTTPRequest, 0, len(reqs))
	index := make([]int, 0, len(reqs))

	for i, r := range reqs {
		method := r.Method
		if method == "" {
			method = http.MethodGet
		}

		data, err := encodeBody(r.Body)
		if err != nil {
			responses[i] = errorResponse(method, c.url+r.URL, err)
			continue
		}

		header := r.Params.header()
		header.Set(vars.ContentTypeHeader, vars.JSONType)

		prepared = append(prepared, c.prepare(method, r.URL, data, header, h.BatchTimeout, r.Params.expectedStatuses()))
		index = append(index, i)
	}

	for n, resp := range c.transport.DoBatch(ctx, prepared) {
		responses[index[n]] = resp
	}

	return responses
}

func (c *BaseClient) prepare(method, path string, body []byte, header http.Header, timeout time.Duration, expectedStatuses []int) *HTTPRequest {
	c.credentials.Apply(header)
	for _, hook := range c.hooks {
		hook(header)
	}

	return &HTTPRequest{
		Method:           method,
		URL:              c.url + path,
		Body:             body,
		Header:           header,
		Timeout:          timeout,
		ExpectedStatuses: expectedStatuses,
	}
}
