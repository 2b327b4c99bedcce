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
	"fmt"
)

type ProductpageEndpoint struct {
	client *BaseClient
}

func (e *ProductpageEndpoint) Visit(ctx context.Context) *Response {
	return e.client.Get(ctx, "/productpage", nil)
}

type DetailsEndpoint struct {
	client *BaseClient
}

func (e *DetailsEndpoint) Get(ctx context.Context, productID int) *Response {
	return e.client.Get(ctx, fmt.Sprintf("/details/%d", productID), nil)
}

type ReviewsEndpoint struct {
	client *BaseClient
}

func (e *ReviewsEndpoint) Get(ctx context.Context, productID int) *Response {
	return e.client.Get(ctx, fmt.Sprintf("/reviews/%d", productID), nil)
}

type RatingsEndpoint struct {
	client *BaseClient
}

func (e *RatingsEndpoint) Get(ctx context.Context, productID int) *Response {
	return e.client.Get(ctx, fmt.Sprintf("/ratings/%d", productID), nil)
}

// BookinfoClient is a configured connection to the Bookinfo mesh
type BookinfoClient struct {
	Raw         *BaseClient
	Productpage *ProductpageEndpoint
	Details     *DetailsEndpoint
	Reviews     *ReviewsEndpoint
	Ratings     *RatingsEndpoint
}

func NewBookinfoClient(transport Transport, url string, credentials Credentials) *BookinfoClient {
	raw := NewBaseClient(transport, url, "", credentials)

	return &BookinfoClient{
		Raw:         raw,
		Productpage: &ProductpageEndpoint{client: raw},
		Details:     &DetailsEndpoint{client: raw},
		Reviews:     &ReviewsEndpoint{client: raw},
		Ratings:     &RatingsEndpoint{client: raw},
	}
}

func (b *BookinfoClient) Batch(ctx context.Context, reqs []Request) []*Response {
	return b.Raw.Batch(ctx, reqs)
}
