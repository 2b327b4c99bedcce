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
	"net/http"
	"net/url"
	"strconv"
)

// lookupParams accept a missing resource as a regular answer
var lookupParams = &Params{ExpectedStatuses: []int{http.StatusOK, http.StatusNotFound}}

type UIEndpoint struct {
	client *BaseClient
}

func (e *UIEndpoint) Login(ctx context.Context, username, password string) *Response {
	return e.client.Post(ctx, "/login", LoginRequest{User: username, Password: password}, nil)
}

type DatasourcesEndpoint struct {
	client *BaseClient
}

func (e *DatasourcesEndpoint) GetAll(ctx context.Context) *Response {
	return e.client.Get(ctx, "/datasources", nil)
}

func (e *DatasourcesEndpoint) GetByID(ctx context.Context, id int64) *Response {
	return e.client.Get(ctx, fmt.Sprintf("/datasources/%d", id), nil)
}

func (e *DatasourcesEndpoint) GetByName(ctx context.Context, name string) *Response {
	return e.client.Get(ctx, "/datasources/name/"+name, nil)
}

// FindByName is GetByName for existence checks, a 404 does not count as
// a failed request
func (e *DatasourcesEndpoint) FindByName(ctx context.Context, name string) *Response {
	return e.client.Get(ctx, "/datasources/name/"+name, lookupParams)
}

func (e *DatasourcesEndpoint) Create(ctx context.Context, ds Datasource) *Response {
	return e.client.Post(ctx, "/datasources", ds, nil)
}

func (e *DatasourcesEndpoint) Delete(ctx context.Context, id int64) *Response {
	return e.client.Delete(ctx, fmt.Sprintf("/datasources/%d", id), nil)
}

type OrganizationEndpoint struct {
	client *BaseClient
}

func (e *OrganizationEndpoint) GetByID(ctx context.Context, id int64) *Response {
	return e.client.Get(ctx, fmt.Sprintf("/orgs/%d", id), nil)
}

func (e *OrganizationEndpoint) GetByName(ctx context.Context, name string) *Response {
	return e.client.Get(ctx, "/orgs/name/"+name, nil)
}

func (e *OrganizationEndpoint) FindByName(ctx context.Context, name string) *Response {
	return e.client.Get(ctx, "/orgs/name/"+name, lookupParams)
}

func (e *OrganizationEndpoint) Create(ctx context.Context, name string) *Response {
	return e.client.Post(ctx, "/orgs", CreateOrgRequest{Name: name}, nil)
}

func (e *OrganizationEndpoint) Delete(ctx context.Context, id int64) *Response {
	return e.client.Delete(ctx, fmt.Sprintf("/orgs/%d", id), nil)
}

type ServiceAccountsEndpoint struct {
	client *BaseClient
}

func (e *ServiceAccountsEndpoint) Create(ctx context.Context, name, role string) *Response {
	return e.client.Post(ctx, "/serviceaccounts", ServiceAccountRequest{Name: name, Role: role}, nil)
}

// CreateToken mints a token for the service account, secondsToLive 0
// means the token does not expire
func (e *ServiceAccountsEndpoint) CreateToken(ctx context.Context, id int64, name string, secondsToLive int64) *Response {
	return e.client.Post(ctx, fmt.Sprintf("/serviceaccounts/%d/tokens", id), TokenRequest{Name: name, SecondsToLive: secondsToLive}, nil)
}

func (e *ServiceAccountsEndpoint) Delete(ctx context.Context, id int64) *Response {
	return e.client.Delete(ctx, fmt.Sprintf("/serviceaccounts/%d", id), nil)
}

type QueryEndpoint struct {
	client *BaseClient
}

func (e *QueryEndpoint) Query(ctx context.Context, query QueryRequest) *Response {
	return e.client.Post(ctx, "/ds/query", query, nil)
}

type AnnotationsEndpoint struct {
	client *BaseClient
}

func (e *AnnotationsEndpoint) Find(ctx context.Context, query AnnotationQuery) *Response {
	return e.client.Get(ctx, AnnotationsPath(query), nil)
}

// AnnotationsPath returns the annotations search path relative to the API
// client, e.g. for use in a batch
func AnnotationsPath(query AnnotationQuery) string {
	v := url.Values{}
	v.Set("dashboardId", strconv.FormatInt(query.DashboardID, 10))
	v.Set("from", strconv.FormatInt(query.From, 10))
	v.Set("to", strconv.FormatInt(query.To, 10))
	return "/annotations?" + v.Encode()
}
