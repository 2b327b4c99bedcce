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
	"strconv"
	"sync/atomic"

	"github.com/ubirch/ubirch-load-test/vars"
)

// OrgScope holds the organization all requests of one GrafanaClient are
// scoped to. Zero means no scope.
type OrgScope struct {
	id atomic.Int64
}

func (s *OrgScope) Set(id int64) {
	s.id.Store(id)
}

func (s *OrgScope) ID() int64 {
	return s.id.Load()
}

// Apply is the RequestHook setting the organization header
func (s *OrgScope) Apply(header http.Header) {
	if id := s.ID(); id > 0 {
		header.Set(vars.OrgIDHeader, strconv.FormatInt(id, 10))
	}
}

// GrafanaClient is a configured connection to one Grafana instance.
// It must not be shared between virtual users.
type GrafanaClient struct {
	Raw             *BaseClient
	UI              *UIEndpoint
	Orgs            *OrganizationEndpoint
	Datasources     *DatasourcesEndpoint
	ServiceAccounts *ServiceAccountsEndpoint
	Query           *QueryEndpoint
	Annotations     *AnnotationsEndpoint

	orgScope *OrgScope
}

func NewGrafanaClient(transport Transport, url string, credentials Credentials) *GrafanaClient {
	orgScope := &OrgScope{}
	raw := NewBaseClient(transport, url, "", credentials, orgScope.Apply)
	api := raw.WithURL(vars.GrafanaAPIPath)

	return &GrafanaClient{
		Raw:             raw,
		UI:              &UIEndpoint{client: raw},
		Orgs:            &OrganizationEndpoint{client: api},
		Datasources:     &DatasourcesEndpoint{client: api},
		ServiceAccounts: &ServiceAccountsEndpoint{client: api},
		Query:           &QueryEndpoint{client: api},
		Annotations:     &AnnotationsEndpoint{client: api},
		orgScope:        orgScope,
	}
}

// WithOrgID scopes every following request of the client to the organization
func (g *GrafanaClient) WithOrgID(orgID int64) {
	g.orgScope.Set(orgID)
}

func (g *GrafanaClient) OrgID() int64 {
	return g.orgScope.ID()
}

// Batch sends the requests relative to the Grafana root URL
func (g *GrafanaClient) Batch(ctx context.Context, reqs []Request) []*Response {
	return g.Raw.Batch(ctx, reqs)
}
