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

import "encoding/json"

type LoginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

type Datasource struct {
	ID        int64           `json:"id,omitempty"`
	UID       string          `json:"uid,omitempty"`
	OrgID     int64           `json:"orgId,omitempty"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Access    string          `json:"access,omitempty"`
	URL       string          `json:"url,omitempty"`
	IsDefault bool            `json:"isDefault"`
	JSONData  json.RawMessage `json:"jsonData,omitempty"`
}

// CreateDatasourceResponse is the answer of POST /api/datasources
type CreateDatasourceResponse struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Message    string     `json:"message"`
	Datasource Datasource `json:"datasource"`
}

type Organization struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CreateOrgRequest struct {
	Name string `json:"name"`
}

// CreateOrgResponse is the answer of POST /api/orgs
type CreateOrgResponse struct {
	OrgID   int64  `json:"orgId"`
	Message string `json:"message"`
}

type ServiceAccountRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type ServiceAccount struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Login      string `json:"login"`
	OrgID      int64  `json:"orgId"`
	Role       string `json:"role"`
	IsDisabled bool   `json:"isDisabled"`
}

type TokenRequest struct {
	Name          string `json:"name"`
	SecondsToLive int64  `json:"secondsToLive"`
}

type Token struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

// QueryRequest is the payload of POST /api/ds/query
type QueryRequest struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Queries []Query `json:"queries"`
}

type Query struct {
	RefID         string `json:"refId"`
	ScenarioID    string `json:"scenarioId,omitempty"`
	IntervalMs    int64  `json:"intervalMs,omitempty"`
	MaxDataPoints int64  `json:"maxDataPoints,omitempty"`
	DatasourceID  int64  `json:"datasourceId"`
}

type AnnotationQuery struct {
	DashboardID int64
	From        int64
	To          int64
}

type Annotation struct {
	ID          int64    `json:"id"`
	DashboardID int64    `json:"dashboardId"`
	Time        int64    `json:"time"`
	TimeEnd     int64    `json:"timeEnd"`
	Text        string   `json:"text"`
	Tags        []string `json:"tags"`
}
