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

package vars

const (
	AuthorizationHeader = "Authorization"
	ContentTypeHeader   = "Content-Type"
	OrgIDHeader         = "X-Grafana-Org-Id"

	BasicScheme  = "Basic"
	BearerScheme = "Bearer"

	JSONType = "application/json"
	FormType = "application/x-www-form-urlencoded"
	HTMLType = "text/html; charset=utf-8"
	TextType = "text/plain"

	GrafanaAPIPath = "/api"

	AdminRole = "Admin"

	ServiceAccountPrefix = "k6-admin-sa-"
	TokenPrefix          = "k6-temp-token-"

	TestdataType = "testdata"
)
