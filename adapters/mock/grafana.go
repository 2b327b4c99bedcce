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

package mock

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	log "github.com/sirupsen/logrus"
	h "github.com/ubirch/ubirch-load-test/adapters/httphelper"
	"github.com/ubirch/ubirch-load-test/vars"
)

const (
	defaultOrgID   = 1
	defaultOrgName = "Main Org."
	tokenKeyPrefix = "glsa_"
)

type datasource struct {
	ID        int64           `json:"id"`
	UID       string          `json:"uid"`
	OrgID     int64           `json:"orgId"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Access    string          `json:"access"`
	URL       string          `json:"url"`
	IsDefault bool            `json:"isDefault"`
	JSONData  json.RawMessage `json:"jsonData,omitempty"`
}

type organization struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type serviceAccount struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Login string `json:"login"`
	OrgID int64  `json:"orgId"`
	Role  string `json:"role"`
}

type token struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Key              string `json:"key,omitempty"`
	serviceAccountID int64
}

// Grafana is an in-memory fake of the parts of the Grafana HTTP API the
// load tests use. Requests are authenticated with the admin basic
// credentials or a minted service account token.
type Grafana struct {
	adminUser     string
	adminPassword string

	mu              sync.Mutex
	nextID          int64
	orgs            map[int64]*organization
	datasources     map[int64]*datasource
	serviceAccounts map[int64]*serviceAccount
	tokens          map[string]*token
	faults          map[string]int
	calls           map[string]int
}

func NewGrafana(adminUser, adminPassword string) *Grafana {
	return &Grafana{
		adminUser:       adminUser,
		adminPassword:   adminPassword,
		nextID:          defaultOrgID + 1,
		orgs:            map[int64]*organization{defaultOrgID: {ID: defaultOrgID, Name: defaultOrgName}},
		datasources:     map[int64]*datasource{},
		serviceAccounts: map[int64]*serviceAccount{},
		tokens:          map[string]*token{},
		faults:          map[string]int{},
		calls:           map[string]int{},
	}
}

// Fail makes the route answer with status instead of being handled, e.g.
// Fail(http.MethodPost, "/api/serviceaccounts", 500)
func (g *Grafana) Fail(method, pattern string, status int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.faults[method+" "+pattern] = status
}

// Calls returns how often the route was requested
func (g *Grafana) Calls(method, pattern string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[method+" "+pattern]
}

// Handler returns a router serving the fake API
func (g *Grafana) Handler() http.Handler {
	r := h.NewRouter()
	g.Register(r)
	return r
}

func (g *Grafana) Register(r chi.Router) {
	r.Get(h.LivenessCheckEndpoint, h.Health("grafana"))

	g.route(r, http.MethodPost, "/login", g.login)

	r.Group(func(r chi.Router) {
		r.Use(g.authenticate)

		g.route(r, http.MethodGet, "/api/datasources", g.listDatasources)
		g.route(r, http.MethodPost, "/api/datasources", g.createDatasource)
		g.route(r, http.MethodGet, "/api/datasources/name/{name}", g.getDatasourceByName)
		g.route(r, http.MethodGet, "/api/datasources/{id}", g.getDatasource)
		g.route(r, http.MethodDelete, "/api/datasources/{id}", g.deleteDatasource)

		g.route(r, http.MethodPost, "/api/orgs", g.createOrg)
		g.route(r, http.MethodGet, "/api/orgs/name/{name}", g.getOrgByName)
		g.route(r, http.MethodGet, "/api/orgs/{id}", g.getOrg)
		g.route(r, http.MethodDelete, "/api/orgs/{id}", g.deleteOrg)

		g.route(r, http.MethodPost, "/api/serviceaccounts", g.createServiceAccount)
		g.route(r, http.MethodPost, "/api/serviceaccounts/{id}/tokens", g.createToken)
		g.route(r, http.MethodDelete, "/api/serviceaccounts/{id}", g.deleteServiceAccount)

		g.route(r, http.MethodPost, "/api/ds/query", g.query)
		g.route(r, http.MethodGet, "/api/annotations", g.annotations)
	})
}

func (g *Grafana) route(r chi.Router, method, pattern string, handler http.HandlerFunc) {
	key := method + " " + pattern
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		g.mu.Lock()
		g.calls[key]++
		status, fail := g.faults[key]
		g.mu.Unlock()

		if fail {
			h.RespondError(w, status, http.StatusText(status))
			return
		}
		handler(w, req)
	}))
}

// authenticate accepts the admin basic credentials and service account
// tokens and checks the organization header
func (g *Grafana) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.isAuthorized(r.Header.Get(vars.AuthorizationHeader)) {
			h.Respond401(w)
			return
		}

		if orgHeader := r.Header.Get(vars.OrgIDHeader); orgHeader != "" {
			orgID, err := strconv.ParseInt(orgHeader, 10, 64)
			if err != nil || !g.orgExists(orgID) {
				h.RespondError(w, http.StatusUnauthorized, "Access denied to org")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Grafana) isAuthorized(auth string) bool {
	scheme, credentials, found := strings.Cut(auth, " ")
	if !found {
		return false
	}

	switch scheme {
	case vars.BasicScheme:
		decoded, err := base64.StdEncoding.DecodeString(credentials)
		if err != nil {
			return false
		}
		user, password, _ := strings.Cut(string(decoded), ":")
		return user == g.adminUser && password == g.adminPassword
	case vars.BearerScheme:
		g.mu.Lock()
		defer g.mu.Unlock()
		_, exists := g.tokens[credentials]
		return exists
	default:
		return false
	}
}

func (g *Grafana) orgExists(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, exists := g.orgs[id]
	return exists
}

func orgID(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.Header.Get(vars.OrgIDHeader), 10, 64)
	if err != nil || id <= 0 {
		return defaultOrgID
	}
	return id
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.Respond400(w, fmt.Sprintf("invalid id: %v", err))
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.Respond400(w, fmt.Sprintf("bad request data: %v", err))
		return false
	}
	return true
}

func (g *Grafana) id() int64 {
	id := g.nextID
	g.nextID++
	return id
}

func (g *Grafana) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		User     string `json:"user"`
		Password string `json:"password"`
	}
	if !decode(w, r, &payload) {
		return
	}
	if payload.User != g.adminUser || payload.Password != g.adminPassword {
		h.RespondError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	h.RespondJSON(w, http.StatusOK, h.ErrorMessage{Message: "Logged in"})
}

func (g *Grafana) listDatasources(w http.ResponseWriter, r *http.Request) {
	org := orgID(r)

	g.mu.Lock()
	list := []*datasource{}
	for _, ds := range g.datasources {
		if ds.OrgID == org {
			list = append(list, ds)
		}
	}
	g.mu.Unlock()

	h.RespondJSON(w, http.StatusOK, list)
}

func (g *Grafana) createDatasource(w http.ResponseWriter, r *http.Request) {
	var ds datasource
	if !decode(w, r, &ds) {
		return
	}
	if ds.Name == "" || ds.Type == "" {
		h.Respond400(w, "name and type are required")
		return
	}
	ds.OrgID = orgID(r)

	g.mu.Lock()
	for _, existing := range g.datasources {
		if existing.OrgID == ds.OrgID && existing.Name == ds.Name {
			g.mu.Unlock()
			h.Respond409(w, "data source with the same name already exists")
			return
		}
	}
	ds.ID = g.id()
	ds.UID = uuid.NewString()[:9]
	g.datasources[ds.ID] = &ds
	g.mu.Unlock()

	log.Debugf("fake grafana: created datasource %q (%d) in org %d", ds.Name, ds.ID, ds.OrgID)
	h.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"datasource": ds,
		"id":         ds.ID,
		"message":    "Datasource added",
		"name":       ds.Name,
	})
}

func (g *Grafana) findDatasource(r *http.Request, match func(ds *datasource) bool) *datasource {
	org := orgID(r)

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, ds := range g.datasources {
		if ds.OrgID == org && match(ds) {
			return ds
		}
	}
	return nil
}

func (g *Grafana) getDatasourceByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ds := g.findDatasource(r, func(ds *datasource) bool { return ds.Name == name })
	if ds == nil {
		h.Respond404(w, "Data source not found")
		return
	}
	h.RespondJSON(w, http.StatusOK, ds)
}

func (g *Grafana) getDatasource(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ds := g.findDatasource(r, func(ds *datasource) bool { return ds.ID == id })
	if ds == nil {
		h.Respond404(w, "Data source not found")
		return
	}
	h.RespondJSON(w, http.StatusOK, ds)
}

func (g *Grafana) deleteDatasource(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ds := g.findDatasource(r, func(ds *datasource) bool { return ds.ID == id })
	if ds == nil {
		h.Respond404(w, "Data source not found")
		return
	}

	g.mu.Lock()
	delete(g.datasources, id)
	g.mu.Unlock()

	h.RespondJSON(w, http.StatusOK, h.ErrorMessage{Message: "Data source deleted"})
}

func (g *Grafana) createOrg(w http.ResponseWriter, r *http.Request) {
	var org organization
	if !decode(w, r, &org) {
		return
	}
	if org.Name == "" {
		h.Respond400(w, "name is required")
		return
	}

	g.mu.Lock()
	for _, existing := range g.orgs {
		if existing.Name == org.Name {
			g.mu.Unlock()
			h.Respond409(w, "Organization name taken")
			return
		}
	}
	org.ID = g.id()
	g.orgs[org.ID] = &org
	g.mu.Unlock()

	h.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"orgId":   org.ID,
		"message": "Organization created",
	})
}

func (g *Grafana) getOrgByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, org := range g.orgs {
		if org.Name == name {
			h.RespondJSON(w, http.StatusOK, org)
			return
		}
	}
	h.Respond404(w, "Organization not found")
}

func (g *Grafana) getOrg(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	org, exists := g.orgs[id]
	if !exists {
		h.Respond404(w, "Organization not found")
		return
	}
	h.RespondJSON(w, http.StatusOK, org)
}

func (g *Grafana) deleteOrg(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.orgs[id]; !exists {
		h.Respond404(w, "Organization not found")
		return
	}
	delete(g.orgs, id)
	h.RespondJSON(w, http.StatusOK, h.ErrorMessage{Message: "Organization deleted"})
}

func (g *Grafana) createServiceAccount(w http.ResponseWriter, r *http.Request) {
	var sa serviceAccount
	if !decode(w, r, &sa) {
		return
	}
	if sa.Name == "" {
		h.Respond400(w, "name is required")
		return
	}

	g.mu.Lock()
	sa.ID = g.id()
	sa.Login = "sa-" + sa.Name
	sa.OrgID = defaultOrgID
	g.serviceAccounts[sa.ID] = &sa
	g.mu.Unlock()

	h.RespondJSON(w, http.StatusCreated, sa)
}

func (g *Grafana) createToken(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var t token
	if !decode(w, r, &t) {
		return
	}

	g.mu.Lock()
	if _, exists := g.serviceAccounts[id]; !exists {
		g.mu.Unlock()
		h.Respond404(w, "service account not found")
		return
	}
	t.ID = g.id()
	t.Key = tokenKeyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	t.serviceAccountID = id
	g.tokens[t.Key] = &t
	g.mu.Unlock()

	h.RespondJSON(w, http.StatusOK, t)
}

func (g *Grafana) deleteServiceAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.serviceAccounts[id]; !exists {
		h.Respond404(w, "service account not found")
		return
	}
	delete(g.serviceAccounts, id)
	for key, t := range g.tokens {
		if t.serviceAccountID == id {
			delete(g.tokens, key)
		}
	}
	h.RespondJSON(w, http.StatusOK, h.ErrorMessage{Message: "Service account deleted"})
}

func (g *Grafana) query(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		From    string `json:"from"`
		To      string `json:"to"`
		Queries []struct {
			RefID        string `json:"refId"`
			DatasourceID int64  `json:"datasourceId"`
		} `json:"queries"`
	}
	if !decode(w, r, &payload) {
		return
	}
	if len(payload.Queries) == 0 {
		h.Respond400(w, "no queries found")
		return
	}

	results := map[string]interface{}{}
	for _, q := range payload.Queries {
		ds := g.findDatasource(r, func(ds *datasource) bool { return ds.ID == q.DatasourceID })
		if ds == nil {
			h.Respond400(w, fmt.Sprintf("data source %d not found", q.DatasourceID))
			return
		}
		results[q.RefID] = map[string]interface{}{
			"status": http.StatusOK,
			"frames": []interface{}{},
		}
	}

	h.RespondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (g *Grafana) annotations(w http.ResponseWriter, r *http.Request) {
	for _, param := range []string{"from", "to"} {
		if v := r.URL.Query().Get(param); v != "" {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				h.Respond400(w, fmt.Sprintf("invalid %s: %v", param, err))
				return
			}
		}
	}
	h.RespondJSON(w, http.StatusOK, []interface{}{})
}
