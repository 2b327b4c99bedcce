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

package scenarios

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ubirch/ubirch-load-test/adapters/clients"
	"github.com/ubirch/ubirch-load-test/config"
	"github.com/ubirch/ubirch-load-test/loadtest"
	"github.com/ubirch/ubirch-load-test/vars"

	log "github.com/sirupsen/logrus"
)

const (
	GrafanaAuthKeyName = "grafana-auth-key"

	grafanaThinkTime = 2 * time.Second
	queryBatchCount  = 20
)

// AuthKeyScenario checks that a service account token grants access to
// Grafana and puts the data source query API under load.
type AuthKeyScenario struct {
	base
	ThinkTime time.Duration

	conf      *config.Config
	transport clients.Transport

	token        *clients.ServiceAccountToken
	orgID        int64
	datasourceID int64
}

func NewGrafanaAuthKey(conf *config.Config, transport clients.Transport) *AuthKeyScenario {
	return &AuthKeyScenario{
		base: base{
			name:    GrafanaAuthKeyName,
			options: loadtest.Options{VUs: 1, Iterations: 2},
		},
		ThinkTime: grafanaThinkTime,
		conf:      conf,
		transport: transport,
	}
}

// Setup mints the service account token shared by all virtual users and
// provisions the test organization and datasource. The service account is
// deleted again if provisioning fails, as no teardown follows a failed setup.
func (s *AuthKeyScenario) Setup(ctx context.Context) error {
	client, token, err := clients.BootstrapServiceAccount(ctx, s.transport, s.conf.GrafanaURL, s.conf.AdminUser, s.conf.AdminPassword)
	if err != nil {
		return err
	}
	s.token = token

	s.orgID, err = clients.EnsureOrganization(ctx, client, s.conf.TestOrgName)
	if err != nil {
		s.discardToken(ctx)
		return fmt.Errorf("unable to provision test organization: %w", err)
	}
	client.WithOrgID(s.orgID)

	s.datasourceID, err = clients.EnsureTestdataDatasource(ctx, client, s.conf.TestDatasourceName)
	if err != nil {
		s.discardToken(ctx)
		return fmt.Errorf("unable to provision test datasource: %w", err)
	}

	log.Infof("running in organization %d with datasource %d", s.orgID, s.datasourceID)
	return nil
}

func (s *AuthKeyScenario) NewVU(int) (loadtest.VU, error) {
	if s.token == nil {
		return nil, fmt.Errorf("no service account token, setup did not run")
	}

	client := clients.NewGrafanaClient(s.transport, s.conf.GrafanaURL, clients.Bearer(s.token.Key))
	client.WithOrgID(s.orgID)

	return &authKeyVU{
		client:   client,
		scenario: s,
	}, nil
}

// Teardown revokes the token by removing its service account
func (s *AuthKeyScenario) Teardown(ctx context.Context) error {
	if s.token == nil {
		return nil
	}
	return clients.DeleteServiceAccount(ctx, s.transport, s.conf.GrafanaURL, s.conf.AdminUser, s.conf.AdminPassword, s.token.ServiceAccountID)
}

func (s *AuthKeyScenario) discardToken(ctx context.Context) {
	if err := s.Teardown(ctx); err != nil {
		log.Errorf("unable to remove service account after failed setup: %v", err)
	}
	s.token = nil
}

type authKeyVU struct {
	client   *clients.GrafanaClient
	scenario *AuthKeyScenario
}

func (vu *authKeyVU) Iterate(ctx context.Context, it *loadtest.Iteration) {
	it.Group("API key test", func() {
		if it.Iter == 0 {
			it.Group("User can access Grafana instance with token", func() {
				resp := vu.client.Datasources.GetAll(ctx)
				it.CheckOK("response status is 200", resp)
			})
			return
		}

		it.Group("Batch TSDB requests", func() {
			responses := vu.client.Batch(ctx, tsdbBatch(vu.scenario.datasourceID))
			for idx, resp := range responses {
				it.CheckOK(fmt.Sprintf("request %d status is 200", idx), resp)
			}
		})
	})

	it.Sleep(ctx, vu.scenario.ThinkTime)
}

// tsdbBatch is one annotations lookup followed by the testdata queries
func tsdbBatch(datasourceID int64) []clients.Request {
	payload := clients.QueryRequest{
		From: "1547765247624",
		To:   "1547768847624",
		Queries: []clients.Query{
			{
				RefID:         "A",
				ScenarioID:    "random_walk",
				IntervalMs:    10000,
				MaxDataPoints: 433,
				DatasourceID:  datasourceID,
			},
		},
	}

	requests := make([]clients.Request, 0, queryBatchCount+1)
	requests = append(requests, clients.Request{
		Method: http.MethodGet,
		URL: vars.GrafanaAPIPath + clients.AnnotationsPath(clients.AnnotationQuery{
			DashboardID: 2074,
			From:        1548078832772,
			To:          1548082432772,
		}),
	})

	for n := 0; n < queryBatchCount; n++ {
		requests = append(requests, clients.Request{Method: http.MethodPost, URL: vars.GrafanaAPIPath + "/ds/query", Body: payload})
	}

	return requests
}
