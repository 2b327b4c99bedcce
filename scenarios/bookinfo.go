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
	"strings"
	"time"

	"github.com/ubirch/ubirch-load-test/adapters/clients"
	"github.com/ubirch/ubirch-load-test/config"
	"github.com/ubirch/ubirch-load-test/loadtest"
	"github.com/ubirch/ubirch-load-test/vars"
)

const (
	BookinfoSmokeName  = "bookinfo-smoke"
	BookinfoLoadName   = "bookinfo-load"
	BookinfoStressName = "bookinfo-stress"
	BookinfoMeshName   = "bookinfo-mesh"

	bookinfoThinkTime = time.Second
)

// ProductpageScenario visits the Bookinfo product page in a loop
type ProductpageScenario struct {
	base
	ThinkTime time.Duration

	transport clients.Transport
	url       string
	checks    func(it *loadtest.Iteration, resp *clients.Response)
}

// NewBookinfoSmoke checks status and content of the product page with a
// small number of users
func NewBookinfoSmoke(conf *config.Config, transport clients.Transport) *ProductpageScenario {
	return &ProductpageScenario{
		base: base{
			name:    BookinfoSmokeName,
			options: loadtest.Options{VUs: 10, Duration: 2 * time.Minute},
		},
		ThinkTime: bookinfoThinkTime,
		transport: transport,
		url:       conf.BookinfoURL,
		checks: func(it *loadtest.Iteration, resp *clients.Response) {
			it.CheckOK("status is 200", resp)
			it.Check("body contains product", resp.Error == nil && strings.Contains(string(resp.Body), "productpage"))
		},
	}
}

// NewBookinfoLoad puts the product page under average load
func NewBookinfoLoad(conf *config.Config, transport clients.Transport) *ProductpageScenario {
	return &ProductpageScenario{
		base: base{
			name: BookinfoLoadName,
			options: loadtest.Options{
				VUs:      20,
				Duration: 5 * time.Minute,
				Thresholds: map[string][]string{
					loadtest.MetricRequestDuration: {"p(90) < 500"}, // 90% of requests should be under 500ms
					loadtest.MetricRequestFailed:   {"rate<0.01"},   // less than 1% failure rate
				},
			},
		},
		ThinkTime: bookinfoThinkTime,
		transport: transport,
		url:       conf.BookinfoURL,
		checks:    checkProductpageLoaded,
	}
}

// NewBookinfoStress puts the product page under stress, a higher
// latency and failure rate is tolerated
func NewBookinfoStress(conf *config.Config, transport clients.Transport) *ProductpageScenario {
	return &ProductpageScenario{
		base: base{
			name: BookinfoStressName,
			options: loadtest.Options{
				VUs:      100,
				Duration: 10 * time.Minute,
				Thresholds: map[string][]string{
					loadtest.MetricRequestDuration: {"p(90)<1000"},
					loadtest.MetricRequestFailed:   {"rate<0.05"},
				},
			},
		},
		ThinkTime: bookinfoThinkTime,
		transport: transport,
		url:       conf.BookinfoURL,
		checks:    checkProductpageLoaded,
	}
}

func checkProductpageLoaded(it *loadtest.Iteration, resp *clients.Response) {
	it.CheckOK("productpage loaded", resp)
}

func (s *ProductpageScenario) NewVU(int) (loadtest.VU, error) {
	return &productpageVU{
		client:   clients.NewBookinfoClient(s.transport, s.url, clients.None()),
		scenario: s,
	}, nil
}

type productpageVU struct {
	client   *clients.BookinfoClient
	scenario *ProductpageScenario
}

func (vu *productpageVU) Iterate(ctx context.Context, it *loadtest.Iteration) {
	resp := vu.client.Productpage.Visit(ctx)
	vu.scenario.checks(it, resp)

	it.Sleep(ctx, vu.scenario.ThinkTime)
}

// MeshScenario requests the product page and the services behind it as
// one batch
type MeshScenario struct {
	base
	ThinkTime time.Duration
	ProductID int

	transport clients.Transport
	url       string
}

func NewBookinfoMesh(conf *config.Config, transport clients.Transport) *MeshScenario {
	return &MeshScenario{
		base: base{
			name: BookinfoMeshName,
			options: loadtest.Options{
				VUs:      10,
				Duration: 2 * time.Minute,
				Thresholds: map[string][]string{
					loadtest.MetricRequestFailed: {"rate<0.01"},
					loadtest.MetricChecks:        {"rate>0.99"},
				},
			},
		},
		ThinkTime: bookinfoThinkTime,
		transport: transport,
		url:       conf.BookinfoURL,
	}
}

func (s *MeshScenario) NewVU(int) (loadtest.VU, error) {
	return &meshVU{
		client:   clients.NewBookinfoClient(s.transport, s.url, clients.None()),
		scenario: s,
	}, nil
}

type meshVU struct {
	client   *clients.BookinfoClient
	scenario *MeshScenario
}

func (vu *meshVU) Iterate(ctx context.Context, it *loadtest.Iteration) {
	id := vu.scenario.ProductID
	services := []string{"productpage", "details", "reviews", "ratings"}

	responses := vu.client.Batch(ctx, []clients.Request{
		{Method: http.MethodGet, URL: "/productpage"},
		{Method: http.MethodGet, URL: fmt.Sprintf("/details/%d", id)},
		{Method: http.MethodGet, URL: fmt.Sprintf("/reviews/%d", id)},
		{Method: http.MethodGet, URL: fmt.Sprintf("/ratings/%d", id)},
	})

	for i, resp := range responses {
		it.CheckOK(services[i]+" status is 200", resp)
	}
	it.Check("productpage is html", responses[0].Error == nil &&
		strings.HasPrefix(responses[0].Header.Get(vars.ContentTypeHeader), "text/html"))

	it.Sleep(ctx, vu.scenario.ThinkTime)
}
