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
	"sort"

	"github.com/ubirch/ubirch-load-test/adapters/clients"
	"github.com/ubirch/ubirch-load-test/config"
	"github.com/ubirch/ubirch-load-test/loadtest"
)

// Factory creates a scenario sending its requests through transport
type Factory func(conf *config.Config, transport clients.Transport) loadtest.Scenario

var registry = map[string]Factory{
	BookinfoSmokeName:  func(c *config.Config, t clients.Transport) loadtest.Scenario { return NewBookinfoSmoke(c, t) },
	BookinfoLoadName:   func(c *config.Config, t clients.Transport) loadtest.Scenario { return NewBookinfoLoad(c, t) },
	BookinfoStressName: func(c *config.Config, t clients.Transport) loadtest.Scenario { return NewBookinfoStress(c, t) },
	BookinfoMeshName:   func(c *config.Config, t clients.Transport) loadtest.Scenario { return NewBookinfoMesh(c, t) },
	GrafanaAuthKeyName: func(c *config.Config, t clients.Transport) loadtest.Scenario { return NewGrafanaAuthKey(c, t) },
}

// Names returns the registered scenario names in alphabetical order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the named scenario. VUs, duration and iterations set in
// conf replace the defaults of the scenario.
func New(name string, conf *config.Config, transport clients.Transport) (loadtest.Scenario, error) {
	factory, found := registry[name]
	if !found {
		return nil, fmt.Errorf("unknown scenario %q, available: %v", name, Names())
	}

	s := factory(conf, transport)
	opts := s.Options()

	if conf.VUs > 0 {
		opts.VUs = conf.VUs
	}
	if conf.RunDuration > 0 {
		opts.Duration = conf.RunDuration
	}
	if conf.Iterations > 0 {
		opts.Iterations = conf.Iterations
		if conf.RunDuration == 0 {
			opts.Duration = 0
		}
	}

	return &overridden{Scenario: s, options: opts}, nil
}

type overridden struct {
	loadtest.Scenario
	options loadtest.Options
}

func (o *overridden) Options() loadtest.Options {
	return o.options
}

// base implements the parts of loadtest.Scenario most scenarios share
type base struct {
	name    string
	options loadtest.Options
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Options() loadtest.Options {
	return b.options
}

func (b *base) Setup(context.Context) error {
	return nil
}

func (b *base) Teardown(context.Context) error {
	return nil
}
