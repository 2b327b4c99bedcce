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

package loadtest

import (
	"context"
	"fmt"
	"time"
)

const defaultGracefulStop = 30 * time.Second

// Options control how a scenario is executed
type Options struct {
	VUs          int                 // number of concurrently running virtual users
	Duration     time.Duration       // no new iterations are started after Duration, 0 means no limit
	Iterations   int                 // iterations per virtual user, 0 means no limit
	GracefulStop time.Duration       // time a running iteration may take to finish after Duration elapsed
	Thresholds   map[string][]string // pass/fail criteria per metric, e.g. "http_req_duration": {"p(90)<500"}
}

// Scenario is a load test. Setup runs once before any virtual user is
// started, Teardown once after all of them stopped if Setup succeeded.
type Scenario interface {
	Name() string
	Options() Options
	Setup(ctx context.Context) error
	// NewVU creates the state of one virtual user, it is not shared with
	// other virtual users.
	NewVU(id int) (VU, error)
	Teardown(ctx context.Context) error
}

// VU runs the iterations of one virtual user one after another
type VU interface {
	Iterate(ctx context.Context, it *Iteration)
}

func (o *Options) setDefaults() {
	if o.VUs == 0 {
		o.VUs = 1
	}
	if o.Duration == 0 && o.Iterations == 0 {
		o.Iterations = 1
	}
	if o.GracefulStop == 0 {
		o.GracefulStop = defaultGracefulStop
	}
}

func (o Options) Validate() error {
	if o.VUs < 0 {
		return fmt.Errorf("number of virtual users must not be negative: %d", o.VUs)
	}
	if o.Duration < 0 {
		return fmt.Errorf("duration must not be negative: %s", o.Duration)
	}
	if o.Iterations < 0 {
		return fmt.Errorf("number of iterations must not be negative: %d", o.Iterations)
	}
	if o.GracefulStop < 0 {
		return fmt.Errorf("graceful stop must not be negative: %s", o.GracefulStop)
	}
	_, err := ParseThresholds(o.Thresholds)
	return err
}
