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
	"net/http"
	"strings"
	"time"

	"github.com/ubirch/ubirch-load-test/adapters/clients"
)

const groupSeparator = "::"

// Iteration is the context of one run of a VU's iteration body
type Iteration struct {
	VU   int // 1-based id of the virtual user
	Iter int // 0-based iteration index of this virtual user

	metrics *Metrics
	groups  []string
}

func newIteration(vu, iter int, metrics *Metrics) *Iteration {
	return &Iteration{
		VU:      vu,
		Iter:    iter,
		metrics: metrics,
	}
}

// Check records the outcome of a named assertion. A failed check does not
// stop the iteration.
func (it *Iteration) Check(name string, ok bool) bool {
	if len(it.groups) > 0 {
		name = strings.Join(it.groups, groupSeparator) + groupSeparator + name
	}
	it.metrics.AddCheck(name, ok)
	return ok
}

// CheckStatus records whether resp was answered with the given status
func (it *Iteration) CheckStatus(name string, resp *clients.Response, status int) bool {
	return it.Check(name, resp.Error == nil && resp.Status == status)
}

// CheckOK records whether resp was answered with 200 OK
func (it *Iteration) CheckOK(name string, resp *clients.Response) bool {
	return it.CheckStatus(name, resp, http.StatusOK)
}

// Group nests the checks recorded by fn under name
func (it *Iteration) Group(name string, fn func()) {
	it.groups = append(it.groups, name)
	defer func() { it.groups = it.groups[:len(it.groups)-1] }()
	fn()
}

// Sleep pauses the iteration, it returns early when ctx is done
func (it *Iteration) Sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
