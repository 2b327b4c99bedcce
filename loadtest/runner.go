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
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	prom "github.com/ubirch/ubirch-load-test/prometheus"
)

const teardownTimeout = 60 * time.Second

// Result is the outcome of a finished run
type Result struct {
	Summary    Summary
	Thresholds []ThresholdResult
}

// Runner executes a scenario and feeds the shared Metrics. The transport
// of the scenario is expected to report its responses to Metrics.
type Runner struct {
	Metrics *Metrics
}

func NewRunner(metrics *Metrics) *Runner {
	return &Runner{Metrics: metrics}
}

// Run executes setup, the virtual users and teardown of s. A failing setup
// aborts the run. ErrThresholdsCrossed is returned if any threshold failed.
func (r *Runner) Run(ctx context.Context, s Scenario) (*Result, error) {
	opts := s.Options()
	opts.setDefaults()

	if err := opts.Validate(); err != nil {
		r.Metrics.Finish()
		return nil, fmt.Errorf("invalid options for scenario %s: %w", s.Name(), err)
	}
	thresholds, err := ParseThresholds(opts.Thresholds)
	if err != nil {
		r.Metrics.Finish()
		return nil, err
	}

	log.Infof("scenario %s: %d VUs, duration %s, %d iterations per VU (0 = unlimited)",
		s.Name(), opts.VUs, opts.Duration, opts.Iterations)

	if err := s.Setup(ctx); err != nil {
		r.Metrics.Finish()
		return nil, fmt.Errorf("setup of scenario %s failed: %w", s.Name(), err)
	}

	vus := make([]VU, opts.VUs)
	for i := range vus {
		vus[i], err = s.NewVU(i + 1)
		if err != nil {
			r.teardown(s)
			r.Metrics.Finish()
			return nil, fmt.Errorf("unable to initialize VU %d: %w", i+1, err)
		}
	}

	start := time.Now()
	r.runVUs(ctx, s.Name(), opts, vus)
	duration := time.Since(start)

	r.teardown(s)
	r.Metrics.Finish()

	result := &Result{Summary: r.Metrics.Summary(opts.VUs, duration)}
	result.Summary.Log()

	results, passed := EvaluateThresholds(thresholds, result.Summary)
	result.Thresholds = results

	if ctx.Err() != nil {
		return result, fmt.Errorf("run of scenario %s interrupted: %w", s.Name(), ctx.Err())
	}
	if !passed {
		return result, ErrThresholdsCrossed
	}
	return result, nil
}

// runVUs blocks until every virtual user stopped. No iteration is started
// after the duration elapsed, running iterations are cancelled after the
// graceful stop period.
func (r *Runner) runVUs(ctx context.Context, scenario string, opts Options, vus []VU) {
	var (
		runCtx    context.Context
		runCancel context.CancelFunc
	)
	if opts.Duration > 0 {
		runCtx, runCancel = context.WithTimeout(ctx, opts.Duration)
	} else {
		runCtx, runCancel = context.WithCancel(ctx)
	}
	defer runCancel()

	iterCtx, iterCancel := context.WithCancel(ctx)
	defer iterCancel()

	done := make(chan struct{})
	go func() {
		<-runCtx.Done()
		select {
		case <-time.After(opts.GracefulStop):
			log.Warnf("graceful stop of %s elapsed, interrupting running iterations", opts.GracefulStop)
			iterCancel()
		case <-done:
		}
	}()

	wg := &sync.WaitGroup{}
	for i, vu := range vus {
		wg.Add(1)
		go r.runVU(runCtx, iterCtx, scenario, i+1, vu, opts.Iterations, wg)
	}

	wg.Wait()
	close(done)
}

func (r *Runner) runVU(runCtx, iterCtx context.Context, scenario string, id int, vu VU, iterations int, wg *sync.WaitGroup) {
	defer wg.Done()

	prom.ActiveVUs.WithLabelValues(scenario).Inc()
	defer prom.ActiveVUs.WithLabelValues(scenario).Dec()

	for iter := 0; iterations == 0 || iter < iterations; iter++ {
		if runCtx.Err() != nil {
			return
		}

		vu.Iterate(iterCtx, newIteration(id, iter, r.Metrics))

		if iterCtx.Err() != nil {
			log.Debugf("VU %d: iteration %d interrupted", id, iter)
			return
		}
		r.Metrics.AddIteration()
	}
}

func (r *Runner) teardown(s Scenario) {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	if err := s.Teardown(ctx); err != nil {
		log.Errorf("teardown of scenario %s failed: %v", s.Name(), err)
	}
}
