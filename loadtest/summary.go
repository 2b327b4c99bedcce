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
	"math"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// Trend holds the sorted samples of a duration metric in milliseconds
type Trend struct {
	values []float64
}

func NewTrend(values []float64) Trend {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Trend{values: sorted}
}

func (t Trend) Count() int {
	return len(t.values)
}

func (t Trend) Min() float64 {
	if len(t.values) == 0 {
		return 0
	}
	return t.values[0]
}

func (t Trend) Max() float64 {
	if len(t.values) == 0 {
		return 0
	}
	return t.values[len(t.values)-1]
}

func (t Trend) Avg() float64 {
	if len(t.values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range t.values {
		sum += v
	}
	return sum / float64(len(t.values))
}

func (t Trend) Med() float64 {
	return t.Percentile(50)
}

// Percentile interpolates linearly between the closest ranks, p in [0, 100]
func (t Trend) Percentile(p float64) float64 {
	switch len(t.values) {
	case 0:
		return 0
	case 1:
		return t.values[0]
	}

	rank := p / 100 * float64(len(t.values)-1)
	lower := math.Floor(rank)
	i := int(lower)
	if i >= len(t.values)-1 {
		return t.values[len(t.values)-1]
	}
	if i < 0 {
		return t.values[0]
	}
	return t.values[i] + (rank-lower)*(t.values[i+1]-t.values[i])
}

// Summary is the aggregated result of a run
type Summary struct {
	Scenario        string
	VUs             int
	Duration        time.Duration
	Requests        int
	FailedRequests  int
	RequestDuration Trend
	StatusCounts    map[string]int
	Checks          []CheckResult
	Iterations      int
}

// Summary must only be called after Finish
func (m *Metrics) Summary(vus int, duration time.Duration) Summary {
	checks := make([]CheckResult, 0, len(m.checkOrder))
	for _, name := range m.checkOrder {
		checks = append(checks, *m.checks[name])
	}

	statusCounts := make(map[string]int, len(m.statusCounts))
	for status, count := range m.statusCounts {
		statusCounts[status] = count
	}

	return Summary{
		Scenario:        m.scenario,
		VUs:             vus,
		Duration:        duration,
		Requests:        m.requests,
		FailedRequests:  m.failedRequests,
		RequestDuration: NewTrend(m.durations),
		StatusCounts:    statusCounts,
		Checks:          checks,
		Iterations:      m.iterations,
	}
}

// FailedRate is the share of failed requests
func (s Summary) FailedRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.FailedRequests) / float64(s.Requests)
}

func (s Summary) ChecksPassed() (passes, fails int) {
	for _, c := range s.Checks {
		passes += c.Passes
		fails += c.Fails
	}
	return passes, fails
}

// ChecksRate is the share of passed checks
func (s Summary) ChecksRate() float64 {
	passes, fails := s.ChecksPassed()
	if passes+fails == 0 {
		return 0
	}
	return float64(passes) / float64(passes+fails)
}

// perSecond is the rate of a counter over the run duration
func (s Summary) perSecond(count int) float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(count) / s.Duration.Seconds()
}

func (s Summary) Log() {
	log.Infof("scenario %s: %d VUs, %d iterations", s.Scenario, s.VUs, s.Iterations)
	log.Infof("[ %6d ] requests done after [ %7.3f ] seconds", s.Requests, s.Duration.Seconds())

	statuses := make([]string, 0, len(s.StatusCounts))
	for status := range s.StatusCounts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		log.Infof("[ %6d ] x %s", s.StatusCounts[status], status)
	}

	for _, c := range s.Checks {
		if c.Fails == 0 {
			log.Infof("  ✓ %s", c.Name)
		} else {
			log.Warnf("  ✗ %s: %d passed, %d failed", c.Name, c.Passes, c.Fails)
		}
	}

	d := s.RequestDuration
	log.Infof("http_req_duration: avg=%.2fms min=%.2fms med=%.2fms max=%.2fms p(90)=%.2fms p(95)=%.2fms",
		d.Avg(), d.Min(), d.Med(), d.Max(), d.Percentile(90), d.Percentile(95))
	log.Infof("http_req_failed: %.2f%%", s.FailedRate()*100)
	log.Infof("checks: %.2f%%", s.ChecksRate()*100)
	log.Infof("avg total throughput: %7.3f requests/second", s.perSecond(s.Requests))
}
