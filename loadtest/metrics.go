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
	"strconv"
	"sync"

	"github.com/ubirch/ubirch-load-test/adapters/clients"

	log "github.com/sirupsen/logrus"
	prom "github.com/ubirch/ubirch-load-test/prometheus"
)

const (
	statusTransportError = "transport error"
	eventBufferSize      = 1024
)

type eventKind int

const (
	responseEvent eventKind = iota
	checkEvent
	iterationEvent
)

type event struct {
	kind     eventKind
	response *clients.Response
	check    string
	passed   bool
}

// CheckResult counts the outcomes of one named check
type CheckResult struct {
	Name   string
	Passes int
	Fails  int
}

// Metrics aggregates the outcome of a run. Events are fed through a channel
// and counted by a single routine, Finish must be called before reading
// the Summary.
type Metrics struct {
	scenario string
	events   chan event
	ctx      context.Context
	cancel   context.CancelFunc

	closeMtx sync.RWMutex
	closed   bool

	durations      []float64 // request durations in milliseconds
	requests       int
	failedRequests int
	statusCounts   map[string]int
	checks         map[string]*CheckResult
	checkOrder     []string
	iterations     int
}

func NewMetrics(scenario string) *Metrics {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Metrics{
		scenario:     scenario,
		events:       make(chan event, eventBufferSize),
		ctx:          ctx,
		cancel:       cancel,
		statusCounts: map[string]int{},
		checks:       map[string]*CheckResult{},
	}

	// start collector routine
	go m.collect()

	return m
}

// ObserveResponse is the clients.Observer feeding request metrics
func (m *Metrics) ObserveResponse(resp *clients.Response) {
	m.send(event{kind: responseEvent, response: resp})
}

func (m *Metrics) AddCheck(name string, passed bool) {
	m.send(event{kind: checkEvent, check: name, passed: passed})
}

func (m *Metrics) AddIteration() {
	m.send(event{kind: iterationEvent})
}

func (m *Metrics) send(e event) {
	m.closeMtx.RLock()
	defer m.closeMtx.RUnlock()

	if m.closed {
		log.Debugf("dropping metric event after run finished")
		return
	}
	m.events <- e
}

// Finish stops collecting and waits until all sent events are counted
func (m *Metrics) Finish() {
	m.closeMtx.Lock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	m.closeMtx.Unlock()

	<-m.ctx.Done()
}

func (m *Metrics) collect() {
	defer m.cancel()

	for e := range m.events {
		switch e.kind {
		case responseEvent:
			m.countResponse(e.response)
		case checkEvent:
			m.countCheck(e.check, e.passed)
		case iterationEvent:
			m.iterations += 1
			prom.Iterations.WithLabelValues(m.scenario).Inc()
		}
	}
}

func (m *Metrics) countResponse(resp *clients.Response) {
	ms := float64(resp.Duration.Microseconds()) / 1000
	m.durations = append(m.durations, ms)
	m.requests += 1

	status := statusTransportError
	if resp.Error == nil {
		status = strconv.Itoa(resp.Status) + " " + http.StatusText(resp.Status)
	}
	m.statusCounts[status] += 1

	if resp.Failed() {
		m.failedRequests += 1
		prom.ClientRequestFailures.WithLabelValues(m.scenario).Inc()
	}

	prom.ClientRequests.WithLabelValues(m.scenario, resp.Method, strconv.Itoa(resp.Status)).Inc()
	prom.ClientRequestDuration.WithLabelValues(m.scenario, resp.Method).Observe(resp.Duration.Seconds())
}

func (m *Metrics) countCheck(name string, passed bool) {
	c, found := m.checks[name]
	if !found {
		c = &CheckResult{Name: name}
		m.checks[name] = c
		m.checkOrder = append(m.checkOrder, name)
	}

	result := "pass"
	if passed {
		c.Passes += 1
	} else {
		c.Fails += 1
		result = "fail"
	}
	prom.Checks.WithLabelValues(m.scenario, name, result).Inc()
}
