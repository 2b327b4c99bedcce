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
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	log "github.com/sirupsen/logrus"
)

const (
	MetricRequestDuration = "http_req_duration"
	MetricRequestFailed   = "http_req_failed"
	MetricChecks          = "checks"
	MetricRequests        = "http_reqs"
	MetricIterations      = "iterations"
)

var ErrThresholdsCrossed = errors.New("some thresholds have failed")

var thresholdPattern = regexp.MustCompile(`^\s*(avg|min|max|med|count|rate|p\(\s*(\d+(?:\.\d+)?)\s*\))\s*(<=|>=|==|!=|<|>)\s*(-?\d+(?:\.\d+)?)\s*$`)

// aggregations supported per metric
var metricAggregations = map[string][]string{
	MetricRequestDuration: {"avg", "min", "max", "med", "p"},
	MetricRequestFailed:   {"rate"},
	MetricChecks:          {"rate"},
	MetricRequests:        {"count", "rate"},
	MetricIterations:      {"count", "rate"},
}

// Threshold is a parsed pass/fail criterion such as "p(90) < 500"
type Threshold struct {
	Metric      string
	Source      string
	Aggregation string
	Percentile  float64
	Operator    string
	Value       float64
}

type ThresholdResult struct {
	Threshold
	Actual float64
	Passed bool
}

func ParseThreshold(metric, source string) (Threshold, error) {
	allowed, known := metricAggregations[metric]
	if !known {
		return Threshold{}, fmt.Errorf("threshold on unknown metric %q", metric)
	}

	m := thresholdPattern.FindStringSubmatch(source)
	if m == nil {
		return Threshold{}, fmt.Errorf("invalid threshold expression for %s: %q", metric, source)
	}

	t := Threshold{
		Metric:      metric,
		Source:      source,
		Aggregation: m[1],
		Operator:    m[3],
	}

	if m[2] != "" {
		t.Aggregation = "p"
		p, err := strconv.ParseFloat(m[2], 64)
		if err != nil || p > 100 {
			return Threshold{}, fmt.Errorf("invalid percentile in threshold %q", source)
		}
		t.Percentile = p
	}

	value, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid value in threshold %q: %v", source, err)
	}
	t.Value = value

	for _, a := range allowed {
		if a == t.Aggregation {
			return t, nil
		}
	}
	return Threshold{}, fmt.Errorf("aggregation %q is not supported for metric %s", m[1], metric)
}

// ParseThresholds parses all expressions, ordered by metric name
func ParseThresholds(thresholds map[string][]string) ([]Threshold, error) {
	metrics := make([]string, 0, len(thresholds))
	for metric := range thresholds {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)

	var parsed []Threshold
	for _, metric := range metrics {
		for _, source := range thresholds[metric] {
			t, err := ParseThreshold(metric, source)
			if err != nil {
				return nil, err
			}
			parsed = append(parsed, t)
		}
	}
	return parsed, nil
}

func (t Threshold) actual(s Summary) float64 {
	switch t.Metric {
	case MetricRequestDuration:
		d := s.RequestDuration
		switch t.Aggregation {
		case "avg":
			return d.Avg()
		case "min":
			return d.Min()
		case "max":
			return d.Max()
		case "med":
			return d.Med()
		case "p":
			return d.Percentile(t.Percentile)
		}
	case MetricRequestFailed:
		return s.FailedRate()
	case MetricChecks:
		return s.ChecksRate()
	case MetricRequests:
		if t.Aggregation == "rate" {
			return s.perSecond(s.Requests)
		}
		return float64(s.Requests)
	case MetricIterations:
		if t.Aggregation == "rate" {
			return s.perSecond(s.Iterations)
		}
		return float64(s.Iterations)
	}
	return 0
}

func compare(actual float64, operator string, value float64) bool {
	switch operator {
	case "<":
		return actual < value
	case "<=":
		return actual <= value
	case ">":
		return actual > value
	case ">=":
		return actual >= value
	case "==":
		return actual == value
	case "!=":
		return actual != value
	default:
		return false
	}
}

func (t Threshold) Evaluate(s Summary) ThresholdResult {
	actual := t.actual(s)
	return ThresholdResult{
		Threshold: t,
		Actual:    actual,
		Passed:    compare(actual, t.Operator, t.Value),
	}
}

// EvaluateThresholds returns the result of every threshold and whether
// all of them passed
func EvaluateThresholds(thresholds []Threshold, s Summary) ([]ThresholdResult, bool) {
	results := make([]ThresholdResult, 0, len(thresholds))
	passed := true

	for _, t := range thresholds {
		r := t.Evaluate(s)
		if r.Passed {
			log.Infof("threshold %s %q passed: %.4f", t.Metric, t.Source, r.Actual)
		} else {
			log.Errorf("threshold %s %q crossed: %.4f", t.Metric, t.Source, r.Actual)
			passed = false
		}
		results = append(results, r)
	}
	return results, passed
}
