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

package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func NewResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// server side metrics of the fake targets

var totalRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Number of requests served.",
	},
	[]string{"path"},
)

var responseStatus = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "response_status",
		Help: "Status of HTTP response",
	},
	[]string{"status"},
)

var httpDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "http_response_time_seconds",
		Help: "Duration of HTTP requests.",
	},
	[]string{"path"},
)

// client side metrics of a load test run

var ClientRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "loadtest_http_reqs_total",
		Help: "Number of requests sent to the target system.",
	},
	[]string{"scenario", "method", "status"},
)

var ClientRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "loadtest_http_req_duration_seconds",
		Help:    "Duration of requests sent to the target system.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"scenario", "method"},
)

var ClientRequestFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "loadtest_http_req_failed_total",
		Help: "Number of requests that failed on transport level or returned a status >= 400.",
	},
	[]string{"scenario"},
)

var Checks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "loadtest_checks_total",
		Help: "Number of evaluated checks.",
	},
	[]string{"scenario", "check", "result"},
)

var Iterations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "loadtest_iterations_total",
		Help: "Number of completed VU iterations.",
	},
	[]string{"scenario"},
)

var ActiveVUs = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "loadtest_vus",
		Help: "Number of currently active virtual users.",
	},
	[]string{"scenario"},
)

func PromMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := NewResponseWriter(w)
		startTimer := time.Now()
		next.ServeHTTP(rw, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		statusCode := rw.statusCode

		httpDuration.WithLabelValues(path).Observe(time.Since(startTimer).Seconds())
		totalRequests.WithLabelValues(path).Inc()
		responseStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
