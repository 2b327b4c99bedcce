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

package httphelper

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"

	log "github.com/sirupsen/logrus"
	prom "github.com/ubirch/ubirch-load-test/prometheus"
)

const (
	LivenessCheckEndpoint = "/healthz"
	MetricsEndpoint       = "/metrics"
)

type HTTPServer struct {
	Router *chi.Mux
	Addr   string
}

func NewRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(prom.PromMiddleware)
	router.Use(middleware.Timeout(GatewayTimeout))
	return router
}

// NewMetricsServer serves the load test metrics for scraping while a run is in progress
func NewMetricsServer(addr, serverID string) *HTTPServer {
	srv := &HTTPServer{
		Router: chi.NewMux(),
		Addr:   addr,
	}
	srv.Router.Get(LivenessCheckEndpoint, Health(serverID))
	srv.Router.Method(http.MethodGet, MetricsEndpoint, prom.Handler())
	return srv
}

func (srv *HTTPServer) SetUpCORS(allowedOrigins []string, debug bool) {
	srv.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "X-Grafana-Org-Id"},
		ExposedHeaders:   []string{"Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
		Debug:            debug,
	}))
}

// Serve blocks until the server fails or ctx is cancelled
func (srv *HTTPServer) Serve(cancelCtx context.Context) error {
	server := &http.Server{
		Addr:         srv.Addr,
		Handler:      srv.Router,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	go func() {
		<-cancelCtx.Done()
		server.SetKeepAlivesEnabled(false) // disallow clients to create new long-running conns

		shutdownWithTimeoutCtx, shutdownWithTimeoutCancel := context.WithTimeout(shutdownCtx, ShutdownTimeout)
		defer shutdownWithTimeoutCancel()
		defer shutdownCancel()

		if err := server.Shutdown(shutdownWithTimeoutCtx); err != nil {
			log.Warnf("could not gracefully shut down server: %s", err)
		} else {
			log.Debugf("shut down HTTP server on %s", srv.Addr)
		}
	}()

	log.Infof("starting HTTP server on %s", srv.Addr)

	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		shutdownCancel()
		return fmt.Errorf("error starting HTTP server: %v", err)
	}

	// wait for server to shut down gracefully
	<-shutdownCtx.Done()
	return nil
}
