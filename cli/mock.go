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

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/ubirch/ubirch-load-test/adapters/mock"
	"github.com/ubirch/ubirch-load-test/config"
	"golang.org/x/sync/errgroup"

	log "github.com/sirupsen/logrus"
	h "github.com/ubirch/ubirch-load-test/adapters/httphelper"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve in-memory fakes of Grafana and Bookinfo to run the scenarios against",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := &config.Config{}
		if err := conf.Load(configDir, configFile); err != nil {
			return fmt.Errorf("unable to load configuration: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		grafanaServer := newMockServer(conf, conf.MockGrafanaAddr)
		mock.NewGrafana(conf.AdminUser, conf.AdminPassword).Register(grafanaServer.Router)

		bookinfoServer := newMockServer(conf, conf.MockBookinfoAddr)
		mock.NewBookinfo(time.Duration(conf.MockLatencyMs) * time.Millisecond).Register(bookinfoServer.Router)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return grafanaServer.Serve(ctx)
		})
		g.Go(func() error {
			return bookinfoServer.Serve(ctx)
		})

		log.Infof("fake Grafana on %s (user %q), fake Bookinfo on %s", conf.MockGrafanaAddr, conf.AdminUser, conf.MockBookinfoAddr)
		return g.Wait()
	},
}

// middlewares must be set up before the routes are registered
func newMockServer(conf *config.Config, addr string) *h.HTTPServer {
	srv := &h.HTTPServer{
		Router: h.NewRouter(),
		Addr:   addr,
	}
	if conf.CORS {
		srv.SetUpCORS(conf.CORS_Origins, conf.Debug)
	}
	return srv
}
