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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ubirch/ubirch-load-test/adapters/clients"
	"github.com/ubirch/ubirch-load-test/config"
	"github.com/ubirch/ubirch-load-test/loadtest"
	"github.com/ubirch/ubirch-load-test/scenarios"

	log "github.com/sirupsen/logrus"
	h "github.com/ubirch/ubirch-load-test/adapters/httphelper"
)

// exit code of a run with crossed thresholds, matches k6
const thresholdsCrossedExitCode = 99

var runFlags struct {
	vus         int
	duration    string
	iterations  int
	metricsAddr string
}

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Run a load test scenario",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf, err := loadRunConfig(cmd)
		if err != nil {
			exitWithError(1, "unable to load configuration", err)
		}

		if err := run(cmd.Context(), args[0], conf); err != nil {
			if errors.Is(err, loadtest.ErrThresholdsCrossed) {
				exitWithError(thresholdsCrossedExitCode, "run failed", err)
			}
			exitWithError(1, "run failed", err)
		}
	},
}

func init() {
	runCmd.Flags().IntVar(&runFlags.vus, "vus", 0, "number of virtual users, overrides the scenario default")
	runCmd.Flags().StringVar(&runFlags.duration, "duration", "", "duration of the run, e.g. 30s, overrides the scenario default")
	runCmd.Flags().IntVar(&runFlags.iterations, "iterations", 0, "iterations per virtual user, overrides the scenario default")
	runCmd.Flags().StringVar(&runFlags.metricsAddr, "metrics-addr", "", "address to serve prometheus metrics on during the run")
}

// loadRunConfig applies the command line flags on top of the loaded
// configuration
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	conf := &config.Config{}
	if err := conf.Load(configDir, configFile); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("vus") {
		conf.VUs = runFlags.vus
	}
	if flags.Changed("iterations") {
		conf.Iterations = runFlags.iterations
	}
	if flags.Changed("metrics-addr") {
		conf.MetricsAddr = runFlags.metricsAddr
	}
	if flags.Changed("duration") {
		if err := conf.SetDuration(runFlags.duration); err != nil {
			return nil, err
		}
	}

	return conf, conf.Validate()
}

func run(ctx context.Context, name string, conf *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("ubirch load test (%s, build=%s)", Version, Build)

	metrics := loadtest.NewMetrics(name)
	transport := clients.NewHTTPTransport(conf.RequestTimeout(), conf.BatchTimeout(), conf.BatchParallelism, metrics.ObserveResponse)

	scenario, err := scenarios.New(name, conf, transport)
	if err != nil {
		metrics.Finish()
		return err
	}

	if conf.MetricsAddr != "" {
		srvCtx, cancelSrv := context.WithCancel(context.Background())
		defer cancelSrv()

		metricsServer := h.NewMetricsServer(conf.MetricsAddr, "ubirch-load-test")
		go func() {
			if err := metricsServer.Serve(srvCtx); err != nil {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}

	result, err := loadtest.NewRunner(metrics).Run(ctx, scenario)
	if err != nil {
		return err
	}

	passes, fails := result.Summary.ChecksPassed()
	if fails > 0 {
		log.Warnf("%d of %d checks failed", fails, passes+fails)
	}
	fmt.Printf("scenario %s finished: %d requests, %d iterations\n", name, result.Summary.Requests, result.Summary.Iterations)
	return nil
}
