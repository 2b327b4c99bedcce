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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ubirch/ubirch-load-test/adapters/clients"
	"github.com/ubirch/ubirch-load-test/config"
	"github.com/ubirch/ubirch-load-test/scenarios"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := &config.Config{}
		if err := conf.Load(configDir, configFile); err != nil {
			return fmt.Errorf("unable to load configuration: %v", err)
		}

		transport := clients.NewHTTPTransport(conf.RequestTimeout(), conf.BatchTimeout(), conf.BatchParallelism, nil)

		for _, name := range scenarios.Names() {
			s, err := scenarios.New(name, conf, transport)
			if err != nil {
				return err
			}
			opts := s.Options()
			fmt.Fprintf(cmd.OutOrStdout(), "%-18s vus=%-4d duration=%-6s iterations=%-3d thresholds=%v\n",
				name, opts.VUs, opts.Duration, opts.Iterations, opts.Thresholds)
		}
		return nil
	},
}
