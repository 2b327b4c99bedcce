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
	"os"

	"github.com/spf13/cobra"
)

const configFile = "config.json"

var (
	// Version and Build are set at build time
	Version = "v1.0.0"
	Build   = "local"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "ubirch-load-test",
	Short: "Load tests for Grafana and the Bookinfo sample application",
	Long: `ubirch-load-test runs scripted load scenarios against a Grafana instance
and the Istio Bookinfo sample application.

Scenarios:
  - bookinfo-smoke, bookinfo-load, bookinfo-stress, bookinfo-mesh
  - grafana-auth-key: bootstraps a service account token and queries
    a testdata datasource with it

Configuration is read from config.json in the config directory and
from environment variables (LOADTEST_URL or URL etc.).`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory containing "+configFile)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ubirch-load-test version %s (build=%s)\n", Version, Build)
	},
}

func exitWithError(code int, msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(code)
}
