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

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	log "github.com/sirupsen/logrus"
)

const (
	envPrefix = "loadtest"

	defaultGrafanaURL         = "http://localhost:3000"
	defaultBookinfoURL        = "http://localhost:9083"
	defaultAdminUser          = "admin"
	defaultAdminPassword      = "admin"
	defaultTestOrgName        = "k6-load-test"
	defaultTestDatasourceName = "k6-testdata"

	defaultRequestTimeoutMs = 60_000
	defaultBatchTimeoutMs   = 120_000

	defaultMockGrafanaAddr  = ":3000"
	defaultMockBookinfoAddr = ":9083"
)

type Config struct {
	GrafanaURL         string   `json:"grafanaURL" envconfig:"URL"`                          // base URL of the Grafana instance under test
	BookinfoURL        string   `json:"bookinfoURL" envconfig:"BOOKINFO_URL"`                // base URL of the Bookinfo product page
	AdminUser          string   `json:"adminUser" envconfig:"ADMIN_USER"`                    // Grafana admin user for the service account bootstrap, defaults to "admin"
	AdminPassword      string   `json:"adminPassword" envconfig:"ADMIN_PASSWORD"`            // Grafana admin password, defaults to "admin"
	TestOrgName        string   `json:"testOrgName" envconfig:"TEST_ORG_NAME"`               // organization the Grafana scenarios run in
	TestDatasourceName string   `json:"testDatasourceName" envconfig:"TEST_DATASOURCE_NAME"` // testdata datasource queried by the Grafana scenarios
	VUs                int      `json:"vus" envconfig:"VUS"`                                 // overrides the number of virtual users of a scenario
	Duration           string   `json:"duration" envconfig:"DURATION"`                       // overrides the duration of a scenario, e.g. "2m"
	Iterations         int      `json:"iterations" envconfig:"ITERATIONS"`                   // overrides the iterations per virtual user of a scenario
	RequestTimeoutMs   int      `json:"requestTimeoutMs" envconfig:"REQUEST_TIMEOUT_MS"`     // timeout of single requests, defaults to 60s
	BatchTimeoutMs     int      `json:"batchTimeoutMs" envconfig:"BATCH_TIMEOUT_MS"`         // upper bound for a whole batch, defaults to 120s
	BatchParallelism   int      `json:"batchParallelism" envconfig:"BATCH_PARALLELISM"`      // maximum in-flight requests of one batch, 0 means unlimited
	MetricsAddr        string   `json:"metricsAddr" envconfig:"METRICS_ADDR"`                // address to serve prometheus metrics on during a run, disabled if empty
	MockGrafanaAddr    string   `json:"mockGrafanaAddr" envconfig:"MOCK_GRAFANA_ADDR"`       // listen address of the fake Grafana, defaults to ":3000"
	MockBookinfoAddr   string   `json:"mockBookinfoAddr" envconfig:"MOCK_BOOKINFO_ADDR"`     // listen address of the fake Bookinfo, defaults to ":9083"
	MockLatencyMs      int      `json:"mockLatencyMs" envconfig:"MOCK_LATENCY_MS"`           // artificial latency of the fake Bookinfo
	CORS               bool     `json:"CORS" envconfig:"CORS"`                               // enable CORS on the fake targets, defaults to 'false'
	CORS_Origins       []string `json:"CORS_origins" envconfig:"CORS_ORIGINS"`               // list of allowed origin hosts, defaults to ["*"]
	Debug              bool     `json:"debug" envconfig:"DEBUG"`                             // enable extended debug output, defaults to 'false'
	LogTextFormat      bool     `json:"logTextFormat" envconfig:"LOG_TEXT_FORMAT"`           // log in text format for better human readability, default format is JSON

	RunDuration time.Duration `json:"-" ignored:"true"` // parsed Duration (set automatically)
	ConfigDir   string        `json:"-" ignored:"true"` // path to config file (set automatically)
}

// Load reads the configuration file in configDir if it exists and
// overlays it with environment variables, "LOADTEST_URL" or "URL" etc.
func (c *Config) Load(configDir, filename string) error {
	c.ConfigDir = configDir

	configFile := filepath.Join(configDir, filename)
	if _, err := os.Stat(configFile); err == nil {
		if err := c.loadFile(configFile); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := c.loadEnv(); err != nil {
		return err
	}

	if c.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if c.LogTextFormat {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000 -0700"})
	}

	if err := c.parseDuration(); err != nil {
		return err
	}

	c.setDefaultURLs()
	c.setDefaultCredentials()
	c.setDefaultTimeouts()
	c.setDefaultMock()

	return c.checkMandatory()
}

// loadEnv reads the configuration from environment variables
func (c *Config) loadEnv() error {
	log.Debugf("loading configuration from environment variables")
	return envconfig.Process(envPrefix, c)
}

// loadFile reads the configuration from a json file
func (c *Config) loadFile(filename string) error {
	log.Infof("loading configuration from file: %s", filename)

	fileHandle, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return err
	}

	err = json.NewDecoder(fileHandle).Decode(c)
	if err != nil {
		if fileCloseErr := fileHandle.Close(); fileCloseErr != nil {
			log.Error(fileCloseErr)
		}
		return fmt.Errorf("unable to decode configuration file %s: %v", filename, err)
	}

	return fileHandle.Close()
}

func (c *Config) parseDuration() error {
	if c.Duration == "" {
		return nil
	}

	d, err := time.ParseDuration(c.Duration)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %v", c.Duration, err)
	}
	c.RunDuration = d
	return nil
}

func (c *Config) checkMandatory() error {
	for name, u := range map[string]string{"grafanaURL": c.GrafanaURL, "bookinfoURL": c.BookinfoURL} {
		parsed, err := url.Parse(u)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %v", name, u, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("invalid %s %q: scheme must be http or https", name, u)
		}
	}

	if c.VUs < 0 || c.Iterations < 0 || c.RunDuration < 0 {
		return fmt.Errorf("vus, iterations and duration must not be negative")
	}

	if c.BatchParallelism < 0 {
		return fmt.Errorf("batchParallelism must not be negative")
	}

	return nil
}

func (c *Config) setDefaultURLs() {
	if c.GrafanaURL == "" {
		c.GrafanaURL = defaultGrafanaURL
	}
	log.Debugf(" - Grafana:  %s", c.GrafanaURL)

	if c.BookinfoURL == "" {
		c.BookinfoURL = defaultBookinfoURL
	}
	log.Debugf(" - Bookinfo: %s", c.BookinfoURL)
}

func (c *Config) setDefaultCredentials() {
	if c.AdminUser == "" {
		c.AdminUser = defaultAdminUser
	}

	if c.AdminPassword == "" {
		c.AdminPassword = defaultAdminPassword
	}

	if c.TestOrgName == "" {
		c.TestOrgName = defaultTestOrgName
	}

	if c.TestDatasourceName == "" {
		c.TestDatasourceName = defaultTestDatasourceName
	}
}

func (c *Config) setDefaultTimeouts() {
	if c.RequestTimeoutMs == 0 {
		c.RequestTimeoutMs = defaultRequestTimeoutMs
	}
	log.Debugf("request timeout: %dms", c.RequestTimeoutMs)

	if c.BatchTimeoutMs == 0 {
		c.BatchTimeoutMs = defaultBatchTimeoutMs
	}
	log.Debugf("batch timeout: %dms", c.BatchTimeoutMs)
}

func (c *Config) setDefaultMock() {
	if c.MockGrafanaAddr == "" {
		c.MockGrafanaAddr = defaultMockGrafanaAddr
	}

	if c.MockBookinfoAddr == "" {
		c.MockBookinfoAddr = defaultMockBookinfoAddr
	}

	if c.CORS && c.CORS_Origins == nil {
		c.CORS_Origins = []string{"*"} // allow all origins
	}
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

func (c *Config) BatchTimeout() time.Duration {
	return time.Duration(c.BatchTimeoutMs) * time.Millisecond
}

// SetDuration replaces the run duration, e.g. from a command line flag
func (c *Config) SetDuration(duration string) error {
	c.Duration = duration
	c.RunDuration = 0
	return c.parseDuration()
}

// Validate checks the configuration after it was changed programmatically
func (c *Config) Validate() error {
	return c.checkMandatory()
}
