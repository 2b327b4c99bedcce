package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigFile = "config.json"

func TestConfig_Defaults(t *testing.T) {
	conf := &Config{}
	require.NoError(t, conf.Load(t.TempDir(), testConfigFile))

	assert.Equal(t, defaultGrafanaURL, conf.GrafanaURL)
	assert.Equal(t, defaultBookinfoURL, conf.BookinfoURL)
	assert.Equal(t, defaultAdminUser, conf.AdminUser)
	assert.Equal(t, defaultAdminPassword, conf.AdminPassword)
	assert.Equal(t, defaultTestOrgName, conf.TestOrgName)
	assert.Equal(t, defaultTestDatasourceName, conf.TestDatasourceName)
	assert.Equal(t, 60*time.Second, conf.RequestTimeout())
	assert.Equal(t, 120*time.Second, conf.BatchTimeout())
	assert.Equal(t, defaultMockGrafanaAddr, conf.MockGrafanaAddr)
	assert.Equal(t, defaultMockBookinfoAddr, conf.MockBookinfoAddr)
	assert.Equal(t, time.Duration(0), conf.RunDuration)
	assert.Nil(t, conf.CORS_Origins)
}

func TestConfig_Load(t *testing.T) {
	testCases := []struct {
		name     string
		file     string
		env      map[string]string
		tcChecks func(t *testing.T, conf *Config, err error)
	}{
		{
			name: "file",
			file: `{"grafanaURL":"https://grafana.example.com","adminPassword":"secret","vus":5,"duration":"30s","CORS":true}`,
			tcChecks: func(t *testing.T, conf *Config, err error) {
				require.NoError(t, err)
				assert.Equal(t, "https://grafana.example.com", conf.GrafanaURL)
				assert.Equal(t, "secret", conf.AdminPassword)
				assert.Equal(t, defaultAdminUser, conf.AdminUser)
				assert.Equal(t, 5, conf.VUs)
				assert.Equal(t, 30*time.Second, conf.RunDuration)
				assert.Equal(t, []string{"*"}, conf.CORS_Origins)
			},
		},
		{
			name: "unprefixed environment",
			env:  map[string]string{"URL": "http://grafana:3000", "ADMIN_USER": "root", "ITERATIONS": "3"},
			tcChecks: func(t *testing.T, conf *Config, err error) {
				require.NoError(t, err)
				assert.Equal(t, "http://grafana:3000", conf.GrafanaURL)
				assert.Equal(t, "root", conf.AdminUser)
				assert.Equal(t, 3, conf.Iterations)
			},
		},
		{
			name: "environment overrides file",
			file: `{"grafanaURL":"http://from-file:3000","batchParallelism":4}`,
			env:  map[string]string{"LOADTEST_URL": "http://from-env:3000", "LOADTEST_REQUEST_TIMEOUT_MS": "500"},
			tcChecks: func(t *testing.T, conf *Config, err error) {
				require.NoError(t, err)
				assert.Equal(t, "http://from-env:3000", conf.GrafanaURL)
				assert.Equal(t, 4, conf.BatchParallelism)
				assert.Equal(t, 500*time.Millisecond, conf.RequestTimeout())
			},
		},
		{
			name: "invalid url scheme",
			env:  map[string]string{"LOADTEST_BOOKINFO_URL": "ftp://bookinfo"},
			tcChecks: func(t *testing.T, conf *Config, err error) {
				assert.Error(t, err)
			},
		},
		{
			name: "invalid duration",
			file: `{"duration":"soon"}`,
			tcChecks: func(t *testing.T, conf *Config, err error) {
				assert.Error(t, err)
			},
		},
		{
			name: "negative vus",
			file: `{"vus":-1}`,
			tcChecks: func(t *testing.T, conf *Config, err error) {
				assert.Error(t, err)
			},
		},
		{
			name: "malformed file",
			file: `{"vus":`,
			tcChecks: func(t *testing.T, conf *Config, err error) {
				assert.Error(t, err)
			},
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			dir := t.TempDir()
			if c.file != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, testConfigFile), []byte(c.file), 0600))
			}
			for k, v := range c.env {
				t.Setenv(k, v)
			}

			conf := &Config{}
			err := conf.Load(dir, testConfigFile)
			c.tcChecks(t, conf, err)
		})
	}
}

func TestConfig_SetDuration(t *testing.T) {
	conf := &Config{}
	require.NoError(t, conf.Load(t.TempDir(), testConfigFile))

	require.NoError(t, conf.SetDuration("90s"))
	assert.Equal(t, 90*time.Second, conf.RunDuration)
	assert.NoError(t, conf.Validate())

	assert.Error(t, conf.SetDuration("later"))
}
