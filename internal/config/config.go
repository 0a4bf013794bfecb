// Package config loads and validates the submission client's configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Default values for recognized configuration keys (spec.md §6) that are
// not required to be set explicitly.
const (
	DefaultUIPort               = 4040
	DefaultDriverPort           = 7078
	DefaultBlockManagerPort     = 7079
	DefaultSubmissionPort       = 7077
	DefaultDriverSubmitTimeout  = 60 * time.Second
	DefaultReportInterval       = 1 * time.Second
	DefaultClientRetriesIngress = 10
	DefaultClientRetriesNode    = 3
)

// Config holds every recognized configuration key from spec.md §6, plus
// arbitrary user properties forwarded verbatim to the driver.
type Config struct {
	Namespace         string `mapstructure:"namespace" yaml:"namespace"`
	Master            string `mapstructure:"master" yaml:"master"`
	DriverDockerImage string `mapstructure:"driver-docker-image" yaml:"driver-docker-image"`
	ServiceAccount    string `mapstructure:"service-account" yaml:"service-account"`
	DriverLabels      string `mapstructure:"driver-labels" yaml:"driver-labels"`

	UIPort           int `mapstructure:"ui-port" yaml:"ui-port"`
	DriverPort       int `mapstructure:"driver-port" yaml:"driver-port"`
	BlockManagerPort int `mapstructure:"blockmanager-port" yaml:"blockmanager-port"`

	CACertFile     string `mapstructure:"ca-cert-file" yaml:"ca-cert-file"`
	ClientKeyFile  string `mapstructure:"client-key-file" yaml:"client-key-file"`
	ClientCertFile string `mapstructure:"client-cert-file" yaml:"client-cert-file"`

	DriverSubmitTimeoutSecs int    `mapstructure:"driver-submit-timeout-secs" yaml:"driver-submit-timeout-secs"`
	ExposeIngress           bool   `mapstructure:"expose-ingress" yaml:"expose-ingress"`
	IngressBasePath         string `mapstructure:"ingress-base-path" yaml:"ingress-base-path"`
	WaitForAppCompletion    bool   `mapstructure:"wait-for-app-completion" yaml:"wait-for-app-completion"`
	ReportIntervalSecs      int    `mapstructure:"report-interval" yaml:"report-interval"`

	// Properties holds arbitrary user keys not recognized above; every one
	// of them is forwarded verbatim in the SubmissionRequest.
	Properties map[string]string `mapstructure:"-" yaml:"-"`
}

// DriverSubmitTimeout returns the configured driver-submit timeout as a
// [time.Duration], falling back to [DefaultDriverSubmitTimeout].
func (c *Config) DriverSubmitTimeout() time.Duration {
	if c.DriverSubmitTimeoutSecs <= 0 {
		return DefaultDriverSubmitTimeout
	}
	return time.Duration(c.DriverSubmitTimeoutSecs) * time.Second
}

// ReportInterval returns the configured phase-logging interval, falling
// back to [DefaultReportInterval].
func (c *Config) ReportInterval() time.Duration {
	if c.ReportIntervalSecs <= 0 {
		return DefaultReportInterval
	}
	return time.Duration(c.ReportIntervalSecs) * time.Second
}

// recognizedKeys lists every mapstructure tag above; any other key found in
// a loaded file is treated as a user property.
var recognizedKeys = map[string]bool{
	"namespace": true, "master": true, "driver-docker-image": true,
	"service-account": true, "driver-labels": true, "ui-port": true,
	"driver-port": true, "blockmanager-port": true, "ca-cert-file": true,
	"client-key-file": true, "client-cert-file": true,
	"driver-submit-timeout-secs": true, "expose-ingress": true,
	"ingress-base-path": true, "wait-for-app-completion": true,
	"report-interval": true,
}

// LoadFile reads and parses the configuration from a YAML file, applying
// defaults for unset ports and forwarding every unrecognized key into
// Properties.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	return decode(raw)
}

// decode builds a validated Config from a raw key/value map read by
// LoadFile. Flag overrides are applied by cmd/sparkctl afterwards, on the
// returned Config, without going through decode.
func decode(raw map[string]any) (*Config, error) {
	cfg := &Config{
		UIPort:           DefaultUIPort,
		DriverPort:       DefaultDriverPort,
		BlockManagerPort: DefaultBlockManagerPort,
		Properties:       map[string]string{},
	}

	if err := mapstructure.Decode(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	for k, v := range raw {
		if recognizedKeys[k] {
			continue
		}
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprintf("%v", v)
		}
		cfg.Properties[k] = s
	}

	if cfg.Master == "" {
		return nil, fmt.Errorf("master is required")
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "default"
	}

	return cfg, nil
}
