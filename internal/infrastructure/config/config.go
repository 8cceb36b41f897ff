package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Savant relay.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Directory DirectoryConfig `yaml:"directory"`
	Status    StatusConfig    `yaml:"status"`
	Syslog    SyslogConfig    `yaml:"syslog"`
	UIS       UISConfig       `yaml:"uis"`
	API       APIConfig       `yaml:"api"`
	Push      PushConfig      `yaml:"push"`
	Lutron    LutronConfig    `yaml:"lutron"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DirectoryConfig locates the controller's configuration database.
// The database is owned by the Savant installer; the relay only ever reads it.
type DirectoryConfig struct {
	Path        string `yaml:"path"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// StatusConfig describes the controller's status-file directory.
type StatusConfig struct {
	// Dir is the directory the controller writes one status file per
	// component into.
	Dir string `yaml:"dir"`

	// Extension is the status-file extension, without the leading dot.
	Extension string `yaml:"extension"`

	// PollInterval is the polling fallback interval in seconds, used when
	// filesystem notifications cannot be established.
	PollInterval int `yaml:"poll_interval"`
}

// SyslogConfig describes the system log the controller emits service events to.
type SyslogConfig struct {
	Path string `yaml:"path"`

	// IdleIntervalMS is how long the tailer sleeps (milliseconds) when no
	// new log line is available.
	IdleIntervalMS int `yaml:"idle_interval_ms"`
}

// UISConfig describes the controller's SOAP-over-UDP command interface.
type UISConfig struct {
	Host string `yaml:"host"`

	// ServiceName is the mDNS service queried to discover the command port.
	ServiceName string `yaml:"service_name"`

	// FallbackPort is used when discovery fails or returns nothing.
	FallbackPort int `yaml:"fallback_port"`

	// DiscoveryTimeout is the mDNS browse window in seconds.
	DiscoveryTimeout int `yaml:"discovery_timeout"`

	// SendTimeout is the UDP send deadline in seconds.
	SendTimeout int `yaml:"send_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// PushConfig contains WebSocket push server settings.
type PushConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// PingInterval is how long (seconds) a connection may stay silent
	// before the server probes it with a ping frame.
	PingInterval int `yaml:"ping_interval"`

	// WriteTimeout is the per-frame write deadline in seconds.
	WriteTimeout int `yaml:"write_timeout"`
}

// LutronConfig contains settings for the optional lighting-controller session.
//
/// Disabled by default: the Lutron processor bounds the number of concurrent
// telnet sessions and the relay must not starve the Savant host's own
// connection.
type LutronConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	ReconnectDelay int    `yaml:"reconnect_delay"`
	IdleTimeout    int    `yaml:"idle_timeout"`
}

// MQTTConfig contains settings for the optional MQTT event mirror.
type MQTTConfig struct {
	Enabled     bool             `yaml:"enabled"`
	Broker      MQTTBrokerConfig `yaml:"broker"`
	Auth        MQTTAuthConfig   `yaml:"auth"`
	QoS         int              `yaml:"qos"`
	TopicPrefix string           `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// InfluxDBConfig contains settings for optional state-change telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SAVANT_RELAY_SECTION_KEY
// For example: SAVANT_RELAY_DIRECTORY_PATH, SAVANT_RELAY_SYSLOG_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults for a Savant host.
// The hardcoded paths match a stock RacePointMedia installation.
func Default() *Config {
	return &Config{
		Directory: DirectoryConfig{
			Path:        "/home/RPM/GNUstep/Library/ApplicationSupport/RacePointMedia/serviceImplementation.sqlite",
			BusyTimeout: 5,
		},
		Status: StatusConfig{
			Dir:          "/home/RPM/GNUstep/Library/ApplicationSupport/RacePointMedia/statusfiles",
			Extension:    "statusfile",
			PollInterval: 2,
		},
		Syslog: SyslogConfig{
			Path:           "/var/log/messages",
			IdleIntervalMS: 500,
		},
		UIS: UISConfig{
			Host:             "127.0.0.1",
			ServiceName:      "_uis_Kropp_ssp._udp",
			FallbackPort:     45600,
			DiscoveryTimeout: 3,
			SendTimeout:      5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8081,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Push: PushConfig{
			Host:         "0.0.0.0",
			Port:         8082,
			PingInterval: 30,
			WriteTimeout: 5,
		},
		Lutron: LutronConfig{
			Enabled:        false,
			Port:           23,
			Username:       "lutron",
			Password:       "integration",
			ReconnectDelay: 5,
			IdleTimeout:    60,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "savant-relay",
			},
			QoS:         1,
			TopicPrefix: "savant",
		},
		InfluxDB: InfluxDBConfig{
			Enabled:       false,
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SAVANT_RELAY_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Paths
	if v := os.Getenv("SAVANT_RELAY_DIRECTORY_PATH"); v != "" {
		cfg.Directory.Path = v
	}
	if v := os.Getenv("SAVANT_RELAY_STATUS_DIR"); v != "" {
		cfg.Status.Dir = v
	}
	if v := os.Getenv("SAVANT_RELAY_SYSLOG_PATH"); v != "" {
		cfg.Syslog.Path = v
	}

	// API
	if v := os.Getenv("SAVANT_RELAY_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("SAVANT_RELAY_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Credentials always come from the environment in production
	if v := os.Getenv("SAVANT_RELAY_LUTRON_PASSWORD"); v != "" {
		cfg.Lutron.Password = v
	}
	if v := os.Getenv("SAVANT_RELAY_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("SAVANT_RELAY_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Directory.Path == "" {
		errs = append(errs, "directory.path is required")
	}
	if c.Status.Dir == "" {
		errs = append(errs, "status.dir is required")
	}
	if c.Status.PollInterval < 1 {
		errs = append(errs, "status.poll_interval must be at least 1 second")
	}
	if c.Syslog.Path == "" {
		errs = append(errs, "syslog.path is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.Push.Port < 1 || c.Push.Port > 65535 {
		errs = append(errs, "push.port must be between 1 and 65535")
	}
	if c.API.Port == c.Push.Port {
		errs = append(errs, "api.port and push.port must differ")
	}

	if c.UIS.FallbackPort < 1 || c.UIS.FallbackPort > 65535 {
		errs = append(errs, "uis.fallback_port must be between 1 and 65535")
	}

	if c.Lutron.Enabled && c.Lutron.Host == "" {
		errs = append(errs, "lutron.host is required when lutron.enabled is true")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt.enabled is true")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb.enabled is true")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb.enabled is true (set SAVANT_RELAY_INFLUXDB_TOKEN)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// StatusPollInterval returns the status polling fallback interval as a Duration.
func (c *Config) StatusPollInterval() time.Duration {
	return time.Duration(c.Status.PollInterval) * time.Second
}

// SyslogIdleInterval returns the tailer idle sleep as a Duration.
func (c *Config) SyslogIdleInterval() time.Duration {
	return time.Duration(c.Syslog.IdleIntervalMS) * time.Millisecond
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
