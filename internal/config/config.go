package config

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultClientAddr is the client endpoint of the emulated two-host topology.
	DefaultClientAddr = "10.0.1.1"
	// DefaultSentinel marks a technique that produced no data for an iteration.
	DefaultSentinel = -42
)

// TopologyConfig describes the measured path.
type TopologyConfig struct {
	// ClientAddr is compared against the source address of every observed flow.
	// Flows from this address are client->server, everything else server->client.
	ClientAddr string `yaml:"client_addr"`
}

// AnalyzerConfig holds the configuration for the scenario batch driver.
type AnalyzerConfig struct {
	InputDir          string   `yaml:"input_dir"`
	OutputDir         string   `yaml:"output_dir"`
	NetworkErrorTypes []string `yaml:"network_error_types"`
	Sentinel          *float64 `yaml:"sentinel"`
}

// TimelineConfig enables dumping every per-iteration loss timeline to disk.
type TimelineConfig struct {
	Enabled  bool   `yaml:"enabled"`
	RootPath string `yaml:"root_path"`
}

// ClickHouseConfig holds the connection details for ClickHouse.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// WritersConfig lists the optional summary sinks.
type WritersConfig struct {
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// PublisherConfig holds the NATS settings for summary publication.
type PublisherConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// APIConfig holds the configuration for the query API server.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// Source selects the querier backend: "file" or "clickhouse".
	Source     string `yaml:"source"`
	ResultsDir string `yaml:"results_dir"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Topology  TopologyConfig  `yaml:"topology"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
	Timelines TimelineConfig  `yaml:"timelines"`
	Writers   WritersConfig   `yaml:"writers"`
	Publisher PublisherConfig `yaml:"publisher"`
	API       APIConfig       `yaml:"api"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration that analyses ./preprocessed into ./plot_preprocessed.
func Default() *Config {
	cfg := &Config{
		Analyzer: AnalyzerConfig{
			InputDir:  "preprocessed",
			OutputDir: "plot_preprocessed",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field with its default value.
func (c *Config) ApplyDefaults() {
	if c.Topology.ClientAddr == "" {
		c.Topology.ClientAddr = DefaultClientAddr
	}
	if c.Analyzer.Sentinel == nil {
		s := float64(DefaultSentinel)
		c.Analyzer.Sentinel = &s
	}
	if c.Timelines.RootPath == "" {
		c.Timelines.RootPath = "timelines"
	}
	if c.Writers.ClickHouse.Port == 0 {
		c.Writers.ClickHouse.Port = 9000
	}
	if c.Writers.ClickHouse.Database == "" {
		c.Writers.ClickHouse.Database = "default"
	}
	if c.Publisher.Subject == "" {
		c.Publisher.Subject = "loss.summaries"
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}
	if c.API.Source == "" {
		c.API.Source = "file"
	}
	if c.API.ResultsDir == "" {
		c.API.ResultsDir = c.Analyzer.OutputDir
	}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if net.ParseIP(c.Topology.ClientAddr) == nil {
		return fmt.Errorf("invalid topology client_addr %q", c.Topology.ClientAddr)
	}
	if c.Writers.ClickHouse.Enabled && c.Writers.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse writer is enabled but no host is configured")
	}
	if c.Publisher.Enabled && c.Publisher.NATSURL == "" {
		return fmt.Errorf("publisher is enabled but no nats_url is configured")
	}
	switch c.API.Source {
	case "file", "clickhouse":
	default:
		return fmt.Errorf("unknown api source %q", c.API.Source)
	}
	return nil
}

// SentinelValue returns the configured no-data marker.
func (c *Config) SentinelValue() float64 {
	if c.Analyzer.Sentinel == nil {
		return DefaultSentinel
	}
	return *c.Analyzer.Sentinel
}
