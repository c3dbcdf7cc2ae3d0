package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the cellindex pipeline configuration.
type Config struct {
	Graph    GraphConfig    `yaml:"graph"`
	Taxonomy TaxonomyConfig `yaml:"taxonomy"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Sink     SinkConfig     `yaml:"sink"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// GraphConfig holds Neo4j connection settings.
type GraphConfig struct {
	URI              string `yaml:"uri"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	Database         string `yaml:"database"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// TaxonomyConfig holds species mapping settings.
type TaxonomyConfig struct {
	DetailsPath       string            `yaml:"details_path"` // file path or http(s) URL
	Species           map[string]string `yaml:"species"`      // abbreviation -> species label
	CrossSpeciesLabel string            `yaml:"cross_species_label"`
}

// PipelineConfig holds corpus build settings.
type PipelineConfig struct {
	FetchWorkers    int  `yaml:"fetch_workers"`
	Window          int  `yaml:"window"`
	FailOnDataError bool `yaml:"fail_on_data_error"`
}

// SinkConfig holds corpus output settings.
type SinkConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, file (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	BatchSize        int      `yaml:"batch_size"`
	CreateIndex      bool     `yaml:"create_index"`
	RebuildIndex     bool     `yaml:"rebuild_index"` // drop and recreate the index (schema changes)
	Prune            bool     `yaml:"prune"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	Path             string   `yaml:"path"` // file driver; {date} becomes YYYYMMDD
}

// MetricsConfig holds the metrics server settings.
type MetricsConfig struct {
	Port    int      `yaml:"port"` // 0 disables the server
	APIKeys []string `yaml:"api_keys"`
}

// Sink drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverFile   = "file"
)

// Load reads configuration from a YAML file by environment name (local, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML after substituting ${VAR} and ${VAR:-default}, then
// applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Graph.Database == "" {
		c.Graph.Database = "neo4j"
	}
	if c.Graph.ReadinessTimeout <= 0 {
		c.Graph.ReadinessTimeout = 10
	}
	if len(c.Taxonomy.Species) == 0 {
		c.Taxonomy.Species = map[string]string{
			"mouse":    "Mus musculus",
			"human":    "Homo sapiens",
			"marmoset": "Callithrix jacchus",
		}
	}
	if c.Taxonomy.CrossSpeciesLabel == "" {
		c.Taxonomy.CrossSpeciesLabel = "Euarchontoglires"
	}
	if c.Pipeline.FetchWorkers <= 0 {
		c.Pipeline.FetchWorkers = 4
	}
	if c.Pipeline.Window <= 0 {
		c.Pipeline.Window = 64
	}
	if c.Sink.Driver == "" {
		c.Sink.Driver = DriverValkey
	}
	if c.Sink.KeyPrefix == "" {
		c.Sink.KeyPrefix = "cellindex:"
	}
	if c.Sink.BatchSize <= 0 {
		c.Sink.BatchSize = 500
	}
	if c.Sink.ReadinessTimeout <= 0 {
		c.Sink.ReadinessTimeout = 10
	}
	if c.Sink.Path == "" {
		c.Sink.Path = "dumps/individuals_metadata_{date}.json"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Graph.URI == "" {
		return fmt.Errorf("graph.uri is required")
	}
	switch c.Sink.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Sink.Addrs) == 0 {
			return fmt.Errorf("sink.addrs is required for driver %q", c.Sink.Driver)
		}
	case DriverFile:
		if c.Sink.Path == "" {
			return fmt.Errorf("sink.path is required for driver %q", c.Sink.Driver)
		}
	default:
		return fmt.Errorf("sink.driver must be \"redis\", \"valkey\" or \"file\", got %q", c.Sink.Driver)
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 0 and 65535, got %d", c.Metrics.Port)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
