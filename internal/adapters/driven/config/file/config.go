package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

const (
	// DefaultFileName is read when no path is given.
	DefaultFileName = "rulehub.toml"

	// EnvConfigPath names the environment variable that overrides the default path.
	EnvConfigPath = "RULEHUB_CONFIG"

	// TransportStdio serves MCP over stdin/stdout.
	TransportStdio = "stdio"

	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP = "http"

	defaultAddress       = "localhost:8080"
	defaultWatchInterval = "250ms"
)

// Config is the top-level configuration.
type Config struct {
	Server  ServerConfig   `toml:"server" yaml:"server" json:"server"`
	Ingest  IngestConfig   `toml:"ingest" yaml:"ingest" json:"ingest"`
	Sources []SourceConfig `toml:"sources" yaml:"sources" json:"sources"`
}

// ServerConfig selects how the MCP server is exposed.
type ServerConfig struct {
	// Transport is "stdio" or "http".
	Transport string `toml:"transport" yaml:"transport" json:"transport"`

	// Address is the HTTP listen address.
	Address string `toml:"address" yaml:"address" json:"address"`
}

// IngestConfig tunes rule loading.
type IngestConfig struct {
	// Concurrency is the number of sources loaded at once.
	Concurrency int `toml:"concurrency" yaml:"concurrency" json:"concurrency"`

	// Watch keeps watchable sources in sync after startup.
	Watch bool `toml:"watch" yaml:"watch" json:"watch"`

	// WatchInterval is the minimum spacing between applied changes, e.g. "250ms".
	WatchInterval string `toml:"watch_interval" yaml:"watch_interval" json:"watch_interval"`
}

// SourceConfig is one configured rule source.
type SourceConfig struct {
	LoaderType string         `toml:"loader_type" yaml:"loader_type" json:"loader_type"`
	Settings   map[string]any `toml:"settings" yaml:"settings" json:"settings"`
}

// Default returns a configuration with defaults applied and no sources.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: TransportStdio,
			Address:   defaultAddress,
		},
		Ingest: IngestConfig{
			Concurrency:   1,
			WatchInterval: defaultWatchInterval,
		},
	}
}

// ResolvePath picks the configuration file: an explicit path wins, then
// $RULEHUB_CONFIG, then DefaultFileName in the working directory.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return env
	}
	return DefaultFileName
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes configuration in the format named by ext (".toml",
// ".yaml", ".yml" or ".json") over the defaults and validates it.
// Unknown keys outside source settings are rejected.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(ext) {
	case ".toml", "":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
// An empty source list is domain.ErrNoSources.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio:
	case TransportHTTP:
		if strings.TrimSpace(c.Server.Address) == "" {
			return fmt.Errorf("%w: server.address is required for http transport", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: server.transport must be %q or %q, got %q",
			ErrInvalidConfig, TransportStdio, TransportHTTP, c.Server.Transport)
	}

	if c.Ingest.Concurrency < 0 {
		return fmt.Errorf("%w: ingest.concurrency cannot be negative", ErrInvalidConfig)
	}
	if _, err := c.Ingest.Interval(); err != nil {
		return err
	}

	if len(c.Sources) == 0 {
		return domain.ErrNoSources
	}
	for i, s := range c.Sources {
		if strings.TrimSpace(s.LoaderType) == "" {
			return fmt.Errorf("%w: sources[%d].loader_type is required", domain.ErrInvalidSettings, i)
		}
	}
	return nil
}

// Interval parses WatchInterval. Empty means the default.
func (c IngestConfig) Interval() (time.Duration, error) {
	raw := strings.TrimSpace(c.WatchInterval)
	if raw == "" {
		raw = defaultWatchInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: ingest.watch_interval: %w", ErrInvalidConfig, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: ingest.watch_interval cannot be negative", ErrInvalidConfig)
	}
	return d, nil
}

// Descriptors converts configured sources into domain descriptors, in order.
func (c *Config) Descriptors() []domain.SourceDescriptor {
	out := make([]domain.SourceDescriptor, len(c.Sources))
	for i, s := range c.Sources {
		settings := make(map[string]any, len(s.Settings))
		for k, v := range s.Settings {
			settings[k] = v
		}
		out[i] = domain.SourceDescriptor{LoaderType: strings.TrimSpace(s.LoaderType), Settings: settings}
	}
	return out
}
