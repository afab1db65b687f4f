package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/shuliangfu/render-sub000/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "renderkit.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultCacheTTL is the default metadata cache entry lifetime.
	DefaultCacheTTL = "5m"

	// DefaultDataSlot is the default global variable for the client
	// data payload.
	DefaultDataSlot = "__RENDER_DATA__"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

// Config represents the complete renderkit.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Template contains document template configuration.
	Template TemplateConfig `json:"template,omitempty"`

	// Cache contains metadata cache configuration.
	Cache CacheConfig `json:"cache,omitempty"`

	// Compression contains payload compression configuration.
	Compression CompressionConfig `json:"compression,omitempty"`

	// Data contains client data payload configuration.
	Data DataConfig `json:"data,omitempty"`

	// Dev contains development mode configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port is the port to serve on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`
}

// TemplateConfig contains document template settings.
type TemplateConfig struct {
	// Path is the HTML template file rendered markup is injected into.
	Path string `json:"path,omitempty"`
}

// CacheConfig contains metadata cache settings.
type CacheConfig struct {
	// Enabled turns metadata caching on.
	Enabled bool `json:"enabled,omitempty"`

	// Backend selects the store: "memory", "redis", or "s3".
	Backend string `json:"backend,omitempty"`

	// TTL is the entry lifetime, e.g. "5m". Empty or "0" means no expiry.
	TTL string `json:"ttl,omitempty"`

	// MaxSize bounds the in-memory store.
	MaxSize int `json:"maxSize,omitempty"`

	// Redis configures the redis backend.
	Redis RedisConfig `json:"redis,omitempty"`

	// S3 configures the s3 backend.
	S3 S3Config `json:"s3,omitempty"`
}

// RedisConfig contains redis backend settings.
type RedisConfig struct {
	// Addr is the redis address, e.g. "localhost:6379".
	Addr string `json:"addr,omitempty"`

	// Password is the redis password.
	Password string `json:"password,omitempty"`

	// DB is the redis database number.
	DB int `json:"db,omitempty"`
}

// S3Config contains s3 backend settings.
type S3Config struct {
	// Bucket is the bucket holding cached metadata.
	Bucket string `json:"bucket,omitempty"`

	// Region is the AWS region.
	Region string `json:"region,omitempty"`

	// Prefix is the object key prefix.
	Prefix string `json:"prefix,omitempty"`
}

// CompressionConfig contains payload compression settings.
type CompressionConfig struct {
	// Enabled turns payload compression on.
	Enabled bool `json:"enabled,omitempty"`

	// Threshold is the minimum serialized size, in bytes, before
	// compression is attempted.
	Threshold int `json:"threshold,omitempty"`
}

// DataConfig contains client data payload settings.
type DataConfig struct {
	// Slot is the global variable the payload is assigned to.
	Slot string `json:"slot,omitempty"`

	// LazyThreshold defers payload parsing above this many bytes.
	// Zero disables lazy parsing.
	LazyThreshold int `json:"lazyThreshold,omitempty"`
}

// DevConfig contains development mode settings.
type DevConfig struct {
	// Watch contains paths to watch for changes.
	Watch []string `json:"watch,omitempty"`

	// HotReload enables browser reload on changes.
	HotReload bool `json:"hotReload,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		Server: ServerConfig{
			Port: DefaultPort,
			Host: DefaultHost,
		},
		Cache: CacheConfig{
			Backend: BackendMemory,
			TTL:     DefaultCacheTTL,
			MaxSize: 100,
		},
		Compression: CompressionConfig{
			Threshold: 10240,
		},
		Data: DataConfig{
			Slot: DefaultDataSlot,
		},
		Dev: DevConfig{
			Watch:     []string{"templates", "public"},
			HotReload: true,
		},
	}
}

// Load reads configuration from the specified directory, looking for
// renderkit.json there.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigInvalid, errors.CategoryConfig,
				"no %s found in %s", ConfigFileName, filepath.Dir(path))
		}
		return nil, errors.Wrap(errors.CodeConfigInvalid, errors.CategoryConfig, err,
			"cannot read %s", path)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.CodeConfigInvalid, errors.CategoryConfig, err,
			"%s is not valid JSON", path)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New(errors.CodeConfigInvalid, errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(errors.CodeConfigInvalid, errors.CategoryConfig, err, "cannot encode config")
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.CodeConfigInvalid, errors.CategoryConfig, err, "cannot write %s", path)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// CacheTTL parses the configured TTL. Empty means no expiry.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" || c.Cache.TTL == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, errors.Wrap(errors.CodeConfigInvalid, errors.CategoryConfig, err,
			"invalid cache.ttl %q", c.Cache.TTL)
	}
	return d, nil
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendMemory
	}
	if c.Cache.MaxSize == 0 {
		c.Cache.MaxSize = 100
	}
	if c.Compression.Threshold == 0 {
		c.Compression.Threshold = 10240
	}
	if c.Data.Slot == "" {
		c.Data.Slot = DefaultDataSlot
	}
	if c.Dev.Watch == nil {
		c.Dev.Watch = []string{"templates", "public"}
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendMemory, BackendRedis, BackendS3:
	default:
		return errors.New(errors.CodeConfigInvalid, errors.CategoryConfig,
			"unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Cache.Enabled && c.Cache.Backend == BackendRedis && c.Cache.Redis.Addr == "" {
		return errors.New(errors.CodeConfigInvalid, errors.CategoryConfig,
			"cache.redis.addr is required for the redis backend")
	}
	if c.Cache.Enabled && c.Cache.Backend == BackendS3 && c.Cache.S3.Bucket == "" {
		return errors.New(errors.CodeConfigInvalid, errors.CategoryConfig,
			"cache.s3.bucket is required for the s3 backend")
	}
	if c.Compression.Threshold < 0 {
		return errors.New(errors.CodeConfigInvalid, errors.CategoryConfig,
			"compression.threshold cannot be negative")
	}
	if c.Data.LazyThreshold < 0 {
		return errors.New(errors.CodeConfigInvalid, errors.CategoryConfig,
			"data.lazyThreshold cannot be negative")
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New(errors.CodeConfigInvalid, errors.CategoryConfig,
			"server.port %d out of range", c.Server.Port)
	}
	return nil
}
