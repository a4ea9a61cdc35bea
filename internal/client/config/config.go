package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds runtime settings for the offlinefeed client.
//
// Durations are time.Duration; the JSON file accepts "3s" style strings and
// the environment accepts anything time.ParseDuration does.
type Config struct {
	ServerEndpointAddr  string        `env:"SERVER_ADDR"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`

	// ServerGRPCAddr, when set, switches reachability checks to the
	// server's gRPC health service.
	ServerGRPCAddr string `env:"SERVER_GRPC_ADDR"`

	// DeviceID and SyncSecret sign sync requests. An empty secret sends
	// them unsigned.
	DeviceID   string `env:"DEVICE_ID"`
	SyncSecret string `env:"SYNC_SECRET"`

	DataDir   string `env:"DATA_DIR"`
	AppOrigin string `env:"APP_ORIGIN"`

	PostTTL         time.Duration `env:"POST_TTL"`
	DraftRetention  time.Duration `env:"DRAFT_RETENTION"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL"`

	NetworkTimeout      time.Duration `env:"NETWORK_TIMEOUT"`
	RouterGeneration    int           `env:"ROUTER_GENERATION"`
	RevalidatePerMinute int           `env:"REVALIDATE_PER_MINUTE"`

	LogLevel   string `env:"LOG_LEVEL"`
	LogBackend string `env:"LOG_BACKEND"`

	// RedisURL selects a shared ephemeral store; empty keeps it in memory.
	RedisURL string `env:"REDIS_URL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
	c.ServerGRPCAddr = ""
	c.DeviceID = defaultDeviceID()
	c.SyncSecret = ""
	c.DataDir = defaultDataDir()
	c.AppOrigin = "http://127.0.0.1:8080"
	c.PostTTL = 24 * time.Hour
	c.DraftRetention = 30 * 24 * time.Hour
	c.CleanupInterval = time.Hour
	c.NetworkTimeout = 5 * time.Second
	c.RouterGeneration = 1
	c.RevalidatePerMinute = 60
	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.RedisURL = ""
}

func defaultDeviceID() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "device"
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "offlinefeed")
	}
	return ".offlinefeed"
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ServerEndpointAddr) == "" {
		errs = append(errs, errors.New("server endpoint address is required"))
	}
	if c.OnlineCheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval))
	}
	if c.SyncSecret != "" && strings.TrimSpace(c.DeviceID) == "" {
		errs = append(errs, errors.New("device id is required when a sync secret is set"))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data dir is required"))
	}
	if u, err := url.Parse(c.AppOrigin); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("app origin %q must be an absolute URL", c.AppOrigin))
	}
	if c.PostTTL <= 0 || c.DraftRetention <= 0 || c.CleanupInterval <= 0 || c.NetworkTimeout <= 0 {
		errs = append(errs, errors.New("ttl, retention, cleanup and network timeout must be positive"))
	}
	if c.RouterGeneration < 1 {
		errs = append(errs, fmt.Errorf("router generation must be >= 1, got %d", c.RouterGeneration))
	}
	return errors.Join(errs...)
}

// StorePath is the SQLite database file.
func (c *Config) StorePath() string { return filepath.Join(c.DataDir, "offline.db") }

// BucketsPath is the bbolt file holding router buckets.
func (c *Config) BucketsPath() string { return filepath.Join(c.DataDir, "buckets.db") }

// Load builds a Config from defaults, then the JSON file named by -c/-config,
// then OFFLINEFEED_* environment variables, then flags. Later sources win.
// args excludes the program name.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args. It panics on error.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}
