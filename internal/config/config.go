// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Duration is a time.Duration written as "5m" in JSON and env.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address" env:"SERVER_ADDRESS"`

	// ResultHostname is the public base URL of the service.
	ResultHostname string `json:"base_url" env:"BASE_URL"`

	// StorageDir is the directory holding rendered PNG artifacts.
	StorageDir string `json:"storage_dir" env:"STORAGE_DIR"`

	// SQLitePath is the embedded database file. Empty selects in-memory storage.
	SQLitePath string `json:"sqlite_path" env:"SQLITE_PATH"`

	// DatabaseDSN selects postgres when set and wins over SQLitePath.
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_DSN"`

	LogLevel string `json:"log_level" env:"LOG_LEVEL"`

	// Config is the path of an optional JSON config file.
	Config string `json:"-" env:"CONFIG"`

	// TrustedSubnet is the CIDR allowed to read internal stats.
	TrustedSubnet string `json:"trusted_subnet" env:"TRUSTED_SUBNET"`

	// AdminSecret signs admin tokens. The cleanup endpoint is off without it.
	AdminSecret string `json:"admin_secret" env:"ADMIN_SECRET"`

	// EnablePprof indicates whether to enable pprof for performance profiling.
	EnablePprof bool `json:"enable_pprof" env:"ENABLE_PPROF"`

	// EnableHTTPS indicates whether to enable https.
	EnableHTTPS bool `json:"enable_https" env:"ENABLE_HTTPS"`

	// TLSHosts are the domains autocert may request certificates for.
	TLSHosts []string `json:"tls_hosts" env:"TLS_HOSTS" envSeparator:","`

	CacheSize      int      `json:"cache_size" env:"CACHE_SIZE"`
	CacheTTL       Duration `json:"cache_ttl" env:"CACHE_TTL"`
	RequestTimeout Duration `json:"request_timeout" env:"REQUEST_TIMEOUT"`
}

// Default returns the built-in configuration.
func Default() *Options {
	return &Options{
		Port:           "localhost:8080",
		ResultHostname: "http://localhost:8080",
		StorageDir:     "barcodes",
		SQLitePath:     "barcodes.db",
		LogLevel:       "info",
		CacheSize:      256,
		CacheTTL:       Duration{5 * time.Minute},
		RequestTimeout: Duration{3 * time.Second},
	}
}

func newFlagSet(name string, o *Options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetInterspersed(false)

	fs.StringVarP(&o.Port, "address", "a", o.Port, "run on ip:port server")
	fs.StringVarP(&o.ResultHostname, "base-url", "b", o.ResultHostname, "public base url")
	fs.StringVarP(&o.StorageDir, "storage-dir", "f", o.StorageDir, "directory for barcode images")
	fs.StringVarP(&o.SQLitePath, "sqlite", "s", o.SQLitePath, "sqlite database file, empty for in-memory storage")
	fs.StringVarP(&o.DatabaseDSN, "database-dsn", "d", o.DatabaseDSN, "postgres dsn")
	fs.StringVarP(&o.LogLevel, "log-level", "l", o.LogLevel, "log level")
	fs.StringVarP(&o.Config, "config", "c", o.Config, "path to JSON config file")
	fs.StringVarP(&o.TrustedSubnet, "trusted-subnet", "t", o.TrustedSubnet, "CIDR allowed to read internal stats")
	fs.StringVarP(&o.AdminSecret, "admin-secret", "k", o.AdminSecret, "secret for admin tokens")
	fs.BoolVarP(&o.EnablePprof, "pprof", "p", o.EnablePprof, "enable pprof")
	fs.BoolVarP(&o.EnableHTTPS, "https", "S", o.EnableHTTPS, "enable https")
	fs.StringSliceVar(&o.TLSHosts, "tls-host", o.TLSHosts, "domain served over https (repeatable)")
	fs.IntVar(&o.CacheSize, "cache-size", o.CacheSize, "record cache entries, 0 disables the cache")
	fs.DurationVar(&o.CacheTTL.Duration, "cache-ttl", o.CacheTTL.Duration, "record cache ttl")
	fs.DurationVar(&o.RequestTimeout.Duration, "request-timeout", o.RequestTimeout.Duration, "per request timeout")

	return fs
}

// Parse builds the options from args. Values are applied lowest first:
// defaults, the JSON config file, explicitly set flags, then environment
// variables. With APP_ENV=local a .env file is loaded first. Arguments after
// the first non-flag are returned untouched.
func Parse(name string, args []string) (*Options, []string, error) {
	if os.Getenv("APP_ENV") == "local" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("load .env: %w", err)
		}
	}

	opts := Default()
	fs := newFlagSet(name, opts)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	path := opts.Config
	if v, ok := os.LookupEnv("CONFIG"); ok && v != "" {
		path = v
	}

	if path != "" {
		opts = Default()
		if err := loadFile(path, opts); err != nil {
			return nil, nil, err
		}
		opts.Config = path

		// reparse so that only explicitly set flags override the file
		fs = newFlagSet(name, opts)
		if err := fs.Parse(args); err != nil {
			return nil, nil, err
		}
	}

	if err := env.Parse(opts); err != nil {
		return nil, nil, fmt.Errorf("parse env: %w", err)
	}

	if err := opts.validate(); err != nil {
		return nil, nil, err
	}

	return opts, fs.Args(), nil
}

func loadFile(path string, o *Options) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(content, o); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (o *Options) validate() error {
	if o.TrustedSubnet != "" {
		if _, err := netip.ParsePrefix(o.TrustedSubnet); err != nil {
			return fmt.Errorf("trusted subnet: %w", err)
		}
	}
	if o.CacheSize < 0 {
		return errors.New("cache size must not be negative")
	}
	if o.RequestTimeout.Duration <= 0 {
		return errors.New("request timeout must be positive")
	}
	return nil
}

// Backend names the record store selected by the options.
func (o *Options) Backend() string {
	switch {
	case o.DatabaseDSN != "":
		return "postgres"
	case o.SQLitePath != "":
		return "sqlite"
	default:
		return "memory"
	}
}
