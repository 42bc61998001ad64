// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-kvgateway.
//
// go-kvgateway is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package config loads the YAML configuration shared by the storage service,
// the gateway and the unified server binary.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KVGATEWAY_"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the complete server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Protocols ProtocolsConfig `yaml:"protocols"`
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Health    HealthConfig    `yaml:"health"`
}

// ServerConfig contains listener addresses and lifecycle timeouts
type ServerConfig struct {
	StorageHost     string        `yaml:"storage_host"`
	GatewayHost     string        `yaml:"gateway_host"`
	GRPCPort        int           `yaml:"grpc_port"`
	RESTPort        int           `yaml:"rest_port"`
	HTTP3Port       int           `yaml:"http3_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ProtocolsConfig selects which tiers run in this process. grpc is the
// storage service, rest the gateway, http3 an extra gateway listener.
type ProtocolsConfig struct {
	GRPC  bool `yaml:"grpc"`
	REST  bool `yaml:"rest"`
	HTTP3 bool `yaml:"http3"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Backend string `yaml:"backend"` // slog, zap
}

// TLSConfig describes a server TLS identity.
type TLSConfig struct {
	Enabled      bool     `yaml:"enabled"`
	CertFile     string   `yaml:"cert_file"`
	KeyFile      string   `yaml:"key_file"`
	MinVersion   string   `yaml:"min_version"` // TLS1.2, TLS1.3
	MaxVersion   string   `yaml:"max_version"`
	CipherSuites []string `yaml:"cipher_suites"`
}

// StorageConfig configures the storage service
type StorageConfig struct {
	TLS TLSConfig `yaml:"tls"`

	// Shards above 1 partition the store across independent locks.
	Shards int `yaml:"shards"`
}

// GatewayConfig configures the HTTP gateway
type GatewayConfig struct {
	TLS          TLSConfig     `yaml:"tls"`
	Backend      BackendConfig `yaml:"backend"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// BackendConfig describes the gateway's channel to the storage service
type BackendConfig struct {
	Address string `yaml:"address"`

	// ServerName is the hostname the backend certificate must carry.
	ServerName string `yaml:"server_name"`

	// CAFile is the root certificate trusted for the backend. Empty uses
	// the system pool.
	CAFile string `yaml:"ca_file"`

	// Insecure dials without TLS.
	Insecure bool `yaml:"insecure"`

	// CallTimeout bounds each RPC when the request carries no deadline.
	// Zero means no bound.
	CallTimeout time.Duration `yaml:"call_timeout"`

	// ConnectTimeout bounds the wait for the channel at startup.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// RequireReady fails gateway startup when the backend is unreachable
	// within ConnectTimeout. When false the gateway starts anyway.
	RequireReady bool `yaml:"require_ready"`
}

// RateLimitConfig controls per-client rate limiting on both tiers
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// MetricsConfig controls metrics endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Port    int    `yaml:"port"`
}

// HealthConfig controls health probes
type HealthConfig struct {
	Enabled      bool          `yaml:"enabled"`
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// Default returns the configuration of the standard two-tier deployment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			StorageHost:     "::",
			GatewayHost:     "0.0.0.0",
			GRPCPort:        3001,
			RESTPort:        3000,
			HTTP3Port:       3443,
			ShutdownTimeout: 30 * time.Second,
		},
		Protocols: ProtocolsConfig{
			GRPC: true,
			REST: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "json",
			Backend: "slog",
		},
		Storage: StorageConfig{
			TLS: TLSConfig{
				Enabled:  true,
				CertFile: "/self-signed-certs/grpc-store/cert.pem",
				KeyFile:  "/self-signed-certs/grpc-store/key.pem",
			},
			Shards: 1,
		},
		Gateway: GatewayConfig{
			TLS: TLSConfig{
				Enabled:  true,
				CertFile: "/self-signed-certs/rest-api/cert.pem",
				KeyFile:  "/self-signed-certs/rest-api/key.pem",
			},
			Backend: BackendConfig{
				Address:        "grpc-store:3001",
				ServerName:     "grpc-store",
				CAFile:         "/self-signed-certs/grpc-store/rootCA.crt",
				ConnectTimeout: 10 * time.Second,
				RequireReady:   true,
			},
			MaxBodyBytes: 1 << 20,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             2000,
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
			Port: 9090,
		},
		Health: HealthConfig{
			Enabled:      true,
			CheckTimeout: 2 * time.Second,
		},
	}
}

// Load reads the YAML file at path over Default(), applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - Config file path is provided by admin/user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies KVGATEWAY_* environment variables
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "STORAGE_HOST"); v != "" {
		cfg.Server.StorageHost = v
	}
	if v := os.Getenv(EnvPrefix + "GATEWAY_HOST"); v != "" {
		cfg.Server.GatewayHost = v
	}
	envPort("GRPC_PORT", &cfg.Server.GRPCPort)
	envPort("REST_PORT", &cfg.Server.RESTPort)
	envPort("HTTP3_PORT", &cfg.Server.HTTP3Port)

	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_BACKEND"); v != "" {
		cfg.Logging.Backend = v
	}

	if v := os.Getenv(EnvPrefix + "BACKEND_ADDRESS"); v != "" {
		cfg.Gateway.Backend.Address = v
	}
	if v := os.Getenv(EnvPrefix + "BACKEND_SERVER_NAME"); v != "" {
		cfg.Gateway.Backend.ServerName = v
	}
	if v := os.Getenv(EnvPrefix + "BACKEND_CA_FILE"); v != "" {
		cfg.Gateway.Backend.CAFile = v
	}

	if v := os.Getenv(EnvPrefix + "STORE_SHARDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			log.Printf("Warning: invalid %sSTORE_SHARDS value %q, using %d", EnvPrefix, v, cfg.Storage.Shards)
		} else {
			cfg.Storage.Shards = n
		}
	}
}

// envPort overrides *dst from KVGATEWAY_<name> when it holds a valid port.
func envPort(name string, dst *int) {
	v := os.Getenv(EnvPrefix + name)
	if v == "" {
		return
	}
	port, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s%s value %q, using default %d: %v", EnvPrefix, name, v, *dst, err)
		return
	}
	if port < 1 || port > 65535 {
		log.Printf("Warning: invalid %s%s value %q (out of range 1-65535), using default %d", EnvPrefix, name, v, *dst)
		return
	}
	*dst = port
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !c.Protocols.GRPC && !c.Protocols.REST {
		return invalid("at least one of protocols.grpc or protocols.rest must be enabled")
	}
	if c.Protocols.HTTP3 && !c.Protocols.REST {
		return invalid("protocols.http3 requires protocols.rest")
	}

	if c.Protocols.GRPC {
		if !validPort(c.Server.GRPCPort) {
			return invalid("invalid gRPC port: %d", c.Server.GRPCPort)
		}
		if err := c.Storage.TLS.validate("storage.tls"); err != nil {
			return err
		}
		if c.Storage.Shards < 1 {
			return invalid("storage.shards must be at least 1, got %d", c.Storage.Shards)
		}
	}

	if c.Protocols.REST {
		if !validPort(c.Server.RESTPort) {
			return invalid("invalid REST port: %d", c.Server.RESTPort)
		}
		if err := c.Gateway.TLS.validate("gateway.tls"); err != nil {
			return err
		}
		if c.Gateway.Backend.Address == "" && !c.Protocols.GRPC {
			return invalid("gateway.backend.address is required when the storage service runs elsewhere")
		}
		if c.Gateway.MaxBodyBytes <= 0 {
			return invalid("gateway.max_body_bytes must be positive")
		}
	}

	if c.Protocols.HTTP3 {
		if !validPort(c.Server.HTTP3Port) {
			return invalid("invalid HTTP/3 port: %d", c.Server.HTTP3Port)
		}
		if !c.Gateway.TLS.Enabled {
			return invalid("protocols.http3 requires gateway.tls")
		}
	}

	if c.Metrics.Enabled && !validPort(c.Metrics.Port) {
		return invalid("invalid metrics port: %d", c.Metrics.Port)
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return invalid("ratelimit.requests_per_second must be positive when enabled")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return invalid("invalid log level: %s (must be debug, info, warn, error, or fatal)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true, "text": true, "console": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return invalid("invalid log format: %s (must be json, text, or console)", c.Logging.Format)
	}

	switch strings.ToLower(c.Logging.Backend) {
	case "", "slog", "zap":
	default:
		return invalid("invalid log backend: %s (must be slog or zap)", c.Logging.Backend)
	}

	return nil
}

func (t *TLSConfig) validate(section string) error {
	if !t.Enabled {
		return nil
	}
	if t.CertFile == "" {
		return invalid("%s.cert_file is required when TLS is enabled", section)
	}
	if t.KeyFile == "" {
		return invalid("%s.key_file is required when TLS is enabled", section)
	}
	return nil
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
