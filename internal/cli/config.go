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

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/jeremyhahn/go-kvgateway/pkg/client"
)

// EnvGateway overrides the default gateway address.
const EnvGateway = "KVCTL_GATEWAY"

// Config holds global CLI configuration
type Config struct {
	// Gateway is the gateway base URL or host:port
	Gateway string

	// CAFile is the root certificate trusted for the gateway
	CAFile string

	// ServerName overrides the name verified in the gateway certificate
	ServerName string

	// InsecureSkipVerify skips TLS certificate verification (not recommended)
	InsecureSkipVerify bool

	// HTTP3 talks to the gateway's HTTP/3 listener
	HTTP3 bool

	// Timeout bounds each request
	Timeout time.Duration

	// OutputFormat controls output formatting (text, json)
	OutputFormat string

	// Verbose enables verbose logging
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	gateway := "https://localhost:3000"
	if v := os.Getenv(EnvGateway); v != "" {
		gateway = v
	}
	return &Config{
		Gateway:      gateway,
		Timeout:      30 * time.Second,
		OutputFormat: string(OutputFormatText),
	}
}

// Validate checks flag combinations before any request is made.
func (c *Config) Validate() error {
	switch OutputFormat(c.OutputFormat) {
	case OutputFormatText, OutputFormatJSON:
	default:
		return fmt.Errorf("unknown output format: %s", c.OutputFormat)
	}
	if c.Gateway == "" {
		return fmt.Errorf("gateway address is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// NewGatewayClient creates a client for the configured gateway.
func (c *Config) NewGatewayClient() (*client.Gateway, error) {
	return client.NewGateway(&client.GatewayConfig{
		Address:            c.Gateway,
		CAFile:             c.CAFile,
		ServerName:         c.ServerName,
		InsecureSkipVerify: c.InsecureSkipVerify,
		HTTP3:              c.HTTP3,
		Timeout:            c.Timeout,
	})
}
