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

package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/quic-go/quic-go/http3"

	"github.com/jeremyhahn/go-kvgateway/pkg/correlation"
	"github.com/jeremyhahn/go-kvgateway/pkg/kvpb"
)

// GatewayConfig configures the HTTP client for the public API.
type GatewayConfig struct {
	// Address is a base URL or host:port; bare addresses get https://.
	Address string

	// CAFile is the root certificate trusted for the gateway.
	CAFile string

	// ServerName overrides the name verified in the gateway certificate.
	ServerName string

	// InsecureSkipVerify disables certificate verification.
	InsecureSkipVerify bool

	// HTTP3 sends requests over QUIC.
	HTTP3 bool

	// Timeout bounds each request. Zero means none.
	Timeout time.Duration

	// Headers are sent with every request.
	Headers map[string]string
}

// StatusError is a non-200 response from the gateway.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsNotFound reports whether err is a 404 from the gateway.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Gateway calls POST /store and GET /load.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	closer     io.Closer
}

// NewGateway creates a gateway client.
func NewGateway(cfg *GatewayConfig) (*Gateway, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, fmt.Errorf("client: gateway address is required")
	}

	baseURL := cfg.Address
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	// #nosec G402 - InsecureSkipVerify is an explicit operator choice
	tlsConfig := &tls.Config{
		ServerName:         cfg.ServerName,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	if cfg.CAFile != "" {
		// #nosec G304 - CA file path is provided by the operator
		caCert, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		tlsConfig.RootCAs = pool
	}

	g := &Gateway{
		baseURL: baseURL,
		headers: cfg.Headers,
	}

	if cfg.HTTP3 {
		tr := &http3.RoundTripper{TLSClientConfig: tlsConfig}
		g.httpClient = &http.Client{Transport: tr, Timeout: cfg.Timeout}
		g.closer = tr
	} else {
		tr := &http.Transport{
			TLSClientConfig:     tlsConfig,
			MaxIdleConnsPerHost: 256,
			ForceAttemptHTTP2:   true,
		}
		g.httpClient = &http.Client{Transport: tr, Timeout: cfg.Timeout}
	}

	return g, nil
}

// Store writes value under key.
func (g *Gateway) Store(ctx context.Context, key, value string) error {
	_, err := g.do(ctx, http.MethodPost, "/store", &kvpb.StoreRequest{Key: key, Value: value})
	return err
}

// Load reads the value under key. A missing key yields a StatusError
// for which IsNotFound is true.
func (g *Gateway) Load(ctx context.Context, key string) (*kvpb.LoadReply, error) {
	body, err := g.do(ctx, http.MethodGet, "/load", &kvpb.LoadRequest{Key: key})
	if err != nil {
		return nil, err
	}
	var reply kvpb.LoadReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode load response: %w", err)
	}
	return &reply, nil
}

// Close releases idle connections.
func (g *Gateway) Close() error {
	g.httpClient.CloseIdleConnections()
	if g.closer != nil {
		return g.closer.Close()
	}
	return nil
}

// do sends body as JSON. GET requests carry the body too; /load reads
// its key from it.
func (g *Gateway) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id := correlation.GetCorrelationID(ctx); id != "" {
		req.Header.Set(correlation.CorrelationIDHeader, id)
	}
	for k, v := range g.headers {
		req.Header.Set(k, v)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		se := &StatusError{StatusCode: resp.StatusCode}
		var errResp struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errResp) == nil {
			se.Message = errResp.Message
		}
		return nil, se
	}
	return respBody, nil
}
