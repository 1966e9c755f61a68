// Package config provides centralized configuration for the sandwich
// finder. ALL deployment parameters (endpoints, credentials, ports)
// MUST be defined here. No hardcoded values should exist elsewhere in
// the codebase.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultAPIPort is used when API_PORT is unset.
const DefaultAPIPort = 11000

// Config holds every environment-sourced parameter the process needs.
type Config struct {
	// RPCURL is the Solana JSON-RPC endpoint used for get_multiple_accounts.
	RPCURL string
	// GRPCURL is the block-streaming service endpoint.
	GRPCURL string
	// MySQLDSN is the go-sql-driver/mysql data source name.
	MySQLDSN string
	// APIPort is the port the HTTP/websocket server binds on 127.0.0.1.
	APIPort int
}

// Load reads and validates the environment. RPC_URL, GRPC_URL, and
// MYSQL are required; API_PORT defaults to DefaultAPIPort.
func Load() (*Config, error) {
	cfg := &Config{APIPort: DefaultAPIPort}

	var ok bool
	if cfg.RPCURL, ok = os.LookupEnv("RPC_URL"); !ok || cfg.RPCURL == "" {
		return nil, fmt.Errorf("missing required environment variable RPC_URL")
	}
	if cfg.GRPCURL, ok = os.LookupEnv("GRPC_URL"); !ok || cfg.GRPCURL == "" {
		return nil, fmt.Errorf("missing required environment variable GRPC_URL")
	}
	if cfg.MySQLDSN, ok = os.LookupEnv("MYSQL"); !ok || cfg.MySQLDSN == "" {
		return nil, fmt.Errorf("missing required environment variable MYSQL")
	}

	if raw, ok := os.LookupEnv("API_PORT"); ok && raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid API_PORT %q: %w", raw, err)
		}
		cfg.APIPort = port
	}

	return cfg, nil
}
