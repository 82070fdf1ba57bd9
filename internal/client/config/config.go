package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for commonictl.
//
// Fields:
//   - ServerEndpointAddr: host:port of the commoni gRPC endpoint.
//   - RequestTimeout: deadline applied to each command.
//   - TokenFile: JSON file with the access, refresh and agent tokens.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	TokenFile          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.TokenFile = defaultTokenFile()
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".commoni-tokens.json"
	}
	return filepath.Join(dir, "commoni", "tokens.json")
}
