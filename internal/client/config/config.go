// Package config loads cecilctl settings: defaults, then an optional JSON
// file, then command-line flags.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is read when no -c/-config flag is given. It may be absent.
const DefaultConfigPath = "cecilctl.json"

// Config holds runtime settings for cecilctl.
//
//   - ServerEndpointAddr: host:port of the Cecil gRPC endpoint.
//   - TokenFile: where login keeps the bearer token between invocations.
//   - Timeout: deadline of every call to the server.
type Config struct {
	ServerEndpointAddr string
	TokenFile          string
	Timeout            time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.TokenFile = defaultTokenFile()
	c.Timeout = 10 * time.Second
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cecil-token"
	}
	return filepath.Join(home, ".cecil", "token")
}

// LoadConfig applies defaults, the JSON file and the flags found in args, in
// that order. It returns the arguments left after the flags: the command
// and its operands.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, nil, err
	}
	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}
