// Package config handles configuration for the Cecil server: defaults, a JSON
// overlay read from a well-known location, command-line flags, and a final
// validation pass that makes missing required keys a startup error.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultConfigPath is the well-known configuration location used when no
// -c/-config flag is given.
const DefaultConfigPath = "cecil.json"

// Config holds runtime settings for the Cecil server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC API.
//   - OpsAddr: bind address for the operator HTTP server (health, metrics).
//   - DatabaseDSN: credential store DSN, postgres:// (pgx) or file: (SQLite).
//   - SecretKey / HashingAlgorithm: HMAC key and JWT algorithm. Required.
//   - TokenTTL: bearer token lifetime. Required.
//   - InviteTTL: invite code lifetime; defaults to TokenTTL.
//   - BcryptCost: work factor for password and invite hashes.
//   - InvitePurgeSchedule: cron spec for deleting expired invite codes.
//   - S3*: object storage holding the watchlist library.
type Config struct {
	EndpointAddrGRPC    string
	OpsAddr             string
	DatabaseDSN         string
	SecretKey           string
	HashingAlgorithm    string
	TokenTTL            time.Duration
	InviteTTL           time.Duration
	BcryptCost          int
	InvitePurgeSchedule string
	LogLevel            string
	S3AccessKey         string
	S3SecretKey         string
	S3Bucket            string
	S3Region            string
	S3BaseEndpoint      string
}

// LoadDefaults populates the optional settings. The signing secret, token
// lifetime and hashing algorithm have no defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.OpsAddr = ":8080"
	c.DatabaseDSN = "file:cecil.db"
	c.BcryptCost = bcrypt.DefaultCost
	c.InvitePurgeSchedule = "@every 1h"
	c.LogLevel = "info"
	c.S3Bucket = "cecil"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

// Validate reports every missing or malformed required key at once and fills
// derived defaults.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("signing_secret is required"))
	}
	if c.HashingAlgorithm == "" {
		errs = append(errs, errors.New("hashing_algorithm is required"))
	} else if _, ok := supportedAlgorithms[strings.ToUpper(c.HashingAlgorithm)]; !ok {
		errs = append(errs, fmt.Errorf("hashing_algorithm %q is not supported", c.HashingAlgorithm))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl_minutes is required and must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt_cost must be in [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database_dsn is required"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.HashingAlgorithm = strings.ToUpper(c.HashingAlgorithm)
	if c.InviteTTL <= 0 {
		c.InviteTTL = c.TokenTTL
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the JSON file and finally from command-line flags, and validates the
// result.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
