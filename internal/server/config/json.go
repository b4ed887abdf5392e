package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/calebglawson/cecil/internal/flagx"
)

// JsonConfig mirrors the configuration file. Lifetimes are whole minutes.
type JsonConfig struct {
	EndpointAddrGRPC    string `json:"endpoint_addr_grpc"`
	OpsAddr             string `json:"ops_addr"`
	DatabaseDSN         string `json:"database_dsn"`
	SigningSecret       string `json:"signing_secret"`
	HashingAlgorithm    string `json:"hashing_algorithm"`
	TokenTTLMinutes     int    `json:"token_ttl_minutes"`
	InviteTTLMinutes    int    `json:"invite_ttl_minutes"`
	BcryptCost          int    `json:"bcrypt_cost"`
	InvitePurgeSchedule string `json:"invite_purge_schedule"`
	LogLevel            string `json:"log_level"`
	S3AccessKey         string `json:"s3_access_key"`
	S3SecretKey         string `json:"s3_secret_key"`
	S3Bucket            string `json:"s3_bucket"`
	S3Region            string `json:"s3_region"`
	S3BaseEndpoint      string `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON configuration file onto config.
//
// The file path comes from -c/-config; without those flags DefaultConfigPath
// is tried and skipped when absent. A file named explicitly must exist. Only
// keys present with non-zero values override what config already holds.
func parseJson(config *Config) error {
	path := flagx.ConfigPath("")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	file, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.OpsAddr, c.OpsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SigningSecret)
	setString(&config.HashingAlgorithm, c.HashingAlgorithm)
	setString(&config.InvitePurgeSchedule, c.InvitePurgeSchedule)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.TokenTTLMinutes != 0 {
		config.TokenTTL = time.Duration(c.TokenTTLMinutes) * time.Minute
	}
	if c.InviteTTLMinutes != 0 {
		config.InviteTTL = time.Duration(c.InviteTTLMinutes) * time.Minute
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
