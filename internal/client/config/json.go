package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/calebglawson/cecil/internal/flagx"
)

// JsonConfig mirrors the configuration file.
type JsonConfig struct {
	ServerEndpointAddr string `json:"server_endpoint_addr"`
	TokenFile          string `json:"token_file"`
	TimeoutSeconds     int    `json:"timeout_seconds"`
}

func configPath(args []string) string {
	var path string
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(flagx.FilterArgs(args, []string{"-c", "-config"}))
	return path
}

// parseJson overlays values from the file named by -c/-config, or from
// DefaultConfigPath when it exists.
func parseJson(cfg *Config, args []string) error {
	path := configPath(args)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.TokenFile != "" {
		cfg.TokenFile = jc.TokenFile
	}
	if jc.TimeoutSeconds != 0 {
		cfg.Timeout = time.Duration(jc.TimeoutSeconds) * time.Second
	}
	return nil
}
