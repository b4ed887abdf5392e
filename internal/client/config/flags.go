package config

import (
	"flag"
	"time"
)

// parseFlags reads the global flags in front of the command:
//
//	-a string   address and port of the Cecil server
//	-f string   token file
//	-w int      call timeout (in seconds)
//	-c string   config file, consumed by parseJson
//
// Parsing stops at the first non-flag argument; everything from there on is
// returned.
func parseFlags(cfg *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("cecilctl", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.TokenFile, "f", cfg.TokenFile, "file keeping the bearer token")
	timeout := fs.Int("w", int(cfg.Timeout/time.Second), "call timeout (in seconds)")

	var ignored string
	fs.StringVar(&ignored, "c", "", "path to config file")
	fs.StringVar(&ignored, "config", "", "path to config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Timeout = time.Duration(*timeout) * time.Second
	return fs.Args(), nil
}
