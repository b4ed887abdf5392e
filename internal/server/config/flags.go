package config

import (
	"flag"
	"os"
	"time"

	"github.com/calebglawson/cecil/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-o string   operator HTTP bind address (e.g. ":8080")
//	-d string   credential store DSN
//	-s string   token signing secret
//	-g string   token hashing algorithm (HS256, HS384, HS512)
//	-t int      token lifetime, minutes
//	-i int      invite code lifetime, minutes
//	-k int      bcrypt cost
//	-l string   log level
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket
//	-r string   S3 region
//	-e string   S3 base endpoint
//
// Every flag defaults to the value already in config, so unset flags leave
// the JSON or default value alone.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-o", "-d", "-s", "-g", "-t", "-i", "-k", "-l", "-u", "-p", "-b", "-r", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.OpsAddr, "o", config.OpsAddr, "operator HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.StringVar(&config.HashingAlgorithm, "g", config.HashingAlgorithm, "token hashing algorithm")

	tokenTTL := fs.Int("t", int(config.TokenTTL/time.Minute), "token lifetime (in minutes)")
	inviteTTL := fs.Int("i", int(config.InviteTTL/time.Minute), "invite code lifetime (in minutes)")

	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.TokenTTL = time.Duration(*tokenTTL) * time.Minute
	config.InviteTTL = time.Duration(*inviteTTL) * time.Minute
	return nil
}
