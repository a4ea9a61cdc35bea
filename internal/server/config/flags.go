package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/offlinefeed/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   HTTP listen address
//	-g string   gRPC health listen address, empty to disable
//	-d string   PostgreSQL DSN
//	-s string   device token secret
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s"})

	fs := flag.NewFlagSet("offlinefeed-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC health listen address")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "device token secret")

	return fs.Parse(args)
}
