package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the sync server
//	-i int      online check interval in seconds
//	-d string   data directory
//	-o string   application origin
//
// Other arguments are filtered out first, so unknown flags never fail here.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-d", "-o"})

	fs := flag.NewFlagSet("offlinefeed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the sync server")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.AppOrigin, "o", cfg.AppOrigin, "application origin")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	return nil
}
