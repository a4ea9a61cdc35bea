package config

import "github.com/caarlos0/env/v11"

const EnvPrefix = "OFFLINEFEED_SERVER_"

func parseEnv(cfg *Config) error {
	return env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
}
