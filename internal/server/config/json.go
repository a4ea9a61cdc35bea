package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/offlinefeed/internal/flagx"
)

type JsonConfig struct {
	HTTPAddr    *string `json:"http_addr"`
	GRPCAddr    *string `json:"grpc_addr"`
	DatabaseDSN *string `json:"database_dsn"`
	SecretKey   *string `json:"secret_key"`
	LogLevel    *string `json:"log_level"`
	LogBackend  *string `json:"log_backend"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	for dst, src := range map[*string]*string{
		&cfg.HTTPAddr:    jc.HTTPAddr,
		&cfg.GRPCAddr:    jc.GRPCAddr,
		&cfg.DatabaseDSN: jc.DatabaseDSN,
		&cfg.SecretKey:   jc.SecretKey,
		&cfg.LogLevel:    jc.LogLevel,
		&cfg.LogBackend:  jc.LogBackend,
	} {
		if src != nil {
			*dst = *src
		}
	}
	return nil
}
