package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/flagx"
	"github.com/dmitrijs2005/offlinefeed/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" apart from a zero value, so a partial file only overrides what it
// names.
type JsonConfig struct {
	ServerEndpointAddr  *string         `json:"server_endpoint_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	ServerGRPCAddr      *string         `json:"server_grpc_addr"`
	DeviceID            *string         `json:"device_id"`
	SyncSecret          *string         `json:"sync_secret"`
	DataDir             *string         `json:"data_dir"`
	AppOrigin           *string         `json:"app_origin"`
	PostTTL             *timex.Duration `json:"post_ttl"`
	DraftRetention      *timex.Duration `json:"draft_retention"`
	CleanupInterval     *timex.Duration `json:"cleanup_interval"`
	NetworkTimeout      *timex.Duration `json:"network_timeout"`
	RouterGeneration    *int            `json:"router_generation"`
	RevalidatePerMinute *int            `json:"revalidate_per_minute"`
	LogLevel            *string         `json:"log_level"`
	LogBackend          *string         `json:"log_backend"`
	RedisURL            *string         `json:"redis_url"`
}

// parseJSON overlays cfg with the file named by -c/-config in args. No flag
// means no file.
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

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setString(&cfg.ServerGRPCAddr, jc.ServerGRPCAddr)
	setString(&cfg.DeviceID, jc.DeviceID)
	setString(&cfg.SyncSecret, jc.SyncSecret)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.AppOrigin, jc.AppOrigin)
	setDuration(&cfg.PostTTL, jc.PostTTL)
	setDuration(&cfg.DraftRetention, jc.DraftRetention)
	setDuration(&cfg.CleanupInterval, jc.CleanupInterval)
	setDuration(&cfg.NetworkTimeout, jc.NetworkTimeout)
	setInt(&cfg.RouterGeneration, jc.RouterGeneration)
	setInt(&cfg.RevalidatePerMinute, jc.RevalidatePerMinute)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogBackend, jc.LogBackend)
	setString(&cfg.RedisURL, jc.RedisURL)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
