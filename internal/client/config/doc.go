// Package config loads runtime configuration for the offlinefeed client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. OFFLINEFEED_* environment variables (see EnvPrefix and the env tags on Config).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   address:port of the sync server
//	-i int      online status check interval (seconds)
//	-d string   data directory (SQLite store and router buckets)
//	-o string   application origin used to classify requests
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or integer
// nanoseconds. Every key is optional:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:8080",
//	  "online_check_interval": "3s",
//	  "server_grpc_addr": "",
//	  "device_id": "laptop",
//	  "sync_secret": "",
//	  "data_dir": "/var/lib/offlinefeed",
//	  "app_origin": "https://feed.example",
//	  "post_ttl": "24h",
//	  "draft_retention": "720h",
//	  "cleanup_interval": "1h",
//	  "network_timeout": "5s",
//	  "router_generation": 1,
//	  "revalidate_per_minute": 60,
//	  "log_level": "info",
//	  "log_backend": "slog",
//	  "redis_url": ""
//	}
package config
