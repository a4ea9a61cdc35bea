package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:8080", c.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 24*time.Hour, c.PostTTL)
	assert.Equal(t, 30*24*time.Hour, c.DraftRetention)
	assert.Equal(t, 5*time.Second, c.NetworkTimeout)
	assert.Equal(t, 1, c.RouterGeneration)
	assert.NotEmpty(t, c.DataDir)
	assert.NotEmpty(t, c.DeviceID)
	assert.Empty(t, c.SyncSecret)
	assert.Empty(t, c.ServerGRPCAddr)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty server", func(c *Config) { c.ServerEndpointAddr = " " }},
		{"zero interval", func(c *Config) { c.OnlineCheckInterval = 0 }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"relative origin", func(c *Config) { c.AppOrigin = "/feed" }},
		{"negative ttl", func(c *Config) { c.PostTTL = -time.Second }},
		{"generation zero", func(c *Config) { c.RouterGeneration = 0 }},
		{"secret without device", func(c *Config) { c.SyncSecret = "k"; c.DeviceID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestPaths(t *testing.T) {
	c := Config{DataDir: "/data"}
	assert.Equal(t, "/data/offline.db", c.StorePath())
	assert.Equal(t, "/data/buckets.db", c.BucketsPath())
}
