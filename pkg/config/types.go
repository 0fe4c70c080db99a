package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent engram configuration stored as config.toml
// in the .engram/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Store   StoreConfig  `toml:"store"`
	Model   ModelConfig  `toml:"model"`
	API     APIConfig    `toml:"api"`
	Events  EventsConfig `toml:"events"`
}

// StoreConfig holds memory store settings.
type StoreConfig struct {
	// Dir is the directory holding the backing file. Empty means the
	// resolved .engram/ directory.
	Dir string `toml:"dir,omitempty"`

	// QuotaKB is the maximum allowed size of the backing file in kilobytes.
	QuotaKB uint `toml:"quota_kb,omitempty"`
}

// ModelConfig holds generation service settings.
type ModelConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Name     string `toml:"name,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// EventsConfig holds event stream settings.
type EventsConfig struct {
	Provider string `toml:"provider,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"store.dir": {
		get: func(c *Config) string { return c.Store.Dir },
		set: func(c *Config, v string) error { c.Store.Dir = v; return nil },
	},
	"store.quota_kb": {
		get: func(c *Config) string {
			if c.Store.QuotaKB == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Store.QuotaKB), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for store.quota_kb: %w", err)
			}
			c.Store.QuotaKB = uint(n)
			return nil
		},
	},
	"model.provider": {
		get: func(c *Config) string { return c.Model.Provider },
		set: func(c *Config, v string) error { c.Model.Provider = v; return nil },
	},
	"model.target": {
		get: func(c *Config) string { return c.Model.Target },
		set: func(c *Config, v string) error { c.Model.Target = v; return nil },
	},
	"model.name": {
		get: func(c *Config) string { return c.Model.Name },
		set: func(c *Config, v string) error { c.Model.Name = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
}
