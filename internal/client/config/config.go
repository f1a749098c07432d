package config

import "time"

// Config holds runtime settings for the wordmaster client.
//
// Fields:
//   - ServerURL: base URL of the sync server.
//   - DatabasePath: SQLite file of the local store.
//   - RequestTimeout: upper bound of every server call.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - LogLevel, LogFile: diagnostic log settings; an empty LogFile means stderr.
type Config struct {
	ServerURL           string
	DatabasePath        string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	LogLevel            string
	LogFile             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "wordmaster.db"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "info"
	c.LogFile = "wordmaster.log"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
