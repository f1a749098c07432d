package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/wordmaster/internal/flagx"
	"github.com/dmitrijs2005/wordmaster/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations are
// timex.Duration so they can be written as "1h" or as nanoseconds.
type JsonConfig struct {
	ListenAddr            string         `json:"listen_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	S3AccessKey           string         `json:"s3_access_key"`
	S3SecretKey           string         `json:"s3_secret_key"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	MaxUploadBytes        int64          `json:"max_upload_bytes"`
	RateLimit             int            `json:"rate_limit"`
	RetentionCount        *int           `json:"retention_count"`
	RetentionInterval     timex.Duration `json:"retention_interval"`
	LogLevel              string         `json:"log_level"`
}

// parseJson loads the file named by -c or -config and copies every value it
// sets into config. Without the flag nothing is loaded. Unreadable files and
// invalid JSON panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if c.RateLimit > 0 {
		config.RateLimit = c.RateLimit
	}
	// 0 is meaningful here, so only an absent key keeps the default
	if c.RetentionCount != nil {
		config.RetentionCount = *c.RetentionCount
	}
	if c.RetentionInterval.Duration > 0 {
		config.RetentionInterval = c.RetentionInterval.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
