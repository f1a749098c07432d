package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvFile is read by parseEnv when present. Variables already set in the
// process environment win over the file.
var EnvFile = ".env"

// parseEnv overlays config with WORDMASTER_* environment variables. A
// malformed number or duration panics, like the other sources.
//
//	WORDMASTER_LISTEN_ADDR           WORDMASTER_S3_BUCKET
//	WORDMASTER_DATABASE_DSN          WORDMASTER_S3_REGION
//	WORDMASTER_SECRET_KEY            WORDMASTER_S3_ENDPOINT
//	WORDMASTER_TOKEN_TTL             WORDMASTER_MAX_UPLOAD_BYTES
//	WORDMASTER_S3_ACCESS_KEY         WORDMASTER_RATE_LIMIT
//	WORDMASTER_S3_SECRET_KEY         WORDMASTER_RETENTION_COUNT
//	WORDMASTER_LOG_LEVEL             WORDMASTER_RETENTION_INTERVAL
func parseEnv(config *Config) {
	// the file is optional
	_ = godotenv.Load(EnvFile)

	envString("WORDMASTER_LISTEN_ADDR", &config.ListenAddr)
	envString("WORDMASTER_DATABASE_DSN", &config.DatabaseDSN)
	envString("WORDMASTER_SECRET_KEY", &config.SecretKey)
	envDuration("WORDMASTER_TOKEN_TTL", &config.TokenValidityDuration)
	envString("WORDMASTER_S3_ACCESS_KEY", &config.S3AccessKey)
	envString("WORDMASTER_S3_SECRET_KEY", &config.S3SecretKey)
	envString("WORDMASTER_S3_BUCKET", &config.S3Bucket)
	envString("WORDMASTER_S3_REGION", &config.S3Region)
	envString("WORDMASTER_S3_ENDPOINT", &config.S3BaseEndpoint)
	if v, ok := lookup("WORDMASTER_MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("WORDMASTER_MAX_UPLOAD_BYTES: %w", err))
		}
		config.MaxUploadBytes = n
	}
	envInt("WORDMASTER_RATE_LIMIT", &config.RateLimit)
	envInt("WORDMASTER_RETENTION_COUNT", &config.RetentionCount)
	envDuration("WORDMASTER_RETENTION_INTERVAL", &config.RetentionInterval)
	envString("WORDMASTER_LOG_LEVEL", &config.LogLevel)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func envString(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v, ok := lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", key, err))
		}
		*dst = n
	}
}

func envDuration(key string, dst *time.Duration) {
	if v, ok := lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", key, err))
		}
		*dst = d
	}
}
