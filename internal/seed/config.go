package seed

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config drives one seed run. With an empty Output the snapshot is
// published to ServerURL, otherwise it is only written to that file.
type Config struct {
	Workbook  string
	Output    string
	ServerURL string
	Username  string
	Password  string
	Register  bool
	Timeout   time.Duration
	LogLevel  string
}

func (c *Config) LoadDefaults() {
	c.Workbook = "words.xlsx"
	c.ServerURL = "http://127.0.0.1:8080"
	c.Timeout = 30 * time.Second
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the environment (optionally from
// envFile), then args.
func LoadConfig(envFile string, args []string) (*Config, error) {
	c := &Config{}
	c.LoadDefaults()

	_ = godotenv.Load(envFile)
	envString("WORDMASTER_SEED_WORKBOOK", &c.Workbook)
	envString("WORDMASTER_SEED_OUTPUT", &c.Output)
	envString("WORDMASTER_SERVER_URL", &c.ServerURL)
	envString("WORDMASTER_SEED_USERNAME", &c.Username)
	envString("WORDMASTER_SEED_PASSWORD", &c.Password)
	envString("WORDMASTER_LOG_LEVEL", &c.LogLevel)
	if v := os.Getenv("WORDMASTER_SEED_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("WORDMASTER_SEED_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.StringVar(&c.Workbook, "f", c.Workbook, "workbook to import")
	fs.StringVar(&c.Output, "o", c.Output, "write the snapshot to this file instead of uploading")
	fs.StringVar(&c.ServerURL, "s", c.ServerURL, "server URL")
	fs.StringVar(&c.Username, "u", c.Username, "username to publish as")
	fs.StringVar(&c.Password, "p", c.Password, "password")
	fs.BoolVar(&c.Register, "register", c.Register, "create the account if login fails")
	fs.DurationVar(&c.Timeout, "t", c.Timeout, "request timeout")
	fs.StringVar(&c.LogLevel, "l", c.LogLevel, "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if c.Output == "" && (c.Username == "" || c.Password == "") {
		return nil, fmt.Errorf("username and password are required to publish")
	}
	return c, nil
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
