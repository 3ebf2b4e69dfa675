package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API   APIConfig
	Web   WebConfig
	Token TokenConfig
	Log   LogConfig
}

// APIConfig holds remote API settings.
type APIConfig struct {
	URL       string
	Timeout   time.Duration
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int
}

// WebConfig points at the browser front end, used for "open in browser".
type WebConfig struct {
	URL string
}

// TokenConfig says where the credential lives.
type TokenConfig struct {
	Path string
	Env  string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Path  string
	Level string
}

// Load reads configuration from .env, file and env. Env var overrides use
// prefix MDD_ (MDD_API_URL, MDD_LOG_LEVEL, ...).
func Load() (Config, error) {
	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("get home dir: %w", err)
	}

	v := viper.New()

	v.SetDefault("api.url", "http://localhost:8080")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.rate_limit", 10.0)
	v.SetDefault("api.burst", 20)
	v.SetDefault("web.url", "http://localhost:4200")
	v.SetDefault("token.path", filepath.Join(home, ".mdd", "token"))
	v.SetDefault("token.env", "MDD_AUTH_TOKEN")
	v.SetDefault("log.path", filepath.Join(home, ".mdd", "mdd.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MDD_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "mdd"))
		v.SetConfigName("config")
	}

	// Leaf keys only: a section-level variable such as MDD_TOKEN must not
	// shadow token.path and token.env.
	v.SetEnvPrefix("MDD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit MDD_CONFIG must exist and parse.
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.API.URL = strings.TrimRight(c.API.URL, "/")
	c.Web.URL = strings.TrimRight(c.Web.URL, "/")
	return c, nil
}
