package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Session SessionConfig `mapstructure:"session"`
	Captcha CaptchaConfig `mapstructure:"captcha"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port string    `mapstructure:"port"`
	TLS  TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// DBConfig holds relational database configuration.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig holds keyed-store configuration.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig holds admin session configuration. Prefix namespaces the
// session keys in the keyed store; IDName is the cookie attribute carrying
// the opaque session id.
type SessionConfig struct {
	Prefix   string `mapstructure:"prefix"`
	IDName   string `mapstructure:"id_name"`
	Lifetime int    `mapstructure:"lifetime"` // seconds
}

// TTL returns the configured session lifetime as a duration.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.Lifetime) * time.Second
}

// CaptchaConfig holds the human-verification settings. SiteKey is embedded
// in gated-content placeholders; SecretKey authenticates the server-side
// verification call against VerifyURL.
type CaptchaConfig struct {
	SiteKey   string `mapstructure:"site_key"`
	SecretKey string `mapstructure:"secret_key"`
	VerifyURL string `mapstructure:"verify_url"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("db.dsn", "blog:blog@tcp(localhost:3306)/blog?parseTime=true")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("session.prefix", "admin_session:")
	viper.SetDefault("session.id_name", "blog_session")
	viper.SetDefault("session.lifetime", 1800)
	viper.SetDefault("captcha.verify_url", "https://hcaptcha.com/siteverify")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	// Set up viper to read from config file
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/go-blog-app/")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	// Set up viper to read from environment variables
	viper.SetEnvPrefix("BLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Unmarshal the config into the Config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
