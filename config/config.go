package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Cache   CacheConfig
	Catalog CatalogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig holds WooCommerce store API configuration
type StoreConfig struct {
	URL            string        `mapstructure:"url"`
	ConsumerKey    string        `mapstructure:"consumer_key"`
	ConsumerSecret string        `mapstructure:"consumer_secret"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxProducts    int           `mapstructure:"max_products"`
}

// CacheConfig holds product cache configuration
type CacheConfig struct {
	Dir      string `mapstructure:"dir"`
	Duration int    `mapstructure:"duration"` // seconds
}

// CatalogConfig holds local catalog configuration
type CatalogConfig struct {
	ProductsFile string `mapstructure:"products_file"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/medirec/")

	v.SetEnvPrefix("MEDIREC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Empty defaults register the keys with viper so env-only values unmarshal.
	v.SetDefault("store.url", "")
	v.SetDefault("store.consumer_key", "")
	v.SetDefault("store.consumer_secret", "")
	v.SetDefault("store.timeout", "30s")
	v.SetDefault("store.max_products", 100)

	v.SetDefault("cache.dir", "data")
	v.SetDefault("cache.duration", 3600)

	v.SetDefault("catalog.products_file", "data/products.csv")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Duration < 0 {
		return fmt.Errorf("cache duration must be non-negative, got: %d", config.Cache.Duration)
	}

	if config.Store.MaxProducts < 1 {
		return fmt.Errorf("store max_products must be at least 1, got: %d", config.Store.MaxProducts)
	}

	if config.Store.Timeout < time.Second {
		return fmt.Errorf("store timeout must be at least 1s, got: %s", config.Store.Timeout)
	}

	if config.Store.URL != "" {
		if config.Store.ConsumerKey == "" || config.Store.ConsumerSecret == "" {
			return fmt.Errorf("store consumer_key and consumer_secret are required when store url is set")
		}
	}

	return nil
}

// StoreConfigured reports whether the WooCommerce store integration is
// fully configured.
func (c *Config) StoreConfigured() bool {
	return c.Store.URL != "" && c.Store.ConsumerKey != "" && c.Store.ConsumerSecret != ""
}
