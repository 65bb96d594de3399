package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mbellini/cinema-scheduler/constant"
)

// Config holds all application configuration.
type Config struct {
	DataDir         string `mapstructure:"data_dir"`
	Timezone        string `mapstructure:"timezone"`
	AdsMinutes      int    `mapstructure:"ads_minutes"`
	CleaningMinutes int    `mapstructure:"cleaning_minutes"`
	LogLevel        string `mapstructure:"log_level"`
}

// Load reads scheduler.yaml from the working directory when present and
// lets SCHEDULER_* environment variables override it. A missing config
// file just means defaults.
func Load() (*Config, error) {
	_ = godotenv.Load() // Load .env if present, ignore error

	v := viper.New()
	v.SetDefault("data_dir", constant.FilesPath)
	v.SetDefault("timezone", "Local")
	v.SetDefault("ads_minutes", constant.DefaultAdsMinutes)
	v.SetDefault("cleaning_minutes", constant.DefaultCleaningMinutes)
	v.SetDefault("log_level", "info")

	v.SetConfigName("scheduler")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("SCHEDULER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Location resolves the configured time zone. Start times typed by the
// user are interpreted in this zone before UTC conversion.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
