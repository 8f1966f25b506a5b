// Package config loads the scraper configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "LOCALSCOUT"

// Config holds everything the CLI needs to run.
type Config struct {
	LogLevel       string         `mapstructure:"log_level"`
	BoltPath       string         `mapstructure:"bolt_path"`
	RegionsFile    string         `mapstructure:"regions_file"`
	PublishersFile string         `mapstructure:"publishers_file"`
	Workers        int            `mapstructure:"workers"`
	MinRelevance   int            `mapstructure:"min_relevance"`
	SourceTimeout  int            `mapstructure:"source_timeout_seconds"`
	Cron           string         `mapstructure:"cron"`
	Sources        []SourceConfig `mapstructure:"sources"`
}

// SourceConfig declares one scrapeable source.
type SourceConfig struct {
	ID              string `mapstructure:"id"`
	Name            string `mapstructure:"name"`
	FeedURL         string `mapstructure:"feed_url"`
	Type            string `mapstructure:"type"`
	Region          string `mapstructure:"region"`
	CanonicalDomain string `mapstructure:"canonical_domain"`
}

// Load reads the config file (path from LOCALSCOUT_CONFIG, defaulting to
// config.yaml) and applies LOCALSCOUT_* environment overrides. A missing
// file is not an error; defaults and environment carry the run.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("bolt_path", "localscout.db")
	v.SetDefault("workers", 6)
	v.SetDefault("min_relevance", 0)
	v.SetDefault("source_timeout_seconds", 120)

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	for i, src := range cfg.Sources {
		if strings.TrimSpace(src.ID) == "" {
			return Config{}, fmt.Errorf("sources[%d]: id is required", i)
		}
		if strings.TrimSpace(src.FeedURL) == "" {
			return Config{}, fmt.Errorf("sources[%d]: feed_url is required", i)
		}
	}

	return cfg, nil
}
