package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode   string `mapstructure:"mode"`
	Port   int    `mapstructure:"port"`
	Secret string `mapstructure:"secret"`

	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxChannelAge time.Duration `mapstructure:"max_channel_age"`

	ResolveTimeout time.Duration `mapstructure:"resolve_timeout"`
	ResolveLimit   int           `mapstructure:"resolve_limit"`
	ResolveWindow  time.Duration `mapstructure:"resolve_window"`

	ProviderAppID       string        `mapstructure:"provider_app_id"`
	ProviderCertificate string        `mapstructure:"provider_certificate"`
	TokenTTL            time.Duration `mapstructure:"token_ttl"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("sweep_interval", "30m")
	v.SetDefault("max_channel_age", "2h")
	v.SetDefault("resolve_timeout", "5s")
	v.SetDefault("resolve_limit", 5)
	v.SetDefault("resolve_window", "10s")
	v.SetDefault("token_ttl", "24h")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.ProviderAppID == "" {
		log.Warn().Msg("provider app id not configured, channel resolution will fail")
	} else if cfg.ProviderCertificate == "" {
		log.Warn().Msg("provider certificate not configured, running in app-id-only mode")
	}

	log.Info().Str("mode", cfg.Mode).Int("port", cfg.Port).Msg("config ready")
	return &cfg, nil
}
