// Package restaurant loads the restaurant facts file surfaced to the model
// in every system instruction.
package restaurant

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type MenuItem struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

type Config struct {
	Name        string     `mapstructure:"name"`
	Address     string     `mapstructure:"address"`
	MapsURL     string     `mapstructure:"maps_url"`
	Description string     `mapstructure:"description"`
	MenuURL     string     `mapstructure:"menu_url"`
	Menu        []MenuItem `mapstructure:"menu"`
}

// Load reads the restaurant config from path (YAML).
func Load(path string) (Config, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Config{}, fmt.Errorf("restaurant config path is required")
	}

	v := viper.New()
	v.SetConfigFile(trimmed)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read restaurant config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode restaurant config: %w", err)
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return Config{}, fmt.Errorf("restaurant config: name is required")
	}
	return cfg, nil
}
