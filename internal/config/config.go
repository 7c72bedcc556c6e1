// Package config loads runtime settings from environment and an optional
// config file.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration.
type Config struct {
	DBPath       string   `mapstructure:"db_path"`
	Port         int      `mapstructure:"port"`
	LogLevel     string   `mapstructure:"log_level"`
	ScanPatterns []string `mapstructure:"scan_patterns"`
}

// Load resolves configuration with precedence: explicit config file, then
// APIKB_* environment variables, then defaults. A missing config file is not
// an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", ".apikb/apikb.db")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("scan_patterns", []string{"*.js", "*.ts", "*.jsx", "*.tsx"})

	v.SetEnvPrefix("APIKB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".apikb")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
