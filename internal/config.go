package internal

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the REPL's own configuration, independent of the database
// file it opens: where the file lives, the page size to use if it must
// be created, where the REPL keeps its history file, and a debug flag.
type Config struct {
	Database struct {
		Path     string `mapstructure:"path"`
		PageSize int    `mapstructure:"page_size"`
	} `mapstructure:"database"`

	REPL struct {
		HistoryFile string `mapstructure:"history_file"`
		Debug       bool   `mapstructure:"debug"`
	} `mapstructure:"repl"`
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Database.Path = "./rowid.db"
	cfg.Database.PageSize = 4096
	cfg.REPL.HistoryFile = ""
	return cfg
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
