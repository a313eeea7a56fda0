package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with pointer fields so an absent key in the
// YAML file leaves the env-derived value untouched.
type fileConfig struct {
	Server struct {
		Host    *string `yaml:"host"`
		Port    *int    `yaml:"port"`
		BaseURL *string `yaml:"base_url"`
	} `yaml:"server"`
	Database struct {
		URL            *string `yaml:"url"`
		MaxConnections *int    `yaml:"max_connections"`
		MaxIdle        *int    `yaml:"max_idle_connections"`
	} `yaml:"database"`
	Site struct {
		Locales       []string `yaml:"locales"`
		DefaultLocale *string  `yaml:"default_locale"`
		RSSLimit      *int     `yaml:"rss_limit"`
	} `yaml:"site"`
	Logging struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"logging"`
	Environment *string `yaml:"environment"`
}

// ApplyFile overlays values from a YAML config file onto cfg. Keys absent
// from the file keep their current values.
func ApplyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.Server.Host, file.Server.Host)
	setInt(&cfg.Server.Port, file.Server.Port)
	setString(&cfg.Server.BaseURL, file.Server.BaseURL)
	setString(&cfg.Database.URL, file.Database.URL)
	setInt(&cfg.Database.MaxConnections, file.Database.MaxConnections)
	setInt(&cfg.Database.MaxIdle, file.Database.MaxIdle)
	if len(file.Site.Locales) > 0 {
		cfg.Site.Locales = file.Site.Locales
	}
	setString(&cfg.Site.DefaultLocale, file.Site.DefaultLocale)
	setInt(&cfg.Site.RSSLimit, file.Site.RSSLimit)
	setString(&cfg.Logging.Level, file.Logging.Level)
	setString(&cfg.Logging.Format, file.Logging.Format)
	setString(&cfg.Environment, file.Environment)

	return cfg.Site.validate()
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
