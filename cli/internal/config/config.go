// Package config loads CLI configuration from config files, environment
// variables and .env files.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

var AppFs = afero.NewOsFs()

// Config holds the application configuration
type Config struct {
	DatabaseURL   string
	MigrationsDir string
	SchemaCache   string
}

// Load reads configuration from .querycraft.yaml (working directory, home
// directory or ~/.config/querycraft), QUERYCRAFT_* environment variables
// and .env files, in increasing priority.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	viper.SetConfigName(".querycraft")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "querycraft"))

	viper.SetEnvPrefix("QUERYCRAFT")
	viper.AutomaticEnv()

	viper.SetDefault("migrations_dir", "migrations")
	viper.SetDefault("schema_cache", "schema.yml")

	// Config file is optional.
	_ = viper.ReadInConfig()

	// .env is optional; .env.local overrides it when present.
	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{
		DatabaseURL:   viper.GetString("database_url"),
		MigrationsDir: viper.GetString("migrations_dir"),
		SchemaCache:   viper.GetString("schema_cache"),
	}
	return cfg, nil
}

// RequireDatabaseURL returns the configured DSN or an instructive error.
func (c *Config) RequireDatabaseURL() (string, error) {
	if c.DatabaseURL == "" {
		return "", fmt.Errorf("no database URL configured: set QUERYCRAFT_DATABASE_URL or database_url in .querycraft.yaml")
	}
	return c.DatabaseURL, nil
}
