package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"isolateledger/internal/infra/store"
)

// Config keys. Every key is also reachable through the environment with
// the ISOLATELEDGER_ prefix and dots replaced by underscores, e.g.
// ISOLATELEDGER_STORAGE_DRIVER.
const (
	cfgKeyStorageDriver = "storage.driver"
	cfgKeySQLitePath    = "storage.sqlite_path"
	cfgKeyPostgresDSN   = "storage.postgres_dsn"
	cfgKeyBlobDriver    = "blob.driver"
	cfgKeyBlobFSRoot    = "blob.fs_root"
	cfgKeyMetricsAddr   = "metrics.addr"
	cfgKeyLogMode       = "log.mode"
)

var cfg = viper.New()

// loadConfig reads config.yaml (or the --config file) and wires the
// environment overrides. A missing config file is not an error; defaults
// and environment carry a bare setup.
func loadConfig() error {
	cfg.SetDefault(cfgKeyStorageDriver, "sqlite")
	cfg.SetDefault(cfgKeySQLitePath, "isolateledger.db")
	cfg.SetDefault(cfgKeyBlobDriver, "fs")
	cfg.SetDefault(cfgKeyBlobFSRoot, "./exportdata")
	cfg.SetDefault(cfgKeyMetricsAddr, ":9109")
	cfg.SetDefault(cfgKeyLogMode, "production")

	cfg.SetEnvPrefix("ISOLATELEDGER")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if configFile != "" {
		cfg.SetConfigFile(configFile)
	} else {
		cfg.SetConfigName("config")
		cfg.SetConfigType("yaml")
		cfg.AddConfigPath(".")
	}
	if err := cfg.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func storeConfig() store.Config {
	return store.Config{
		Driver:      cfg.GetString(cfgKeyStorageDriver),
		SQLitePath:  cfg.GetString(cfgKeySQLitePath),
		PostgresDSN: cfg.GetString(cfgKeyPostgresDSN),
	}
}
