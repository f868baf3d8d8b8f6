package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jbweber/homelab/gamestore/internal/config"
	"github.com/jbweber/homelab/gamestore/internal/logging"
)

var cmdOutput = os.Stdout

// loadConfig layers command line flags over the environment configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if cmd.Flags().Lookup("port") != nil {
		if v, _ := cmd.Flags().GetString("port"); v != "" {
			cfg.Port = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*log.Logger, error) {
	return logging.New(cmdOutput, cfg.LogLevel, cfg.LogFormat)
}
