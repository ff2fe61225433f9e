package main

import (
	"github.com/spf13/cobra"
)

var configPath string

// appConfig holds the durable defaults loaded from configPath once flags
// have been parsed (see PersistentPreRunE below). Its buffer size sets
// chunkSize; its matchers and handlers are read by buildStrategyInputs
// (used by trigger, convert, filter, extract, and batch, but not by all
// or serve).
var appConfig Config

var rootCmd = &cobra.Command{
	Use:           "sson",
	Short:         "A streaming JSON processor: match paths, trigger, filter, extract, or convert.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		appConfig = cfg
		if appConfig.BufferSize > 0 {
			chunkSize = appConfig.BufferSize
		}
		return nil
	},
}

func init() {
	loadDotEnv()
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/sson/config.toml)")
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(batchCmd)
}

// Execute runs the root command, returning the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
