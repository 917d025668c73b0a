package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/common/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"medchain/src/config"
)

var (
	validLogLevels    = []string{"debug", "error", "info", "warn"}
	validLogLevelsStr = strings.Join(validLogLevels, "|")
)

var RootCmd = &cobra.Command{
	Use:   "medchain",
	Short: "Medicine supply ledger",
	Long:  `medchain keeps medicine supply records in a proof of work sealed ledger and serves it over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setLogLevel(viper.GetString("logLevel")); err != nil {
			return err
		}
		log.Debugf("Application started, version %s", Version)
		return nil
	},
}

// setLogLevel sets the log level
func setLogLevel(logLevel string) error {
	i := sort.SearchStrings(validLogLevels, logLevel)
	if i == len(validLogLevels) || validLogLevels[i] != logLevel {
		return fmt.Errorf("invalid log level: %s. Valid log levels are: %s", logLevel, validLogLevelsStr)
	}
	return log.Base().SetLevel(logLevel)
}

func init() {
	RootCmd.PersistentFlags().StringP("logLevel", "l", "info", fmt.Sprintf("set log level (%s)", validLogLevelsStr))
	RootCmd.PersistentFlags().Duration("proof-timeout", config.DefaultProofTimeout, "give up a proof of work search after this long")
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		log.Errorf("Failed to bind root flags: %s", err)
	}

	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true

	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.medchain")
	viper.AddConfigPath("/etc/medchain")

	viper.SetEnvPrefix("medchain")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(demoCmd)
	RootCmd.AddCommand(chainCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := viper.ReadInConfig(); err == nil {
		log.Infof("Using config file %s", viper.ConfigFileUsed())
	} else {
		log.Debug("No config file found")
	}

	if err := RootCmd.Execute(); err != nil {
		log.Errorf("An error occurred: %s", err)
		os.Exit(1)
	}
}
