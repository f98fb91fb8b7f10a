// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the gradebook CLI.
//
// Each subcommand is one batch job: read score documents, transform or
// compare them, write result files, and print a report to stdout.
// Diagnostics go to stderr through slog.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gradebook/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the gradebook CLI.
var rootCmd = &cobra.Command{
	Use:   "gradebook",
	Short: "Credit-weighted composite rankings from per-year score sheets",
	Long: `gradebook merges two academic years of student scores into a single
credit-weighted ranking. Students without a usable first-year score are
ranked on their second-year score alone.

Supporting commands normalize PDF, Word, and Markdown score sheets into CSV,
check two extractions of the same sheet against each other, narrow the
first-year table to continuing students, and export or query the ranking.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetDefaultCLILogger(viper.GetString("log_level"))
		if f := viper.ConfigFileUsed(); f != "" {
			slog.Debug("using config file", "path", f)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./gradebook.yaml or ~/.config/gradebook/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "diagnostic log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().String("metrics-file", "", "write Prometheus textfile metrics to this path after each run")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("metrics.file", rootCmd.PersistentFlags().Lookup("metrics-file"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gradebook")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "gradebook"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("GRADEBOOK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			// Reported once the logger is installed.
			configErr = err
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
