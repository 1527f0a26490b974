// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citelink CLI.
//
// citelink indexes a PDF's figures, tables, algorithms, equations, sections
// and bibliography, and resolves clicked text to navigation targets or
// citation lookups the way a viewer host would.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citelink/internal/secrets"
	"github.com/pdiddy/citelink/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is the effective configuration, filled in PersistentPreRunE.
var cfg types.Config

// rootCmd is the base command for the citelink CLI.
var rootCmd = &cobra.Command{
	Use:   "citelink",
	Short: "Index PDF papers and resolve in-text references",
	Long: `citelink scans a PDF's text layer for figure, table, algorithm, equation
and section captions and for the bibliography, and stores the resulting index
in a local SQLite database.

Clicked text is resolved the way a viewer would: figure references navigate
to their caption, citations become search queries against scholarly APIs,
and bibliography entries become reference lookups.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			slog.Debug("loaded secrets", "keys", keys)
		}

		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("decoding configuration: %w", err)
		}
		secrets.Apply(&cfg, s)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citelink.yaml or ~/.config/citelink/citelink.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("store-dir", "", "directory holding citelink.db (default: .citelink)")
	viper.BindPFlag("store.dir", rootCmd.PersistentFlags().Lookup("store-dir"))

	setDefaults()
}

func setDefaults() {
	d := types.DefaultIndexConfig()
	viper.SetDefault("index.line_tolerance", d.LineTolerance)
	viper.SetDefault("index.line_font_ratio", 0.0)
	viper.SetDefault("index.references_scan_pages", d.ReferencesScanPages)
	viper.SetDefault("index.prefetch", 4)

	viper.SetDefault("backend.base_url", "")
	viper.SetDefault("backend.timeout", 30*time.Second)
	viper.SetDefault("backend.user_agent", "citelink/"+version)
	viper.SetDefault("backend.token", "")

	viper.SetDefault("search.timeout", 30*time.Second)
	viper.SetDefault("search.user_agent", "citelink/"+version)
	viper.SetDefault("search.max_results", 5)
	viper.SetDefault("search.backends", []string{})
	viper.SetDefault("search.semantic_scholar_api_key", "")
	viper.SetDefault("search.openalex_email", "")

	viper.SetDefault("store.dir", ".citelink")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citelink")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citelink"))
		}
	}

	viper.SetEnvPrefix("CITELINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogging(cmd *cobra.Command) error {
	name, _ := cmd.Flags().GetString("log-level")
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", name, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
