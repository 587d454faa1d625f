// Package main implements the coloringbook command line interface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/juceldev/ColoringBook/internal/core"
	"github.com/juceldev/ColoringBook/internal/server"
	"github.com/spf13/cobra"
)

// historyDSN keeps the history between invocations when the config names no database
const historyDSN = "file:coloringbook.db"

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "coloringbook",
	Short: "Generate illustrations and printable coloring pages",
	Long: `coloringbook turns text prompts into illustrations and black and white
coloring pages using a hosted image generation API.

A prompt may be a numbered list of quoted prompts, e.g.

  1. "a fox in a forest"
  2. "a whale under the sea"

in which case every entry is generated in order.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return core.LoadEnv()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		return server.Serve(config)
	},
}

var nichesCmd = &cobra.Command{
	Use:   "niches",
	Short: "Suggest popular coloring book niches",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newCoreService(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = service.Close() }()

		niches, err := service.Niches(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to suggest niches: %w", err)
		}
		for _, niche := range niches {
			fmt.Fprintln(cmd.OutOrStdout(), niche)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or ./config.yaml)")

	rootCmd.AddCommand(generateCmd, historyCmd, nichesCmd, serveCmd)
}

// loadConfig reads the config file; a missing default file falls back to the built-in defaults
func loadConfig() (*core.ServiceConfig, error) {
	path := configPath
	if path == "" {
		path = core.ConfigPath()
		if _, err := os.Stat(path); os.IsNotExist(err) && os.Getenv("CONFIG_PATH") == "" {
			slog.Debug("no config file found, using defaults", "path", path)
			config := core.DefaultConfig(core.WithSQLiteDSN(historyDSN))
			config.Generator.ResolveAPIKey()
			return config, config.Validate()
		}
	}
	return core.LoadConfig(path, core.WithSQLiteDSN(historyDSN))
}

func newCoreService(ctx context.Context) (*core.CoreService, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return core.NewCoreService(ctx, config)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
