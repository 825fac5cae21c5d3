package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"quizlet-importer/internal/config"
	"quizlet-importer/lib/telemetry"

	"github.com/spf13/cobra"
)

const serviceName = "quizlet-import"

var (
	configPath string
	verbose    bool
	tel        telemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:   "quizlet-import",
	Short: "quizlet-import copies Quizlet decks into a flashcard collection.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)
		var err error
		tel, err = telemetry.SetupFromEnv(cmd.Context(), serviceName)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := tel.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "quizlet.json5", "The config file, a quizlet.local.json5 next to it is applied on top.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages.")
}

// loadConfig reads the config file and applies the flags the command defines
// on top of it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Lookup("qlts") != nil && flags.Changed("qlts") {
		cfg.Qlts, _ = flags.GetString("qlts")
	}
	if flags.Lookup("collection") != nil && flags.Changed("collection") {
		cfg.Collection.File, _ = flags.GetString("collection")
		cfg.Collection.Url = ""
	}
	if flags.Lookup("media-dir") != nil && flags.Changed("media-dir") {
		cfg.MediaDir, _ = flags.GetString("media-dir")
	}
	if flags.Lookup("dump-dir") != nil && flags.Changed("dump-dir") {
		cfg.DumpDir, _ = flags.GetString("dump-dir")
	}
	return cfg, nil
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
