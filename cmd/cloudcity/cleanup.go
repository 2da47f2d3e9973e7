package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/frankcohen/cloudcity/config"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove uploads abandoned by a crashed server",
	Long: `Remove temporary upload files left under the root directory.

Uploads are written to a hidden temporary file next to their destination and
renamed into place when complete. A server killed mid-upload leaves the
temporary file behind. Only files older than --older-than are removed so
uploads in progress on a running server are left alone.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

var cleanupOlderThan time.Duration

func init() {
	cleanupCmd.Flags().DurationVar(&cleanupOlderThan, "older-than", time.Hour, "minimum age of a temporary file to remove")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	storage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	slog.Info("starting cleanup", "root", storage.rootPath, "older_than", cleanupOlderThan)

	cleaned, err := storage.store.CleanupTemp(ctx, ".", time.Now().Add(-cleanupOlderThan))
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	slog.Info("cleanup complete", "files_cleaned", cleaned)
	return nil
}
