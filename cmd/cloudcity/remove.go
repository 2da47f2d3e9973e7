package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/frankcohen/cloudcity"
	"github.com/frankcohen/cloudcity/config"
)

var removeCmd = &cobra.Command{
	Use:   "remove [flags] [name1] [name2] ...",
	Short: "Remove files from the files directory",
	Long: `Remove files from the files directory by name, like GET /delete?file=<name>.
Removal is permanent.

Examples:
  # Remove a single file
  cloudcity remove clip.mp4

  # Remove every file, keeping sub-directories
  cloudcity remove --all`,
	Args: func(cmd *cobra.Command, args []string) error {
		if removeAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runRemove,
}

var (
	removeAll   bool
	removeQuiet bool
)

func init() {
	removeCmd.Flags().BoolVarP(&removeAll, "all", "a", false, "remove every file of the files directory")
	removeCmd.Flags().BoolVarP(&removeQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
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

	names := args
	if removeAll {
		names, err = fileNames(ctx, storage.service)
		if err != nil {
			return err
		}
	}

	removed := 0
	notFound := 0

	for _, name := range names {
		deleteErr := storage.service.Delete(ctx, name)
		if errors.Is(deleteErr, cloudcity.ErrNotFound) {
			notFound++
			if !removeQuiet {
				slog.Warn("not found", "name", name)
			}
			continue
		}
		if deleteErr != nil {
			return fmt.Errorf("remove %s: %w", name, deleteErr)
		}
		removed++
		if !removeQuiet {
			slog.Info("removed", "name", name)
		}
	}

	slog.Info("remove complete", "removed", removed, "not_found", notFound)
	return nil
}

// fileNames lists the regular files of the files directory.
func fileNames(ctx context.Context, service *cloudcity.FileService) ([]string, error) {
	entries, err := service.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir {
			names = append(names, entry.Name)
		}
	}
	return names, nil
}
