package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/frankcohen/cloudcity"
	"github.com/frankcohen/cloudcity/config"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] <file1> [file2] ...",
	Short: "Copy local files into the files directory",
	Long: `Copy local files into the files directory without going through HTTP.

Files keep their base name and replace existing files of the same name,
exactly like an upload.

Examples:
  # Add a single file
  cloudcity add /path/to/clip.mp4

  # Add several files, keeping ones already present
  cloudcity add --no-clobber a.txt b.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addNoClobber bool
	addQuiet     bool
)

func init() {
	addCmd.Flags().BoolVarP(&addNoClobber, "no-clobber", "n", false, "skip existing files instead of overwriting")
	addCmd.Flags().BoolVarP(&addQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
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

	service := storage.service

	added := 0
	skipped := 0

	for _, sourcePath := range args {
		info, statErr := os.Stat(sourcePath)
		if statErr != nil {
			return fmt.Errorf("add %s: %w", sourcePath, statErr)
		}
		if info.IsDir() {
			return fmt.Errorf("add %s: is a directory", sourcePath)
		}

		name := filepath.Base(sourcePath)

		if addNoClobber {
			_, existsErr := service.Stat(ctx, cloudcity.JoinPath(service.FilesDir(), name))
			if existsErr == nil {
				skipped++
				if !addQuiet {
					slog.Info("skipped (exists)", "name", name)
				}
				continue
			}
			if !errors.Is(existsErr, cloudcity.ErrNotFound) {
				return fmt.Errorf("add %s: %w", name, existsErr)
			}
		}

		f, openErr := os.Open(sourcePath)
		if openErr != nil {
			return fmt.Errorf("open %s: %w", sourcePath, openErr)
		}

		result, uploadErr := service.Upload(ctx, name, f)
		_ = f.Close()

		if uploadErr != nil {
			return fmt.Errorf("add %s: %w", name, uploadErr)
		}

		added++
		if !addQuiet {
			slog.Info("added", "path", result.Path, "bytes", result.BytesWritten)
		}
	}

	slog.Info("add complete", "added", added, "skipped", skipped)
	return nil
}
