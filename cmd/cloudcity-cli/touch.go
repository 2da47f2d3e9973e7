package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/frankcohen/cloudcity/clientcli"
)

var touchCmd = &cobra.Command{
	Use:   "touch <path> [path...]",
	Short: "Set the modification time of files to now",
	Long: `Set the modification time of existing files to now.

Paths are relative to the server's files directory and may include
sub-directories.

Examples:
  cloudcity-cli touch recording.wav
  cloudcity-cli touch archive/2024/notes.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTouch,
}

func runTouch(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Touch(cmd.Context(), clientcli.TouchOptions{Paths: args})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatTouch(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasTouchErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
