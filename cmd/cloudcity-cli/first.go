package main

import (
	"os"

	"github.com/spf13/cobra"
)

var firstCmd = &cobra.Command{
	Use:   "first",
	Short: "Print the first file name of the listing",
	Long: `Print the name of the first regular file of the files directory listing.

Fails with a not found error when the directory holds no files.

Examples:
  cloudcity-cli first
  cloudcity-cli download "$(cloudcity-cli first)"`,
	Args: cobra.NoArgs,
	RunE: runFirst,
}

func runFirst(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	name, err := client.FirstFile(cmd.Context())
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatFirst(os.Stdout, name)
}
