package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/frankcohen/cloudcity/clientcli"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <name> [name...]",
	Aliases: []string{"rm"},
	Short:   "Delete files from the server",
	Long: `Delete one or more files from the server's files directory.

Examples:
  cloudcity-cli delete old.txt
  cloudcity-cli delete a.wav b.wav c.wav
  cloudcity-cli delete -q "$(cloudcity-cli first)"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{Names: args})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
