package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/frankcohen/cloudcity/clientcli"
)

var (
	uploadRecursive bool
	uploadName      string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path>",
	Short: "Upload files to the server",
	Long: `Upload files to the server's files directory.

The server keeps only the base name of each file and replaces an existing
file of the same name. A recursive upload flattens the directory tree and
skips dot files.

Examples:
  cloudcity-cli upload ./recording.wav
  cloudcity-cli upload --name latest.wav ./take-3.wav
  cloudcity-cli upload -r ./captures/`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
	uploadCmd.Flags().StringVarP(&uploadName, "name", "n", "", "file name on the server (single file only)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.UploadOptions{
		LocalPath: args[0],
		Name:      uploadName,
		Recursive: uploadRecursive,
	}

	results, err := client.Upload(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	formatter := getFormatter()
	if err := formatter.FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	for i := range results {
		if results[i].Err != nil {
			return &exitError{code: 1}
		}
	}

	return nil
}
