package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/frankcohen/cloudcity/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "cloudcity",
	Short:   "Minimal HTTP file server for Reflections devices",
	Long: `Cloud City serves a directory tree over HTTP. Browsers get HTML listings,
devices upload with multipart/form-data, download, touch and delete files in
the files directory, and poll the JSON listing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeat to merge (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "directory to serve (default: ., env: CLOUDCITY_STORAGE_ROOT)")
	rootCmd.PersistentFlags().String("files-dir", "", "files directory inside the root (default: files, env: CLOUDCITY_STORAGE_FILES_DIR)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: CLOUDCITY_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
