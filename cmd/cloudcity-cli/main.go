package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/frankcohen/cloudcity/clientcli"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	timeout    time.Duration
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:           "cloudcity-cli",
	Version:       version,
	Short:         "Client for cloudcity file servers",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `cloudcity CLI - Client for the cloudcity file server

Every command works against the server's files directory:
  - upload:   Send local files, stored under their base name
  - download: Fetch a file by name
  - delete:   Remove files by name
  - touch:    Refresh the modification time of existing files
  - list:     Show the files directory, directories first, then by name
  - first:    Print the first file name of the listing

Endpoint and timeout are resolved from, in increasing precedence:
the selected profile, CLOUDCITY_ENDPOINT/CLOUDCITY_TIMEOUT, and the flags.
A profile may also name a download directory.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.cloudcity/config.yaml, env: CLOUDCITY_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: CLOUDCITY_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:8088, env: CLOUDCITY_ENDPOINT)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout (default: 30s, env: CLOUDCITY_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(touchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(firstCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exitErr *exitError
		if !errors.As(err, &exitErr) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// getConfigPath returns the profile file path from the flag, the environment or the default location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := os.Getenv(clientcli.EnvConfig); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from the profile file, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	profileName := profile
	if profileName == "" {
		profileName = os.Getenv(clientcli.EnvProfile)
	}

	explicit := cfgFile != "" || os.Getenv(clientcli.EnvConfig) != "" || profileName != ""

	if configPath := getConfigPath(); configPath != "" {
		file, err := clientcli.LoadProfileFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.Lookup(profileName)
			if profileErr != nil {
				if explicit {
					return nil, profileErr
				}
				break
			}
			cfg, profileErr := clientcli.ConfigFromProfile(p)
			if profileErr != nil {
				return nil, profileErr
			}
			configs = append(configs, cfg)
		case explicit:
			// Only error if the user asked for a file or profile
			return nil, err
		}
	}

	envCfg, err := clientcli.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	configs = append(configs, envCfg)
	configs = append(configs, &clientcli.Config{Endpoint: endpoint, Timeout: timeout})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}

// handleError reports err through the formatter and returns a silent exit error.
func handleError(w io.Writer, err error) error {
	_ = getFormatter().FormatError(w, err)
	return &exitError{code: 1}
}

// exitError is returned when we want to exit with a specific code
// but don't want the error printed again.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
