package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/frankcohen/cloudcity/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml",
	Long: `Write a starter configuration file holding the effective settings, so
defaults, environment variables and flags given to this command end up in it.

Examples:
  # Starter config for a browse server
  cloudcity init

  # Serve /srv/reflections in device mode
  CLOUDCITY_SERVER_MODE=device cloudcity init --root /srv/reflections --output device.yaml`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initOutput string
	initForce  bool
)

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "config.yaml", "file to write")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

type starterConfig struct {
	Env     string         `yaml:"env"`
	Server  starterServer  `yaml:"server"`
	Storage starterStorage `yaml:"storage"`
	Metrics starterMetrics `yaml:"metrics"`
	CORS    starterCORS    `yaml:"cors"`
	Log     starterLog     `yaml:"log"`
}

type starterServer struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Mode          string `yaml:"mode"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
	ReadTimeout   string `yaml:"read_timeout"`
	WriteTimeout  string `yaml:"write_timeout"`
	IdleTimeout   string `yaml:"idle_timeout"`
	QR            bool   `yaml:"qr"`
}

type starterStorage struct {
	Root     string `yaml:"root"`
	FilesDir string `yaml:"files_dir"`
}

type starterMetrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

type starterCORS struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

type starterLog struct {
	Level string `yaml:"level"`
}

func newStarterConfig(cfg *config.Config) starterConfig {
	return starterConfig{
		Env: cfg.Env,
		Server: starterServer{
			Host:          cfg.Server.Host,
			Port:          cfg.Server.Port,
			Mode:          cfg.Server.Mode,
			MaxUploadSize: cfg.Server.MaxUploadSize,
			ReadTimeout:   cfg.Server.ReadTimeout.String(),
			WriteTimeout:  cfg.Server.WriteTimeout.String(),
			IdleTimeout:   cfg.Server.IdleTimeout.String(),
			QR:            cfg.Server.QR,
		},
		Storage: starterStorage{
			Root:     cfg.Storage.Root,
			FilesDir: cfg.Storage.FilesDir,
		},
		Metrics: starterMetrics{
			Enabled:   cfg.Metrics.Enabled,
			Namespace: cfg.Metrics.Namespace,
		},
		CORS: starterCORS{
			Enabled:          cfg.CORS.Enabled,
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		},
		Log: starterLog{Level: cfg.Log.Level},
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(newStarterConfig(cfg))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if initForce {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(initOutput, flag, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", initOutput)
		}
		return fmt.Errorf("create %s: %w", initOutput, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", initOutput, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", initOutput, err)
	}

	slog.Info("config written", "file", initOutput)
	return nil
}
