package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/frankcohen/cloudcity"
	cchttp "github.com/frankcohen/cloudcity/http"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CLOUDCITY"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for cloudcity.
type Config struct {
	Env     string            `mapstructure:"env" validate:"omitempty,oneof=dev development prod production"`
	Server  ServerConfig      `mapstructure:"server"`
	Storage StorageConfig     `mapstructure:"storage"`
	Metrics MetricsConfig     `mapstructure:"metrics"`
	CORS    cchttp.CORSConfig `mapstructure:"cors"`
	Log     LogConfig         `mapstructure:"log"`
}

// IsProd reports whether the production log format is selected.
func (c *Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	// Port 0 selects the mode's default port.
	Port          int           `mapstructure:"port" validate:"min=0,max=65535"`
	Mode          string        `mapstructure:"mode" validate:"required,oneof=browse device"`
	MaxUploadSize int64         `mapstructure:"max_upload_size" validate:"min=0"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	QR            bool          `mapstructure:"qr"`
}

// ServerMode returns the parsed server mode.
func (s ServerConfig) ServerMode() (cloudcity.ServerMode, error) {
	return cloudcity.ParseServerMode(s.Mode)
}

// Addr returns the listen address, falling back to the mode's default port.
func (s ServerConfig) Addr() string {
	port := s.Port
	if port == 0 {
		port = cloudcity.ServerMode(s.Mode).DefaultPort()
	}
	return fmt.Sprintf("%s:%d", s.Host, port)
}

// StorageConfig holds file storage configuration.
type StorageConfig struct {
	// Root is the directory served; every logical path resolves inside it.
	Root     string `mapstructure:"root" validate:"required"`
	FilesDir string `mapstructure:"files_dir" validate:"required"`
}

// MetricsConfig holds Prometheus configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace" validate:"required_if=Enabled true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"root":            "storage.root",
	"files-dir":       "storage.files_dir",
	"host":            "server.host",
	"port":            "server.port",
	"mode":            "server.mode",
	"max-upload-size": "server.max_upload_size",
	"qr":              "server.qr",
	"metrics":         "metrics.enabled",
	"log-level":       "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 0) // 0 means the mode's default port
	v.SetDefault("server.mode", string(cloudcity.ModeBrowse))
	v.SetDefault("server.max_upload_size", 0) // 0 means no limit
	v.SetDefault("server.read_timeout", 5*time.Minute)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.idle_timeout", 2*time.Minute)
	v.SetDefault("server.qr", false)

	v.SetDefault("storage.root", ".")
	v.SetDefault("storage.files_dir", "files")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "cloudcity")

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type"})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if _, err := cloudcity.ResolvePath(cfg.Storage.FilesDir); err != nil {
		return nil, fmt.Errorf("validate config: storage.files_dir: %w", err)
	}

	return &cfg, nil
}
