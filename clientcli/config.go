package clientcli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is a browse mode server on the local machine.
const DefaultEndpoint = "http://localhost:8088"

// Environment variables read by the client.
const (
	EnvEndpoint = "CLOUDCITY_ENDPOINT"
	EnvTimeout  = "CLOUDCITY_TIMEOUT"
	EnvProfile  = "CLOUDCITY_PROFILE"
	EnvConfig   = "CLOUDCITY_CONFIG"
)

// Profile names one server and the defaults used when talking to it.
// Devices on slow uplinks usually want a longer Timeout.
type Profile struct {
	Name        string `yaml:"name"`
	Endpoint    string `yaml:"endpoint"`
	Timeout     string `yaml:"timeout,omitempty"`
	DownloadDir string `yaml:"download_dir,omitempty"`
	Default     bool   `yaml:"default,omitempty"`
}

// ProfileFile is the on-disk list of profiles, ~/.cloudcity/config.yaml by default.
type ProfileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

func (f *ProfileFile) index(name string) int {
	return slices.IndexFunc(f.Profiles, func(p Profile) bool { return p.Name == name })
}

// Lookup returns the named profile, or the default one when name is empty.
// Without a profile marked default the first one wins.
func (f *ProfileFile) Lookup(name string) (*Profile, error) {
	if len(f.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if name == "" {
		if i := slices.IndexFunc(f.Profiles, func(p Profile) bool { return p.Default }); i >= 0 {
			return &f.Profiles[i], nil
		}
		return &f.Profiles[0], nil
	}

	i := f.index(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return &f.Profiles[i], nil
}

// DefaultName returns the name of the default profile, or "" when there is none.
func (f *ProfileFile) DefaultName() string {
	p, err := f.Lookup("")
	if err != nil {
		return ""
	}
	return p.Name
}

// Put stores p, replacing a profile of the same name. It reports whether p is new.
func (f *ProfileFile) Put(p Profile) bool {
	if i := f.index(p.Name); i >= 0 {
		f.Profiles[i] = p
		return false
	}
	f.Profiles = append(f.Profiles, p)
	return true
}

// Remove deletes the named profile.
func (f *ProfileFile) Remove(name string) error {
	i := f.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	f.Profiles = slices.Delete(f.Profiles, i, i+1)
	return nil
}

// SetDefault marks the named profile as the only default.
func (f *ProfileFile) SetDefault(name string) error {
	if f.index(name) < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	for i := range f.Profiles {
		f.Profiles[i].Default = f.Profiles[i].Name == name
	}
	return nil
}

// Save writes the profiles to path with owner-only permissions.
func (f *ProfileFile) Save(path string) error {
	path = filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	return nil
}

// LoadProfileFile reads the profiles stored at path.
func LoadProfileFile(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var f ProfileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	return &f, nil
}

// DefaultConfigPath returns ~/.cloudcity/config.yaml, or "" without a home directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cloudcity", "config.yaml")
}

// Config is what a Client runs with once profile, environment and flags are merged.
type Config struct {
	Endpoint string
	// Timeout bounds every request. Zero means DefaultTimeout.
	Timeout time.Duration
	// DownloadDir receives downloads that name no local path.
	DownloadDir string
}

// Validate checks the endpoint is an absolute http or https URL and the timeout is not negative.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, c.Endpoint)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Timeout)
	}
	return nil
}

// WithDefaults returns a copy with DefaultEndpoint and DefaultTimeout filled in.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &cfg
}

// ConfigFromProfile converts a stored profile. The timeout is a Go duration string such as "2m".
func ConfigFromProfile(p *Profile) (*Config, error) {
	if p == nil {
		return &Config{}, nil
	}

	timeout, err := parseTimeout(p.Timeout)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}

	return &Config{Endpoint: p.Endpoint, Timeout: timeout, DownloadDir: p.DownloadDir}, nil
}

// ConfigFromEnv reads CLOUDCITY_ENDPOINT and CLOUDCITY_TIMEOUT.
func ConfigFromEnv() (*Config, error) {
	timeout, err := parseTimeout(os.Getenv(EnvTimeout))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvTimeout, err)
	}
	return &Config{Endpoint: os.Getenv(EnvEndpoint), Timeout: timeout}, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, s)
	}
	return d, nil
}

// MergeConfig layers configs, later ones winning. Zero fields never override.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.Endpoint != "" {
			result.Endpoint = cfg.Endpoint
		}
		if cfg.Timeout != 0 {
			result.Timeout = cfg.Timeout
		}
		if cfg.DownloadDir != "" {
			result.DownloadDir = cfg.DownloadDir
		}
	}
	return result
}
