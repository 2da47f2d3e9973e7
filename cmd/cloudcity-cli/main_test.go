package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankcohen/cloudcity/clientcli"
)

func resetFlags(t *testing.T) {
	t.Helper()
	cfgFile, profile, endpoint, timeout = "", "", "", 0
	t.Cleanup(func() { cfgFile, profile, endpoint, timeout = "", "", "", 0 })

	t.Setenv("HOME", t.TempDir())
	t.Setenv("CLOUDCITY_ENDPOINT", "")
	t.Setenv("CLOUDCITY_TIMEOUT", "")
	t.Setenv("CLOUDCITY_PROFILE", "")
	t.Setenv("CLOUDCITY_CONFIG", "")
}

func writeProfiles(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &clientcli.ProfileFile{Profiles: []clientcli.Profile{
		{Name: "laptop", Endpoint: "http://localhost:8088"},
		{Name: "badge", Endpoint: "http://192.168.4.1", Timeout: "2m", DownloadDir: "/srv/clips", Default: true},
		{Name: "broken", Endpoint: "http://10.0.0.1", Timeout: "whenever"},
	}}
	require.NoError(t, cfg.Save(path))
	return path
}

func TestBuildConfig_Defaults(t *testing.T) {
	resetFlags(t)

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Endpoint)
	assert.Equal(t, clientcli.DefaultEndpoint, cfg.WithDefaults().Endpoint)
}

func TestBuildConfig_Precedence(t *testing.T) {
	resetFlags(t)
	cfgFile = writeProfiles(t)

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.4.1", cfg.Endpoint, "default profile")
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, "/srv/clips", cfg.DownloadDir)

	t.Setenv("CLOUDCITY_TIMEOUT", "10s")
	timeout = 3 * time.Second
	cfg, err = buildConfig()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Timeout, "timeout flag over env and profile")
	timeout = 0

	profile = "laptop"
	cfg, err = buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8088", cfg.Endpoint, "selected profile")

	t.Setenv("CLOUDCITY_ENDPOINT", "http://10.0.0.9")
	cfg, err = buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.9", cfg.Endpoint, "env over profile")

	endpoint = "http://127.0.0.1:9000"
	cfg, err = buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.Endpoint, "flag over env")
}

func TestBuildConfig_ProfileFromEnv(t *testing.T) {
	resetFlags(t)
	t.Setenv("CLOUDCITY_CONFIG", writeProfiles(t))
	t.Setenv("CLOUDCITY_PROFILE", "laptop")

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8088", cfg.Endpoint)
}

func TestBuildConfig_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		resetFlags(t)
		cfgFile = filepath.Join(t.TempDir(), "missing.yaml")

		_, err := buildConfig()
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown profile", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)
		profile = "nope"

		_, err := buildConfig()
		assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
	})

	t.Run("bad profile timeout", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)
		profile = "broken"

		_, err := buildConfig()
		assert.ErrorIs(t, err, clientcli.ErrInvalidTimeout)
	})

	t.Run("bad env timeout", func(t *testing.T) {
		resetFlags(t)
		t.Setenv("CLOUDCITY_TIMEOUT", "nope")

		_, err := buildConfig()
		assert.ErrorIs(t, err, clientcli.ErrInvalidTimeout)
	})

	t.Run("missing default file is ignored", func(t *testing.T) {
		resetFlags(t)

		_, err := buildConfig()
		assert.NoError(t, err)
	})
}
