package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates the test from the real environment and from any config
// file in the home directory.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BUCKET_NAME", "")
	t.Setenv("REGION", "")
	t.Setenv("ACCESS_KEY_ID", "")
	t.Setenv("SECRET_ACCESS_KEY", "")
	t.Setenv("HOME", t.TempDir())
}

func TestLoadConfigMissingBucket(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig()
	require.ErrorIs(t, err, ErrMissingBucket)
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BUCKET_NAME", "media-bucket")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "media-bucket", config.Bucket)
	assert.Equal(t, "us-east-1", config.Region)
	assert.False(t, config.HasStaticCredentials())
}

func TestLoadConfigStaticCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("BUCKET_NAME", "media-bucket")
	t.Setenv("REGION", "eu-central-1")
	t.Setenv("ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("SECRET_ACCESS_KEY", "secret")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", config.Region)
	assert.True(t, config.HasStaticCredentials())
}

func TestLoadConfigPartialCredentialsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("BUCKET_NAME", "media-bucket")
	t.Setenv("ACCESS_KEY_ID", "AKIAEXAMPLE")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, config.HasStaticCredentials())
	assert.Empty(t, config.AccessKey)
	assert.Empty(t, config.SecretKey)
}

func TestLoadConfigFileFallback(t *testing.T) {
	clearEnv(t)

	home := os.Getenv("HOME")
	contents := "[default]\nbucket_name = file-bucket\nregion = eu-west-1\naccess_key = AKIAFILE\nsecret_key = filesecret\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, configFileName), []byte(contents), 0600))

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "file-bucket", config.Bucket)
	assert.Equal(t, "eu-west-1", config.Region)
	assert.True(t, config.HasStaticCredentials())
}

func TestLoadConfigEnvWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("BUCKET_NAME", "env-bucket")

	home := os.Getenv("HOME")
	contents := "[default]\nbucket_name = file-bucket\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, configFileName), []byte(contents), 0600))

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "env-bucket", config.Bucket)
}
