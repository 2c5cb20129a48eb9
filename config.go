package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// ErrMissingBucket is returned when no bucket name can be found in the
// environment or in a config file. It is fatal at startup.
var ErrMissingBucket = errors.New("BUCKET_NAME is not set")

// DefaultRegion is used when no region is configured.
const DefaultRegion = "us-east-1"

// configFileName is the optional ini fallback, looked up in the current
// directory and then in the home directory.
const configFileName = ".s3drop.cfg"

// Config holds the resolved upload configuration. It is loaded once at
// startup and never mutated afterwards.
type Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// HasStaticCredentials reports whether both static credential fields are
// set. A partial pair is treated as absent so the default AWS credential
// chain takes over.
func (c *Config) HasStaticCredentials() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// LoadConfig resolves configuration from the environment, falling back to a
// .s3drop.cfg ini file when the environment carries no bucket name. Fails
// with ErrMissingBucket if neither source provides one.
func LoadConfig() (*Config, error) {
	config := &Config{
		Bucket:    os.Getenv("BUCKET_NAME"),
		Region:    os.Getenv("REGION"),
		AccessKey: os.Getenv("ACCESS_KEY_ID"),
		SecretKey: os.Getenv("SECRET_ACCESS_KEY"),
	}

	if config.Bucket == "" {
		fileConfig, err := loadConfigFile()
		if err == nil {
			config = mergeConfig(config, fileConfig)
		}
	}

	if config.Bucket == "" {
		return nil, ErrMissingBucket
	}

	if config.Region == "" {
		config.Region = DefaultRegion
	}

	// Ignore a partial credential pair entirely.
	if !config.HasStaticCredentials() {
		config.AccessKey = ""
		config.SecretKey = ""
	}

	return config, nil
}

// loadConfigFile loads the first .s3drop.cfg found in the standard
// locations.
func loadConfigFile() (*Config, error) {
	configPaths := []string{configFileName}
	if home, err := os.UserHomeDir(); err == nil {
		configPaths = append(configPaths, filepath.Join(home, configFileName))
	}

	var configPath string
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			configPath = path
			break
		}
	}

	if configPath == "" {
		return nil, fmt.Errorf("%s not found in any of the standard locations", configFileName)
	}

	return parseConfigFile(configPath)
}

// parseConfigFile reads a single ini config file.
func parseConfigFile(path string) (*Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	section := cfg.Section("default")

	return &Config{
		Bucket:    section.Key("bucket_name").String(),
		Region:    section.Key("region").String(),
		AccessKey: section.Key("access_key").String(),
		SecretKey: section.Key("secret_key").String(),
	}, nil
}

// mergeConfig fills the empty fields of env with values from file. The
// environment always wins for fields it sets.
func mergeConfig(env, file *Config) *Config {
	merged := *env
	if merged.Bucket == "" {
		merged.Bucket = file.Bucket
	}
	if merged.Region == "" {
		merged.Region = file.Region
	}
	if merged.AccessKey == "" && merged.SecretKey == "" {
		merged.AccessKey = file.AccessKey
		merged.SecretKey = file.SecretKey
	}
	return &merged
}
