// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads client settings from a YAML file, GEODATASET_*
// environment variables, and a secrets directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/geodataset/internal/secrets"
	"github.com/pdiddy/geodataset/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g. GEODATASET_CLIENT_EMAIL.
const EnvPrefix = "GEODATASET"

// Secret file names read by ApplySecrets.
const (
	SecretAPIKey = "ncbi-api-key"
	SecretEmail  = "ncbi-email"
)

// Load reads the configuration. An empty path searches for geodataset.yaml
// in the working directory and then ~/.config/geodataset; finding none is
// not an error. An explicit path must exist. Environment variables override
// file values.
func Load(path string) (types.Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("geodataset")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "geodataset"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("client.base_url", types.DefaultBaseURL)
	v.SetDefault("client.tool", types.DefaultTool)
	v.SetDefault("client.email", "")
	v.SetDefault("client.api_key", "")
	v.SetDefault("client.min_interval", types.DefaultMinInterval)
	v.SetDefault("client.timeout", types.DefaultTimeout)
	v.SetDefault("transfer.host", types.DefaultTransferHost)
	v.SetDefault("transfer.timeout", types.DefaultTimeout)
	v.SetDefault("transfer.user", "")
	v.SetDefault("transfer.password", "")
}

// ApplySecrets fills an unset API key and email from files in dir. Values
// already present in cfg win.
func ApplySecrets(cfg *types.Config, dir string) error {
	s, err := secrets.Load(dir, SecretAPIKey, SecretEmail)
	if err != nil {
		return err
	}
	if cfg.Client.APIKey == "" {
		cfg.Client.APIKey = s[SecretAPIKey]
	}
	if cfg.Client.Email == "" {
		cfg.Client.Email = s[SecretEmail]
	}
	return nil
}
