// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Defaults applied when a config field is left zero.
const (
	DefaultBaseURL      = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultTool         = "geodataset"
	DefaultMinInterval  = 100 * time.Millisecond
	DefaultTimeout      = 30 * time.Second
	DefaultTransferHost = "ftp.ncbi.nlm.nih.gov:21"
)

// ClientConfig holds settings for the metadata API client.
type ClientConfig struct {
	// BaseURL is the E-utilities endpoint root.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Tool identifies this client on every request.
	Tool string `json:"tool" yaml:"tool" mapstructure:"tool"`

	// Email is the contact identifier sent with every request when set.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// APIKey is the credential token sent with every request when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MinInterval is the minimum spacing between two requests (default 100ms).
	// A negative value disables spacing.
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval" mapstructure:"min_interval"`

	// Timeout bounds each request (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// WithDefaults returns a copy of c with zero fields set to their defaults.
func (c ClientConfig) WithDefaults() ClientConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Tool == "" {
		c.Tool = DefaultTool
	}
	if c.MinInterval == 0 {
		c.MinInterval = DefaultMinInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// UserAgent returns the User-Agent header value for the client.
func (c ClientConfig) UserAgent() string {
	email := c.Email
	if email == "" {
		email = "not_provided"
	}
	return c.Tool + "/1.0 (email: " + email + ")"
}

// TransferConfig holds settings for the file-transfer client.
type TransferConfig struct {
	// Host is the transfer server address as host:port.
	Host string `json:"host" yaml:"host" mapstructure:"host"`

	// Timeout bounds connection setup and each transfer command (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// User and Password are the login credentials (default anonymous).
	User     string `json:"user,omitempty" yaml:"user,omitempty" mapstructure:"user"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
}

// WithDefaults returns a copy of c with zero fields set to their defaults.
func (c TransferConfig) WithDefaults() TransferConfig {
	if c.Host == "" {
		c.Host = DefaultTransferHost
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.User == "" {
		c.User = "anonymous"
		if c.Password == "" {
			c.Password = "anonymous"
		}
	}
	return c
}

// Config groups the client and transfer settings.
type Config struct {
	Client   ClientConfig   `json:"client" yaml:"client" mapstructure:"client"`
	Transfer TransferConfig `json:"transfer" yaml:"transfer" mapstructure:"transfer"`
}
