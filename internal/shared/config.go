package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// OutOfBand is the callback value telling the provider to show the verifier to the user.
const OutOfBand = "oob"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	API         APIConfig         `toml:"api"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Rdio RdioConfig `toml:"rdio"`
}

// RdioConfig holds the consumer pair issued to the application and, once
// authorized, the user's access pair.
type RdioConfig struct {
	ConsumerKey    string `toml:"consumer_key"`
	ConsumerSecret string `toml:"consumer_secret"`
	AccessToken    string `toml:"access_token"`
	AccessSecret   string `toml:"access_secret"`
	CallbackURL    string `toml:"callback_url"`
	// RequestToken and RequestSecret hold an out-of-band authorization between
	// "auth login" and "auth complete".
	RequestToken  string `toml:"request_token,omitempty"`
	RequestSecret string `toml:"request_secret,omitempty"`
	// ClientID and ClientSecret enable app-only OAuth 2.0 calls when no access pair is saved.
	ClientID     string `toml:"client_id,omitempty"`
	ClientSecret string `toml:"client_secret,omitempty"`
}

// HasConsumer reports whether both halves of the consumer pair are set.
func (r RdioConfig) HasConsumer() bool {
	return r.ConsumerKey != "" && r.ConsumerSecret != ""
}

// HasAccess reports whether both halves of the access pair are set.
func (r RdioConfig) HasAccess() bool {
	return r.AccessToken != "" && r.AccessSecret != ""
}

// Update stores a freshly issued access pair and drops any pending request pair.
func (r *RdioConfig) Update(token, secret string) {
	r.AccessToken = token
	r.AccessSecret = secret
	r.SetPending("", "")
}

// SetPending records the request pair of an authorization awaiting its verifier.
func (r *RdioConfig) SetPending(token, secret string) {
	r.RequestToken = token
	r.RequestSecret = secret
}

// HasClientCredentials reports whether both halves of the OAuth 2.0 client pair are set.
func (r RdioConfig) HasClientCredentials() bool {
	return r.ClientID != "" && r.ClientSecret != ""
}

// HasPending reports whether an authorization is waiting for a verifier.
func (r RdioConfig) HasPending() bool {
	return r.RequestToken != "" && r.RequestSecret != ""
}

// Clear drops the access pair, leaving the consumer pair intact.
func (r *RdioConfig) Clear() {
	r.Update("", "")
}

// APIConfig contains endpoint locations and client behaviour.
type APIConfig struct {
	Endpoint        string  `toml:"endpoint"`
	RequestTokenURL string  `toml:"request_token_url"`
	AccessTokenURL  string  `toml:"access_token_url"`
	AuthorizeURL    string  `toml:"authorize_url"`
	OAuth2TokenURL  string  `toml:"oauth2_token_url"`
	SiteURL         string  `toml:"site_url"`
	RateLimit       float64 `toml:"rate_limit"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
}

// Timeout returns the configured HTTP timeout, defaulting to 30 seconds.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file fall back to [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path, replacing any existing file.
//
// Used after authorization to persist the access pair.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
