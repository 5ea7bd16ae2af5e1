package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables recognized by [Config.Resolve]. Each takes priority
// over the corresponding config-file value.
const (
	EnvSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvSpotifyUseOAuth     = "SPOTIFY_USE_OAUTH"
	EnvYTMusicOAuthJSON    = "YTMUSIC_OAUTH_JSON"
	EnvYTMusicProxyURL     = "YTMUSIC_PROXY_URL"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Transfer    TransferConfig    `toml:"transfer"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YTMusic YTMusicConfig `toml:"ytmusic"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	UseOAuth     bool   `toml:"use_oauth"`
	RefreshToken string `toml:"refresh_token"`
}

// YTMusicConfig contains YouTube Music settings.
type YTMusicConfig struct {
	OAuthJSON string `toml:"oauth_json"`
	ProxyURL  string `toml:"proxy_url"`
}

// DatabaseConfig contains search-cache database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// TransferConfig contains transfer behavior settings.
type TransferConfig struct {
	NotFoundLog     string `toml:"not_found_log"`
	IsolateFailures bool   `toml:"isolate_failures"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
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

// Resolve applies environment overrides to the loaded configuration.
//
// Environment variables take priority over config-file values across the
// board, matching [LookupSetting] semantics.
func (c *Config) Resolve() {
	sp := &c.Credentials.Spotify
	sp.ClientID = LookupSetting(EnvSpotifyClientID, sp.ClientID)
	sp.ClientSecret = LookupSetting(EnvSpotifyClientSecret, sp.ClientSecret)

	if v := os.Getenv(EnvSpotifyUseOAuth); v != "" {
		sp.UseOAuth = ParseBoolSetting(v)
	}

	yt := &c.Credentials.YTMusic
	yt.OAuthJSON = LookupSetting(EnvYTMusicOAuthJSON, yt.OAuthJSON)
	yt.ProxyURL = LookupSetting(EnvYTMusicProxyURL, yt.ProxyURL)
}

// ParseBoolSetting interprets "true", "1" and "yes" (any case) as true.
func ParseBoolSetting(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
