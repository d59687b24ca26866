// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Johan Herland

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	AppName       = "nexactl"
	ConfigType    = "yaml"
	DefaultConfig = `# nexactl configuration

# Radio connection. Set either a serial port or a websocket URL;
# the --port / --url flags override these.
port: ""                # serial port, e.g. /dev/ttyUSB0
baud_rate: 115200       # serial baud rate
url: ""                 # websocket URL, e.g. wss://radio.local/pulses
username: ""            # websocket basic-auth user (password via NEXACTL_PASSWORD)
no_ssl_verify: false    # skip TLS certificate verification (self-signed radios)

# Transmission
repeats: 5              # times each command is sent (remotes repeat every press)

# Decoding
ring_capacity: 256      # token buffer size, rounded up to a power of 2
stats_interval: 10      # seconds between statistics lines in monitor mode

# Output
debug: false            # enable debug output
`
)

// Settings holds all application configuration
type Settings struct {
	// Radio connection
	Port        string `mapstructure:"port"`
	BaudRate    int    `mapstructure:"baud_rate"`
	URL         string `mapstructure:"url"`
	Username    string `mapstructure:"username"`
	NoSSLVerify bool   `mapstructure:"no_ssl_verify"`

	// Transmission
	Repeats int `mapstructure:"repeats"`

	// Decoding
	RingCapacity  int `mapstructure:"ring_capacity"`
	StatsInterval int `mapstructure:"stats_interval"`

	// Output
	Debug bool `mapstructure:"debug"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/nexactl/
func Init() error {
	viper.SetDefault("port", "")
	viper.SetDefault("baud_rate", 115200)
	viper.SetDefault("url", "")
	viper.SetDefault("username", "")
	viper.SetDefault("no_ssl_verify", false)
	viper.SetDefault("repeats", 5)
	viper.SetDefault("ring_capacity", 256)
	viper.SetDefault("stats_interval", 10)
	viper.SetDefault("debug", false)

	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	// Read config file - if not found, create default in XDG config dir
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			xdgConfigPath := filepath.Join(configDir, AppName)
			if err = ensureConfigExists(xdgConfigPath); err != nil {
				return err
			}
			if err = viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	if s.BaudRate < 300 || s.BaudRate > 4000000 {
		errs = append(errs, fmt.Errorf("baud_rate must be between 300 and 4000000, got %d", s.BaudRate))
	}
	if s.Repeats < 1 || s.Repeats > 100 {
		errs = append(errs, fmt.Errorf("repeats must be between 1 and 100, got %d", s.Repeats))
	}
	if s.RingCapacity < 2 || s.RingCapacity > 1<<20 {
		errs = append(errs, fmt.Errorf("ring_capacity must be between 2 and 1048576, got %d", s.RingCapacity))
	}
	if s.StatsInterval < 1 || s.StatsInterval > 3600 {
		errs = append(errs, fmt.Errorf("stats_interval must be between 1 and 3600 seconds, got %d", s.StatsInterval))
	}
	if s.Port != "" && s.URL != "" {
		errs = append(errs, errors.New("port and url are mutually exclusive"))
	}

	return errors.Join(errs...)
}
