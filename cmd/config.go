// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Nexcell Networks

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// StationProfile is one [station.<name>] block in the config file. It carries
// the same parameters as the connection flags; zero values fall back to the
// flag defaults.
type StationProfile struct {
	// Transport selects "serial", "tcp" or "tls".
	Transport string `toml:"transport"`

	// Serial parameters
	Port string `toml:"port"`
	Baud int    `toml:"baud"`

	// Network parameters
	Host string `toml:"host"` // host:port

	// TLS parameters
	CAFile     string `toml:"ca_file"`
	CertFile   string `toml:"cert_file"`
	KeyFile    string `toml:"key_file"`
	ServerName string `toml:"server_name"`
	Insecure   bool   `toml:"insecure"`
}

// Config is the top-level TOML document.
type Config struct {
	Stations map[string]StationProfile `toml:"station"`
}

// defaultConfigPath returns ~/.config/towerwatch.toml, or "" when the home
// directory cannot be resolved.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "towerwatch.toml")
}

// LoadConfig reads the TOML config file. An empty path uses the default
// location; a missing file at the default location is not an error.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return &Config{}, nil
		}
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// LookupStation resolves a named profile from the config file.
func LookupStation(name string) (*StationProfile, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	profile, ok := cfg.Stations[name]
	if !ok {
		return nil, fmt.Errorf("station %q not found in config", name)
	}
	return &profile, nil
}
