package config

import (
	"errors"

	"github.com/spf13/pflag"
)

// Flag names shared by every commonictl command.
const (
	FlagConfig    = "config"
	FlagAddr      = "addr"
	FlagTimeout   = "timeout"
	FlagTokenFile = "token-file"
)

// AddFlags registers the client flags on fs, defaulted from LoadDefaults.
func AddFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to JSON config file")
	fs.StringP(FlagAddr, "a", d.ServerEndpointAddr, "address and port of the commoni server")
	fs.Duration(FlagTimeout, d.RequestTimeout, "deadline for each command")
	fs.String(FlagTokenFile, d.TokenFile, "file that keeps session tokens between runs")
}

// FromFlags builds a Config from defaults, then the JSON file named by
// --config, then every flag that was set on the command line.
func FromFlags(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := fs.GetString(FlagConfig)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if fs.Changed(FlagAddr) {
		if cfg.ServerEndpointAddr, err = fs.GetString(FlagAddr); err != nil {
			return nil, err
		}
	}
	if fs.Changed(FlagTimeout) {
		if cfg.RequestTimeout, err = fs.GetDuration(FlagTimeout); err != nil {
			return nil, err
		}
	}
	if fs.Changed(FlagTokenFile) {
		if cfg.TokenFile, err = fs.GetString(FlagTokenFile); err != nil {
			return nil, err
		}
	}

	if cfg.ServerEndpointAddr == "" {
		return nil, errors.New("server address is empty")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, errors.New("timeout must be positive")
	}
	return cfg, nil
}
