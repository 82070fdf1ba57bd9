package cli

import (
	"fmt"

	srvconfig "github.com/commoni/commoni/internal/server/config"
	"github.com/spf13/pflag"
)

const (
	flagServerConfig = "server-config"
	flagDSN          = "dsn"
	flagSecret       = "secret"
	flagAlgorithm    = "alg"
	flagStore        = "store"
	flagRedis        = "redis"
)

// addServerFlags registers the server settings operator commands need.
func addServerFlags(fs *pflag.FlagSet) {
	var d srvconfig.Config
	d.LoadDefaults()

	fs.String(flagServerConfig, "", "server JSON config file")
	fs.StringP(flagDSN, "d", d.DatabaseDSN, "database DSN")
	fs.StringP(flagSecret, "s", d.SecretKey, "token signing secret")
	fs.String(flagAlgorithm, d.Algorithm, "token signing algorithm")
	fs.String(flagStore, d.StoreBackend, "revocation store: postgres, redis or memory")
	fs.String(flagRedis, d.RedisAddr, "redis address")
}

// serverConfigFromFlags layers server defaults, the file named by
// --server-config and the flags set on the command line.
func serverConfigFromFlags(fs *pflag.FlagSet) (*srvconfig.Config, error) {
	cfg := &srvconfig.Config{}
	cfg.LoadDefaults()

	path, err := fs.GetString(flagServerConfig)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := srvconfig.LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	for name, dst := range map[string]*string{
		flagDSN:       &cfg.DatabaseDSN,
		flagSecret:    &cfg.SecretKey,
		flagAlgorithm: &cfg.Algorithm,
		flagStore:     &cfg.StoreBackend,
		flagRedis:     &cfg.RedisAddr,
	} {
		if !fs.Changed(name) {
			continue
		}
		if *dst, err = fs.GetString(name); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}
	return cfg, nil
}
