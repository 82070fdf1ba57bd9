package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/commoni/commoni/internal/flagx"
	"github.com/commoni/commoni/internal/timex"
)

var serverFlags = []string{
	"-a", "-d", "-s", "-alg", "-t", "-r", "-w", "-logout-scope",
	"-store", "-store-timeout", "-redis", "-redis-password", "-redis-db",
	"-log", "-log-level", "-log-format", "-log-file",
}

// parseFlags populates Config fields from command-line flags.
//
//	-a string               gRPC bind address (e.g. ":50051")
//	-d string               PostgreSQL DSN
//	-s string               token signing secret
//	-alg string             signing algorithm (HS256, HS384, HS512)
//	-t int                  access token validity, minutes
//	-r int                  refresh token validity, days
//	-w int                  refresh token renewal window, days
//	-logout-scope string    session | token
//	-store string           postgres | redis | memory
//	-store-timeout int      per-call revocation store timeout, seconds
//	-redis string           redis address
//	-redis-password string  redis password
//	-redis-db int           redis database
//	-log string             slog | zerolog
//	-log-level string       debug | info | warn | error
//	-log-format string      json | text
//	-log-file string        rotate logs into this file instead of stderr
//
// Unknown arguments are dropped by flagx.FilterArgs first, so the JSON
// config flag and flags of other components do not collide.
func parseFlags(config *Config, osArgs []string) error {
	args := flagx.FilterArgs(osArgs, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.Algorithm, "alg", config.Algorithm, "token signing algorithm")

	accessMinutes := fs.Int("t", int(config.AccessTokenValidityDuration/time.Minute), "access token validity (in minutes)")
	refreshDays := fs.Int("r", int(config.RefreshTokenValidityDuration/timex.Days(1)), "refresh token validity (in days)")
	renewDays := fs.Int("w", int(config.RenewBeforeExpiration/timex.Days(1)), "renew refresh token this many days before expiration")

	fs.StringVar(&config.LogoutScope, "logout-scope", config.LogoutScope, "logout scope: session or token")
	fs.StringVar(&config.StoreBackend, "store", config.StoreBackend, "revocation store: postgres, redis or memory")
	storeTimeout := fs.Int("store-timeout", int(config.StoreTimeout/time.Second), "revocation store call timeout (in seconds)")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "redis password")
	fs.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "redis database")

	fs.StringVar(&config.LogBackend, "log", config.LogBackend, "log backend: slog or zerolog")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format: json or text")
	fs.StringVar(&config.LogFile, "log-file", config.LogFile, "log file")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// Only flags that were given replace the value, so sub-unit durations
	// from a JSON file survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessMinutes) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = timex.Days(*refreshDays)
		case "w":
			config.RenewBeforeExpiration = timex.Days(*renewDays)
		case "store-timeout":
			config.StoreTimeout = time.Duration(*storeTimeout) * time.Second
		}
	})
	return nil
}
