// Package config loads runtime configuration for commonictl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file named by --config / -c (see LoadFile).
//  3. Command-line flags that were set explicitly, which override earlier
//     values.
//
// Supported flags
//
//	-a, --addr string        address:port of the commoni gRPC endpoint
//	    --timeout duration   per-command deadline
//	    --token-file string  where session tokens are kept between runs
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10s" or integer
// nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s",
//	  "token_file": "/home/me/.config/commoni/tokens.json"
//	}
package config
