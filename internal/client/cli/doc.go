// Package cli implements commonictl, the command-line tool for commoni.
//
// Two families of commands share one cobra tree:
//   - operator commands (user, agent, token, revocations) open the server's
//     database and revocation store directly, configured like the server
//     itself (--server-config, --dsn, --secret, --store, --redis);
//   - remote commands (login, logout, ping, host, readings) talk to the gRPC
//     endpoint through client.GRPCClient. Session tokens are kept in the
//     token file between runs and rewritten whenever a call renews them.
//
// Interactive input (passwords) goes through the terminal without echo.
package cli
