// Package client talks to the commoni server.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Login, Refresh, Logout, host registration, readings and Ping.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, attaches the right bearer token to each call through an
//     interceptor, renews the access token once when the server answers
//     Unauthenticated, and maps gRPC status codes to sentinel errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrInvalidArgument,
// ErrAlreadyExists and ErrServer. A ServerError reference returned by the
// server is kept in the error text so that operators can find the log entry.
//
// # Concurrency
//
// GRPCClient is safe for concurrent use; token state is guarded by a mutex.
package client
