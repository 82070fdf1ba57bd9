package common

// AuthorizationHeaderName is the metadata key carrying the bearer token.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the token in the authorization header.
const BearerPrefix = "Bearer "

// ErrorInfoDomain identifies commoni in google.rpc.ErrorInfo details.
const ErrorInfoDomain = "commoni"
