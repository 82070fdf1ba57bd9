package grpc

import (
	"context"
	"strings"

	"github.com/commoni/commoni/internal/api"
	"github.com/commoni/commoni/internal/common"
	"github.com/commoni/commoni/internal/logging"
	"github.com/commoni/commoni/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const tokenKey ctxKey = "token"

// credential is what a method requires in the authorization header.
type credential int

const (
	credentialNone credential = iota
	credentialAccess
	credentialAgent
)

// Login, RefreshToken and Ping carry no bearer token; RefreshToken sends
// its token in the request body.
var methodCredentials = map[string]credential{
	api.LogoutFullMethod:        credentialAccess,
	api.RegisterHostFullMethod:  credentialAccess,
	api.ListHostsFullMethod:     credentialAccess,
	api.GetHostFullMethod:       credentialAccess,
	api.UpdateHostFullMethod:    credentialAccess,
	api.DeleteHostFullMethod:    credentialAccess,
	api.ListReadingsFullMethod:  credentialAccess,
	api.LatestReadingFullMethod: credentialAccess,
	api.GetUserFullMethod:       credentialAccess,
	api.UpdateUserFullMethod:    credentialAccess,
	api.PushReadingFullMethod:   credentialAgent,
}

func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	required := methodCredentials[info.FullMethod]
	if required == credentialNone {
		return handler(ctx, req)
	}

	token, err := bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	var parsed *auth.ParsedToken
	switch required {
	case credentialAccess:
		parsed, err = s.auth.VerifyAccessToken(ctx, token)
	case credentialAgent:
		parsed, err = s.auth.VerifyAgentToken(ctx, token)
	}
	if err != nil {
		s.logger.Warn(ctx, "token rejected", "error", err)
		return nil, toStatus(err)
	}

	ctx = logging.ContextWith(ctx, "user_id", parsed.UserID())
	if hostID, ok := parsed.HostID(); ok {
		ctx = logging.ContextWith(ctx, "host_id", hostID)
	}
	return handler(context.WithValue(ctx, tokenKey, parsed), req)
}

func bearerToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	token, found := strings.CutPrefix(values[0], common.BearerPrefix)
	if !found || token == "" {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return token, nil
}

// TokenFromContext returns the token verified by the interceptor.
func TokenFromContext(ctx context.Context) (*auth.ParsedToken, bool) {
	t, ok := ctx.Value(tokenKey).(*auth.ParsedToken)
	return t, ok && t != nil
}

func mustToken(ctx context.Context) (*auth.ParsedToken, error) {
	t, ok := TokenFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	return t, nil
}
