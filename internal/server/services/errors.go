// Package services implements the server's business logic: the token
// state machine (AuthService), host registration, readings and account
// administration.
package services

import (
	"context"
	"fmt"

	"github.com/commoni/commoni/internal/common"
	"github.com/commoni/commoni/internal/logging"
)

// serverError logs err under a fresh reference and returns the opaque
// *common.ServerError handed to callers.
func serverError(ctx context.Context, logger logging.Logger, op string, err error) error {
	se := common.NewServerError(op, err)
	logger.Error(ctx, "server error", "ref", se.Ref, "op", op, "error", err)
	return se
}

func unauthorized(reason string) error {
	return fmt.Errorf("%w: %s", common.ErrorUnauthorized, reason)
}

func unauthorizedErr(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrInvalidArgument, fmt.Sprintf(format, args...))
}
