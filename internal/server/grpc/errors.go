package grpc

import (
	"context"
	"errors"

	"github.com/commoni/commoni/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorInfoReason tags the ErrorInfo detail of internal errors.
const ErrorInfoReason = "SERVER_ERROR"

// toStatus maps service errors to gRPC statuses. Internal errors only
// expose the reference of the logged ServerError.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var se *common.ServerError
	switch {
	case errors.As(err, &se):
		st := status.New(codes.Internal, "internal error")
		detailed, derr := st.WithDetails(&errdetails.ErrorInfo{
			Reason:   ErrorInfoReason,
			Domain:   common.ErrorInfoDomain,
			Metadata: map[string]string{"ref": se.Ref},
		})
		if derr != nil {
			return st.Err()
		}
		return detailed.Err()
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrWrongTokenType):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrUserNotFound):
		return status.Error(codes.NotFound, "user not found")
	case errors.Is(err, common.ErrHostNotFound):
		return status.Error(codes.NotFound, "host not found")
	case errors.Is(err, common.ErrNoReadings):
		return status.Error(codes.NotFound, "no readings yet")
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
