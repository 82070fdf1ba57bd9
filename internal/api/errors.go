package api

import (
	"github.com/commoni/commoni/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServerErrorRef returns the reference carried by an Internal status, if any.
func ServerErrorRef(err error) (string, bool) {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Internal {
		return "", false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == common.ErrorInfoDomain {
			ref, ok := info.GetMetadata()["ref"]
			return ref, ok
		}
	}
	return "", false
}
