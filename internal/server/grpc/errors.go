package grpc

import (
	"errors"

	"github.com/calebglawson/cecil/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrUnauthenticated, codes.Unauthenticated},
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrInactiveUser, codes.PermissionDenied},
	{common.ErrInsufficientPrivilege, codes.PermissionDenied},
	{common.ErrInvalidInviteCode, codes.InvalidArgument},
	{common.ErrMismatch, codes.InvalidArgument},
	{common.ErrInvalidID, codes.InvalidArgument},
	{common.ErrInvalidInput, codes.InvalidArgument},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrorAlreadyExists, codes.AlreadyExists},
	{common.ErrVersionConflict, codes.Aborted},
}

// toStatus maps a service error onto a gRPC status. Unknown errors become
// Internal with a generic message.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return status.Error(e.code, e.err.Error())
		}
	}
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
