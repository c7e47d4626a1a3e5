package handler

import (
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-scheduler/internal/apperr"
)

const errorDomain = "clinic-scheduler"

var kindCodes = map[apperr.Kind]codes.Code{
	apperr.KindAuth:       codes.Unauthenticated,
	apperr.KindValidation: codes.InvalidArgument,
	apperr.KindOwnership:  codes.PermissionDenied,
	apperr.KindNotFound:   codes.NotFound,
	apperr.KindConflict:   codes.AlreadyExists,
	apperr.KindStore:      codes.Internal,
}

// CodeFor maps an error kind to its gRPC code.
func CodeFor(k apperr.Kind) codes.Code {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return codes.Internal
}

// toStatus converts a service error to a gRPC status carrying the kind as an
// ErrorInfo reason. Store details never reach the caller.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	kind := apperr.KindOf(err)
	st := status.New(CodeFor(kind), apperr.Message(err))
	if withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{Reason: kind.String(), Domain: errorDomain}); derr == nil {
		st = withInfo
	}
	return st.Err()
}

// Reason extracts the ErrorInfo reason from a status error, if any.
func Reason(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.Reason
		}
	}
	return ""
}
