package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"clinic-scheduler/internal/apperr"
	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/rpc"
)

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity stores a verified caller in ctx.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller placed by the Auth interceptor.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

var anyRole = []auth.Role{auth.Admin, auth.Doctor, auth.Patient}

// Required roles per method. Methods absent from the table are open.
var required = map[string][]auth.Role{
	rpc.FullMethod(rpc.MethodBookAppointment):         {auth.Patient},
	rpc.FullMethod(rpc.MethodUpdateAppointment):       {auth.Patient},
	rpc.FullMethod(rpc.MethodCancelAppointment):       {auth.Patient},
	rpc.FullMethod(rpc.MethodListPatientAppointments): {auth.Patient},
	rpc.FullMethod(rpc.MethodGetPatientDetails):       {auth.Patient},
	rpc.FullMethod(rpc.MethodListDoctorAppointments):  {auth.Doctor},
	rpc.FullMethod(rpc.MethodSavePrescription):        {auth.Doctor},
	rpc.FullMethod(rpc.MethodGetPrescription):         {auth.Doctor},
	rpc.FullMethod(rpc.MethodSaveDoctor):              {auth.Admin},
	rpc.FullMethod(rpc.MethodUpdateDoctor):            {auth.Admin},
	rpc.FullMethod(rpc.MethodDeleteDoctor):            {auth.Admin},
	rpc.FullMethod(rpc.MethodDashboard):               {auth.Admin, auth.Doctor},
	rpc.FullMethod(rpc.MethodGetAvailability):         anyRole,
}

// RequiredRoles reports the roles allowed to call method and whether the
// method needs a token at all.
func RequiredRoles(method string) ([]auth.Role, bool) {
	roles, ok := required[method]
	return roles, ok
}

// Authorizer is satisfied by *auth.Gate.
type Authorizer interface {
	Authorize(ctx context.Context, token string, roles ...auth.Role) (auth.Identity, error)
}

// BearerToken extracts the token from "Bearer <jwt>".
func BearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func Auth(gate Authorizer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		roles, guarded := required[info.FullMethod]
		if !guarded {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		// token from Authorization: Bearer <jwt>
		raw := ""
		if vals := md.Get("authorization"); len(vals) > 0 {
			raw = BearerToken(vals[0])
		}
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "no token")
		}

		id, err := gate.Authorize(ctx, raw, roles...)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindStore {
				return nil, status.Error(codes.Internal, "internal error")
			}
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}
		return next(WithIdentity(ctx, id), req)
	}
}
