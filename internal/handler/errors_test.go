package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-scheduler/internal/apperr"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		err    error
		code   codes.Code
		reason string
	}{
		{apperr.Auth("bad token"), codes.Unauthenticated, "AUTH_FAILURE"},
		{apperr.Validation("bad date"), codes.InvalidArgument, "VALIDATION_FAILURE"},
		{apperr.Forbidden("not yours"), codes.PermissionDenied, "OWNERSHIP_FAILURE"},
		{apperr.NotFound("gone"), codes.NotFound, "NOT_FOUND"},
		{fmt.Errorf("book: %w", apperr.Conflict("slot unavailable")), codes.AlreadyExists, "CONFLICT"},
		{errors.New("dial tcp: refused"), codes.Internal, "STORE_FAULT"},
	}
	for _, tt := range tests {
		err := toStatus(tt.err)
		assert.Equal(t, tt.code, status.Code(err), tt.err.Error())
		assert.Equal(t, tt.reason, Reason(err))
	}

	assert.NoError(t, toStatus(nil))
	assert.Equal(t, "internal error", status.Convert(toStatus(errors.New("secret dsn"))).Message())
}
