package scheduling

import (
	"time"

	"github.com/rs/zerolog"

	"clinic-scheduler/internal/apperr"
	"clinic-scheduler/internal/auth"
)

// fault logs an unexpected store error and hides it from the caller.
func fault(log zerolog.Logger, op string, err error) error {
	log.Error().Err(err).Str("op", op).Msg("store fault")
	return apperr.Internal(err)
}

// requireRole short-circuits before any store access when the caller does
// not hold one of roles.
func requireRole(caller auth.Identity, roles ...auth.Role) error {
	if caller.ID == "" {
		return apperr.Auth("invalid or expired token")
	}
	for _, r := range roles {
		if caller.Role == r {
			return nil
		}
	}
	return apperr.Auth("role not permitted")
}

// appointment times are kept as UTC wall clock at second precision
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
