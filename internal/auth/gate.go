package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"clinic-scheduler/internal/apperr"
	"clinic-scheduler/internal/model"
)

// ErrNoRecord is matched with errors.Is to tell a missing identity apart from
// a store fault.
var ErrNoRecord = errors.New("no such record")

// Directory resolves token subjects to stored identities. Lookups return an
// error matching ErrNoRecord when no record exists.
type Directory interface {
	AdminByUsername(ctx context.Context, username string) (*model.Admin, error)
	DoctorByEmail(ctx context.Context, email string) (*model.Doctor, error)
	PatientByEmail(ctx context.Context, email string) (*model.Patient, error)
}

// CredentialStore hands out the stored bcrypt hash for a login identifier.
type CredentialStore interface {
	PasswordHash(ctx context.Context, role Role, identifier string) (id, hash string, err error)
}

// Identity is a verified caller: the subject resolved to a record of Role.
type Identity struct {
	Role    Role
	Subject string // email, or username for admins
	ID      string
}

// compared against when the identifier is unknown so both paths cost a bcrypt round
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z9VZ3.oBzFk6Y0sH7Ro8bO2u"

type Gate struct {
	secret string
	dir    Directory
	creds  CredentialStore
	log    zerolog.Logger
}

func NewGate(secret string, dir Directory, creds CredentialStore, log zerolog.Logger) *Gate {
	return &Gate{secret: secret, dir: dir, creds: creds, log: log}
}

func unauthorized(err error) *apperr.Error {
	return apperr.Wrap(apperr.KindAuth, "invalid or expired token", err)
}

// lookupFailed turns a directory error into Auth for a missing record and
// Internal for anything else.
func (g *Gate) lookupFailed(err error, role Role, op string) *apperr.Error {
	if errors.Is(err, ErrNoRecord) {
		return unauthorized(err)
	}
	g.log.Error().Err(err).Str("role", role.String()).Str("op", op).Msg("identity lookup failed")
	return apperr.Internal(err)
}

// Validate checks the token signature and expiry, then that its subject still
// resolves to a record of the expected role. It never writes.
func (g *Gate) Validate(ctx context.Context, token string, role Role) (Identity, error) {
	claims, err := ParseToken(token, g.secret)
	if err != nil {
		return Identity{}, unauthorized(err)
	}
	return g.resolve(ctx, claims.Subject, role)
}

// Authorize accepts the token if it validates for any of roles, tried in order.
func (g *Gate) Authorize(ctx context.Context, token string, roles ...Role) (Identity, error) {
	claims, err := ParseToken(token, g.secret)
	if err != nil {
		return Identity{}, unauthorized(err)
	}
	var last error = unauthorized(nil)
	for _, r := range roles {
		id, err := g.resolve(ctx, claims.Subject, r)
		if err == nil {
			return id, nil
		}
		if apperr.KindOf(err) != apperr.KindAuth {
			return Identity{}, err
		}
		last = err
	}
	return Identity{}, last
}

func (g *Gate) resolve(ctx context.Context, subject string, role Role) (Identity, error) {
	id := Identity{Role: role, Subject: subject}
	switch role {
	case Admin:
		a, err := g.dir.AdminByUsername(ctx, subject)
		if err != nil {
			return Identity{}, g.lookupFailed(err, role, "resolve")
		}
		id.ID = a.ID
	case Doctor:
		d, err := g.dir.DoctorByEmail(ctx, subject)
		if err != nil {
			return Identity{}, g.lookupFailed(err, role, "resolve")
		}
		id.ID = d.ID
	case Patient:
		p, err := g.dir.PatientByEmail(ctx, subject)
		if err != nil {
			return Identity{}, g.lookupFailed(err, role, "resolve")
		}
		id.ID = p.ID
	default:
		return Identity{}, unauthorized(nil)
	}
	return id, nil
}

// Login verifies the password against the stored hash and issues a token for
// the identifier.
func (g *Gate) Login(ctx context.Context, role Role, identifier, password string) (string, Identity, error) {
	if identifier == "" || password == "" {
		return "", Identity{}, apperr.Validation("identifier and password required")
	}
	id, hash, err := g.creds.PasswordHash(ctx, role, identifier)
	if err != nil {
		if !errors.Is(err, ErrNoRecord) {
			g.log.Error().Err(err).Str("role", role.String()).Str("op", "login").Msg("credential lookup failed")
			return "", Identity{}, apperr.Internal(err)
		}
		CheckPassword(dummyHash, password)
		return "", Identity{}, apperr.Wrap(apperr.KindAuth, "invalid credentials", err)
	}
	if !CheckPassword(hash, password) {
		return "", Identity{}, apperr.Auth("invalid credentials")
	}
	tok, err := g.Issue(identifier)
	if err != nil {
		return "", Identity{}, apperr.Internal(err)
	}
	return tok, Identity{Role: role, Subject: identifier, ID: id}, nil
}

func (g *Gate) Issue(subject string) (string, error) {
	return MakeToken(subject, g.secret, TokenTTL)
}
