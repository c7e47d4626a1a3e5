package store

import (
	"context"

	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/model"
)

func (s *Store) CreateAdmin(ctx context.Context, a *model.Admin) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO admins (id, username, password_hash) VALUES ($1,$2,$3)`,
		a.ID, a.Username, a.PasswordHash,
	)
	return mapErr(err)
}

func (s *Store) AdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	a := &model.Admin{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`, username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

// PasswordHash looks up the login identifier in the table for role.
func (s *Store) PasswordHash(ctx context.Context, role auth.Role, identifier string) (string, string, error) {
	var q string
	switch role {
	case auth.Admin:
		q = `SELECT id, password_hash FROM admins WHERE username = $1`
	case auth.Doctor:
		q = `SELECT id, password_hash FROM doctors WHERE email = $1`
	case auth.Patient:
		q = `SELECT id, password_hash FROM patients WHERE email = $1`
	default:
		return "", "", ErrNotFound
	}
	var id, hash string
	if err := s.pool.QueryRow(ctx, q, identifier).Scan(&id, &hash); err != nil {
		return "", "", mapErr(err)
	}
	if hash == "" {
		// doctors created without a password cannot log in
		return "", "", ErrNotFound
	}
	return id, hash, nil
}
