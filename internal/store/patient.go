package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"clinic-scheduler/internal/model"
)

const patientCols = `id, name, email, phone, address, password_hash, created_at, updated_at`

func scanPatient(row pgx.Row) (*model.Patient, error) {
	p := &model.Patient{}
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// CreatePatient returns ErrDuplicate when the email or a non-empty phone is taken.
func (s *Store) CreatePatient(ctx context.Context, p *model.Patient) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO patients (id, name, email, phone, address, password_hash) VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.Name, p.Email, p.Phone, p.Address, p.PasswordHash,
	)
	return mapErr(err)
}

func (s *Store) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	return scanPatient(s.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (s *Store) PatientByEmail(ctx context.Context, email string) (*model.Patient, error) {
	return scanPatient(s.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE email = $1`, email))
}

// PatientExists reports whether a patient already uses email or phone.
func (s *Store) PatientExists(ctx context.Context, email, phone string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM patients WHERE email = $1 OR ($2 <> '' AND phone = $2))`,
		email, phone,
	).Scan(&exists)
	return exists, err
}
