package scheduling

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinic-scheduler/internal/apperr"
	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

type PatientInput struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	Password string
}

type Patients struct {
	patients PatientRepository
	log      zerolog.Logger
}

func NewPatients(patients PatientRepository, log zerolog.Logger) *Patients {
	return &Patients{patients: patients, log: log.With().Str("component", "patients").Logger()}
}

// Register creates a patient account. Email and phone must be unused.
func (s *Patients) Register(ctx context.Context, in PatientInput) (*model.Patient, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperr.Validation("invalid email")
	}

	exists, err := s.patients.PatientExists(ctx, in.Email, in.Phone)
	if err != nil {
		return nil, fault(s.log, "register", err)
	}
	if exists {
		return nil, apperr.Conflict("patient already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	p := &model.Patient{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: hash,
	}
	if err := s.patients.CreatePatient(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("patient already exists")
		}
		return nil, fault(s.log, "register", err)
	}
	return p, nil
}

// Details returns the calling patient's own record.
func (s *Patients) Details(ctx context.Context, caller auth.Identity) (*model.Patient, error) {
	if err := requireRole(caller, auth.Patient); err != nil {
		return nil, err
	}
	p, err := s.patients.GetPatient(ctx, caller.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("patient not found")
	}
	if err != nil {
		return nil, fault(s.log, "patient_details", err)
	}
	return p, nil
}
