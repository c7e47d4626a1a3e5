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

// DoctorInput is the editable part of a doctor record. Password may be left
// empty on update to keep the current one.
type DoctorInput struct {
	Name           string
	Email          string
	Specialty      string
	Phone          string
	Password       string
	AvailableTimes []model.TimeOfDay
}

func (in *DoctorInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Specialty = strings.TrimSpace(in.Specialty)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" || in.Email == "" || in.Specialty == "" {
		return apperr.Validation("name, email and specialty are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperr.Validation("invalid email")
	}
	for _, t := range in.AvailableTimes {
		if !t.Valid() {
			return apperr.Validation("invalid available time")
		}
	}
	return nil
}

// Doctors is admin-only management of doctor records.
type Doctors struct {
	doctors DoctorRepository
	log     zerolog.Logger
}

func NewDoctors(doctors DoctorRepository, log zerolog.Logger) *Doctors {
	return &Doctors{doctors: doctors, log: log.With().Str("component", "doctors").Logger()}
}

func (s *Doctors) Save(ctx context.Context, caller auth.Identity, in DoctorInput) (*model.Doctor, error) {
	if err := requireRole(caller, auth.Admin); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, apperr.Validation("password is required")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	d := &model.Doctor{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Email:          in.Email,
		Specialty:      in.Specialty,
		Phone:          in.Phone,
		PasswordHash:   hash,
		AvailableTimes: append([]model.TimeOfDay(nil), in.AvailableTimes...),
	}
	d.DedupeTimes()
	if err := s.doctors.CreateDoctor(ctx, d); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("doctor already exists")
		}
		return nil, fault(s.log, "save_doctor", err)
	}
	s.log.Info().Str("doctor_id", d.ID).Str("by", caller.Subject).Msg("doctor created")
	return d, nil
}

func (s *Doctors) Update(ctx context.Context, caller auth.Identity, id string, in DoctorInput) (*model.Doctor, error) {
	if err := requireRole(caller, auth.Admin); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	d, err := s.doctors.GetDoctor(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("doctor not found")
	}
	if err != nil {
		return nil, fault(s.log, "update_doctor", err)
	}

	d.Name, d.Email, d.Specialty, d.Phone = in.Name, in.Email, in.Specialty, in.Phone
	d.AvailableTimes = append([]model.TimeOfDay(nil), in.AvailableTimes...)
	d.DedupeTimes()
	d.PasswordHash = ""
	if in.Password != "" {
		if d.PasswordHash, err = auth.HashPassword(in.Password); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	switch err := s.doctors.UpdateDoctor(ctx, d); {
	case err == nil:
		return d, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, apperr.NotFound("doctor not found")
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.Conflict("email already in use")
	default:
		return nil, fault(s.log, "update_doctor", err)
	}
}

// Delete removes the doctor together with every appointment it has.
func (s *Doctors) Delete(ctx context.Context, caller auth.Identity, id string) error {
	if err := requireRole(caller, auth.Admin); err != nil {
		return err
	}
	if id == "" {
		return apperr.Validation("id is required")
	}
	switch err := s.doctors.DeleteDoctor(ctx, id); {
	case err == nil:
		s.log.Info().Str("doctor_id", id).Str("by", caller.Subject).Msg("doctor deleted")
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("doctor not found")
	default:
		return fault(s.log, "delete_doctor", err)
	}
}
