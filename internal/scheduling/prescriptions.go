package scheduling

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinic-scheduler/internal/apperr"
	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

type PrescriptionInput struct {
	AppointmentID string
	Medication    string
	Dosage        string
	Instructions  string
}

type Prescriptions struct {
	appts AppointmentRepository
	rx    PrescriptionRepository
	log   zerolog.Logger
}

func NewPrescriptions(appts AppointmentRepository, rx PrescriptionRepository, log zerolog.Logger) *Prescriptions {
	return &Prescriptions{appts: appts, rx: rx, log: log.With().Str("component", "prescriptions").Logger()}
}

// appointment loads id and checks it is one of the calling doctor's.
func (s *Prescriptions) appointment(ctx context.Context, caller auth.Identity, id, op string) (*model.Appointment, error) {
	a, err := s.appts.GetAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("appointment not found")
	}
	if err != nil {
		return nil, fault(s.log, op, err)
	}
	if a.DoctorID != caller.ID {
		return nil, apperr.Forbidden("appointment belongs to another doctor")
	}
	return a, nil
}

func (s *Prescriptions) Save(ctx context.Context, caller auth.Identity, in PrescriptionInput) (*model.Prescription, error) {
	if err := requireRole(caller, auth.Doctor); err != nil {
		return nil, err
	}
	in.Medication = strings.TrimSpace(in.Medication)
	if in.AppointmentID == "" || in.Medication == "" {
		return nil, apperr.Validation("appointment_id and medication are required")
	}
	a, err := s.appointment(ctx, caller, in.AppointmentID, "save_prescription")
	if err != nil {
		return nil, err
	}

	p := &model.Prescription{
		ID:            uuid.NewString(),
		AppointmentID: a.ID,
		PatientName:   a.PatientName,
		Medication:    in.Medication,
		Dosage:        strings.TrimSpace(in.Dosage),
		Instructions:  strings.TrimSpace(in.Instructions),
	}
	if err := s.rx.CreatePrescription(ctx, p); err != nil {
		return nil, fault(s.log, "save_prescription", err)
	}
	return p, nil
}

func (s *Prescriptions) Get(ctx context.Context, caller auth.Identity, appointmentID string) (*model.Prescription, error) {
	if err := requireRole(caller, auth.Doctor); err != nil {
		return nil, err
	}
	if appointmentID == "" {
		return nil, apperr.Validation("appointment_id is required")
	}
	if _, err := s.appointment(ctx, caller, appointmentID, "get_prescription"); err != nil {
		return nil, err
	}
	p, err := s.rx.PrescriptionByAppointment(ctx, appointmentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("prescription not found")
	}
	if err != nil {
		return nil, fault(s.log, "get_prescription", err)
	}
	return p, nil
}
