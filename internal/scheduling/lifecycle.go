package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinic-scheduler/internal/apperr"
	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

// Appointments owns the Scheduled -> Completed | Canceled lifecycle.
type Appointments struct {
	engine *Engine
	appts  AppointmentRepository
	log    zerolog.Logger
}

func NewAppointments(engine *Engine, appts AppointmentRepository, log zerolog.Logger) *Appointments {
	return &Appointments{engine: engine, appts: appts, log: log.With().Str("component", "appointments").Logger()}
}

// UpdateRequest moves an appointment. An empty DoctorID keeps the current
// doctor; a non-empty PatientID must name the stored owner.
type UpdateRequest struct {
	ID        string
	PatientID string
	DoctorID  string
	Time      time.Time
}

func verdictErr(v Verdict) error {
	switch v {
	case DoctorNotFound:
		return apperr.Validation("doctor not found")
	case SlotUnavailable:
		return apperr.Conflict("slot unavailable")
	}
	return nil
}

// Book creates a Scheduled appointment for the calling patient.
func (s *Appointments) Book(ctx context.Context, caller auth.Identity, doctorID string, at time.Time) (*model.Appointment, error) {
	if err := requireRole(caller, auth.Patient); err != nil {
		return nil, err
	}
	if doctorID == "" || at.IsZero() {
		return nil, apperr.Validation("doctor_id and time are required")
	}
	at = normalize(at)

	v, doc, err := s.engine.check(ctx, doctorID, at)
	if err != nil {
		return nil, fault(s.log, "book", err)
	}
	if v != Valid {
		return nil, verdictErr(v)
	}

	a := &model.Appointment{
		ID:         uuid.NewString(),
		DoctorID:   doc.ID,
		PatientID:  caller.ID,
		Time:       at,
		Status:     model.StatusScheduled,
		DoctorName: doc.Name,
	}
	if err := s.appts.CreateAppointment(ctx, a); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// lost the race to a concurrent booking
			s.log.Info().Str("doctor_id", doc.ID).Time("at", at).Msg("slot taken at insert")
			return nil, verdictErr(SlotUnavailable)
		}
		return nil, fault(s.log, "book", err)
	}
	return a, nil
}

// Update re-validates the new slot and writes it conditionally on the
// version read, so a concurrent cancel or update is never overwritten.
func (s *Appointments) Update(ctx context.Context, caller auth.Identity, req UpdateRequest) (*model.Appointment, error) {
	if err := requireRole(caller, auth.Patient); err != nil {
		return nil, err
	}
	if req.ID == "" || req.Time.IsZero() {
		return nil, apperr.Validation("id and time are required")
	}

	cur, err := s.appts.GetAppointment(ctx, req.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("appointment not found")
	}
	if err != nil {
		return nil, fault(s.log, "update", err)
	}
	if cur.PatientID != caller.ID || (req.PatientID != "" && req.PatientID != cur.PatientID) {
		return nil, apperr.Forbidden("appointment belongs to another patient")
	}
	if cur.Status != model.StatusScheduled {
		return nil, apperr.Conflict("appointment is no longer scheduled")
	}

	doctorID := req.DoctorID
	if doctorID == "" {
		doctorID = cur.DoctorID
	}
	at := normalize(req.Time)
	v, doc, err := s.engine.check(ctx, doctorID, at)
	if err != nil {
		return nil, fault(s.log, "update", err)
	}
	if v != Valid {
		return nil, verdictErr(v)
	}

	next := *cur
	next.DoctorID = doc.ID
	next.DoctorName = doc.Name
	next.Time = at
	switch err := s.appts.UpdateAppointment(ctx, &next); {
	case err == nil:
		return &next, nil
	case errors.Is(err, store.ErrDuplicate):
		return nil, verdictErr(SlotUnavailable)
	case errors.Is(err, store.ErrStale):
		return nil, apperr.Conflict("appointment was modified concurrently")
	case errors.Is(err, store.ErrNotFound):
		return nil, apperr.NotFound("appointment not found")
	default:
		return nil, fault(s.log, "update", err)
	}
}

// Cancel deletes the caller's appointment. A second cancel of the same id
// reports NotFound.
func (s *Appointments) Cancel(ctx context.Context, caller auth.Identity, id string) error {
	if err := requireRole(caller, auth.Patient); err != nil {
		return err
	}
	if id == "" {
		return apperr.Validation("id is required")
	}

	cur, err := s.appts.GetAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("appointment not found")
	}
	if err != nil {
		return fault(s.log, "cancel", err)
	}
	if cur.PatientID != caller.ID {
		return apperr.Forbidden("appointment belongs to another patient")
	}

	switch err := s.appts.DeleteAppointment(ctx, cur.ID, cur.Version); {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("appointment not found")
	case errors.Is(err, store.ErrStale):
		return apperr.Conflict("appointment was modified concurrently")
	default:
		return fault(s.log, "cancel", err)
	}
}

// DoctorAppointments lists the calling doctor's Scheduled appointments on
// date, optionally narrowed by a case-insensitive patient name substring.
func (s *Appointments) DoctorAppointments(ctx context.Context, caller auth.Identity, date time.Time, patientName string) ([]model.Appointment, error) {
	if err := requireRole(caller, auth.Doctor); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, apperr.Validation("date is required")
	}
	from, to := model.DayBounds(utcDay(date))
	out, err := s.appts.DoctorDay(ctx, caller.ID, from, to, strings.TrimSpace(patientName))
	if err != nil {
		return nil, fault(s.log, "doctor_appointments", err)
	}
	return out, nil
}

// ParseCondition maps a patient listing condition to a status filter:
// "past" is Completed, "future" is Scheduled, empty is everything.
func ParseCondition(s string) (*model.Status, error) {
	var st model.Status
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "past":
		st = model.StatusCompleted
	case "future":
		st = model.StatusScheduled
	default:
		return nil, apperr.Validation("condition must be past or future")
	}
	return &st, nil
}

// PatientAppointments lists the calling patient's own appointments.
func (s *Appointments) PatientAppointments(ctx context.Context, caller auth.Identity, condition, doctorName string) ([]model.Appointment, error) {
	if err := requireRole(caller, auth.Patient); err != nil {
		return nil, err
	}
	st, err := ParseCondition(condition)
	if err != nil {
		return nil, err
	}
	out, err := s.appts.PatientAppointments(ctx, store.PatientAppointmentQuery{
		PatientID:  caller.ID,
		Status:     st,
		DoctorName: strings.TrimSpace(doctorName),
	})
	if err != nil {
		return nil, fault(s.log, "patient_appointments", err)
	}
	return out, nil
}
