package scheduling

import (
	"context"

	"github.com/rs/zerolog"

	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

type Summary struct {
	Role      auth.Role
	Doctors   int
	Scheduled int
	Completed int
	Canceled  int
}

type Dashboard struct {
	doctors DoctorRepository
	appts   AppointmentRepository
	log     zerolog.Logger
}

func NewDashboard(doctors DoctorRepository, appts AppointmentRepository, log zerolog.Logger) *Dashboard {
	return &Dashboard{doctors: doctors, appts: appts, log: log.With().Str("component", "dashboard").Logger()}
}

// Summary is open to admins and doctors.
func (s *Dashboard) Summary(ctx context.Context, caller auth.Identity) (*Summary, error) {
	if err := requireRole(caller, auth.Admin, auth.Doctor); err != nil {
		return nil, err
	}
	docs, err := s.doctors.SearchDoctors(ctx, store.DoctorQuery{})
	if err != nil {
		return nil, fault(s.log, "dashboard", err)
	}
	counts, err := s.appts.CountAppointments(ctx)
	if err != nil {
		return nil, fault(s.log, "dashboard", err)
	}
	return &Summary{
		Role:      caller.Role,
		Doctors:   len(docs),
		Scheduled: counts[model.StatusScheduled],
		Completed: counts[model.StatusCompleted],
		Canceled:  counts[model.StatusCanceled],
	}, nil
}
