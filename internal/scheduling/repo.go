package scheduling

import (
	"context"
	"time"

	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

// Repositories report absence with store.ErrNotFound, uniqueness violations
// with store.ErrDuplicate and lost version races with store.ErrStale.

type DoctorRepository interface {
	CreateDoctor(ctx context.Context, d *model.Doctor) error
	GetDoctor(ctx context.Context, id string) (*model.Doctor, error)
	UpdateDoctor(ctx context.Context, d *model.Doctor) error
	DeleteDoctor(ctx context.Context, id string) error
	SearchDoctors(ctx context.Context, q store.DoctorQuery) ([]model.Doctor, error)
}

type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	ScheduledBetween(ctx context.Context, doctorID string, from, to time.Time) ([]model.Appointment, error)
	DoctorDay(ctx context.Context, doctorID string, from, to time.Time, patientName string) ([]model.Appointment, error)
	PatientAppointments(ctx context.Context, q store.PatientAppointmentQuery) ([]model.Appointment, error)
	UpdateAppointment(ctx context.Context, a *model.Appointment) error
	DeleteAppointment(ctx context.Context, id string, version int) error
	CountAppointments(ctx context.Context) (map[model.Status]int, error)
}

type PatientRepository interface {
	CreatePatient(ctx context.Context, p *model.Patient) error
	GetPatient(ctx context.Context, id string) (*model.Patient, error)
	PatientExists(ctx context.Context, email, phone string) (bool, error)
}

type PrescriptionRepository interface {
	CreatePrescription(ctx context.Context, p *model.Prescription) error
	PrescriptionByAppointment(ctx context.Context, appointmentID string) (*model.Prescription, error)
}
