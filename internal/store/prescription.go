package store

import (
	"context"

	"clinic-scheduler/internal/model"
)

func (s *Store) CreatePrescription(ctx context.Context, p *model.Prescription) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO prescriptions (id, appointment_id, patient_name, medication, dosage, instructions)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING created_at`,
		p.ID, p.AppointmentID, p.PatientName, p.Medication, p.Dosage, p.Instructions,
	).Scan(&p.CreatedAt)
	return mapErr(err)
}

// PrescriptionByAppointment returns the latest prescription written for the appointment.
func (s *Store) PrescriptionByAppointment(ctx context.Context, appointmentID string) (*model.Prescription, error) {
	p := &model.Prescription{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, appointment_id, patient_name, medication, dosage, instructions, created_at
		 FROM prescriptions WHERE appointment_id = $1
		 ORDER BY created_at DESC LIMIT 1`, appointmentID,
	).Scan(&p.ID, &p.AppointmentID, &p.PatientName, &p.Medication, &p.Dosage, &p.Instructions, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}
