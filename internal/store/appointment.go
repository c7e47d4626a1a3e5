package store

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"clinic-scheduler/internal/model"
)

// PatientAppointmentQuery selects a patient's appointments. Nil Status and an
// empty DoctorName do not filter.
type PatientAppointmentQuery struct {
	PatientID  string
	Status     *model.Status
	DoctorName string // case-insensitive substring
}

const apptSelect = `SELECT a.id, a.doctor_id, a.patient_id, a.appointment_time, a.status, a.version,
	        d.name, p.name, a.created_at, a.updated_at
	 FROM appointments a
	 JOIN doctors d ON d.id = a.doctor_id
	 JOIN patients p ON p.id = a.patient_id`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	a := &model.Appointment{}
	var st int16
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.Time, &st, &a.Version,
		&a.DoctorName, &a.PatientName, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = model.Status(st)
	return a, nil
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()
	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// CreateAppointment inserts a at version 1. A second Scheduled row for the
// same doctor and start time fails with ErrDuplicate.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, doctor_id, patient_id, appointment_time, status, version)
		 VALUES ($1,$2,$3,$4,$5,1)
		 RETURNING version, created_at, updated_at`,
		a.ID, a.DoctorID, a.PatientID, a.Time, int16(a.Status),
	).Scan(&a.Version, &a.CreatedAt, &a.UpdatedAt)
	return mapErr(err)
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx, apptSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

// ScheduledBetween lists the doctor's Scheduled appointments starting in [from, to).
func (s *Store) ScheduledBetween(ctx context.Context, doctorID string, from, to time.Time) ([]model.Appointment, error) {
	return s.DoctorDay(ctx, doctorID, from, to, "")
}

// DoctorDay is ScheduledBetween with an optional patient name filter.
func (s *Store) DoctorDay(ctx context.Context, doctorID string, from, to time.Time, patientName string) ([]model.Appointment, error) {
	q := apptSelect + `
	 WHERE a.doctor_id = $1
	   AND a.status = 0
	   AND a.appointment_time >= $2 AND a.appointment_time < $3`
	args := []any{doctorID, from, to}
	if patientName != "" {
		q += ` AND p.name ILIKE $4`
		args = append(args, likeContains(patientName))
	}
	q += ` ORDER BY a.appointment_time`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectAppointments(rows)
}

func (s *Store) PatientAppointments(ctx context.Context, q PatientAppointmentQuery) ([]model.Appointment, error) {
	ds := pg.From(goqu.T("appointments").As("a")).
		Select(
			goqu.I("a.id"), goqu.I("a.doctor_id"), goqu.I("a.patient_id"), goqu.I("a.appointment_time"),
			goqu.I("a.status"), goqu.I("a.version"), goqu.I("d.name"), goqu.I("p.name"),
			goqu.I("a.created_at"), goqu.I("a.updated_at"),
		).
		Join(goqu.T("doctors").As("d"), goqu.On(goqu.I("d.id").Eq(goqu.I("a.doctor_id")))).
		Join(goqu.T("patients").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("a.patient_id")))).
		Where(goqu.I("a.patient_id").Eq(q.PatientID)).
		Order(goqu.I("a.appointment_time").Asc())
	if q.Status != nil {
		ds = ds.Where(goqu.I("a.status").Eq(int16(*q.Status)))
	}
	if q.DoctorName != "" {
		ds = ds.Where(goqu.I("d.name").ILike(likeContains(q.DoctorName)))
	}
	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectAppointments(rows)
}

// UpdateAppointment writes a's doctor, time and status if the stored version
// still equals a.Version, then bumps a.Version. ErrStale when it moved on,
// ErrNotFound when the row is gone.
func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE appointments
		 SET doctor_id=$1, appointment_time=$2, status=$3, version=version+1, updated_at=NOW()
		 WHERE id=$4 AND version=$5
		 RETURNING version, updated_at`,
		a.DoctorID, a.Time, int16(a.Status), a.ID, a.Version,
	).Scan(&a.Version, &a.UpdatedAt)
	if err == nil {
		return nil
	}
	if err = mapErr(err); err != ErrNotFound {
		return err
	}
	return s.missingOrStale(ctx, a.ID)
}

// DeleteAppointment removes the row if its version is still version.
func (s *Store) DeleteAppointment(ctx context.Context, id string, version int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id=$1 AND version=$2`, id, version)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return s.missingOrStale(ctx, id)
	}
	return nil
}

func (s *Store) missingOrStale(ctx context.Context, id string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM appointments WHERE id=$1)`, id).Scan(&exists); err != nil {
		return mapErr(err)
	}
	if exists {
		return ErrStale
	}
	return ErrNotFound
}

// CountAppointments reports totals per status, used by the dashboard.
func (s *Store) CountAppointments(ctx context.Context) (map[model.Status]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM appointments GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.Status]int)
	for rows.Next() {
		var st int16
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[model.Status(st)] = n
	}
	return out, rows.Err()
}
