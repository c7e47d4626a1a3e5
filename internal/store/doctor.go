package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"clinic-scheduler/internal/model"
)

// DoctorQuery narrows a doctor listing. Empty fields do not filter.
type DoctorQuery struct {
	NameContains string // case-insensitive substring
	Specialty    string // case-insensitive exact
}

const doctorCols = `id, name, email, specialty, phone, password_hash, available_times, created_at, updated_at`

func scanDoctor(row pgx.Row) (*model.Doctor, error) {
	d := &model.Doctor{}
	var times []string
	if err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Specialty, &d.Phone, &d.PasswordHash,
		&times, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	for _, t := range times {
		tod, err := model.ParseTimeOfDay(t)
		if err != nil {
			return nil, fmt.Errorf("doctor %s: %w", d.ID, err)
		}
		d.AvailableTimes = append(d.AvailableTimes, tod)
	}
	return d, nil
}

func timeStrings(ts []model.TimeOfDay) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

func (s *Store) CreateDoctor(ctx context.Context, d *model.Doctor) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO doctors (id, name, email, specialty, phone, password_hash, available_times)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		d.ID, d.Name, d.Email, d.Specialty, d.Phone, d.PasswordHash, timeStrings(d.AvailableTimes),
	)
	return mapErr(err)
}

func (s *Store) GetDoctor(ctx context.Context, id string) (*model.Doctor, error) {
	d, err := scanDoctor(s.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
	return d, mapErr(err)
}

func (s *Store) DoctorByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	d, err := scanDoctor(s.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE email = $1`, email))
	return d, mapErr(err)
}

// UpdateDoctor overwrites the profile. An empty PasswordHash keeps the stored one.
func (s *Store) UpdateDoctor(ctx context.Context, d *model.Doctor) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE doctors
		 SET name=$1, email=$2, specialty=$3, phone=$4,
		     password_hash=COALESCE(NULLIF($5, ''), password_hash),
		     available_times=$6, updated_at=NOW()
		 WHERE id=$7`,
		d.Name, d.Email, d.Specialty, d.Phone, d.PasswordHash, timeStrings(d.AvailableTimes), d.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDoctor removes the doctor and, first, every appointment it has.
func (s *Store) DeleteDoctor(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM appointments WHERE doctor_id = $1`, id); err != nil {
		return mapErr(err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (s *Store) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	return s.SearchDoctors(ctx, DoctorQuery{})
}

// SearchDoctors composes the WHERE clause from whichever fields of q are set.
func (s *Store) SearchDoctors(ctx context.Context, q DoctorQuery) ([]model.Doctor, error) {
	ds := pg.From("doctors").
		Select(goqu.L(doctorCols)).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc())
	if q.NameContains != "" {
		ds = ds.Where(goqu.C("name").ILike(likeContains(q.NameContains)))
	}
	if q.Specialty != "" {
		ds = ds.Where(goqu.Func("lower", goqu.C("specialty")).Eq(strings.ToLower(q.Specialty)))
	}
	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
