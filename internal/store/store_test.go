package store

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/model"
)

// setup connects to DATABASE_URL and applies the schema. Rows created by a
// test are removed when it ends.
func setup(t *testing.T) *Store {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	_, err = s.Migrate(context.Background())
	require.NoError(t, err)
	return s
}

func seedDoctor(t *testing.T, s *Store, name, specialty string, times ...string) *model.Doctor {
	t.Helper()
	d := &model.Doctor{ID: uuid.NewString(), Name: name, Email: uuid.NewString()[:8] + "@clinic.test", Specialty: specialty}
	for _, hhmm := range times {
		tod, err := model.ParseTimeOfDay(hhmm)
		require.NoError(t, err)
		d.AvailableTimes = append(d.AvailableTimes, tod)
	}
	require.NoError(t, s.CreateDoctor(context.Background(), d))
	t.Cleanup(func() { _ = s.DeleteDoctor(context.Background(), d.ID) })
	return d
}

func seedPatient(t *testing.T, s *Store, name string) *model.Patient {
	t.Helper()
	p := &model.Patient{ID: uuid.NewString(), Name: name, Email: uuid.NewString()[:8] + "@mail.test", PasswordHash: "x"}
	require.NoError(t, s.CreatePatient(context.Background(), p))
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), `DELETE FROM patients WHERE id = $1`, p.ID)
	})
	return p
}

func slotAt(hour int) time.Time {
	y, m, d := time.Now().UTC().AddDate(0, 0, 30).Date()
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestMigrateIsRerunnable(t *testing.T) {
	s := setup(t)
	names, err := s.Migrate(context.Background())
	require.NoError(t, err)
	assert.Contains(t, names, "migrations/001_init.sql")
}

func TestDoctorRoundTrip(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	d := seedDoctor(t, s, "Dr. Round", "Cardiology", "10:00", "09:00")

	got, err := s.GetDoctor(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.AvailableTimes, got.AvailableTimes, "declaration order kept")

	_, err = s.GetDoctor(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	dup := *d
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, s.CreateDoctor(ctx, &dup), ErrDuplicate)
}

func TestSearchDoctors(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	tag := uuid.NewString()[:6]
	a := seedDoctor(t, s, "Dr. Alpha "+tag, "Neuro-"+tag, "09:00")
	seedDoctor(t, s, "Dr. Beta "+tag, "Derm-"+tag, "14:00")

	got, err := s.SearchDoctors(ctx, DoctorQuery{NameContains: "alpha " + tag})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	got, err = s.SearchDoctors(ctx, DoctorQuery{Specialty: "NEURO-" + tag})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// wildcards are literal
	got, err = s.SearchDoctors(ctx, DoctorQuery{NameContains: "%" + tag})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScheduledSlotIsUnique(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	d := seedDoctor(t, s, "Dr. Slot", "Cardiology", "09:00")
	p := seedPatient(t, s, "Jane")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.CreateAppointment(ctx, &model.Appointment{
				ID: uuid.NewString(), DoctorID: d.ID, PatientID: p.ID, Time: slotAt(9), Status: model.StatusScheduled,
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicate)
	}
	assert.Equal(t, 1, ok)

	// a canceled row does not hold the slot
	day, err := s.ScheduledBetween(ctx, d.ID, slotAt(0), slotAt(0).AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, day, 1)
	a := day[0]
	a.Status = model.StatusCanceled
	require.NoError(t, s.UpdateAppointment(ctx, &a))
	require.NoError(t, s.CreateAppointment(ctx, &model.Appointment{
		ID: uuid.NewString(), DoctorID: d.ID, PatientID: p.ID, Time: slotAt(9), Status: model.StatusScheduled,
	}))
}

func TestVersionedWrites(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	d := seedDoctor(t, s, "Dr. Version", "Cardiology", "09:00", "10:00")
	p := seedPatient(t, s, "Jane")

	a := &model.Appointment{ID: uuid.NewString(), DoctorID: d.ID, PatientID: p.ID, Time: slotAt(9)}
	require.NoError(t, s.CreateAppointment(ctx, a))
	assert.Equal(t, 1, a.Version)

	stale := *a
	a.Time = slotAt(10)
	require.NoError(t, s.UpdateAppointment(ctx, a))
	assert.Equal(t, 2, a.Version)

	stale.Time = slotAt(9)
	assert.ErrorIs(t, s.UpdateAppointment(ctx, &stale), ErrStale)
	assert.ErrorIs(t, s.DeleteAppointment(ctx, a.ID, 1), ErrStale)

	got, err := s.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, slotAt(10).Equal(got.Time))
	assert.Equal(t, "Dr. Version", got.DoctorName)
	assert.Equal(t, "Jane", got.PatientName)

	require.NoError(t, s.DeleteAppointment(ctx, a.ID, 2))
	assert.ErrorIs(t, s.DeleteAppointment(ctx, a.ID, 2), ErrNotFound)
}

func TestPatientAppointmentsAndCascade(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	d := seedDoctor(t, s, "Dr. Cascade", "Cardiology", "09:00", "10:00")
	p := seedPatient(t, s, "Jane")

	done := &model.Appointment{ID: uuid.NewString(), DoctorID: d.ID, PatientID: p.ID, Time: slotAt(9), Status: model.StatusCompleted}
	next := &model.Appointment{ID: uuid.NewString(), DoctorID: d.ID, PatientID: p.ID, Time: slotAt(10)}
	require.NoError(t, s.CreateAppointment(ctx, done))
	require.NoError(t, s.CreateAppointment(ctx, next))
	require.NoError(t, s.CreatePrescription(ctx, &model.Prescription{
		ID: uuid.NewString(), AppointmentID: done.ID, PatientName: "Jane", Medication: "Aspirin",
	}))

	completed := model.StatusCompleted
	got, err := s.PatientAppointments(ctx, PatientAppointmentQuery{PatientID: p.ID, Status: &completed})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, done.ID, got[0].ID)

	got, err = s.PatientAppointments(ctx, PatientAppointmentQuery{PatientID: p.ID, DoctorName: "cascade"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	rx, err := s.PrescriptionByAppointment(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", rx.Medication)

	require.NoError(t, s.DeleteDoctor(ctx, d.ID))
	_, err = s.GetAppointment(ctx, done.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.PrescriptionByAppointment(ctx, done.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteDoctor(ctx, d.ID), ErrNotFound)
}

func TestPatientUniqueness(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	p := seedPatient(t, s, "Jane")

	exists, err := s.PatientExists(ctx, p.Email, "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.PatientExists(ctx, uuid.NewString()+"@mail.test", "")
	require.NoError(t, err)
	assert.False(t, exists, "empty phone never matches")
}

func TestPasswordHashByRole(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	p := seedPatient(t, s, "Jane")
	d := seedDoctor(t, s, "Dr. NoLogin", "Cardiology")

	id, hash, err := s.PasswordHash(ctx, auth.Patient, p.Email)
	require.NoError(t, err)
	assert.Equal(t, p.ID, id)
	assert.Equal(t, "x", hash)

	_, _, err = s.PasswordHash(ctx, auth.Doctor, d.Email)
	assert.ErrorIs(t, err, ErrNotFound, "doctor without password")
}

func TestLikeContains(t *testing.T) {
	assert.Equal(t, `%a\%b\_c\\%`, likeContains(`a%b_c\`))
}
