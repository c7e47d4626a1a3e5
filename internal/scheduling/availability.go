package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

// Verdict is the outcome of checking a requested booking.
type Verdict int

const (
	DoctorNotFound  Verdict = -1
	SlotUnavailable Verdict = 0
	Valid           Verdict = 1
)

func (v Verdict) String() string {
	switch v {
	case DoctorNotFound:
		return "doctor not found"
	case SlotUnavailable:
		return "slot unavailable"
	case Valid:
		return "valid"
	}
	return "unknown"
}

// Engine derives free slots from a doctor's recurring start times and the
// appointments already booked. Nothing is cached between calls.
type Engine struct {
	doctors DoctorRepository
	appts   AppointmentRepository
	log     zerolog.Logger
}

func NewEngine(doctors DoctorRepository, appts AppointmentRepository, log zerolog.Logger) *Engine {
	return &Engine{doctors: doctors, appts: appts, log: log.With().Str("component", "availability").Logger()}
}

// Availability returns the doctor's declared start times that are not booked
// on date's calendar day, in declaration order. Unknown doctors and store
// faults both yield an empty result.
func (e *Engine) Availability(ctx context.Context, doctorID string, date time.Time) []model.TimeOfDay {
	doc, err := e.doctors.GetDoctor(ctx, doctorID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			e.log.Error().Err(err).Str("doctor_id", doctorID).Msg("load doctor")
		}
		return []model.TimeOfDay{}
	}
	return e.free(ctx, doc, date)
}

func (e *Engine) free(ctx context.Context, doc *model.Doctor, date time.Time) []model.TimeOfDay {
	from, to := model.DayBounds(utcDay(date))
	booked, err := e.appts.ScheduledBetween(ctx, doc.ID, from, to)
	if err != nil {
		e.log.Error().Err(err).Str("doctor_id", doc.ID).Time("date", from).Msg("load booked appointments")
		return []model.TimeOfDay{}
	}

	taken := make(map[model.TimeOfDay]bool, len(booked))
	for _, a := range booked {
		if a.Status == model.StatusScheduled {
			taken[model.TimeOfDayOf(a.Time.UTC())] = true
		}
	}

	out := make([]model.TimeOfDay, 0, len(doc.AvailableTimes))
	for _, t := range doc.AvailableTimes {
		if !taken[t] {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks whether at is a free slot of the doctor. The result is
// advisory: the store's uniqueness constraint decides races. err is non-nil
// only when the doctor lookup itself fails.
func (e *Engine) Validate(ctx context.Context, doctorID string, at time.Time) (Verdict, error) {
	v, _, err := e.check(ctx, doctorID, at)
	return v, err
}

func (e *Engine) check(ctx context.Context, doctorID string, at time.Time) (Verdict, *model.Doctor, error) {
	doc, err := e.doctors.GetDoctor(ctx, doctorID)
	if errors.Is(err, store.ErrNotFound) {
		return DoctorNotFound, nil, nil
	}
	if err != nil {
		return DoctorNotFound, nil, err
	}

	at = normalize(at)
	want := model.TimeOfDayOf(at)
	for _, t := range e.free(ctx, doc, at) {
		if t == want {
			return Valid, doc, nil
		}
	}
	return SlotUnavailable, doc, nil
}

// utcDay keeps t's calendar date and moves it to UTC midnight.
func utcDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
