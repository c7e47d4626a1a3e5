package model

import "time"

// AppointmentDuration is fixed; every appointment ends one hour after it starts.
const AppointmentDuration = time.Hour

type Status int

const (
	StatusScheduled Status = iota
	StatusCompleted
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusCompleted:
		return "completed"
	case StatusCanceled:
		return "canceled"
	}
	return "unknown"
}

type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Doctor struct {
	ID           string
	Name         string
	Email        string
	Specialty    string
	Phone        string
	PasswordHash string
	// declaration order matters: availability is reported in this order
	AvailableTimes []TimeOfDay
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DedupeTimes drops repeated start times, keeping the first occurrence.
func (d *Doctor) DedupeTimes() {
	seen := make(map[TimeOfDay]bool, len(d.AvailableTimes))
	out := d.AvailableTimes[:0]
	for _, t := range d.AvailableTimes {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	d.AvailableTimes = out
}

type Patient struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Address      string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Appointment struct {
	ID        string
	DoctorID  string
	PatientID string
	Time      time.Time
	Status    Status
	Version   int

	// filled on read
	DoctorName  string
	PatientName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Appointment) End() time.Time { return a.Time.Add(AppointmentDuration) }

type Prescription struct {
	ID            string
	AppointmentID string
	PatientName   string
	Medication    string
	Dosage        string
	Instructions  string
	CreatedAt     time.Time
}

// DayBounds returns the half-open window [00:00, next 00:00) of t's calendar
// day in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
