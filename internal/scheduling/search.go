package scheduling

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"clinic-scheduler/internal/apperr"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

// Bucket is a coarse half-day partition used to filter doctors by when they work.
type Bucket int

const (
	AnyTime Bucket = iota
	AM
	PM
)

var noon = model.NewTimeOfDay(12, 0, 0)

func ParseBucket(s string) (Bucket, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return AnyTime, nil
	case "AM":
		return AM, nil
	case "PM":
		return PM, nil
	}
	return AnyTime, apperr.Validation("time must be AM or PM")
}

func (b Bucket) String() string {
	switch b {
	case AM:
		return "AM"
	case PM:
		return "PM"
	}
	return ""
}

// Contains reports whether t falls in [00:00,12:00) for AM or [12:00,24:00) for PM.
func (b Bucket) Contains(t model.TimeOfDay) bool {
	switch b {
	case AM:
		return t < noon
	case PM:
		return t >= noon
	}
	return true
}

// FilterByBucket keeps doctors with at least one start time in b. Doctors
// with no times never match AM or PM.
func FilterByBucket(docs []model.Doctor, b Bucket) []model.Doctor {
	if b == AnyTime {
		return docs
	}
	out := make([]model.Doctor, 0, len(docs))
	for _, d := range docs {
		for _, t := range d.AvailableTimes {
			if b.Contains(t) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// Criteria are the optional doctor search inputs.
type Criteria struct {
	Name      string
	Specialty string
	Bucket    Bucket
}

// route says which criteria are present.
type route struct {
	name, specialty, time bool
}

type query func(ctx context.Context, repo DoctorRepository, c Criteria) ([]model.Doctor, error)

func allDoctors(ctx context.Context, repo DoctorRepository, _ Criteria) ([]model.Doctor, error) {
	return repo.SearchDoctors(ctx, store.DoctorQuery{})
}

func byName(ctx context.Context, repo DoctorRepository, c Criteria) ([]model.Doctor, error) {
	return repo.SearchDoctors(ctx, store.DoctorQuery{NameContains: c.Name})
}

func bySpecialty(ctx context.Context, repo DoctorRepository, c Criteria) ([]model.Doctor, error) {
	return repo.SearchDoctors(ctx, store.DoctorQuery{Specialty: c.Specialty})
}

func byNameAndSpecialty(ctx context.Context, repo DoctorRepository, c Criteria) ([]model.Doctor, error) {
	return repo.SearchDoctors(ctx, store.DoctorQuery{NameContains: c.Name, Specialty: c.Specialty})
}

// inBucket narrows the result of q to c.Bucket.
func inBucket(q query) query {
	return func(ctx context.Context, repo DoctorRepository, c Criteria) ([]model.Doctor, error) {
		docs, err := q(ctx, repo, c)
		if err != nil {
			return nil, err
		}
		return FilterByBucket(docs, c.Bucket), nil
	}
}

// routes covers every combination of present criteria.
var routes = map[route]query{
	{}:                                        allDoctors,
	{name: true}:                              byName,
	{specialty: true}:                         bySpecialty,
	{name: true, specialty: true}:             byNameAndSpecialty,
	{time: true}:                              inBucket(allDoctors),
	{name: true, time: true}:                  inBucket(byName),
	{specialty: true, time: true}:             inBucket(bySpecialty),
	{name: true, specialty: true, time: true}: inBucket(byNameAndSpecialty),
}

type Search struct {
	doctors DoctorRepository
	log     zerolog.Logger
}

func NewSearch(doctors DoctorRepository, log zerolog.Logger) *Search {
	return &Search{doctors: doctors, log: log.With().Str("component", "search").Logger()}
}

// Filter returns the doctors matching every present criterion. name is a
// case-insensitive substring, specialty case-insensitive exact, bucket "AM"
// or "PM" in any case.
func (s *Search) Filter(ctx context.Context, name, specialty, bucket string) ([]model.Doctor, error) {
	b, err := ParseBucket(bucket)
	if err != nil {
		return nil, err
	}
	c := Criteria{
		Name:      strings.TrimSpace(name),
		Specialty: strings.TrimSpace(specialty),
		Bucket:    b,
	}
	r := route{name: c.Name != "", specialty: c.Specialty != "", time: c.Bucket != AnyTime}

	docs, err := routes[r](ctx, s.doctors, c)
	if err != nil {
		return nil, fault(s.log, "filter_doctors", err)
	}
	if docs == nil {
		docs = []model.Doctor{}
	}
	return docs, nil
}

func (s *Search) List(ctx context.Context) ([]model.Doctor, error) {
	return s.Filter(ctx, "", "", "")
}
