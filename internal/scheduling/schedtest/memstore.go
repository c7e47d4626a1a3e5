// Package schedtest provides an in-memory store for tests. It enforces the
// same constraints as the postgres schema.
package schedtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

// MemStore allows one Scheduled row per (doctor, time), unique doctor emails
// and version-checked appointment writes.
type MemStore struct {
	mu       sync.Mutex
	Admins   map[string]*model.Admin
	Doctors  map[string]*model.Doctor
	order    []string
	Patients map[string]*model.Patient
	Appts    map[string]*model.Appointment
	rx       []*model.Prescription

	Fail    error // returned by every call when set
	FailDay error // returned only by day listings
	Calls   int
}

func New() *MemStore {
	return &MemStore{
		Admins:   make(map[string]*model.Admin),
		Doctors:  make(map[string]*model.Doctor),
		Patients: make(map[string]*model.Patient),
		Appts:    make(map[string]*model.Appointment),
	}
}

// enter locks m and returns the unlock.
func (m *MemStore) enter() func() {
	m.mu.Lock()
	m.Calls++
	return m.mu.Unlock
}

// AddDoctor seeds a doctor whose email is id@clinic.test.
func (m *MemStore) AddDoctor(id, name, specialty string, times ...string) *model.Doctor {
	d := &model.Doctor{ID: id, Name: name, Email: id + "@clinic.test", Specialty: specialty}
	for _, t := range times {
		tod, err := model.ParseTimeOfDay(t)
		if err != nil {
			panic(err)
		}
		d.AvailableTimes = append(d.AvailableTimes, tod)
	}
	m.Doctors[id] = d
	m.order = append(m.order, id)
	return d
}

// AddPatient seeds a patient whose email is id@mail.test.
func (m *MemStore) AddPatient(id, name string) *model.Patient {
	p := &model.Patient{ID: id, Name: name, Email: id + "@mail.test"}
	m.Patients[id] = p
	return p
}

func (m *MemStore) CreateDoctor(_ context.Context, d *model.Doctor) error {
	defer m.enter()()
	if m.Fail != nil {
		return m.Fail
	}
	for _, o := range m.Doctors {
		if o.Email == d.Email {
			return store.ErrDuplicate
		}
	}
	cp := *d
	m.Doctors[d.ID] = &cp
	m.order = append(m.order, d.ID)
	return nil
}

func (m *MemStore) GetDoctor(_ context.Context, id string) (*model.Doctor, error) {
	defer m.enter()()
	if m.Fail != nil {
		return nil, m.Fail
	}
	d, ok := m.Doctors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemStore) UpdateDoctor(_ context.Context, d *model.Doctor) error {
	defer m.enter()()
	if m.Fail != nil {
		return m.Fail
	}
	cur, ok := m.Doctors[d.ID]
	if !ok {
		return store.ErrNotFound
	}
	for _, o := range m.Doctors {
		if o.ID != d.ID && o.Email == d.Email {
			return store.ErrDuplicate
		}
	}
	cp := *d
	if cp.PasswordHash == "" {
		cp.PasswordHash = cur.PasswordHash
	}
	m.Doctors[d.ID] = &cp
	return nil
}

func (m *MemStore) DeleteDoctor(_ context.Context, id string) error {
	defer m.enter()()
	if m.Fail != nil {
		return m.Fail
	}
	if _, ok := m.Doctors[id]; !ok {
		return store.ErrNotFound
	}
	for aid, a := range m.Appts {
		if a.DoctorID == id {
			delete(m.Appts, aid)
		}
	}
	delete(m.Doctors, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemStore) SearchDoctors(_ context.Context, q store.DoctorQuery) ([]model.Doctor, error) {
	defer m.enter()()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var out []model.Doctor
	for _, id := range m.order {
		d := m.Doctors[id]
		if q.NameContains != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(q.NameContains)) {
			continue
		}
		if q.Specialty != "" && !strings.EqualFold(d.Specialty, q.Specialty) {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (m *MemStore) withNames(a model.Appointment) model.Appointment {
	if d, ok := m.Doctors[a.DoctorID]; ok {
		a.DoctorName = d.Name
	}
	if p, ok := m.Patients[a.PatientID]; ok {
		a.PatientName = p.Name
	}
	return a
}

func (m *MemStore) slotTaken(skipID, doctorID string, at time.Time) bool {
	for _, o := range m.Appts {
		if o.ID != skipID && o.Status == model.StatusScheduled && o.DoctorID == doctorID && o.Time.Equal(at) {
			return true
		}
	}
	return false
}

func (m *MemStore) CreateAppointment(_ context.Context, a *model.Appointment) error {
	defer m.enter()()
	if m.Fail != nil {
		return m.Fail
	}
	if a.Status == model.StatusScheduled && m.slotTaken("", a.DoctorID, a.Time) {
		return store.ErrDuplicate
	}
	a.Version = 1
	cp := *a
	m.Appts[a.ID] = &cp
	return nil
}

func (m *MemStore) GetAppointment(_ context.Context, id string) (*model.Appointment, error) {
	defer m.enter()()
	if m.Fail != nil {
		return nil, m.Fail
	}
	a, ok := m.Appts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := m.withNames(*a)
	return &cp, nil
}

func (m *MemStore) ScheduledBetween(ctx context.Context, doctorID string, from, to time.Time) ([]model.Appointment, error) {
	return m.DoctorDay(ctx, doctorID, from, to, "")
}

func (m *MemStore) DoctorDay(_ context.Context, doctorID string, from, to time.Time, patientName string) ([]model.Appointment, error) {
	defer m.enter()()
	if m.Fail != nil {
		return nil, m.Fail
	}
	if m.FailDay != nil {
		return nil, m.FailDay
	}
	var out []model.Appointment
	for _, a := range m.Appts {
		if a.DoctorID != doctorID || a.Status != model.StatusScheduled {
			continue
		}
		if a.Time.Before(from) || !a.Time.Before(to) {
			continue
		}
		full := m.withNames(*a)
		if patientName != "" && !strings.Contains(strings.ToLower(full.PatientName), strings.ToLower(patientName)) {
			continue
		}
		out = append(out, full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (m *MemStore) PatientAppointments(_ context.Context, q store.PatientAppointmentQuery) ([]model.Appointment, error) {
	defer m.enter()()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var out []model.Appointment
	for _, a := range m.Appts {
		if a.PatientID != q.PatientID {
			continue
		}
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		full := m.withNames(*a)
		if q.DoctorName != "" && !strings.Contains(strings.ToLower(full.DoctorName), strings.ToLower(q.DoctorName)) {
			continue
		}
		out = append(out, full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (m *MemStore) UpdateAppointment(_ context.Context, a *model.Appointment) error {
	defer m.enter()()
	if m.Fail != nil {
		return m.Fail
	}
	cur, ok := m.Appts[a.ID]
	if !ok {
		return store.ErrNotFound
	}
	if cur.Version != a.Version {
		return store.ErrStale
	}
	if a.Status == model.StatusScheduled && m.slotTaken(a.ID, a.DoctorID, a.Time) {
		return store.ErrDuplicate
	}
	a.Version++
	cur.DoctorID, cur.Time, cur.Status, cur.Version = a.DoctorID, a.Time, a.Status, a.Version
	return nil
}

func (m *MemStore) DeleteAppointment(_ context.Context, id string, version int) error {
	defer m.enter()()
	if m.Fail != nil {
		return m.Fail
	}
	cur, ok := m.Appts[id]
	if !ok {
		return store.ErrNotFound
	}
	if cur.Version != version {
		return store.ErrStale
	}
	delete(m.Appts, id)
	return nil
}

func (m *MemStore) CountAppointments(_ context.Context) (map[model.Status]int, error) {
	defer m.enter()()
	if m.Fail != nil {
		return nil, m.Fail
	}
	out := make(map[model.Status]int)
	for _, a := range m.Appts {
		out[a.Status]++
	}
	return out, nil
}

func (m *MemStore) CreatePatient(_ context.Context, p *model.Patient) error {
	defer m.enter()()
	if m.Fail != nil {
		return m.Fail
	}
	for _, o := range m.Patients {
		if o.Email == p.Email || (p.Phone != "" && o.Phone == p.Phone) {
			return store.ErrDuplicate
		}
	}
	cp := *p
	m.Patients[p.ID] = &cp
	return nil
}

func (m *MemStore) GetPatient(_ context.Context, id string) (*model.Patient, error) {
	defer m.enter()()
	if m.Fail != nil {
		return nil, m.Fail
	}
	p, ok := m.Patients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemStore) PatientExists(_ context.Context, email, phone string) (bool, error) {
	defer m.enter()()
	if m.Fail != nil {
		return false, m.Fail
	}
	for _, o := range m.Patients {
		if o.Email == email || (phone != "" && o.Phone == phone) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) CreatePrescription(_ context.Context, p *model.Prescription) error {
	defer m.enter()()
	if m.Fail != nil {
		return m.Fail
	}
	p.CreatedAt = time.Now()
	cp := *p
	m.rx = append(m.rx, &cp)
	return nil
}

func (m *MemStore) PrescriptionByAppointment(_ context.Context, appointmentID string) (*model.Prescription, error) {
	defer m.enter()()
	if m.Fail != nil {
		return nil, m.Fail
	}
	for i := len(m.rx) - 1; i >= 0; i-- {
		if m.rx[i].AppointmentID == appointmentID {
			cp := *m.rx[i]
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

// BumpVersion simulates a concurrent write to the appointment.
func (m *MemStore) BumpVersion(id string) {
	defer m.enter()()
	if a, ok := m.Appts[id]; ok {
		a.Version++
	}
}

// AddAdmin seeds an admin with the given bcrypt hash.
func (m *MemStore) AddAdmin(id, username, hash string) *model.Admin {
	a := &model.Admin{ID: id, Username: username, PasswordHash: hash}
	m.Admins[username] = a
	return a
}

func (m *MemStore) AdminByUsername(_ context.Context, username string) (*model.Admin, error) {
	defer m.enter()()
	if m.Fail != nil {
		return nil, m.Fail
	}
	a, ok := m.Admins[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemStore) DoctorByEmail(_ context.Context, email string) (*model.Doctor, error) {
	defer m.enter()()
	if m.Fail != nil {
		return nil, m.Fail
	}
	for _, d := range m.Doctors {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MemStore) PatientByEmail(_ context.Context, email string) (*model.Patient, error) {
	defer m.enter()()
	if m.Fail != nil {
		return nil, m.Fail
	}
	for _, p := range m.Patients {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MemStore) PasswordHash(ctx context.Context, role auth.Role, identifier string) (string, string, error) {
	switch role {
	case auth.Admin:
		a, err := m.AdminByUsername(ctx, identifier)
		if err != nil {
			return "", "", err
		}
		return a.ID, a.PasswordHash, nil
	case auth.Doctor:
		d, err := m.DoctorByEmail(ctx, identifier)
		if err != nil {
			return "", "", err
		}
		if d.PasswordHash == "" {
			return "", "", store.ErrNotFound
		}
		return d.ID, d.PasswordHash, nil
	case auth.Patient:
		p, err := m.PatientByEmail(ctx, identifier)
		if err != nil {
			return "", "", err
		}
		return p.ID, p.PasswordHash, nil
	}
	return "", "", store.ErrNotFound
}
