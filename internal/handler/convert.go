package handler

import (
	"strings"
	"time"

	"clinic-scheduler/internal/apperr"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/rpc"
	"clinic-scheduler/internal/scheduling"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperr.Validation("date must be YYYY-MM-DD")
	}
	return d, nil
}

func toDoctor(d *model.Doctor) rpc.Doctor {
	times := d.AvailableTimes
	if times == nil {
		times = []model.TimeOfDay{}
	}
	return rpc.Doctor{
		ID:             d.ID,
		Name:           d.Name,
		Email:          d.Email,
		Specialty:      d.Specialty,
		Phone:          d.Phone,
		AvailableTimes: times,
	}
}

func toDoctors(ds []model.Doctor) []rpc.Doctor {
	out := make([]rpc.Doctor, len(ds))
	for i := range ds {
		out[i] = toDoctor(&ds[i])
	}
	return out
}

func toPatient(p *model.Patient) rpc.Patient {
	return rpc.Patient{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone, Address: p.Address}
}

func toAppointment(a *model.Appointment) rpc.Appointment {
	return rpc.Appointment{
		ID:          a.ID,
		DoctorID:    a.DoctorID,
		DoctorName:  a.DoctorName,
		PatientID:   a.PatientID,
		PatientName: a.PatientName,
		Time:        a.Time,
		Status:      a.Status.String(),
		Version:     a.Version,
	}
}

func toAppointments(as []model.Appointment) []rpc.Appointment {
	out := make([]rpc.Appointment, len(as))
	for i := range as {
		out[i] = toAppointment(&as[i])
	}
	return out
}

func toPrescription(p *model.Prescription) rpc.Prescription {
	return rpc.Prescription{
		ID:            p.ID,
		AppointmentID: p.AppointmentID,
		PatientName:   p.PatientName,
		Medication:    p.Medication,
		Dosage:        p.Dosage,
		Instructions:  p.Instructions,
		CreatedAt:     p.CreatedAt,
	}
}

func doctorInput(r *rpc.SaveDoctorRequest) scheduling.DoctorInput {
	return scheduling.DoctorInput{
		Name:           r.Name,
		Email:          r.Email,
		Specialty:      r.Specialty,
		Phone:          r.Phone,
		Password:       r.Password,
		AvailableTimes: r.AvailableTimes,
	}
}
