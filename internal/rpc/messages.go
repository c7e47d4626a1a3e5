package rpc

import (
	"time"

	"clinic-scheduler/internal/model"
)

type Empty struct{}

type LoginRequest struct {
	Role       string `json:"role"`
	Identifier string `json:"identifier"` // username for admins, email otherwise
	Password   string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	ID    string `json:"id"`
}

type RegisterPatientRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

type RegisterPatientResponse struct {
	Patient Patient `json:"patient"`
	Token   string  `json:"token"`
}

type Patient struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type PatientResponse struct {
	Patient Patient `json:"patient"`
}

type Doctor struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Specialty      string            `json:"specialty"`
	Phone          string            `json:"phone"`
	AvailableTimes []model.TimeOfDay `json:"available_times"`
}

type SaveDoctorRequest struct {
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Specialty      string            `json:"specialty"`
	Phone          string            `json:"phone"`
	Password       string            `json:"password"`
	AvailableTimes []model.TimeOfDay `json:"available_times"`
}

type UpdateDoctorRequest struct {
	ID string `json:"id"`
	SaveDoctorRequest
}

type DeleteDoctorRequest struct {
	ID string `json:"id"`
}

type DoctorResponse struct {
	Doctor Doctor `json:"doctor"`
}

type ListDoctorsResponse struct {
	Doctors []Doctor `json:"doctors"`
}

type FilterDoctorsRequest struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Time      string `json:"time"` // AM or PM
}

type GetAvailabilityRequest struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"` // YYYY-MM-DD
}

type GetAvailabilityResponse struct {
	DoctorID string            `json:"doctor_id"`
	Date     string            `json:"date"`
	Times    []model.TimeOfDay `json:"times"`
}

type Appointment struct {
	ID          string    `json:"id"`
	DoctorID    string    `json:"doctor_id"`
	DoctorName  string    `json:"doctor_name,omitempty"`
	PatientID   string    `json:"patient_id"`
	PatientName string    `json:"patient_name,omitempty"`
	Time        time.Time `json:"time"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
}

type BookAppointmentRequest struct {
	DoctorID string    `json:"doctor_id"`
	Time     time.Time `json:"time"`
}

type UpdateAppointmentRequest struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id,omitempty"`
	DoctorID  string    `json:"doctor_id,omitempty"`
	Time      time.Time `json:"time"`
}

type CancelAppointmentRequest struct {
	ID string `json:"id"`
}

type AppointmentResponse struct {
	Appointment Appointment `json:"appointment"`
}

type ListPatientAppointmentsRequest struct {
	Condition  string `json:"condition"` // past, future or empty
	DoctorName string `json:"doctor_name"`
}

type ListDoctorAppointmentsRequest struct {
	Date        string `json:"date"` // YYYY-MM-DD
	PatientName string `json:"patient_name"`
}

type ListAppointmentsResponse struct {
	Appointments []Appointment `json:"appointments"`
}

type Prescription struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	Medication    string    `json:"medication"`
	Dosage        string    `json:"dosage"`
	Instructions  string    `json:"instructions"`
	CreatedAt     time.Time `json:"created_at"`
}

type SavePrescriptionRequest struct {
	AppointmentID string `json:"appointment_id"`
	Medication    string `json:"medication"`
	Dosage        string `json:"dosage"`
	Instructions  string `json:"instructions"`
}

type GetPrescriptionRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type PrescriptionResponse struct {
	Prescription Prescription `json:"prescription"`
}

type DashboardResponse struct {
	Role      string `json:"role"`
	Doctors   int    `json:"doctors"`
	Scheduled int    `json:"scheduled"`
	Completed int    `json:"completed"`
	Canceled  int    `json:"canceled"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
